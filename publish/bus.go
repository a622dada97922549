package publish

import (
	"context"
	"sync"

	"github.com/machshop/spc/store"
)

// Topic groups bus subscribers.  Subscribing to a parameter id limits a
// subscriber to that parameter's violations; the default topic receives
// everything.
type Topic string

const allViolations Topic = "__all__"

// Bus is an in-process publisher for deployments that embed the engine
// in a larger service and have no broker.  Violations published on any
// topic are also delivered to subscribers of the default topic.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[Topic][]chan []store.ViolationRecord
	closed      bool
}

var _ Publisher = &Bus{}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[Topic][]chan []store.ViolationRecord),
	}
}

// Subscribe registers a subscriber for one or more parameter ids, or for
// all violations when no topic is given.  The returned channel is closed
// when the bus shuts down; subscribers should treat that as the signal to
// stop.
func (b *Bus) Subscribe(topics ...Topic) chan []store.ViolationRecord {
	b.mu.Lock()
	defer b.mu.Unlock()

	c := make(chan []store.ViolationRecord, 1)
	if len(topics) == 0 {
		topics = []Topic{allViolations}
	}
	for _, topic := range topics {
		b.subscribers[topic] = append(b.subscribers[topic], c)
	}
	return c
}

// Unsubscribe removes the subscriber and closes its channel
func (b *Bus) Unsubscribe(c chan []store.ViolationRecord) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for topic, chs := range b.subscribers {
		for i, ch := range chs {
			if ch == c {
				close(ch)
				b.subscribers[topic] = append(chs[:i], chs[i+1:]...)
				break
			}
		}
	}
}

// Publish delivers the records, grouped by parameter id, to matching
// subscribers and to default-topic subscribers.  Delivery blocks until
// every subscriber has taken the batch or the context is done.
func (b *Bus) Publish(ctx context.Context, records []store.ViolationRecord) error {
	if len(records) == 0 {
		return nil
	}

	byParameter := make(map[Topic][]store.ViolationRecord)
	for _, rec := range records {
		t := Topic(rec.ParameterID)
		byParameter[t] = append(byParameter[t], rec)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil
	}

	for topic, batch := range byParameter {
		for _, ch := range b.subscribers[topic] {
			select {
			case ch <- batch:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	for _, ch := range b.subscribers[allViolations] {
		select {
		case ch <- records:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Close shuts the bus down and closes every subscriber channel
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	seen := make(map[chan []store.ViolationRecord]bool)
	for _, chs := range b.subscribers {
		for _, ch := range chs {
			if !seen[ch] {
				close(ch)
				seen[ch] = true
			}
		}
	}
	b.subscribers = make(map[Topic][]chan []store.ViolationRecord)
	return nil
}
