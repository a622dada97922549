// Package publish fans detected violations out to downstream consumers
// (andon boards, notification services) over Kafka.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/segmentio/kafka-go"

	"github.com/machshop/spc/store"
)

// Publisher delivers violation records to an external topic
type Publisher interface {
	Publish(ctx context.Context, records []store.ViolationRecord) error
}

// Kafka publishes one message per violation, keyed by parameter id so all
// violations for a parameter land on the same partition in order
type Kafka struct {
	writer *kafka.Writer
	log    *slog.Logger
}

var _ Publisher = &Kafka{}

// NewKafka creates a publisher for the given brokers and topic
func NewKafka(brokers []string, topic string, log *slog.Logger) *Kafka {
	return &Kafka{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			RequiredAcks: kafka.RequireOne,
			Async:        false,
		},
		log: log.With(slog.String("component", "violation-publisher")),
	}
}

// Publish writes all records in one batch, retrying transient broker
// errors with exponential backoff for up to 30 seconds
func (k *Kafka) Publish(ctx context.Context, records []store.ViolationRecord) error {
	if len(records) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(records))
	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal violation %s: %w", rec.ID, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(rec.ParameterID),
			Value: data,
		})
	}

	write := func() error {
		return k.writer.WriteMessages(ctx, msgs...)
	}
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = 30 * time.Second
	if err := backoff.Retry(write, backoff.WithContext(policy, ctx)); err != nil {
		return fmt.Errorf("failed to publish %d violations: %w", len(msgs), err)
	}
	k.log.Debug("published violations", slog.Int("count", len(msgs)))
	return nil
}

// Close flushes and closes the underlying writer
func (k *Kafka) Close() error {
	return k.writer.Close()
}
