package publish

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/machshop/spc/store"
)

func record(parameterID string, rule int) store.ViolationRecord {
	return store.ViolationRecord{
		ID:          uuid.NewString(),
		ParameterID: parameterID,
		Rule:        rule,
		RecordedAt:  time.Now().UTC(),
	}
}

func TestBusDeliversByParameter(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	bore := bus.Subscribe(Topic("bore-diameter"))
	all := bus.Subscribe()

	records := []store.ViolationRecord{
		record("bore-diameter", 1),
		record("shaft-runout", 2),
	}
	assert.NoError(t, bus.Publish(context.Background(), records))

	select {
	case batch := <-bore:
		assert.Len(t, batch, 1)
		assert.Equal(t, "bore-diameter", batch[0].ParameterID)
	case <-time.After(time.Second):
		t.Fatal("topic subscriber never received the batch")
	}

	select {
	case batch := <-all:
		assert.Len(t, batch, 2)
	case <-time.After(time.Second):
		t.Fatal("default subscriber never received the batch")
	}
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	c := bus.Subscribe()
	bus.Unsubscribe(c)

	_, open := <-c
	assert.False(t, open)

	// no subscribers left; publish should not block
	assert.NoError(t, bus.Publish(context.Background(), []store.ViolationRecord{record("p1", 1)}))
}

func TestBusPublishHonorsContext(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	// subscriber with a full buffer that never drains
	c := bus.Subscribe()
	c <- []store.ViolationRecord{record("p0", 1)}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := bus.Publish(ctx, []store.ViolationRecord{record("p1", 1)})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBusCloseClosesSubscribers(t *testing.T) {
	bus := NewBus()
	c := bus.Subscribe(Topic("p1"))
	assert.NoError(t, bus.Close())

	_, open := <-c
	assert.False(t, open)

	// publishing after close is a no-op
	assert.NoError(t, bus.Publish(context.Background(), []store.ViolationRecord{record("p1", 1)}))
}

func TestBusEmptyBatch(t *testing.T) {
	bus := NewBus()
	defer bus.Close()
	assert.NoError(t, bus.Publish(context.Background(), nil))
}
