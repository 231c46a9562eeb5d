package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBusPublishSubscribe(t *testing.T) {
	bus := NewBus()

	var received []Event
	bus.Subscribe(TypeAssignmentConflict, func(e Event) { received = append(received, e) })
	bus.Subscribe(TypeLeaveCreated, func(e Event) { t.Error("wrong event type delivered") })

	bus.Publish(Event{Type: TypeAssignmentConflict, WorkerID: 7})

	assert.Len(t, received, 1)
	assert.Equal(t, int64(7), received[0].WorkerID)
	assert.False(t, received[0].CreatedAt.IsZero(), "publish stamps CreatedAt")
}

func TestBusKeepsExplicitTimestamp(t *testing.T) {
	bus := NewBus()
	stamp := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	var got Event
	bus.Subscribe(TypeLeaveCreated, func(e Event) { got = e })
	bus.Publish(Event{Type: TypeLeaveCreated, CreatedAt: stamp})

	assert.Equal(t, stamp, got.CreatedAt)
}

func TestBusNoSubscribers(t *testing.T) {
	bus := NewBus()
	// Publishing without subscribers must not panic.
	bus.Publish(Event{Type: TypeAssignmentConflict})
}
