package push

import (
	"log/slog"

	"github.com/Forkful/MealNudge/internal/models"
)

// DefaultBusBuffer is the default event channel capacity.
const DefaultBusBuffer = 64

// Bus republishes routed activity events to in-process subscribers.
type Bus struct {
	events chan models.ActivityEvent
}

// NewBus creates a bus with the given buffer size (DefaultBusBuffer when
// non-positive).
func NewBus(buffer int) *Bus {
	if buffer <= 0 {
		buffer = DefaultBusBuffer
	}
	return &Bus{events: make(chan models.ActivityEvent, buffer)}
}

// Publish emits an event without blocking. When no subscriber keeps up the
// event is dropped and logged: reminders are best-effort, and a stalled
// consumer must not back-pressure the push receiver.
func (b *Bus) Publish(evt models.ActivityEvent) {
	select {
	case b.events <- evt:
	default:
		slog.Warn("Bus.Publish: subscriber backlog full, dropping event", "id", evt.ID)
	}
}

// Events returns the subscriber channel.
func (b *Bus) Events() <-chan models.ActivityEvent {
	return b.events
}

// Close closes the subscriber channel. Publish must not be called after
// Close.
func (b *Bus) Close() {
	close(b.events)
}
