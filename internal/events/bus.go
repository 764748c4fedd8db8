package events

import (
	"context"
	"log/slog"
	"sync"
)

// Bus fans pipeline events out to subscribers and appends them to the event
// log when one is configured. Publishing never blocks: a subscriber whose
// buffer is full misses the event.
type Bus struct {
	mu     sync.RWMutex
	subs   []chan Event
	store  *EventLog // nil disables persistence
	logger *slog.Logger
	closed bool
}

// NewBus creates a bus. store may be nil.
func NewBus(store *EventLog, logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{store: store, logger: logger}
}

// Publish persists e and delivers it to every subscriber.
// Persistence failures are logged; delivery still happens.
func (b *Bus) Publish(_ context.Context, e Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil
	}

	if b.store != nil {
		if _, err := b.store.Append(e); err != nil {
			b.logger.Error("failed to persist event", "type", e.EventType(), "job_id", e.JobID(), "error", err)
		}
	}

	for i, ch := range b.subs {
		select {
		case ch <- e:
		default:
			b.logger.Warn("subscriber full, dropping event",
				"subscriber", i,
				"type", e.EventType(),
				"job_id", e.JobID())
		}
	}
	return nil
}

// SubscribeAll returns a channel receiving every event published after the
// call. On a closed bus the channel is already closed.
func (b *Bus) SubscribeAll(bufferSize int) <-chan Event {
	ch := make(chan Event, bufferSize)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.subs = append(b.subs, ch)
	return ch
}

// Close stops delivery and closes every subscriber channel. Later publishes
// are no-ops.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
	return nil
}
