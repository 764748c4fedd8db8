package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownEventType is returned when decoding an unregistered type.
var ErrUnknownEventType = errors.New("unknown event type")

// Registry decodes persisted events back into their concrete types.
type Registry struct {
	types map[string]func() Event
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]func() Event)}
}

// Register associates eventType with a constructor of its zero value.
func (r *Registry) Register(eventType string, newEvent func() Event) {
	r.types[eventType] = newEvent
}

// Types lists the registered event types, sorted.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.types))
	for t := range r.types {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Unmarshal decodes a stored event into its concrete type.
func (r *Registry) Unmarshal(raw RawEvent) (Event, error) {
	newEvent, ok := r.types[raw.EventType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEventType, raw.EventType)
	}
	e := newEvent()
	if err := json.Unmarshal([]byte(raw.Payload), e); err != nil {
		return nil, fmt.Errorf("decode %s event %d: %w", raw.EventType, raw.ID, err)
	}
	return e, nil
}

func register[T any, P interface {
	*T
	Event
}](r *Registry, eventType string) {
	r.Register(eventType, func() Event { return P(new(T)) })
}

// DefaultRegistry knows every event the pipeline publishes.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	register[TransferStarted](r, EventTransferStarted)
	register[TransferCompleted](r, EventTransferCompleted)
	register[TransferSkipped](r, EventTransferSkipped)
	register[TransferFailed](r, EventTransferFailed)
	register[CleanupCompleted](r, EventCleanupCompleted)
	register[CleanupFailed](r, EventCleanupFailed)
	return r
}
