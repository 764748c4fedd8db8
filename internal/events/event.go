// Package events carries pipeline events between components and optionally
// persists them to SQLite.
package events

import "time"

// Event is a fact about one job. Every concrete event embeds BaseEvent.
type Event interface {
	EventType() string
	JobID() string
	OccurredAt() time.Time
}

// BaseEvent holds the fields shared by all events. They are serialized
// alongside the event-specific fields.
type BaseEvent struct {
	Type      string    `json:"type"`
	Job       string    `json:"job_id"`
	Timestamp time.Time `json:"occurred_at"`
}

func (e BaseEvent) EventType() string     { return e.Type }
func (e BaseEvent) JobID() string         { return e.Job }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

// NewBaseEvent stamps an event of the given type for jobID with the current
// UTC time.
func NewBaseEvent(eventType, jobID string) BaseEvent {
	return BaseEvent{Type: eventType, Job: jobID, Timestamp: time.Now().UTC()}
}

// Summary renders the interesting fields of e on one line. Events without a
// summary of their own fall back to their type.
func Summary(e Event) string {
	if s, ok := e.(interface{ Summary() string }); ok {
		return s.Summary()
	}
	return e.EventType()
}
