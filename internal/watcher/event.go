package watcher

import "fmt"

// Kind is the filesystem change that produced an Event.
type Kind int

const (
	Created Kind = iota
	Modified
)

func (k Kind) String() string {
	switch k {
	case Created:
		return "created"
	case Modified:
		return "modified"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Event is a filtered change under the watch root.
type Event struct {
	Path  string
	Kind  Kind
	IsDir bool
}

// Merge folds a later event for the same path into e. Created wins over
// Modified.
func (e Event) Merge(later Event) Event {
	out := later
	if e.Kind == Created {
		out.Kind = Created
	}
	return out
}

// Sink receives events. Push must not block.
type Sink interface {
	Push(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

func (f SinkFunc) Push(e Event) { f(e) }
