package pipeline

import "fmt"

// State is the position of a job in the pipeline.
type State int

const (
	Discovered State = iota
	Classified
	Transferring
	Committed // transferred and local content trashed
	Retained  // local content kept, after a failure or by policy
	Ignored   // filtered before classification
)

var stateNames = map[State]string{
	Discovered:   "discovered",
	Classified:   "classified",
	Transferring: "transferring",
	Committed:    "committed",
	Retained:     "retained",
	Ignored:      "ignored",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}
