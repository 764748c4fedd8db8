package events

import (
	"fmt"
	"strings"
	"time"
)

// Event types.
const (
	EventTransferStarted   = "transfer.started"
	EventTransferCompleted = "transfer.completed"
	EventTransferSkipped   = "transfer.skipped"
	EventTransferFailed    = "transfer.failed"
	EventCleanupCompleted  = "cleanup.completed"
	EventCleanupFailed     = "cleanup.failed"
)

// TransferStarted is emitted when a job begins copying.
type TransferStarted struct {
	BaseEvent
	Path      string `json:"path"`
	Category  string `json:"category"`
	Recursive bool   `json:"recursive"`
}

// TransferCompleted is emitted when every file of a job is on the remote,
// with at least one of them actually copied.
type TransferCompleted struct {
	BaseEvent
	Path       string   `json:"path"`
	Category   string   `json:"category"`
	Targets    []string `json:"targets"`
	Copied     int      `json:"copied"`
	Skipped    int      `json:"skipped"`
	DurationMs int64    `json:"duration_ms"`
}

// TransferSkipped is emitted when every file of a job was already present.
type TransferSkipped struct {
	BaseEvent
	Path     string `json:"path"`
	Category string `json:"category"`
	Files    int    `json:"files"`
}

// TransferFailed is emitted when a job stops on an error. Local data is kept.
type TransferFailed struct {
	BaseEvent
	Path     string   `json:"path"`
	Category string   `json:"category"`
	Target   string   `json:"target,omitempty"`
	ExitCode int      `json:"exit_code,omitempty"`
	Error    string   `json:"error"`
	Tail     []string `json:"tail,omitempty"` // transport stderr
}

// CleanupCompleted is emitted after local content was moved to the trash.
type CleanupCompleted struct {
	BaseEvent
	Paths []string `json:"paths"`
}

// CleanupFailed is emitted when transferred content could not be trashed.
type CleanupFailed struct {
	BaseEvent
	Path string `json:"path"`
}

func (e *TransferStarted) Summary() string {
	return fmt.Sprintf("%s (%s)", e.Path, e.Category)
}

func (e *TransferCompleted) Summary() string {
	took := time.Duration(e.DurationMs) * time.Millisecond
	return fmt.Sprintf("%s: %d copied, %d present, %s", e.Path, e.Copied, e.Skipped, took)
}

func (e *TransferSkipped) Summary() string {
	return fmt.Sprintf("%s: all %d files present", e.Path, e.Files)
}

func (e *TransferFailed) Summary() string {
	if e.ExitCode != 0 {
		return fmt.Sprintf("%s (exit %d)", e.Error, e.ExitCode)
	}
	return e.Error
}

func (e *CleanupCompleted) Summary() string {
	return "trashed " + strings.Join(e.Paths, ", ")
}

func (e *CleanupFailed) Summary() string {
	return "could not trash " + e.Path
}
