package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewBaseEvent(t *testing.T) {
	e := NewBaseEvent(EventTransferStarted, "job-1")

	assert.Equal(t, "transfer.started", e.EventType())
	assert.Equal(t, "job-1", e.JobID())
	assert.Equal(t, time.UTC, e.OccurredAt().Location())
	assert.WithinDuration(t, time.Now(), e.OccurredAt(), time.Second)
}

func TestSummary(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		want  string
	}{
		{"started", &TransferStarted{Path: "/t/a.mkv", Category: "movie"}, "/t/a.mkv (movie)"},
		{"completed", &TransferCompleted{Path: "/t/d", Copied: 2, Skipped: 1, DurationMs: 1500}, "/t/d: 2 copied, 1 present, 1.5s"},
		{"skipped", &TransferSkipped{Path: "/t/d", Files: 3}, "/t/d: all 3 files present"},
		{"failed", &TransferFailed{Error: "copy failed", ExitCode: 1}, "copy failed (exit 1)"},
		{"failed without exit", &TransferFailed{Error: "no video files"}, "no video files"},
		{"cleanup", &CleanupCompleted{Paths: []string{"/t/a", "/t/b"}}, "trashed /t/a, /t/b"},
		{"cleanup failed", &CleanupFailed{Path: "/t/a"}, "could not trash /t/a"},
		{"no summary", &testEvent{BaseEvent: NewBaseEvent("test.event", "job-1")}, "test.event"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Summary(tt.event))
		})
	}
}
