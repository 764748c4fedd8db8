package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_UnmarshalTransferFailed(t *testing.T) {
	r := NewRegistry()
	register[TransferFailed](r, EventTransferFailed)

	e, err := r.Unmarshal(RawEvent{
		ID:        3,
		EventType: EventTransferFailed,
		Payload:   `{"type":"transfer.failed","job_id":"job-7","occurred_at":"2024-01-01T00:00:00Z","path":"/w/Show/e02.mkv","category":"tv","target":"/srv/tv/Show/e02.mkv","exit_code":1,"error":"transfer failed","tail":["lost connection"]}`,
	})
	require.NoError(t, err)

	failed, ok := e.(*TransferFailed)
	require.True(t, ok)
	assert.Equal(t, "job-7", failed.JobID())
	assert.Equal(t, "/srv/tv/Show/e02.mkv", failed.Target)
	assert.Equal(t, 1, failed.ExitCode)
	assert.Equal(t, []string{"lost connection"}, failed.Tail)
}

func TestRegistry_UnmarshalErrors(t *testing.T) {
	r := DefaultRegistry()

	_, err := r.Unmarshal(RawEvent{EventType: "download.completed", Payload: `{}`})
	require.ErrorIs(t, err, ErrUnknownEventType)
	assert.Contains(t, err.Error(), "download.completed")

	_, err = r.Unmarshal(RawEvent{ID: 12, EventType: EventTransferStarted, Payload: `{invalid json`})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode transfer.started event 12")
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()

	want := []string{
		EventCleanupCompleted,
		EventCleanupFailed,
		EventTransferCompleted,
		EventTransferFailed,
		EventTransferSkipped,
		EventTransferStarted,
	}
	assert.Equal(t, want, r.Types())

	for _, eventType := range want {
		t.Run(eventType, func(t *testing.T) {
			e, err := r.Unmarshal(RawEvent{
				EventType: eventType,
				Payload:   `{"type":"` + eventType + `","job_id":"job-1","occurred_at":"2024-01-01T00:00:00Z"}`,
			})
			require.NoError(t, err)
			assert.Equal(t, eventType, e.EventType())
			assert.Equal(t, "job-1", e.JobID())
		})
	}
}

func TestRegistry_RoundTripsCompleted(t *testing.T) {
	db := setupTestDB(t)
	log := NewEventLog(db)

	_, err := log.Append(&TransferCompleted{
		BaseEvent:  NewBaseEvent(EventTransferCompleted, "job-9"),
		Path:       "/w/Movie (2020)",
		Category:   "movie",
		Targets:    []string{"/srv/movies/Movie (2020)/movie.mkv"},
		Copied:     1,
		DurationMs: 1500,
	})
	require.NoError(t, err)

	raw, err := log.ForJob("job-9")
	require.NoError(t, err)
	require.Len(t, raw, 1)

	e, err := DefaultRegistry().Unmarshal(raw[0])
	require.NoError(t, err)
	completed, ok := e.(*TransferCompleted)
	require.True(t, ok)
	assert.Equal(t, "/w/Movie (2020)", completed.Path)
	assert.Equal(t, []string{"/srv/movies/Movie (2020)/movie.mkv"}, completed.Targets)
	assert.Equal(t, int64(1500), completed.DurationMs)
}
