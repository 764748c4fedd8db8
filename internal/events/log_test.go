package events

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/vmunix/arrpush/internal/migrations"
)

// testEvent has no summary of its own.
type testEvent struct {
	BaseEvent
	Message string `json:"message"`
}

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, migrations.Apply(db))
	return db
}

// appendAt stores an event with a fixed occurrence time.
func appendAt(t *testing.T, log *EventLog, eventType, jobID string, at time.Time) {
	t.Helper()
	e := &testEvent{BaseEvent: BaseEvent{Type: eventType, Job: jobID, Timestamp: at}}
	_, err := log.Append(e)
	require.NoError(t, err)
}

func eventTypes(raw []RawEvent) []string {
	types := make([]string, len(raw))
	for i, r := range raw {
		types[i] = r.EventType
	}
	return types
}

func TestOpenDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")

	db, err := OpenDB(path)
	require.NoError(t, err)
	_, err = NewEventLog(db).Append(&testEvent{BaseEvent: NewBaseEvent("test.created", "job-1")})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// Reopening leaves the schema and rows alone.
	db, err = OpenDB(path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	raw, err := NewEventLog(db).ForJob("job-1")
	require.NoError(t, err)
	assert.Len(t, raw, 1)
}

func TestEventLog_Append(t *testing.T) {
	log := NewEventLog(setupTestDB(t))

	id, err := log.Append(&TransferFailed{
		BaseEvent: NewBaseEvent(EventTransferFailed, "job-1"),
		Path:      "/w/Show.S01E02.mkv",
		Category:  "tv",
		ExitCode:  1,
		Error:     "transfer failed",
		Tail:      []string{"lost connection"},
	})
	require.NoError(t, err)
	assert.Positive(t, id)

	raw, err := log.ForJob("job-1")
	require.NoError(t, err)
	require.Len(t, raw, 1)
	assert.Equal(t, id, raw[0].ID)
	assert.Equal(t, EventTransferFailed, raw[0].EventType)
	assert.Equal(t, "job-1", raw[0].JobID)
	assert.Contains(t, raw[0].Payload, `"tail":["lost connection"]`)
	assert.False(t, raw[0].CreatedAt.IsZero())
}

func TestEventLog_Queries(t *testing.T) {
	log := NewEventLog(setupTestDB(t))
	now := time.Now()

	appendAt(t, log, "transfer.started", "job-1", now.Add(-3*time.Hour))
	appendAt(t, log, "transfer.started", "job-2", now.Add(-2*time.Hour))
	appendAt(t, log, "transfer.failed", "job-2", now.Add(-time.Hour))
	appendAt(t, log, "transfer.completed", "job-1", now)

	t.Run("since", func(t *testing.T) {
		raw, err := log.Since(now.Add(-90 * time.Minute))
		require.NoError(t, err)
		assert.Equal(t, []string{"transfer.failed", "transfer.completed"}, eventTypes(raw))
	})

	t.Run("since accepts local time", func(t *testing.T) {
		zone := time.FixedZone("UTC+5", 5*60*60)
		raw, err := log.Since(now.Add(-150 * time.Minute).In(zone))
		require.NoError(t, err)
		assert.Len(t, raw, 3)
	})

	t.Run("for job", func(t *testing.T) {
		raw, err := log.ForJob("job-2")
		require.NoError(t, err)
		assert.Equal(t, []string{"transfer.started", "transfer.failed"}, eventTypes(raw))
	})

	t.Run("unknown job", func(t *testing.T) {
		raw, err := log.ForJob("job-9")
		require.NoError(t, err)
		assert.Empty(t, raw)
	})

	t.Run("recent", func(t *testing.T) {
		raw, err := log.Recent(2)
		require.NoError(t, err)
		require.Len(t, raw, 2)
		assert.Equal(t, "transfer.completed", raw[0].EventType)
		assert.Equal(t, "transfer.failed", raw[1].EventType)
	})
}

func TestEventLog_Prune(t *testing.T) {
	log := NewEventLog(setupTestDB(t))

	appendAt(t, log, "transfer.started", "job-old", time.Now().Add(-100*24*time.Hour))
	for i := range 3 {
		appendAt(t, log, "transfer.started", fmt.Sprintf("job-%d", i), time.Now())
	}

	n, err := log.Prune(30 * 24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	raw, err := log.Since(time.Time{})
	require.NoError(t, err)
	assert.Len(t, raw, 3)

	n, err = log.Prune(30 * 24 * time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n)
}
