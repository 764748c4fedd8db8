package events

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register "sqlite" driver

	"github.com/vmunix/arrpush/internal/migrations"
)

// busyTimeout lets the daemon and a concurrent "arrpush history" share the
// database file.
const busyTimeout = "5000"

// OpenDB opens (creating if needed) the history database at path and brings
// its schema up to date.
func OpenDB(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout("+busyTimeout+")")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := migrations.Apply(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// EventLog is the append-only history of published events. Timestamps are
// stored in UTC so they compare correctly as text.
type EventLog struct {
	db *sql.DB
}

// NewEventLog wraps a database opened with OpenDB.
func NewEventLog(db *sql.DB) *EventLog {
	return &EventLog{db: db}
}

// RawEvent is a stored event with its JSON payload undecoded.
// Use Registry.Unmarshal to get the concrete type back.
type RawEvent struct {
	ID         int64
	EventType  string
	JobID      string
	Payload    string
	OccurredAt time.Time
	CreatedAt  time.Time
}

// Append stores e and returns its row ID.
func (l *EventLog) Append(e Event) (int64, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return 0, fmt.Errorf("marshal %s event: %w", e.EventType(), err)
	}

	res, err := l.db.Exec(`
		INSERT INTO events (event_type, job_id, payload, occurred_at)
		VALUES (?, ?, ?, ?)`,
		e.EventType(), e.JobID(), string(payload), e.OccurredAt().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert event: %w", err)
	}
	return res.LastInsertId()
}

// Since returns events that occurred at or after t, oldest first.
func (l *EventLog) Since(t time.Time) ([]RawEvent, error) {
	return l.query(`WHERE occurred_at >= ? ORDER BY id ASC`, t.UTC())
}

// ForJob returns every event of one job, oldest first.
func (l *EventLog) ForJob(jobID string) ([]RawEvent, error) {
	return l.query(`WHERE job_id = ? ORDER BY id ASC`, jobID)
}

// Recent returns the newest limit events, newest first.
func (l *EventLog) Recent(limit int) ([]RawEvent, error) {
	return l.query(`ORDER BY id DESC LIMIT ?`, limit)
}

// Prune deletes events older than olderThan and reports how many went.
func (l *EventLog) Prune(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan).UTC()
	res, err := l.db.Exec(`DELETE FROM events WHERE occurred_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune events: %w", err)
	}
	return res.RowsAffected()
}

func (l *EventLog) query(clause string, args ...any) ([]RawEvent, error) {
	rows, err := l.db.Query(`
		SELECT id, event_type, job_id, payload, occurred_at, created_at
		FROM events `+clause, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []RawEvent
	for rows.Next() {
		var e RawEvent
		if err := rows.Scan(&e.ID, &e.EventType, &e.JobID, &e.Payload, &e.OccurredAt, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
