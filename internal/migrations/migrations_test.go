package migrations

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func userVersion(t *testing.T, db *sql.DB) int {
	t.Helper()
	var v int
	require.NoError(t, db.QueryRow(`PRAGMA user_version`).Scan(&v))
	return v
}

func TestApply(t *testing.T) {
	db := openMemory(t)

	require.NoError(t, Apply(db))
	assert.Equal(t, Latest(), userVersion(t, db))

	_, err := db.Exec(`INSERT INTO events (event_type, job_id, payload, occurred_at) VALUES ('t', 'j', '{}', CURRENT_TIMESTAMP)`)
	require.NoError(t, err)
}

func TestApply_Idempotent(t *testing.T) {
	db := openMemory(t)

	require.NoError(t, Apply(db))
	require.NoError(t, Apply(db))
	assert.Equal(t, Latest(), userVersion(t, db))
}

func TestLatest(t *testing.T) {
	assert.Equal(t, 1, Latest())
}

func TestScriptVersion(t *testing.T) {
	v, err := scriptVersion("sql/007_add_index.sql")
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	_, err = scriptVersion("sql/initial.sql")
	assert.Error(t, err)

	_, err = scriptVersion("sql/abc_initial.sql")
	assert.Error(t, err)
}
