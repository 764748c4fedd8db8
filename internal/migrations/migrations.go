// Package migrations holds the history database schema as embedded SQL
// scripts named NNN_description.sql.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
)

//go:embed sql/*.sql
var scripts embed.FS

// Apply runs every script newer than the database's PRAGMA user_version, in
// order, each in its own transaction.
func Apply(db *sql.DB) error {
	var current int
	if err := db.QueryRow(`PRAGMA user_version`).Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	names, err := fs.Glob(scripts, "sql/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)

	for _, name := range names {
		version, err := scriptVersion(name)
		if err != nil {
			return err
		}
		if version <= current {
			continue
		}
		body, err := scripts.ReadFile(name)
		if err != nil {
			return err
		}
		if err := apply(db, version, string(body)); err != nil {
			return fmt.Errorf("apply %s: %w", path.Base(name), err)
		}
		current = version
	}
	return nil
}

// Latest returns the version of the newest embedded script.
func Latest() int {
	names, _ := fs.Glob(scripts, "sql/*.sql")
	latest := 0
	for _, name := range names {
		if v, err := scriptVersion(name); err == nil && v > latest {
			latest = v
		}
	}
	return latest
}

func apply(db *sql.DB, version int, body string) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(body); err != nil {
		_ = tx.Rollback()
		return err
	}
	// PRAGMA does not take bind parameters.
	if _, err := tx.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, version)); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func scriptVersion(name string) (int, error) {
	prefix, _, ok := strings.Cut(path.Base(name), "_")
	if !ok {
		return 0, fmt.Errorf("migration %s: name must start with a version", name)
	}
	v, err := strconv.Atoi(prefix)
	if err != nil {
		return 0, fmt.Errorf("migration %s: %w", name, err)
	}
	return v, nil
}
