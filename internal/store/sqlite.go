// Package store persists recent place selections in SQLite so UI shortcuts
// survive restarts. It is a collaborator of the search flow, never a
// correctness dependency: a failed write only loses a shortcut.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/couchcryptid/warmer-colder-service/internal/domain"
)

const schema = `CREATE TABLE IF NOT EXISTS recent_places (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	name        TEXT NOT NULL,
	latitude    REAL NOT NULL,
	longitude   REAL NOT NULL,
	searched_at TEXT NOT NULL
);`

// SQLiteStore implements domain.RecentsStore using the pure Go sqlite driver.
type SQLiteStore struct {
	db         *sql.DB
	maxEntries int
}

// NewSQLite opens (or creates) the database at path and applies the schema.
// maxEntries caps the list length; older entries are trimmed on save.
func NewSQLite(path string, maxEntries int) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open recents db: %w", err)
	}

	// WAL improves concurrency for the small frequent writes this store sees.
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db, maxEntries: maxEntries}, nil
}

// Save records a selection as most recent. Entries matching the same name
// (case-insensitively) and coordinates are deduplicated, and the list is
// trimmed to the configured cap.
func (s *SQLiteStore) Save(ctx context.Context, entry domain.RecentEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after successful commit

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM recent_places WHERE lower(name) = lower(?) AND latitude = ? AND longitude = ?`,
		entry.Name, entry.Latitude, entry.Longitude,
	); err != nil {
		return fmt.Errorf("dedupe recent entry: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO recent_places(name, latitude, longitude, searched_at) VALUES(?,?,?,?)`,
		entry.Name, entry.Latitude, entry.Longitude, time.Now().UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("insert recent entry: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM recent_places WHERE id NOT IN (
			SELECT id FROM recent_places ORDER BY searched_at DESC, id DESC LIMIT ?
		)`, s.maxEntries,
	); err != nil {
		return fmt.Errorf("trim recent entries: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// List returns the stored entries, most recent first.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.RecentEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, latitude, longitude FROM recent_places ORDER BY searched_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list recent entries: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.RecentEntry, 0, s.maxEntries)
	for rows.Next() {
		var e domain.RecentEntry
		if err := rows.Scan(&e.Name, &e.Latitude, &e.Longitude); err != nil {
			return nil, fmt.Errorf("scan recent entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent entries: %w", err)
	}
	return entries, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
