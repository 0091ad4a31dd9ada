// Package history is a sqlite-backed log of issued API calls.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS calls (
	id          TEXT PRIMARY KEY,
	method      TEXT NOT NULL,
	url         TEXT NOT NULL,
	status      INTEGER NOT NULL,
	empty       INTEGER NOT NULL,
	error       TEXT NOT NULL DEFAULT '',
	duration_ms INTEGER NOT NULL,
	created_at  TIMESTAMP NOT NULL
)`

// Entry is one recorded API call. StatusCode is 0 when the reply was empty
// or the call failed; Error carries the failure message when there is one.
type Entry struct {
	ID         string
	Method     string
	URL        string
	StatusCode int
	Empty      bool
	Error      string
	Duration   time.Duration
	CreatedAt  time.Time
}

// Store records and lists call log entries
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the call log database at path
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record inserts an entry, assigning its ID and CreatedAt
func (s *Store) Record(entry *Entry) error {
	entry.ID = uuid.New().String()
	entry.CreatedAt = time.Now().UTC()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO calls (id, method, url, status, empty, error, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Method, entry.URL, entry.StatusCode, entry.Empty,
		entry.Error, entry.Duration.Milliseconds(), entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record call: %w", err)
	}
	return nil
}

// List returns the most recent entries, newest first
func (s *Store) List(limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, method, url, status, empty, error, duration_ms, created_at
		 FROM calls ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list calls: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		var durationMs int64
		if err := rows.Scan(&e.ID, &e.Method, &e.URL, &e.StatusCode, &e.Empty,
			&e.Error, &durationMs, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan call row: %w", err)
		}
		e.Duration = time.Duration(durationMs) * time.Millisecond
		entries = append(entries, &e)
	}

	return entries, rows.Err()
}

// Clear removes every entry from the log
func (s *Store) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM calls`); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}
