// Package history persists the append-only log of past dispatches in a
// SQLite database. Entries are never mutated after creation; appends
// from different sessions may interleave, but rowid ordering keeps each
// session's own entries in dispatch order.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrHistoryUnavailable reports a storage failure while reading or
// writing the history log.
var ErrHistoryUnavailable = errors.New("history unavailable")

// Entry is one durable record of a past interaction.
type Entry struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
	Query     string    `json:"query"`
	Intent    string    `json:"intent"`
	Summary   string    `json:"summary"`
}

// Store appends and lists history entries.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS search_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	query TEXT NOT NULL,
	intent TEXT NOT NULL,
	summary TEXT,
	timestamp DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_search_history_session ON search_history(session_id, id);
`

// Open opens (creating if necessary) the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// A single connection serializes writers, which sidesteps
	// SQLITE_BUSY under concurrent appends.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history table: %w", err)
	}
	return &Store{db: db}, nil
}

// Append records one entry. The write is a single INSERT, so concurrent
// appends from different sessions cannot corrupt each other.
func (s *Store) Append(ctx context.Context, entry Entry) error {
	ts := entry.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO search_history (session_id, query, intent, summary, timestamp) VALUES (?, ?, ?, ?, ?)",
		entry.SessionID, entry.Query, entry.Intent, entry.Summary, ts,
	)
	if err != nil {
		return fmt.Errorf("%w: append: %v", ErrHistoryUnavailable, err)
	}
	return nil
}

// List returns up to limit entries for a session, newest first.
func (s *Store) List(ctx context.Context, sessionID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, session_id, query, intent, summary, timestamp FROM search_history WHERE session_id = ? ORDER BY id DESC LIMIT ?",
		sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: list: %v", ErrHistoryUnavailable, err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var entry Entry
		var summary sql.NullString
		if err := rows.Scan(&entry.ID, &entry.SessionID, &entry.Query, &entry.Intent, &summary, &entry.Timestamp); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", ErrHistoryUnavailable, err)
		}
		entry.Summary = summary.String
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHistoryUnavailable, err)
	}
	return entries, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
