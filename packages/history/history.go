// Package history persists completed request outcomes in SQLite so
// past runs can be listed with the history command. Writes are
// best-effort; a broken history store never fails a request.
package history

import (
	"database/sql"
	"fmt"
	"time"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"

	"github.com/rawnet/httpc/packages/executor"
)

const schema = `
CREATE TABLE IF NOT EXISTS requests (
	id          TEXT PRIMARY KEY,
	method      TEXT NOT NULL,
	url         TEXT NOT NULL,
	final_url   TEXT NOT NULL,
	status      INTEGER NOT NULL DEFAULT 0,
	redirects   INTEGER NOT NULL DEFAULT 0,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	from_cache  INTEGER NOT NULL DEFAULT 0,
	created_at  TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_requests_created_at ON requests(created_at);
`

// Store is a SQLite-backed request history.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init history db: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts one completed outcome.
func (s *Store) Record(out *executor.Outcome) error {
	_, err := s.db.Exec(
		`INSERT INTO requests (id, method, url, final_url, status, redirects, duration_ms, from_cache, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		out.ID, out.Method, out.URL, out.FinalURL, out.StatusCode,
		out.RedirectCount, out.Elapsed.Milliseconds(), out.FromCache, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("record history entry: %w", err)
	}
	return nil
}

// Entry is one stored run.
type Entry struct {
	ID         string
	Method     string
	URL        string
	FinalURL   string
	Status     int
	Redirects  int
	DurationMS int64
	FromCache  bool
	CreatedAt  time.Time
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(limit int) ([]Entry, error) {
	if limit < 1 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, method, url, final_url, status, redirects, duration_ms, from_cache, created_at
		 FROM requests ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Method, &e.URL, &e.FinalURL, &e.Status,
			&e.Redirects, &e.DurationMS, &e.FromCache, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
