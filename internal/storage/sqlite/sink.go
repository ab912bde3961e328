// Package sqlite persists run results to a local SQLite database, one row per
// target per run. The CSV report stays the primary output; the database is an
// optional queryable archive across runs.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Sink appends run results to a SQLite file.
//
// SQLite has no native timestamp type; modernc.org/sqlite stores timestamps
// with TEXT affinity regardless. Timestamps are therefore written as
// RFC3339Nano strings for reliable round-trips and easy debugging.
type Sink struct {
	db    *sql.DB
	runAt string
}

const schema = `
CREATE TABLE IF NOT EXISTS results (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    run_at      TEXT NOT NULL,
    university  TEXT NOT NULL,
    sport       TEXT NOT NULL,
    url         TEXT NOT NULL,
    emails      TEXT NOT NULL,
    error       TEXT NOT NULL DEFAULT '',
    created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_results_run_at ON results (run_at);
CREATE INDEX IF NOT EXISTS idx_results_university ON results (university);
`

// Open opens (creating if needed) the database at dsn and ensures the schema.
// All rows written through the returned Sink share one run_at marker.
func Open(ctx context.Context, dsn string, runAt time.Time) (*Sink, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dsn, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", dsn, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Sink{db: db, runAt: runAt.UTC().Format(time.RFC3339Nano)}, nil
}

func (s *Sink) Close() error { return s.db.Close() }

// Result is one finished target for archival.
type Result struct {
	University string
	Sport      string
	URL        string
	Emails     []string
	Err        error
}

// Insert appends one result row. Emails are stored comma-joined, matching the
// report's cell format.
func (s *Sink) Insert(ctx context.Context, r Result) error {
	errMsg := ""
	if r.Err != nil {
		errMsg = r.Err.Error()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO results (run_at, university, sport, url, emails, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.runAt, r.University, r.Sport, r.URL,
		strings.Join(r.Emails, ", "), errMsg,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert result %q: %w", r.University, err)
	}
	return nil
}
