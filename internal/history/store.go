// Package history persists a local record of pipe invocations (name,
// outcome, duration) to a SQLite file, for the CLI's run --history flag
// and the status subcommand.
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	pipe_name   TEXT NOT NULL,
	started_at  TEXT NOT NULL,
	duration_ms INTEGER NOT NULL,
	succeeded   INTEGER NOT NULL,
	error       TEXT
);
`

// Store records pipe run outcomes in a SQLite database file.
type Store struct {
	db *sql.DB
}

// Open opens (creating if absent) the SQLite database at path and ensures
// the runs table exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	if _, err := db.Exec(schemaDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Run is one recorded pipe invocation.
type Run struct {
	ID         int64
	PipeName   string
	StartedAt  time.Time
	Duration   time.Duration
	Succeeded  bool
	Error      string
}

// Record inserts one completed run.
func (s *Store) Record(r Run) error {
	_, err := s.db.Exec(
		`INSERT INTO runs (pipe_name, started_at, duration_ms, succeeded, error) VALUES (?, ?, ?, ?, ?)`,
		r.PipeName, r.StartedAt.UTC().Format(time.RFC3339Nano), r.Duration.Milliseconds(), boolToInt(r.Succeeded), r.Error,
	)
	return err
}

// Recent returns the most recent n runs, newest first.
func (s *Store) Recent(n int) ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT id, pipe_name, started_at, duration_ms, succeeded, error FROM runs ORDER BY id DESC LIMIT ?`, n,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r         Run
			startedAt string
			succeeded int
			errText   sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.PipeName, &startedAt, &r.Duration, &succeeded, &errText); err != nil {
			return nil, err
		}
		r.Duration = r.Duration * time.Millisecond
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
		r.Succeeded = succeeded != 0
		r.Error = errText.String
		out = append(out, r)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
