// Package history persists backend launch attempts in a local SQLite
// database. The launcher uses it to answer "did the backend ever start,
// and how did it die" without digging through logs. Every write is
// best-effort; the caller absorbs errors.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/scribeview/desktop/internal/backend"
)

// Schema for the launch history. Exit fields stay NULL until the process
// ends; an abandoned row means the launcher itself died first.
const schema = `
CREATE TABLE IF NOT EXISTS launches (
    id         TEXT PRIMARY KEY,
    started_at INTEGER NOT NULL,
    dir        TEXT NOT NULL,
    strategy   TEXT NOT NULL,
    pid        INTEGER NOT NULL,
    outcome    TEXT NOT NULL,
    exit_code  INTEGER,
    ended_at   INTEGER
);

CREATE INDEX IF NOT EXISTS idx_launches_started ON launches(started_at);
`

// Entry is one recorded launch attempt.
type Entry struct {
	ID        string
	StartedAt time.Time
	Dir       string
	Strategy  string
	PID       int
	Outcome   string

	// Exited is true once an exit has been recorded; ExitCode and EndedAt
	// are only meaningful then.
	Exited   bool
	ExitCode int
	EndedAt  time.Time
}

// Store is a SQLite-backed launch history.
type Store struct {
	db *sql.DB
}

var _ backend.LaunchRecorder = (*Store)(nil)

// DefaultPath returns the per-user history database location.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, "scribeview", "history.db"), nil
}

// Open opens (creating if necessary) the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	dsn := path +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect history db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// RecordLaunch inserts one launch attempt.
func (s *Store) RecordLaunch(rec backend.LaunchRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO launches (id, started_at, dir, strategy, pid, outcome)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.StartedAt.UnixNano(), rec.Dir, rec.Strategy, rec.PID, rec.Outcome,
	)
	if err != nil {
		return fmt.Errorf("record launch: %w", err)
	}
	return nil
}

// RecordExit marks a previously recorded launch as ended.
// Unknown IDs are ignored; the row may have been pruned.
func (s *Store) RecordExit(id string, exitCode int, endedAt time.Time) error {
	_, err := s.db.Exec(
		`UPDATE launches SET exit_code = ?, ended_at = ? WHERE id = ?`,
		exitCode, endedAt.UnixNano(), id,
	)
	if err != nil {
		return fmt.Errorf("record exit: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, started_at, dir, strategy, pid, outcome, exit_code, ended_at
		 FROM launches ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e       Entry
			started int64
			code    sql.NullInt64
			ended   sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &started, &e.Dir, &e.Strategy, &e.PID, &e.Outcome, &code, &ended); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		e.StartedAt = time.Unix(0, started)
		if code.Valid && ended.Valid {
			e.Exited = true
			e.ExitCode = int(code.Int64)
			e.EndedAt = time.Unix(0, ended.Int64)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history rows: %w", err)
	}
	return out, nil
}

// Last returns the most recent entry, if any.
func (s *Store) Last() (Entry, bool, error) {
	entries, err := s.Recent(1)
	if err != nil {
		return Entry{}, false, err
	}
	if len(entries) == 0 {
		return Entry{}, false, nil
	}
	return entries[0], true, nil
}

// Prune deletes all but the newest keep entries.
func (s *Store) Prune(keep int) error {
	if keep < 0 {
		keep = 0
	}
	_, err := s.db.Exec(
		`DELETE FROM launches WHERE id NOT IN
		 (SELECT id FROM launches ORDER BY started_at DESC LIMIT ?)`, keep)
	if err != nil {
		return fmt.Errorf("prune history: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
