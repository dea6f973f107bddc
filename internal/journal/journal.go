// Package journal keeps a local history of conformance runs.
//
// Each run writes one row per checked fixture, so pass counts can be
// tracked over time without digging through CI logs. The journal is an
// optional convenience: nothing in the harness depends on it.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/htmlconf/internal/harness"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
    run_id     TEXT NOT NULL,
    suite      TEXT NOT NULL,
    fixture    TEXT NOT NULL,
    passed     INTEGER NOT NULL,
    failed     INTEGER NOT NULL,
    skipped    INTEGER NOT NULL DEFAULT 0,
    total      INTEGER NOT NULL,
    created_at TEXT NOT NULL,
    PRIMARY KEY (run_id, suite, fixture)
);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`

// Journal is a SQLite-backed run history.
// Uses WAL mode so history queries never block a run recording.
type Journal struct {
	db *sql.DB
}

// Open creates or opens the journal database at path. Idempotent.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open journal: %w", err)
	}

	// SQLite allows one writer; a bounded pool avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("journal pragma %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal schema: %w", err)
	}
	return &Journal{db: db}, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// RecordRun stores one row per fixture stat under a fresh run id and
// returns that id. All rows commit atomically.
func (j *Journal) RecordRun(ctx context.Context, stats []harness.FixtureStat) (string, error) {
	runID := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339)

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO runs (run_id, suite, fixture, passed, failed, skipped, total, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}
	defer stmt.Close()

	for _, s := range stats {
		if _, err := stmt.ExecContext(ctx,
			runID, s.Kind.String(), s.Fixture, s.Passed, s.Failed, s.Skipped, s.Total, now); err != nil {
			return "", fmt.Errorf("record run %s/%s: %w", s.Kind, s.Fixture, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}
	return runID, nil
}

// RunSummary aggregates one recorded run.
type RunSummary struct {
	RunID     string
	CreatedAt string
	Passed    int
	Failed    int
	Skipped   int
	Total     int
	Fixtures  int
}

// RecentRuns returns up to limit run summaries, newest first.
func (j *Journal) RecentRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT run_id, MIN(created_at), SUM(passed), SUM(failed), SUM(skipped), SUM(total), COUNT(*)
		 FROM runs GROUP BY run_id ORDER BY MIN(created_at) DESC, run_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var s RunSummary
		if err := rows.Scan(&s.RunID, &s.CreatedAt, &s.Passed, &s.Failed, &s.Skipped, &s.Total, &s.Fixtures); err != nil {
			return nil, fmt.Errorf("recent runs: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// FixtureHistory returns the recorded rows for one suite/fixture pair,
// newest first.
func (j *Journal) FixtureHistory(ctx context.Context, suiteName, fixture string, limit int) ([]harness.FixtureStat, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT passed, failed, skipped, total FROM runs
		 WHERE suite = ? AND fixture = ?
		 ORDER BY created_at DESC LIMIT ?`, suiteName, fixture, limit)
	if err != nil {
		return nil, fmt.Errorf("fixture history: %w", err)
	}
	defer rows.Close()

	var out []harness.FixtureStat
	for rows.Next() {
		s := harness.FixtureStat{Fixture: fixture}
		if err := rows.Scan(&s.Passed, &s.Failed, &s.Skipped, &s.Total); err != nil {
			return nil, fmt.Errorf("fixture history: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
