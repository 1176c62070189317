package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pipos/kmemtest/internal/harness"
	"github.com/pipos/kmemtest/internal/report"
)

// timeLayout is fixed width so text order in SQLite matches time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrRunNotFound is returned by GetRun for an unknown ID.
var ErrRunNotFound = errors.New("run not found")

// RunRecord is a stored harness run.
type RunRecord struct {
	ID          string
	StartedAt   time.Time
	Compiler    string
	Sources     []string
	Compiled    bool
	Diagnostics string
	Passed      int
	Failed      int
	Total       int
	Checks      []CheckRecord // populated by GetRun only
}

// CheckRecord is one stored check of a run.
type CheckRecord struct {
	Name     string
	Cases    int
	Pass     bool
	Failures []string
}

// WriteRun records a finished report. Writing the same run ID twice is a
// no-op.
func (s *Store) WriteRun(ctx context.Context, r *harness.Report) error {
	sources := r.Sources
	if sources == nil {
		sources = []string{}
	}
	sourcesJSON, err := report.Marshal(sources)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, started_at, compiler, sources, compiled, diagnostics, passed, failed, total)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		r.RunID,
		r.StartedAt.UTC().Format(timeLayout),
		r.Compiler,
		string(sourcesJSON),
		r.Compiled,
		r.Diagnostics,
		r.Passed(),
		r.Failed(),
		r.Total(),
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return tx.Commit()
	}

	for i, c := range r.Checks {
		failures := c.Failures
		if failures == nil {
			failures = []string{}
		}
		failuresJSON, err := report.Marshal(failures)
		if err != nil {
			return fmt.Errorf("write run: check %s: %w", c.Name, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO checks (run_id, seq, name, cases, pass, failures)
			VALUES (?, ?, ?, ?, ?, ?)
		`, r.RunID, i, c.Name, c.Cases, c.Pass(), string(failuresJSON)); err != nil {
			return fmt.Errorf("write run: check %s: %w", c.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run: commit: %w", err)
	}
	return nil
}

// ListRuns returns up to limit runs, newest first. A limit <= 0 returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	query := `
		SELECT id, started_at, compiler, sources, compiled, diagnostics, passed, failed, total
		FROM runs
		ORDER BY started_at DESC, id DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := []RunRecord{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// GetRun returns one run with its checks in execution order.
func (s *Store) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, started_at, compiler, sources, compiled, diagnostics, passed, failed, total
		FROM runs WHERE id = ?
	`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT name, cases, pass, failures
		FROM checks WHERE run_id = ?
		ORDER BY seq ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("get run checks: %w", err)
	}
	defer rows.Close()

	run.Checks = []CheckRecord{}
	for rows.Next() {
		var c CheckRecord
		var failuresJSON string
		if err := rows.Scan(&c.Name, &c.Cases, &c.Pass, &failuresJSON); err != nil {
			return nil, fmt.Errorf("get run checks: %w", err)
		}
		if err := json.Unmarshal([]byte(failuresJSON), &c.Failures); err != nil {
			return nil, fmt.Errorf("get run checks: decode failures: %w", err)
		}
		run.Checks = append(run.Checks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get run checks: %w", err)
	}
	return &run, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (RunRecord, error) {
	var run RunRecord
	var startedAt, sourcesJSON string
	if err := row.Scan(
		&run.ID,
		&startedAt,
		&run.Compiler,
		&sourcesJSON,
		&run.Compiled,
		&run.Diagnostics,
		&run.Passed,
		&run.Failed,
		&run.Total,
	); err != nil {
		return RunRecord{}, err
	}

	t, err := time.Parse(timeLayout, startedAt)
	if err != nil {
		return RunRecord{}, fmt.Errorf("parse started_at %q: %w", startedAt, err)
	}
	run.StartedAt = t

	if err := json.Unmarshal([]byte(sourcesJSON), &run.Sources); err != nil {
		return RunRecord{}, fmt.Errorf("decode sources: %w", err)
	}
	return run, nil
}
