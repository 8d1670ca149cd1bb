package turso

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// CompileRun is one precompute invocation.
type CompileRun struct {
	ID         string
	StartedAt  time.Time
	FinishedAt *time.Time
	Hues       int
}

type CompileRunRepository struct {
	db *sql.DB
}

func NewCompileRunRepository(db *sql.DB) *CompileRunRepository {
	return &CompileRunRepository{db: db}
}

func (r *CompileRunRepository) Start(ctx context.Context, run *CompileRun) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO compile_runs (id, started_at) VALUES (?, ?)`,
		run.ID, run.StartedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to start compile run: %w", err)
	}
	return nil
}

func (r *CompileRunRepository) Finish(ctx context.Context, id string, finishedAt time.Time, hues int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE compile_runs SET finished_at = ?, hues = ? WHERE id = ?`,
		finishedAt.UTC().Format(time.RFC3339), hues, id)
	if err != nil {
		return fmt.Errorf("failed to finish compile run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("compile run %s not found", id)
	}
	return nil
}

// Latest returns the most recent run, or nil when none exist.
func (r *CompileRunRepository) Latest(ctx context.Context) (*CompileRun, error) {
	var (
		run      CompileRun
		started  string
		finished sql.NullString
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, started_at, finished_at, hues FROM compile_runs ORDER BY started_at DESC LIMIT 1`,
	).Scan(&run.ID, &started, &finished, &run.Hues)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest compile run: %w", err)
	}

	if run.StartedAt, err = time.Parse(time.RFC3339, started); err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	if finished.Valid {
		t, err := time.Parse(time.RFC3339, finished.String)
		if err != nil {
			return nil, fmt.Errorf("parse finished_at: %w", err)
		}
		run.FinishedAt = &t
	}
	return &run, nil
}
