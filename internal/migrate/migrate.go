// Package migrate applies the embedded schema migrations to a libsql
// database.
package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/emiliopalmerini/huesite/migrations"
)

// Migration represents a single database migration with up and down SQL.
type Migration struct {
	Version int
	Name    string
	UpSQL   string
	DownSQL string
}

var upPattern = regexp.MustCompile(`^(\d+)_(.+)\.up\.sql$`)

// Runner applies migrations from fsys.
type Runner struct {
	db   *sql.DB
	fsys fs.FS
	log  zerolog.Logger
}

// NewRunner returns a runner over the embedded migrations.
func NewRunner(db *sql.DB, log zerolog.Logger) *Runner {
	return &Runner{db: db, fsys: migrations.FS, log: log}
}

// RunAll runs all pending migrations on the provided database.
func RunAll(ctx context.Context, db *sql.DB) error {
	_, err := NewRunner(db, zerolog.Nop()).Up(ctx)
	return err
}

func (r *Runner) ensureTable(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			dirty INTEGER NOT NULL DEFAULT 0
		)
	`)
	return err
}

// Version returns the current migration version and dirty state.
func (r *Runner) Version(ctx context.Context) (int, bool, error) {
	if err := r.ensureTable(ctx); err != nil {
		return 0, false, fmt.Errorf("create migrations table: %w", err)
	}

	var version, dirty int
	err := r.db.QueryRowContext(ctx, `SELECT version, dirty FROM schema_migrations ORDER BY version DESC LIMIT 1`).Scan(&version, &dirty)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return version, dirty == 1, nil
}

func (r *Runner) setVersion(ctx context.Context, version int, dirty bool) error {
	dirtyInt := 0
	if dirty {
		dirtyInt = 1
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM schema_migrations`); err != nil {
		return err
	}
	if version == 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO schema_migrations (version, dirty) VALUES (?, ?)`, version, dirtyInt)
	return err
}

// Load reads every migration and returns them sorted by version.
func (r *Runner) Load() ([]Migration, error) {
	entries, err := fs.ReadDir(r.fsys, ".")
	if err != nil {
		return nil, err
	}

	var result []Migration
	for _, e := range entries {
		matches := upPattern.FindStringSubmatch(e.Name())
		if e.IsDir() || matches == nil {
			continue
		}
		version, _ := strconv.Atoi(matches[1])

		up, err := fs.ReadFile(r.fsys, e.Name())
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.Name(), err)
		}
		down, err := fs.ReadFile(r.fsys, path.Join(".", matches[1]+"_"+matches[2]+".down.sql"))
		if err != nil {
			down = nil
		}

		result = append(result, Migration{
			Version: version,
			Name:    matches[2],
			UpSQL:   string(up),
			DownSQL: string(down),
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Version < result[j].Version
	})
	return result, nil
}

func (r *Runner) apply(ctx context.Context, m Migration, up bool) error {
	direction, body, target := "up", m.UpSQL, m.Version
	if !up {
		direction, body, target = "down", m.DownSQL, m.Version-1
	}
	r.log.Info().Int("version", m.Version).Str("name", m.Name).Str("direction", direction).Msg("applying migration")

	if err := r.setVersion(ctx, m.Version, true); err != nil {
		return fmt.Errorf("set dirty flag: %w", err)
	}
	for _, stmt := range SplitSQL(body) {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d %s: %w", m.Version, direction, err)
		}
	}
	if err := r.setVersion(ctx, target, false); err != nil {
		return fmt.Errorf("clear dirty flag: %w", err)
	}
	return nil
}

// SplitSQL splits a SQL script into non-empty statements.
func SplitSQL(script string) []string {
	var out []string
	for _, stmt := range strings.Split(script, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

func (r *Runner) current(ctx context.Context) (int, []Migration, error) {
	version, dirty, err := r.Version(ctx)
	if err != nil {
		return 0, nil, fmt.Errorf("get current version: %w", err)
	}
	if dirty {
		return 0, nil, fmt.Errorf("database is in dirty state at version %d", version)
	}
	all, err := r.Load()
	if err != nil {
		return 0, nil, fmt.Errorf("load migrations: %w", err)
	}
	return version, all, nil
}

// Up runs all pending migrations and reports how many were applied.
func (r *Runner) Up(ctx context.Context) (int, error) {
	version, all, err := r.current(ctx)
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, m := range all {
		if m.Version <= version {
			continue
		}
		if err := r.apply(ctx, m, true); err != nil {
			return applied, err
		}
		applied++
	}
	return applied, nil
}

// DownTo rolls back to target.
func (r *Runner) DownTo(ctx context.Context, target int) error {
	version, all, err := r.current(ctx)
	if err != nil {
		return err
	}

	for i := len(all) - 1; i >= 0; i-- {
		m := all[i]
		if m.Version > version {
			continue
		}
		if m.Version <= target {
			break
		}
		if m.DownSQL == "" {
			return fmt.Errorf("no down migration for version %d", m.Version)
		}
		if err := r.apply(ctx, m, false); err != nil {
			return err
		}
	}
	return nil
}
