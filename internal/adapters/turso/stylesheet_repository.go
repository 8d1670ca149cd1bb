package turso

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/emiliopalmerini/huesite/internal/ports"
)

type StylesheetRepository struct {
	db *sql.DB
}

func NewStylesheetRepository(db *sql.DB) *StylesheetRepository {
	return &StylesheetRepository{db: db}
}

const readRetries = 2

func (r *StylesheetRepository) Get(ctx context.Context, hue int) (string, bool, error) {
	css, err := withRetry(ctx, readRetries, func() (string, error) {
		var css string
		err := r.db.QueryRowContext(ctx, `SELECT css FROM stylesheets WHERE hue = ?`, hue).Scan(&css)
		return css, err
	})
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get stylesheet %d: %w", hue, err)
	}
	return css, true, nil
}

func (r *StylesheetRepository) Put(ctx context.Context, hue int, css string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO stylesheets (hue, css, checksum, compiled_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(hue) DO UPDATE SET
			css = excluded.css,
			checksum = excluded.checksum,
			compiled_at = excluded.compiled_at
	`, hue, css, Checksum(css), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to put stylesheet %d: %w", hue, err)
	}
	return nil
}

func (r *StylesheetRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM stylesheets`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count stylesheets: %w", err)
	}
	return n, nil
}

// ChecksumFor returns the stored checksum for hue.
func (r *StylesheetRepository) ChecksumFor(ctx context.Context, hue int) (string, bool, error) {
	var sum string
	err := r.db.QueryRowContext(ctx, `SELECT checksum FROM stylesheets WHERE hue = ?`, hue).Scan(&sum)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get checksum %d: %w", hue, err)
	}
	return sum, true, nil
}

// Checksum is the hex SHA-256 of a stylesheet fragment.
func Checksum(css string) string {
	sum := sha256.Sum256([]byte(css))
	return hex.EncodeToString(sum[:])
}

var _ ports.StylesheetStore = (*StylesheetRepository)(nil)
