package ports

import "context"

// StylesheetStore persists precompiled stylesheet fragments keyed by hue.
type StylesheetStore interface {
	// Get returns the stored fragment and whether one exists.
	Get(ctx context.Context, hue int) (string, bool, error)
	Put(ctx context.Context, hue int, css string) error
	Count(ctx context.Context) (int, error)
}
