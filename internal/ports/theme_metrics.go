package ports

import (
	"context"
	"time"
)

// ThemeMetrics records theming and page-view activity to an external
// observability system.
type ThemeMetrics interface {
	// RecordCompile records a stylesheet lookup; cached is false when the
	// fragment had to be compiled.
	RecordCompile(ctx context.Context, hue int, cached bool, d time.Duration)
	// RecordInjection records a fragment materialised in a document.
	RecordInjection(ctx context.Context, hue int, target string)
	// RecordHueChange records an active hue transition.
	RecordHueChange(ctx context.Context, from, to int)
	// RecordFaviconRender records a favicon rasterisation.
	RecordFaviconRender(ctx context.Context, size int, d time.Duration)
	// RecordPageView records a rendered page.
	RecordPageView(ctx context.Context, route, locale string, hue int)
	// Close shuts down the exporter and flushes any pending metrics.
	Close(ctx context.Context) error
}
