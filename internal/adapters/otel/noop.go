package otel

import (
	"context"
	"time"

	"github.com/emiliopalmerini/huesite/internal/ports"
)

// NoOpExporter is a metrics exporter that does nothing.
type NoOpExporter struct{}

// NewNoOpExporter creates a new no-op exporter for graceful degradation.
func NewNoOpExporter() *NoOpExporter {
	return &NoOpExporter{}
}

func (e *NoOpExporter) RecordCompile(context.Context, int, bool, time.Duration) {}

func (e *NoOpExporter) RecordInjection(context.Context, int, string) {}

func (e *NoOpExporter) RecordHueChange(context.Context, int, int) {}

func (e *NoOpExporter) RecordFaviconRender(context.Context, int, time.Duration) {}

func (e *NoOpExporter) RecordPageView(context.Context, string, string, int) {}

func (e *NoOpExporter) Close(ctx context.Context) error {
	return nil
}

var _ ports.ThemeMetrics = (*NoOpExporter)(nil)
