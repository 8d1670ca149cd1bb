package otel

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/emiliopalmerini/huesite/internal/ports"
)

const (
	serviceName    = "huesite"
	serviceVersion = "1.0.0"
)

// Config holds OTEL exporter configuration.
type Config struct {
	Endpoint string
	Enabled  bool
	Insecure bool
}

// Exporter exports theming metrics to an OTEL Collector.
type Exporter struct {
	provider    *sdkmetric.MeterProvider
	compiles    metric.Int64Counter
	compileHist metric.Float64Histogram
	injections  metric.Int64Counter
	hueChanges  metric.Int64Counter
	faviconHist metric.Float64Histogram
	pageViews   metric.Int64Counter
}

// NewExporter creates a new OTEL metrics exporter pushing over gRPC.
func NewExporter(ctx context.Context, cfg Config) (*Exporter, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return nil, fmt.Errorf("OTEL exporter is disabled or endpoint not configured")
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)

	return newExporter(provider)
}

func newExporter(provider *sdkmetric.MeterProvider) (*Exporter, error) {
	meter := provider.Meter(serviceName)

	compiles, err := meter.Int64Counter(
		"huesite_stylesheet_lookups_total",
		metric.WithDescription("Stylesheet fragment lookups, by cache outcome"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating lookups counter: %w", err)
	}

	compileHist, err := meter.Float64Histogram(
		"huesite_stylesheet_compile_seconds",
		metric.WithDescription("Time spent compiling a stylesheet fragment"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating compile histogram: %w", err)
	}

	injections, err := meter.Int64Counter(
		"huesite_stylesheet_injections_total",
		metric.WithDescription("Stylesheet fragments injected into documents"),
		metric.WithUnit("{injection}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating injections counter: %w", err)
	}

	hueChanges, err := meter.Int64Counter(
		"huesite_hue_changes_total",
		metric.WithDescription("Active hue transitions"),
		metric.WithUnit("{change}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating hue changes counter: %w", err)
	}

	faviconHist, err := meter.Float64Histogram(
		"huesite_favicon_render_seconds",
		metric.WithDescription("Favicon rasterisation time"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating favicon histogram: %w", err)
	}

	pageViews, err := meter.Int64Counter(
		"huesite_page_views_total",
		metric.WithDescription("Rendered pages"),
		metric.WithUnit("{view}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating page views counter: %w", err)
	}

	return &Exporter{
		provider:    provider,
		compiles:    compiles,
		compileHist: compileHist,
		injections:  injections,
		hueChanges:  hueChanges,
		faviconHist: faviconHist,
		pageViews:   pageViews,
	}, nil
}

func (e *Exporter) RecordCompile(ctx context.Context, hue int, cached bool, d time.Duration) {
	e.compiles.Add(ctx, 1, metric.WithAttributes(attribute.Bool("cached", cached)))
	if !cached {
		e.compileHist.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.Int("hue", hue)))
	}
}

func (e *Exporter) RecordInjection(ctx context.Context, hue int, target string) {
	e.injections.Add(ctx, 1, metric.WithAttributes(
		attribute.Int("hue", hue),
		attribute.String("target", target),
	))
}

func (e *Exporter) RecordHueChange(ctx context.Context, from, to int) {
	e.hueChanges.Add(ctx, 1, metric.WithAttributes(
		attribute.Int("from", from),
		attribute.Int("to", to),
	))
}

func (e *Exporter) RecordFaviconRender(ctx context.Context, size int, d time.Duration) {
	e.faviconHist.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("size", strconv.Itoa(size))))
}

func (e *Exporter) RecordPageView(ctx context.Context, route, locale string, hue int) {
	e.pageViews.Add(ctx, 1, metric.WithAttributes(
		attribute.String("route", route),
		attribute.String("locale", locale),
		attribute.Int("hue", hue),
	))
}

// Close shuts down the exporter and flushes any pending metrics.
func (e *Exporter) Close(ctx context.Context) error {
	return e.provider.Shutdown(ctx)
}

var _ ports.ThemeMetrics = (*Exporter)(nil)
