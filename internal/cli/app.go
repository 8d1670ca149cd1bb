package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	otelexporter "github.com/emiliopalmerini/huesite/internal/adapters/otel"
	"github.com/emiliopalmerini/huesite/internal/adapters/turso"
	"github.com/emiliopalmerini/huesite/internal/favicon"
	"github.com/emiliopalmerini/huesite/internal/i18n"
	"github.com/emiliopalmerini/huesite/internal/infrastructure/config"
	"github.com/emiliopalmerini/huesite/internal/logging"
	"github.com/emiliopalmerini/huesite/internal/migrate"
	"github.com/emiliopalmerini/huesite/internal/ports"
	"github.com/emiliopalmerini/huesite/internal/theme"
)

// AppContext holds all shared dependencies for the server.
type AppContext struct {
	Config      *config.Server
	Log         zerolog.Logger
	Metrics     ports.ThemeMetrics
	DB          *sql.DB
	Stylesheets *theme.Cache
	Catalog     *i18n.Catalog
	Raster      *favicon.Rasterizer
}

// NewAppContext loads configuration and builds every dependency. The
// stylesheet store is only opened when HUESITE_STORE_URL is set.
func NewAppContext(ctx context.Context) (*AppContext, error) {
	cfg, err := config.LoadServer()
	if err != nil {
		return nil, err
	}

	log, err := logging.New(logging.Options{
		Level:         cfg.Log.Level,
		HumanReadable: cfg.Log.Human,
		Service:       "huesite",
	})
	if err != nil {
		return nil, err
	}

	app := &AppContext{
		Config:  cfg,
		Log:     log,
		Metrics: newMetrics(ctx, cfg.OTel, log),
	}

	opts := []theme.CacheOption{theme.WithCacheMetrics(app.Metrics)}
	if cfg.StoreURL != "" {
		db, err := openStore(ctx, cfg.StoreURL, cfg.StoreAuthToken)
		if err != nil {
			_ = app.Close(ctx)
			return nil, err
		}
		app.DB = db
		opts = append(opts, theme.WithStore(turso.NewStylesheetRepository(db)))
	}
	app.Stylesheets = theme.NewCache(theme.NewCompiler(), opts...)

	if app.Catalog, err = i18n.Load(); err != nil {
		_ = app.Close(ctx)
		return nil, fmt.Errorf("failed to load catalogs: %w", err)
	}
	app.Raster = favicon.NewRasterizer(app.Metrics)
	return app, nil
}

func newMetrics(ctx context.Context, cfg config.OTel, log zerolog.Logger) ports.ThemeMetrics {
	if !cfg.Enabled {
		return otelexporter.NewNoOpExporter()
	}
	exp, err := otelexporter.NewExporter(ctx, otelexporter.Config{
		Endpoint: cfg.Endpoint,
		Enabled:  cfg.Enabled,
		Insecure: cfg.Insecure,
	})
	if err != nil {
		log.Warn().Err(err).Msg("metrics export disabled")
		return otelexporter.NewNoOpExporter()
	}
	return exp
}

// openStore connects to the stylesheet store and brings its schema up to
// date.
func openStore(ctx context.Context, url, token string) (*sql.DB, error) {
	db, err := turso.NewDB(ctx, url, token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to store: %w", err)
	}
	if err := migrate.RunAll(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate store: %w", err)
	}
	return db, nil
}

// Close releases all resources held by the AppContext.
func (a *AppContext) Close(ctx context.Context) error {
	var errs []error
	if a.Metrics != nil {
		errs = append(errs, a.Metrics.Close(ctx))
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}
