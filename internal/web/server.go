package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/emiliopalmerini/huesite/internal/domain"
	"github.com/emiliopalmerini/huesite/internal/favicon"
	"github.com/emiliopalmerini/huesite/internal/i18n"
	"github.com/emiliopalmerini/huesite/internal/ports"
	"github.com/emiliopalmerini/huesite/internal/shared/middleware"
	"github.com/emiliopalmerini/huesite/internal/theme"
)

//go:embed static/*
var staticFiles embed.FS

// Options holds the site settings resolved from configuration.
type Options struct {
	Addr            string
	SiteURL         string
	Production      bool
	DefaultHue      domain.Hue
	PresetCount     int
	PresetStep      int
	ShutdownTimeout time.Duration
	// FaviconWait bounds how long a page render waits to inline the PNG
	// icons as data URLs. Zero serves pages at once with the icon links
	// pointing at the icon endpoints.
	FaviconWait time.Duration
}

func (o *Options) defaults() {
	if o.Addr == "" {
		o.Addr = ":8080"
	}
	if !o.DefaultHue.Valid() {
		o.DefaultHue = domain.DefaultHue
	}
	if o.PresetCount < 1 {
		o.PresetCount = domain.DefaultPresetCount
	}
	if o.PresetStep < 1 {
		o.PresetStep = domain.DefaultPresetStep
	}
	if o.ShutdownTimeout <= 0 {
		o.ShutdownTimeout = 5 * time.Second
	}
	if o.FaviconWait < 0 {
		o.FaviconWait = 0
	}
}

type Server struct {
	opts     Options
	router   *http.ServeMux
	handler  http.Handler
	log      zerolog.Logger
	catalog  *i18n.Catalog
	styles   theme.StylesheetSource
	injector *theme.Injector
	raster   *favicon.Rasterizer
	favicons *favicon.Synchronizer
	metrics  ports.ThemeMetrics
	started  time.Time
}

// NewServer wires the site. metrics may be nil.
func NewServer(
	opts Options,
	catalog *i18n.Catalog,
	styles theme.StylesheetSource,
	raster *favicon.Rasterizer,
	metrics ports.ThemeMetrics,
	log zerolog.Logger,
) *Server {
	opts.defaults()
	var syncOpts []favicon.SyncOption
	if opts.FaviconWait == 0 {
		syncOpts = append(syncOpts, favicon.WithLinkedRenditions())
	}
	s := &Server{
		opts:     opts,
		router:   http.NewServeMux(),
		log:      log,
		catalog:  catalog,
		styles:   styles,
		injector: theme.NewInjector(styles, metrics, "request"),
		raster:   raster,
		favicons: favicon.NewSynchronizer(raster, log, syncOpts...),
		metrics:  metrics,
		started:  time.Now().UTC(),
	}
	s.setupRoutes()
	s.handler = middleware.Chain(s.router,
		middleware.RequestID,
		middleware.Logger(log),
		middleware.Recover,
		middleware.HTMX,
		middleware.Locale(catalog),
	)
	return s
}

func (s *Server) setupRoutes() {
	// Static files
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(fmt.Sprintf("failed to create static filesystem: %v", err))
	}
	s.router.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// Health check
	s.router.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Pages
	s.router.HandleFunc("GET /{$}", s.handleHome)
	s.router.HandleFunc("GET /colors", s.handleColors)
	s.router.HandleFunc("GET /{hue}", s.handleHueRoute)
	s.router.HandleFunc("/", s.handleNotFound)

	// Icons
	s.router.HandleFunc("GET /icon.svg", s.handleIconSVG)
	s.router.HandleFunc("GET /favicon.png", s.handleIconPNG(favicon.IconSize))
	s.router.HandleFunc("GET /apple-touch-icon.png", s.handleIconPNG(favicon.TouchIconSize))

	// Metadata
	s.router.HandleFunc("GET /robots.txt", s.handleRobots)
	s.router.HandleFunc("GET /sitemap.xml", s.handleSitemap)
	s.router.HandleFunc("GET /manifest.webmanifest", s.handleManifest)

	// Theme API (forms and HTMX)
	s.router.HandleFunc("POST /api/hue", s.handleAPISetHue)
	s.router.HandleFunc("POST /api/mode", s.handleAPISetMode)
	s.router.HandleFunc("GET /api/hue/{hue}/style.css", s.handleAPIStylesheet)
	s.router.HandleFunc("GET /api/palette/{hue}", s.handleAPIPalette)
}

// Handler returns the router wrapped in the request middleware.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.opts.Addr,
		Handler:      s.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.log.Info().Str("addr", s.opts.Addr).Str("site", s.opts.SiteURL).Msg("starting server")

	// Handle graceful shutdown
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.log.Error().Err(err).Msg("server shutdown")
		}
	}()

	err := server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil // Graceful shutdown
	}
	return err
}
