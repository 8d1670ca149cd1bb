package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/huesite/internal/domain"
	"github.com/emiliopalmerini/huesite/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the site",
	Long: `Start the web server.

Configuration is read from HUESITE_* environment variables.

Examples:
  huesite serve              # Listen on HUESITE_ADDR (default :8080)
  huesite serve --port 3000  # Listen on port 3000`,
	RunE: runServe,
}

var (
	servePort int
	serveWarm bool
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "Port to listen on (overrides HUESITE_ADDR)")
	serveCmd.Flags().BoolVar(&serveWarm, "warm", true, "Compile every hue at startup")
}

func runServe(cmd *cobra.Command, args []string) error {
	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := NewAppContext(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(context.Background()); err != nil {
			app.Log.Error().Err(err).Msg("close")
		}
	}()

	cfg := app.Config
	if cmd.Flags().Changed("port") {
		cfg.Addr = fmt.Sprintf(":%d", servePort)
	}

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		app.Log.Info().Msg("shutting down")
		cancel()
	}()

	if serveWarm {
		go func() {
			if err := app.Stylesheets.Warm(ctx); err != nil {
				app.Log.Error().Err(err).Msg("warm stylesheet cache")
				return
			}
			app.Log.Info().Int("hues", app.Stylesheets.Len()).Msg("stylesheet cache warm")
		}()
	}

	server := web.NewServer(web.Options{
		Addr:            cfg.Addr,
		SiteURL:         cfg.SiteURL,
		Production:      cfg.Production(),
		DefaultHue:      domain.Hue(cfg.Theme.DefaultHue),
		PresetCount:     cfg.Theme.PresetCount,
		PresetStep:      cfg.Theme.PresetStep,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, app.Catalog, app.Stylesheets, app.Raster, app.Metrics, app.Log)
	return server.Start(ctx)
}
