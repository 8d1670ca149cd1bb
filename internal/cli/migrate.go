package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/huesite/internal/adapters/turso"
	"github.com/emiliopalmerini/huesite/internal/infrastructure/config"
	"github.com/emiliopalmerini/huesite/internal/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [version]",
	Short: "Run stylesheet store migrations",
	Long: `Run stylesheet store migrations.

Without arguments, runs all pending migrations (up).
With a version number lower than the current one, rolls back to it.

Examples:
  huesite migrate --store file:hues.db      # Run all pending migrations
  huesite migrate 0 --store file:hues.db    # Rollback all migrations`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().StringVar(&storeURL, "store", "", "libsql URL of the stylesheet store (defaults to HUESITE_STORE_URL)")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadStore(storeURL)
	if err != nil {
		return err
	}
	db, err := turso.NewDB(ctx, cfg.URL, cfg.AuthToken)
	if err != nil {
		return fmt.Errorf("failed to connect to store: %w", err)
	}
	defer db.Close()

	log := zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = cmd.ErrOrStderr()
	})).With().Timestamp().Logger()
	runner := migrate.NewRunner(db, log)

	current, _, err := runner.Version(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Current version: %d\n", current)

	if len(args) == 1 {
		target, err := strconv.Atoi(args[0])
		if err != nil || target < 0 {
			return fmt.Errorf("invalid version %q", args[0])
		}
		if target < current {
			if err := runner.DownTo(ctx, target); err != nil {
				return err
			}
			fmt.Fprintf(out, "Migrated to version %d\n", target)
			return nil
		}
	}

	applied, err := runner.Up(ctx)
	if err != nil {
		return err
	}
	if applied == 0 {
		fmt.Fprintln(out, "No migrations to run")
		return nil
	}
	version, _, err := runner.Version(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Migrated to version %d (%d migrations applied)\n", version, applied)
	return nil
}
