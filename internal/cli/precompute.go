package cli

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/emiliopalmerini/huesite/internal/adapters/turso"
	"github.com/emiliopalmerini/huesite/internal/domain"
	"github.com/emiliopalmerini/huesite/internal/infrastructure/config"
	"github.com/emiliopalmerini/huesite/internal/theme"
)

var precomputeCmd = &cobra.Command{
	Use:   "precompute",
	Short: "Compile every hue into the stylesheet store",
	Long: `Compile the stylesheet fragment of all 360 hues and write them to the
libsql store, so servers started with HUESITE_STORE_URL skip compilation.

Examples:
  huesite precompute --store file:hues.db
  HUESITE_STORE_URL=libsql://site.turso.io huesite precompute`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		cfg, err := config.LoadStore(storeURL)
		if err != nil {
			return err
		}
		db, err := openStore(ctx, cfg.URL, cfg.AuthToken)
		if err != nil {
			return err
		}
		defer db.Close()
		return precompute(ctx, cmd.OutOrStdout(), turso.NewRepositories(db))
	},
}

var storeURL string

func init() {
	rootCmd.AddCommand(precomputeCmd)
	precomputeCmd.Flags().StringVar(&storeURL, "store", "", "libsql URL of the stylesheet store (defaults to HUESITE_STORE_URL)")
}

// precompute writes every changed fragment and records the run.
func precompute(ctx context.Context, w io.Writer, repos *turso.Repositories) error {
	run := &turso.CompileRun{ID: uuid.NewString(), StartedAt: time.Now()}
	if err := repos.Runs.Start(ctx, run); err != nil {
		return err
	}

	compiler := theme.NewCompiler()
	var written atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, hue := range domain.AllHues() {
		g.Go(func() error {
			css, err := compiler.Compile(hue)
			if err != nil {
				return err
			}
			stored, ok, err := repos.Stylesheets.Get(gctx, int(hue))
			if err != nil {
				return err
			}
			if ok && stored == css {
				return nil
			}
			if err := repos.Stylesheets.Put(gctx, int(hue), css); err != nil {
				return err
			}
			written.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("precompute: %w", err)
	}

	n := int(written.Load())
	if err := repos.Runs.Finish(ctx, run.ID, time.Now(), n); err != nil {
		return err
	}
	total, err := repos.Stylesheets.Count(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Run %s: wrote %d fragments, %d stored\n", run.ID, n, total)
	return nil
}
