package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "huesite",
	Short: "Personal site with a hue-driven theme",
	Long: `huesite serves a personal site whose whole palette is derived from a single
hue. Any of the 360 hues can be chosen at runtime; the matching stylesheet
fragment is compiled, cached and injected on demand.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
