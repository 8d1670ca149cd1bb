package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/huesite/internal/domain"
	"github.com/emiliopalmerini/huesite/internal/theme"
)

var cssCmd = &cobra.Command{
	Use:   "css <hue>",
	Short: "Print the stylesheet fragment for a hue",
	Long: `Print the stylesheet fragment for a hue.

By default the fragment is printed as served: hex fallbacks, minified.

Examples:
  huesite css 233           # Served fragment
  huesite css 233 --source  # Readable oklch() source`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hue, err := domain.ParseHue(args[0])
		if err != nil {
			return err
		}
		return writeCSS(cmd.OutOrStdout(), hue, cssSource)
	},
}

var cssSource bool

func init() {
	rootCmd.AddCommand(cssCmd)
	cssCmd.Flags().BoolVar(&cssSource, "source", false, "Print the unprocessed oklch() source")
}

func writeCSS(w io.Writer, hue domain.Hue, source bool) error {
	if source {
		_, err := fmt.Fprintln(w, theme.Source(hue))
		return err
	}
	css, err := theme.NewCompiler().Compile(hue)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, css)
	return err
}
