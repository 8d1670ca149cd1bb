package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/huesite/internal/domain"
	"github.com/emiliopalmerini/huesite/internal/theme"
)

var paletteCmd = &cobra.Command{
	Use:   "palette <hue>",
	Short: "Show the colour slots for a hue",
	Long: `Show every colour slot for a hue as terminal swatches.

Examples:
  huesite palette 233              # Light and dark
  huesite palette 120 --mode dark  # Dark only`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hue, err := domain.ParseHue(args[0])
		if err != nil {
			return err
		}
		modes := domain.Modes()
		if paletteMode != "" {
			mode, err := domain.ParseMode(paletteMode)
			if err != nil {
				return err
			}
			modes = []domain.Mode{mode}
		}
		return writePalette(cmd.OutOrStdout(), hue, modes)
	},
}

var paletteMode string

func init() {
	rootCmd.AddCommand(paletteCmd)
	paletteCmd.Flags().StringVarP(&paletteMode, "mode", "m", "", "Only show one mode: light or dark")
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).MarginTop(1)
	slotStyle  = lipgloss.NewStyle().Width(20)
	valueStyle = lipgloss.NewStyle().Width(24).Faint(true)
)

func writePalette(w io.Writer, hue domain.Hue, modes []domain.Mode) error {
	var b strings.Builder
	for _, mode := range modes {
		b.WriteString(titleStyle.Render(fmt.Sprintf("hue %d · %s", hue, mode)))
		b.WriteString("\n")
		for _, slot := range domain.Slots() {
			coord := theme.Derive(hue, mode, slot)
			hex := coord.Hex()
			swatch := lipgloss.NewStyle().Background(lipgloss.Color(hex)).Render("      ")
			b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
				swatch, " ",
				slotStyle.Render(string(slot)),
				hex, "  ",
				valueStyle.Render(coord.CSS()),
			))
			b.WriteString("\n")
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
