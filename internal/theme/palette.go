// Package theme derives hue-based colour palettes, compiles them into
// stylesheet fragments and keeps a document's active hue consistent.
package theme

import (
	"fmt"
	"math"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/emiliopalmerini/huesite/internal/domain"
)

// Coordinate is a colour in OKLCH. L is in [0, 1], H in degrees.
type Coordinate struct {
	L float64
	C float64
	H float64
}

// CSS renders the coordinate as a CSS Color 4 oklch() function.
func (c Coordinate) CSS() string {
	return "oklch(" + formatFloat(c.L*100) + "% " + formatFloat(c.C) + " " + formatFloat(c.H) + ")"
}

// Color converts to sRGB, clipped into gamut.
func (c Coordinate) Color() colorful.Color {
	return colorful.OkLch(c.L, c.C, c.H).Clamped()
}

func (c Coordinate) Hex() string {
	return c.Color().Hex()
}

type lightnessChroma struct {
	L float64
	C float64
}

// Lightness and chroma per mode and slot. Only the hue varies per request.
var oklch = map[domain.Mode]map[domain.Slot]lightnessChroma{
	domain.ModeLight: {
		domain.SlotPrimary:           {L: 0.55, C: 0.15},
		domain.SlotPrimaryContrast:   {L: 0.98, C: 0.02},
		domain.SlotSecondary:         {L: 0.92, C: 0.05},
		domain.SlotSecondaryContrast: {L: 0.35, C: 0.08},
		domain.SlotNeutral:           {L: 0.99, C: 0.01},
		domain.SlotNeutralContrast:   {L: 0.2, C: 0.03},
	},
	domain.ModeDark: {
		domain.SlotPrimary:           {L: 0.75, C: 0.14},
		domain.SlotPrimaryContrast:   {L: 0.18, C: 0.03},
		domain.SlotSecondary:         {L: 0.3, C: 0.06},
		domain.SlotSecondaryContrast: {L: 0.9, C: 0.04},
		domain.SlotNeutral:           {L: 0.15, C: 0.02},
		domain.SlotNeutralContrast:   {L: 0.95, C: 0.01},
	},
}

// Lookup returns the coordinate for a slot, or an error for untrusted slot
// and mode names.
func Lookup(hue domain.Hue, mode domain.Mode, slot domain.Slot) (Coordinate, error) {
	if !hue.Valid() {
		return Coordinate{}, fmt.Errorf("%w: %d", domain.ErrInvalidHue, hue)
	}
	table, ok := oklch[mode]
	if !ok {
		return Coordinate{}, fmt.Errorf("unknown mode %q", mode)
	}
	lc, ok := table[slot]
	if !ok {
		return Coordinate{}, fmt.Errorf("%w: %q", domain.ErrUnknownSlot, slot)
	}
	return Coordinate{L: lc.L, C: lc.C, H: float64(hue)}, nil
}

// Derive is Lookup for callers holding known slots. It panics on an unknown
// slot or mode, which can only be a programming error.
func Derive(hue domain.Hue, mode domain.Mode, slot domain.Slot) Coordinate {
	c, err := Lookup(hue, mode, slot)
	if err != nil {
		panic(fmt.Sprintf("theme: derive: %v", err))
	}
	return c
}

// Palette maps every slot to its colour for one hue and mode.
type Palette map[domain.Slot]Coordinate

func PaletteFor(hue domain.Hue, mode domain.Mode) Palette {
	p := make(Palette, len(oklch[mode]))
	for _, slot := range domain.Slots() {
		p[slot] = Derive(hue, mode, slot)
	}
	return p
}

// Hex is the sRGB hex for a slot, as used for the theme-color meta tag.
func Hex(hue domain.Hue, mode domain.Mode, slot domain.Slot) string {
	return Derive(hue, mode, slot).Hex()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(math.Round(f*1e4)/1e4, 'f', -1, 64)
}
