package templates

import (
	"github.com/emiliopalmerini/huesite/internal/domain"
	"github.com/emiliopalmerini/huesite/internal/i18n"
	"github.com/emiliopalmerini/huesite/internal/theme"
)

// Page is the data every layout render needs.
type Page struct {
	Tr          i18n.Translator
	Title       string
	Path        string
	Hue         domain.Hue
	Mode        domain.Mode // forced mode, empty when following the preference
	Preferred   domain.Mode
	Presets     []domain.Hue
	Analytics   bool
	Description string
}

// ThemeColor is the server-side guess for theme-color before the favicon
// synchroniser runs.
func (p Page) ThemeColor() string {
	mode := p.Mode
	if mode == "" {
		mode = p.Preferred
	}
	if !mode.Valid() {
		mode = domain.DefaultMode
	}
	return theme.Hex(p.Hue, mode, domain.SlotPrimary)
}

// Swatch is one row on the colours page.
type Swatch struct {
	Slot  domain.Slot
	Light string
	Dark  string
}

func Swatches(hue domain.Hue) []Swatch {
	slots := domain.Slots()
	out := make([]Swatch, len(slots))
	for i, s := range slots {
		out[i] = Swatch{
			Slot:  s,
			Light: theme.Hex(hue, domain.ModeLight, s),
			Dark:  theme.Hex(hue, domain.ModeDark, s),
		}
	}
	return out
}
