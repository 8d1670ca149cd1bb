package theme

import (
	"fmt"

	"github.com/emiliopalmerini/huesite/internal/domain"
)

// AttrReader reads attributes from a document body.
type AttrReader interface {
	BodyAttr(name string) (string, bool)
}

// ComputedAccent resolves accent-color the way the cascade does for the
// body: the body hue and the forced mode, else the preferred mode. It
// returns "" when the body carries no valid hue.
func ComputedAccent(doc AttrReader, preferred domain.Mode) string {
	raw, ok := doc.BodyAttr(domain.HueAttr)
	if !ok {
		return ""
	}
	hue, err := domain.ParseHue(raw)
	if err != nil {
		return ""
	}

	mode := preferred
	if forced, ok := doc.BodyAttr(domain.ModeAttr); ok {
		if m, err := domain.ParseMode(forced); err == nil {
			mode = m
		}
	}
	if !mode.Valid() {
		mode = domain.DefaultMode
	}

	r, g, b := Derive(hue, mode, domain.SlotPrimary).Color().RGB255()
	return fmt.Sprintf("rgb(%d, %d, %d)", r, g, b)
}
