package theme

import (
	"fmt"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"

	"github.com/emiliopalmerini/huesite/internal/domain"
)

const cssMediaType = "text/css"

// Compiler turns a hue into a minified stylesheet fragment declaring every
// slot for both modes. It is safe for concurrent use.
type Compiler struct {
	minifier *minify.M
}

func NewCompiler() *Compiler {
	m := minify.New()
	m.AddFunc(cssMediaType, css.Minify)
	return &Compiler{minifier: m}
}

// Compile returns the stylesheet fragment for hue. Conversion failures are
// returned rather than emitting unconverted colours.
func (c *Compiler) Compile(hue domain.Hue) (string, error) {
	if !hue.Valid() {
		return "", fmt.Errorf("compile: %w: %d", domain.ErrInvalidHue, hue)
	}

	src := Source(hue)
	converted, err := Downlevel(src)
	if err != nil {
		return "", fmt.Errorf("compile hue %d: %w", hue, err)
	}
	out, err := c.minifier.String(cssMediaType, converted)
	if err != nil {
		return "", fmt.Errorf("minify hue %d: %w", hue, err)
	}
	return out, nil
}

// Source is the unprocessed stylesheet for hue, with oklch() colours.
func Source(hue domain.Hue) string {
	light := declarations(hue, domain.ModeLight)
	dark := declarations(hue, domain.ModeDark)
	scope := hueSelector(hue)

	var b strings.Builder
	fmt.Fprintf(&b, "%s { %s }\n", scope, light)
	fmt.Fprintf(&b, "@media (prefers-color-scheme: dark) {\n  %s { %s }\n}\n", scope, dark)
	fmt.Fprintf(&b, "%s { %s }\n", modeSelector(domain.ModeLight, scope), light)
	fmt.Fprintf(&b, "%s { %s }\n", modeSelector(domain.ModeDark, scope), dark)
	return b.String()
}

func declarations(hue domain.Hue, mode domain.Mode) string {
	var b strings.Builder
	for _, slot := range domain.Slots() {
		b.WriteString(slot.CSSVar())
		b.WriteString(": ")
		b.WriteString(Derive(hue, mode, slot).CSS())
		b.WriteString("; ")
	}
	b.WriteString("accent-color: var(")
	b.WriteString(domain.SlotPrimary.CSSVar())
	b.WriteString(");")
	return b.String()
}

func hueSelector(hue domain.Hue) string {
	return fmt.Sprintf(`[%s="%d"]`, domain.HueAttr, hue)
}

// modeSelector matches a body forced into mode, both when the body itself
// carries the hue and when a descendant does.
func modeSelector(mode domain.Mode, scope string) string {
	body := fmt.Sprintf(`body[%s="%s"]`, domain.ModeAttr, mode)
	return body + scope + ",\n" + body + " " + scope
}
