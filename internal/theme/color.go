package theme

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

var ErrColorConversion = errors.New("color conversion failed")

// oklchSupport is the feature query guarding the perceptual declarations.
const oklchSupport = "@supports (color: oklch(0% 0 0))"

var oklchFunc = regexp.MustCompile(`oklch\([^)]*\)`)

// ParseColor understands the forms the compiler emits and the browser
// reports back: #hex, rgb()/rgba() and oklch().
func ParseColor(s string) (colorful.Color, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch {
	case s == "":
		return colorful.Color{}, fmt.Errorf("%w: empty colour", ErrColorConversion)
	case strings.HasPrefix(s, "#"):
		c, err := colorful.Hex(expandShortHex(s))
		if err != nil {
			return colorful.Color{}, fmt.Errorf("%w: %v", ErrColorConversion, err)
		}
		return c, nil
	case strings.HasPrefix(s, "rgb"):
		return parseRGB(s)
	case strings.HasPrefix(s, "oklch"):
		coord, err := parseOKLCH(s)
		if err != nil {
			return colorful.Color{}, err
		}
		return coord.Color(), nil
	}
	return colorful.Color{}, fmt.Errorf("%w: unsupported colour %q", ErrColorConversion, s)
}

// ToHex normalises any colour ParseColor accepts into #rrggbb.
func ToHex(s string) (string, error) {
	c, err := ParseColor(s)
	if err != nil {
		return "", err
	}
	return c.Clamped().Hex(), nil
}

// Downlevel rewrites every oklch() into an sRGB hex and keeps the original
// rules behind an oklch feature query, so engines that understand the
// perceptual syntax still get it and the rest fall back to hex.
func Downlevel(css string) (string, error) {
	var convErr error
	fallback := oklchFunc.ReplaceAllStringFunc(css, func(fn string) string {
		if convErr != nil {
			return fn
		}
		coord, err := parseOKLCH(fn)
		if err != nil {
			convErr = err
			return fn
		}
		return coord.Hex()
	})
	if convErr != nil {
		return "", convErr
	}
	if fallback == css {
		return css, nil
	}
	return fallback + "\n" + oklchSupport + " {\n" + css + "\n}\n", nil
}

func parseOKLCH(fn string) (Coordinate, error) {
	open := strings.IndexByte(fn, '(')
	end := strings.LastIndexByte(fn, ')')
	if open < 0 || end < open {
		return Coordinate{}, fmt.Errorf("%w: malformed %q", ErrColorConversion, fn)
	}
	body := fn[open+1 : end]
	if i := strings.IndexByte(body, '/'); i >= 0 {
		body = body[:i]
	}
	parts := strings.Fields(body)
	if len(parts) != 3 {
		return Coordinate{}, fmt.Errorf("%w: expected three components in %q", ErrColorConversion, fn)
	}

	l, err := parseComponent(parts[0], 1)
	if err != nil {
		return Coordinate{}, fmt.Errorf("%w: lightness in %q", ErrColorConversion, fn)
	}
	c, err := parseComponent(parts[1], 0.4)
	if err != nil {
		return Coordinate{}, fmt.Errorf("%w: chroma in %q", ErrColorConversion, fn)
	}
	h, err := strconv.ParseFloat(strings.TrimSuffix(parts[2], "deg"), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("%w: hue in %q", ErrColorConversion, fn)
	}
	if l < 0 || l > 1 || c < 0 {
		return Coordinate{}, fmt.Errorf("%w: out of range %q", ErrColorConversion, fn)
	}
	return Coordinate{L: l, C: c, H: h}, nil
}

// parseComponent reads a number or a percentage of full.
func parseComponent(s string, full float64) (float64, error) {
	if strings.HasSuffix(s, "%") {
		v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil {
			return 0, err
		}
		return v / 100 * full, nil
	}
	return strconv.ParseFloat(s, 64)
}

func parseRGB(s string) (colorful.Color, error) {
	open := strings.IndexByte(s, '(')
	end := strings.LastIndexByte(s, ')')
	if open < 0 || end < open {
		return colorful.Color{}, fmt.Errorf("%w: malformed %q", ErrColorConversion, s)
	}
	body := s[open+1 : end]
	if i := strings.IndexByte(body, '/'); i >= 0 {
		body = body[:i]
	}
	parts := strings.FieldsFunc(body, func(r rune) bool { return r == ',' || r == ' ' })
	if len(parts) < 3 {
		return colorful.Color{}, fmt.Errorf("%w: malformed %q", ErrColorConversion, s)
	}
	var ch [3]float64
	for i := 0; i < 3; i++ {
		v, err := parseComponent(parts[i], 255)
		if err != nil {
			return colorful.Color{}, fmt.Errorf("%w: channel in %q", ErrColorConversion, s)
		}
		ch[i] = v / 255
	}
	return colorful.Color{R: ch[0], G: ch[1], B: ch[2]}.Clamped(), nil
}

func expandShortHex(s string) string {
	if len(s) != 4 {
		return s
	}
	return string([]byte{'#', s[1], s[1], s[2], s[2], s[3], s[3]})
}
