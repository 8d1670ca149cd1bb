package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Hue is a position on the OKLCH hue wheel, in degrees.
type Hue int

const (
	MinHue Hue = 0
	MaxHue Hue = 359

	// HueCount is the number of distinct hues, and so of stylesheet variants.
	HueCount = int(MaxHue) + 1

	DefaultHue Hue = 233
)

var ErrInvalidHue = errors.New("invalid hue")

// Valid reports whether h lies in [MinHue, MaxHue].
func (h Hue) Valid() bool {
	return h >= MinHue && h <= MaxHue
}

func (h Hue) String() string {
	return strconv.Itoa(int(h))
}

// NewHue validates n. Out of range values are rejected, not wrapped.
func NewHue(n int) (Hue, error) {
	h := Hue(n)
	if !h.Valid() {
		return 0, fmt.Errorf("%w: %d is outside [%d, %d]", ErrInvalidHue, n, MinHue, MaxHue)
	}
	return h, nil
}

// ParseHue parses a decimal hue as found in cookies, routes and data-hue attributes.
func ParseHue(s string) (Hue, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrInvalidHue, s)
	}
	return NewHue(n)
}

// HueOrDefault parses s and falls back to def when s is empty or invalid.
func HueOrDefault(s string, def Hue) Hue {
	if s == "" {
		return def
	}
	h, err := ParseHue(s)
	if err != nil {
		return def
	}
	return h
}

// WrapHue maps any integer onto the hue wheel. Only used where hues are
// synthesised from offsets; user input goes through NewHue.
func WrapHue(n int) Hue {
	n %= HueCount
	if n < 0 {
		n += HueCount
	}
	return Hue(n)
}

// AllHues returns every valid hue in ascending order.
func AllHues() []Hue {
	hues := make([]Hue, HueCount)
	for i := range hues {
		hues[i] = Hue(i)
	}
	return hues
}
