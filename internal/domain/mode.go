package domain

import (
	"fmt"
	"strings"
)

// Mode selects the light or dark variant of a palette.
type Mode string

const (
	ModeLight Mode = "light"
	ModeDark  Mode = "dark"

	DefaultMode = ModeLight
)

// Modes returns the modes in the order the stylesheet declares them.
func Modes() []Mode {
	return []Mode{ModeLight, ModeDark}
}

func (m Mode) Valid() bool {
	return m == ModeLight || m == ModeDark
}

func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("unknown mode %q", s)
	}
	return m, nil
}
