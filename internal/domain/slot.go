package domain

import (
	"errors"
	"fmt"
)

// Slot is a semantic colour role. The set is closed.
type Slot string

const (
	SlotPrimary           Slot = "primary"
	SlotPrimaryContrast   Slot = "primary-contrast"
	SlotSecondary         Slot = "secondary"
	SlotSecondaryContrast Slot = "secondary-contrast"
	SlotNeutral           Slot = "neutral"
	SlotNeutralContrast   Slot = "neutral-contrast"
)

var ErrUnknownSlot = errors.New("unknown colour slot")

var slots = []Slot{
	SlotPrimary,
	SlotPrimaryContrast,
	SlotSecondary,
	SlotSecondaryContrast,
	SlotNeutral,
	SlotNeutralContrast,
}

// Slots returns every slot in declaration order.
func Slots() []Slot {
	out := make([]Slot, len(slots))
	copy(out, slots)
	return out
}

func (s Slot) Valid() bool {
	for _, known := range slots {
		if s == known {
			return true
		}
	}
	return false
}

func ParseSlot(s string) (Slot, error) {
	slot := Slot(s)
	if !slot.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownSlot, s)
	}
	return slot, nil
}

// CSSVar is the custom property carrying the slot's colour.
func (s Slot) CSSVar() string {
	return "--color-accent-" + string(s)
}
