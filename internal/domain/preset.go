package domain

const (
	DefaultPresetCount = 5
	DefaultPresetStep  = 30
)

// PresetHues returns count hues centred on h and spaced step degrees apart,
// ordered by offset from lowest to highest. Offsets wrap around the wheel.
// An even count is rounded up so that h stays in the centre.
func PresetHues(h Hue, count, step int) []Hue {
	if count < 1 {
		count = 1
	}
	if count%2 == 0 {
		count++
	}
	half := count / 2

	hues := make([]Hue, 0, count)
	for i := -half; i <= half; i++ {
		hues = append(hues, WrapHue(int(h)+i*step))
	}
	return hues
}
