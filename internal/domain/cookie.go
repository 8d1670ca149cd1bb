package domain

import "time"

// Cookie names shared by the server renderer and the browser script.
const (
	HueCookie    = "hue"
	ModeCookie   = "mode"
	LocaleCookie = "lang"
	OptOutCookie = "opt_out"
)

// PreferenceMaxAge is how long hue and mode choices survive in the browser.
const PreferenceMaxAge = 30 * 24 * time.Hour

// Attribute names on themed elements.
const (
	HueAttr  = "data-hue"
	ModeAttr = "data-mode"
)
