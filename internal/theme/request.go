package theme

import (
	"net/http"

	"github.com/emiliopalmerini/huesite/internal/domain"
)

// ClientHintColorScheme is the client hint carrying prefers-color-scheme.
const ClientHintColorScheme = "Sec-CH-Prefers-Color-Scheme"

// HueCookie is readable by the browser script, so it is not HttpOnly.
func HueCookie(hue domain.Hue) *http.Cookie {
	return preferenceCookie(domain.HueCookie, hue.String())
}

func ModeCookie(mode domain.Mode) *http.Cookie {
	return preferenceCookie(domain.ModeCookie, string(mode))
}

func preferenceCookie(name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(domain.PreferenceMaxAge.Seconds()),
		SameSite: http.SameSiteLaxMode,
	}
}

// HueFromRequest reads the hue cookie, falling back to def when it is
// missing or invalid.
func HueFromRequest(r *http.Request, def domain.Hue) domain.Hue {
	c, err := r.Cookie(domain.HueCookie)
	if err != nil {
		return def
	}
	return domain.HueOrDefault(c.Value, def)
}

// ModeFromRequest returns the explicit mode override, if any.
func ModeFromRequest(r *http.Request) (domain.Mode, bool) {
	c, err := r.Cookie(domain.ModeCookie)
	if err != nil {
		return "", false
	}
	mode, err := domain.ParseMode(c.Value)
	if err != nil {
		return "", false
	}
	return mode, true
}

// PreferredMode is the mode the page will most likely render in: the
// explicit override, then the colour-scheme client hint, then the default.
func PreferredMode(r *http.Request) domain.Mode {
	if mode, ok := ModeFromRequest(r); ok {
		return mode
	}
	if mode, err := domain.ParseMode(r.Header.Get(ClientHintColorScheme)); err == nil {
		return mode
	}
	return domain.DefaultMode
}
