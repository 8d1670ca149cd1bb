package web

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/emiliopalmerini/huesite/internal/domain"
	"github.com/emiliopalmerini/huesite/internal/favicon"
	"github.com/emiliopalmerini/huesite/internal/theme"
)

var iconColorParam = regexp.MustCompile(`^[0-9a-fA-F]{6}$`)

// iconColor picks the accent for an icon request: ?color= as resolved by
// the browser, then ?hue=, then the hue cookie, in the client's preferred
// mode.
func (s *Server) iconColor(w http.ResponseWriter, r *http.Request) (string, bool) {
	if raw := r.URL.Query().Get("color"); raw != "" {
		if !iconColorParam.MatchString(raw) {
			http.Error(w, "color must be six hex digits", http.StatusBadRequest)
			return "", false
		}
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		return "#" + strings.ToLower(raw), true
	}

	hue := theme.HueFromRequest(r, s.opts.DefaultHue)
	if raw := r.URL.Query().Get("hue"); raw != "" {
		h, ok := routeHue(raw)
		if !ok {
			http.Error(w, domain.ErrInvalidHue.Error(), http.StatusBadRequest)
			return "", false
		}
		hue = h
		w.Header().Set("Cache-Control", "public, max-age=86400")
	} else {
		w.Header().Set("Cache-Control", "private, no-cache")
	}
	w.Header().Add("Vary", "Cookie, "+theme.ClientHintColorScheme)
	return theme.Hex(hue, theme.PreferredMode(r), domain.SlotPrimary), true
}

func (s *Server) handleIconSVG(w http.ResponseWriter, r *http.Request) {
	color, ok := s.iconColor(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write([]byte(favicon.SVG(color)))
}

func (s *Server) handleIconPNG(size int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		color, ok := s.iconColor(w, r)
		if !ok {
			return
		}
		img, err := s.raster.PNG(r.Context(), color, size)
		if err != nil {
			s.serverError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(img)
	}
}
