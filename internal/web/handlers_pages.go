package web

import (
	"net/http"

	"github.com/emiliopalmerini/huesite/internal/domain"
	"github.com/emiliopalmerini/huesite/internal/theme"
	"github.com/emiliopalmerini/huesite/internal/web/templates"
)

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	p := s.page(r, theme.HueFromRequest(r, s.opts.DefaultHue), "")
	s.render(w, r, http.StatusOK, "/", p, templates.Home(p))
}

// handleHueRoute serves the home page in the hue named by the path. Only
// the canonical spelling of 0..359 exists.
func (s *Server) handleHueRoute(w http.ResponseWriter, r *http.Request) {
	hue, ok := routeHue(r.PathValue("hue"))
	if !ok {
		s.handleNotFound(w, r)
		return
	}
	p := s.page(r, hue, hue.String())
	s.render(w, r, http.StatusOK, "/{hue}", p, templates.Home(p))
}

func (s *Server) handleColors(w http.ResponseWriter, r *http.Request) {
	hue := theme.HueFromRequest(r, s.opts.DefaultHue)
	if raw := r.URL.Query().Get("hue"); raw != "" {
		h, ok := routeHue(raw)
		if !ok {
			http.Error(w, domain.ErrInvalidHue.Error(), http.StatusBadRequest)
			return
		}
		hue = h
	}
	p := s.page(r, hue, "")
	p.Title = p.Tr.T("colors.headline")
	s.render(w, r, http.StatusOK, "/colors", p, templates.Colors(p))
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.NotFound(w, r)
		return
	}
	p := s.page(r, theme.HueFromRequest(r, s.opts.DefaultHue), "404")
	s.render(w, r, http.StatusNotFound, "not-found", p, templates.NotFound(p))
}

func routeHue(raw string) (domain.Hue, bool) {
	hue, err := domain.ParseHue(raw)
	if err != nil || hue.String() != raw {
		return 0, false
	}
	return hue, true
}
