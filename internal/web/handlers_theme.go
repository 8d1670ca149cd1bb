package web

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/a-h/templ"

	"github.com/emiliopalmerini/huesite/internal/dom"
	"github.com/emiliopalmerini/huesite/internal/domain"
	"github.com/emiliopalmerini/huesite/internal/shared/middleware"
	"github.com/emiliopalmerini/huesite/internal/theme"
	"github.com/emiliopalmerini/huesite/internal/web/templates"
)

// modeSystem clears the explicit override.
const modeSystem = "system"

func (s *Server) handleAPISetHue(w http.ResponseWriter, r *http.Request) {
	hue, err := domain.ParseHue(r.FormValue("hue"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	htmx := middleware.IsHTMX(r)
	var nav templ.Component
	if htmx {
		nav = templates.HueNav(s.page(r, hue, ""))
	}
	doc, changed, err := s.applyHue(r, hue, nav)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	setCookies(w, doc)

	if !htmx {
		s.redirectBack(w, r)
		return
	}

	// The nav is re-rendered around the new hue and the injected fragment is
	// appended to the page head out of band. hue.js applies the body
	// attribute on the trigger, reusing that fragment when it has landed.
	body, err := doc.InnerHTML("body")
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	styles, err := doc.InnerHTML("head")
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if changed {
		trigger, _ := json.Marshal(map[string]any{"hue-change": map[string]int{"hue": int(hue)}})
		w.Header().Set("HX-Trigger", string(trigger))
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, body)
	if styles != "" {
		_, _ = io.WriteString(w, `<div hx-swap-oob="beforeend:head">`+styles+`</div>`)
	}
}

func (s *Server) handleAPISetMode(w http.ResponseWriter, r *http.Request) {
	raw := strings.ToLower(strings.TrimSpace(r.FormValue("mode")))
	var mode domain.Mode
	if raw != modeSystem {
		m, err := domain.ParseMode(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		mode = m
	}

	doc, err := s.applyMode(r, mode)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	setCookies(w, doc)

	if !middleware.IsHTMX(r) {
		s.redirectBack(w, r)
		return
	}
	trigger, _ := json.Marshal(map[string]any{"mode-change": map[string]string{"mode": raw}})
	w.Header().Set("HX-Trigger", string(trigger))
	w.WriteHeader(http.StatusNoContent)
}

// replayDocument stands in for the page a theme request came from: its
// hue and forced mode on the body, around fragment when one is given.
func (s *Server) replayDocument(r *http.Request, fragment templ.Component) (*dom.Document, domain.Hue, error) {
	doc := dom.New()
	if fragment != nil {
		var buf bytes.Buffer
		if err := fragment.Render(r.Context(), &buf); err != nil {
			return nil, 0, err
		}
		parsed, err := dom.Parse(&buf)
		if err != nil {
			return nil, 0, err
		}
		doc = parsed
	}

	hue := s.originHue(r)
	mode, forced := theme.ModeFromRequest(r)
	doc.Batch(func() {
		doc.SetBodyAttr(domain.HueAttr, hue.String())
		if forced {
			doc.SetBodyAttr(domain.ModeAttr, string(mode))
		}
	})
	return doc, hue, nil
}

// originHue is the hue shown by the requesting page: the route hue when it
// came from /{hue}, the hue cookie otherwise.
func (s *Server) originHue(r *http.Request) domain.Hue {
	candidates := []string{r.Referer()}
	if hx, ok := middleware.GetHTMX(r); ok {
		candidates = append([]string{hx.CurrentURL}, candidates...)
	}
	for _, raw := range candidates {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || (u.Host != "" && u.Host != r.Host) {
			continue
		}
		if hue, ok := routeHue(strings.TrimPrefix(u.Path, "/")); ok {
			return hue
		}
		break
	}
	return theme.HueFromRequest(r, s.opts.DefaultHue)
}

// applyHue runs an explicit hue choice through a controller over the
// replayed page, reporting whether the active hue changed.
func (s *Server) applyHue(r *http.Request, hue domain.Hue, fragment templ.Component) (*dom.Document, bool, error) {
	ctx := r.Context()
	doc, from, err := s.replayDocument(r, fragment)
	if err != nil {
		return nil, false, err
	}

	ctrl := s.controller(ctx, doc, from)
	changed := false
	unsubscribe := ctrl.Subscribe(func(domain.Hue) { changed = true })
	defer unsubscribe()

	if err := ctrl.SetHue(ctx, hue); err != nil {
		return nil, false, err
	}
	if !changed {
		// The page already shows hue; the choice is still remembered.
		doc.SetCookie(theme.HueCookie(hue))
	}
	return doc, changed, nil
}

// applyMode forces mode on the replayed page, or clears the override when
// mode is empty.
func (s *Server) applyMode(r *http.Request, mode domain.Mode) (*dom.Document, error) {
	ctx := r.Context()
	doc, from, err := s.replayDocument(r, nil)
	if err != nil {
		return nil, err
	}
	ctrl := s.controller(ctx, doc, from)
	if mode == "" {
		ctrl.ClearMode()
		return doc, nil
	}
	return doc, ctrl.SetMode(mode)
}

func setCookies(w http.ResponseWriter, doc *dom.Document) {
	for _, c := range doc.Cookies() {
		http.SetCookie(w, c)
	}
}

// redirectBack returns form posts to the page they came from when it is
// on this site.
func (s *Server) redirectBack(w http.ResponseWriter, r *http.Request) {
	target := "/"
	if ref, err := url.Parse(r.Referer()); err == nil && ref.Host == r.Host && strings.HasPrefix(ref.Path, "/") && !strings.HasPrefix(ref.Path, "//") {
		target = ref.Path
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Server) handleAPIStylesheet(w http.ResponseWriter, r *http.Request) {
	hue, ok := routeHue(r.PathValue("hue"))
	if !ok {
		http.Error(w, domain.ErrInvalidHue.Error(), http.StatusBadRequest)
		return
	}
	css, err := s.styles.Stylesheet(r.Context(), hue)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	etag := stylesheetETag(css)
	h := w.Header()
	h.Set("ETag", etag)
	h.Set("Cache-Control", "public, max-age=31536000, immutable")
	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	h.Set("Content-Type", "text/css; charset=utf-8")
	_, _ = w.Write([]byte(css))
}

func stylesheetETag(css string) string {
	sum := sha256.Sum256([]byte(css))
	return `"` + hex.EncodeToString(sum[:8]) + `"`
}

func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == etag || candidate == "*" {
			return true
		}
	}
	return false
}

// PaletteResponse is the JSON body of /api/palette/{hue}.
type PaletteResponse struct {
	Hue   int                          `json:"hue"`
	Modes map[string]map[string]string `json:"modes"`
	CSS   map[string]map[string]string `json:"css"`
}

func (s *Server) handleAPIPalette(w http.ResponseWriter, r *http.Request) {
	hue, ok := routeHue(r.PathValue("hue"))
	if !ok {
		http.Error(w, domain.ErrInvalidHue.Error(), http.StatusBadRequest)
		return
	}

	resp := PaletteResponse{
		Hue:   int(hue),
		Modes: make(map[string]map[string]string),
		CSS:   make(map[string]map[string]string),
	}
	for _, mode := range domain.Modes() {
		hexes := make(map[string]string)
		values := make(map[string]string)
		for slot, coord := range theme.PaletteFor(hue, mode) {
			hexes[string(slot)] = coord.Hex()
			values[string(slot)] = coord.CSS()
		}
		resp.Modes[string(mode)] = hexes
		resp.CSS[string(mode)] = values
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", 86400))
	json.NewEncoder(w).Encode(resp)
}
