package web

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/rs/zerolog"

	"github.com/emiliopalmerini/huesite/internal/dom"
	"github.com/emiliopalmerini/huesite/internal/domain"
	"github.com/emiliopalmerini/huesite/internal/i18n"
	"github.com/emiliopalmerini/huesite/internal/shared/middleware"
	"github.com/emiliopalmerini/huesite/internal/theme"
	"github.com/emiliopalmerini/huesite/internal/web/templates"
)

// themedDocument resolves accent-color against the mode the client most
// likely renders in.
type themedDocument struct {
	*dom.Document
	preferred domain.Mode
}

func (d themedDocument) ComputedAccent() string {
	return theme.ComputedAccent(d.Document, d.preferred)
}

func (s *Server) translator(r *http.Request) i18n.Translator {
	if tr, ok := middleware.GetTranslator(r.Context()); ok {
		return tr
	}
	return s.catalog.Translator(i18n.Fallback)
}

func (s *Server) page(r *http.Request, hue domain.Hue, title string) templates.Page {
	mode, _ := theme.ModeFromRequest(r)
	return templates.Page{
		Tr:        s.translator(r),
		Title:     title,
		Path:      r.URL.Path,
		Hue:       hue,
		Mode:      mode,
		Preferred: theme.PreferredMode(r),
		Presets:   domain.PresetHues(hue, s.opts.PresetCount, s.opts.PresetStep),
		Analytics: !optedOut(r),
	}
}

func optedOut(r *http.Request) bool {
	_, err := r.Cookie(domain.OptOutCookie)
	return err == nil
}

// render builds the page markup, lets a controller inject the fragments
// for every hue the page references, syncs theme-color and icons, and
// writes the result. PNG icons are inlined only when FaviconWait allows.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, route string, p templates.Page, body templ.Component) {
	ctx := r.Context()
	log := zerolog.Ctx(ctx)

	var buf bytes.Buffer
	if err := templates.Layout(p, body).Render(ctx, &buf); err != nil {
		s.serverError(w, r, err)
		return
	}
	doc, err := dom.Parse(&buf)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	ctrl := s.controller(ctx, doc, p.Hue)
	if err := ctrl.Start(ctx); err != nil {
		s.serverError(w, r, err)
		return
	}
	defer ctrl.Stop()
	log.Debug().Strs("styles", doc.StyleIDs()).Int("hue", int(p.Hue)).Msg("hue fragments injected")

	pending := s.favicons.Sync(ctx, themedDocument{Document: doc, preferred: p.Preferred})
	if s.opts.FaviconWait > 0 {
		waitCtx, cancel := context.WithTimeout(ctx, s.opts.FaviconWait)
		if err := pending.Wait(waitCtx); err != nil {
			log.Debug().Err(err).Msg("serving page before favicon renditions")
		}
		cancel()
	}

	buf.Reset()
	if err := doc.Render(&buf); err != nil {
		s.serverError(w, r, err)
		return
	}

	setCookies(w, doc)
	h := w.Header()
	h.Set("Content-Type", "text/html; charset=utf-8")
	h.Set("Accept-CH", theme.ClientHintColorScheme)
	h.Add("Vary", strings.Join([]string{"Cookie", theme.ClientHintColorScheme}, ", "))
	h.Set("Cache-Control", "private, no-cache")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())

	if p.Analytics && s.metrics != nil {
		s.metrics.RecordPageView(ctx, route, p.Tr.Lang(), int(p.Hue))
	}
}

// controller drives the hue state of one document for the current request.
func (s *Server) controller(ctx context.Context, doc *dom.Document, hue domain.Hue) *theme.Controller {
	return theme.NewController(doc, s.injector, doc, hue,
		theme.WithLogger(*zerolog.Ctx(ctx)),
		theme.WithControllerMetrics(s.metrics),
	)
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
