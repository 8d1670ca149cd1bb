package web

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"

	"github.com/emiliopalmerini/huesite/internal/domain"
	"github.com/emiliopalmerini/huesite/internal/favicon"
	"github.com/emiliopalmerini/huesite/internal/theme"
)

// Route is a page listed in the sitemap.
type Route struct {
	Name string
	Path string
}

// Routes is the manifest of crawlable pages. Hue routes are variants of
// home and are not listed.
var Routes = []Route{
	{Name: "HOME", Path: "/"},
	{Name: "COLORS", Path: "/colors"},
}

func (s *Server) handleRobots(w http.ResponseWriter, r *http.Request) {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	if s.opts.Production {
		b.WriteString("Allow: /\n")
	} else {
		b.WriteString("Disallow: /\n")
	}
	fmt.Fprintf(&b, "\nSitemap: %s/sitemap.xml\n", s.opts.SiteURL)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(b.String()))
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod"`
}

type sitemap struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	sm := sitemap{Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, route := range Routes {
		sm.URLs = append(sm.URLs, sitemapURL{
			Loc:     s.opts.SiteURL + route.Path,
			LastMod: s.started.Format("2006-01-02"),
		})
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write([]byte(xml.Header))
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(sm); err != nil {
		s.serverError(w, r, err)
	}
}

type manifestIcon struct {
	Src   string `json:"src"`
	Sizes string `json:"sizes"`
	Type  string `json:"type"`
}

type webManifest struct {
	Name            string         `json:"name"`
	ShortName       string         `json:"short_name"`
	Description     string         `json:"description"`
	Lang            string         `json:"lang"`
	StartURL        string         `json:"start_url"`
	Display         string         `json:"display"`
	ThemeColor      string         `json:"theme_color"`
	BackgroundColor string         `json:"background_color"`
	Icons           []manifestIcon `json:"icons"`
}

func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	tr := s.translator(r)
	hue := theme.HueFromRequest(r, s.opts.DefaultHue)
	mode := theme.PreferredMode(r)
	q := "?hue=" + hue.String()

	m := webManifest{
		Name:            tr.T("metadata.title"),
		ShortName:       tr.T("metadata.title"),
		Description:     tr.T("metadata.description"),
		Lang:            tr.Lang(),
		StartURL:        "/",
		Display:         "standalone",
		ThemeColor:      theme.Hex(hue, mode, domain.SlotPrimary),
		BackgroundColor: theme.Hex(hue, mode, domain.SlotNeutral),
		Icons: []manifestIcon{
			{Src: "/favicon.png" + q, Sizes: fmt.Sprintf("%dx%d", favicon.IconSize, favicon.IconSize), Type: "image/png"},
			{Src: "/apple-touch-icon.png" + q, Sizes: fmt.Sprintf("%dx%d", favicon.TouchIconSize, favicon.TouchIconSize), Type: "image/png"},
			{Src: "/icon.svg" + q, Sizes: "any", Type: "image/svg+xml"},
		},
	}

	w.Header().Set("Content-Type", "application/manifest+json")
	w.Header().Add("Vary", "Cookie")
	json.NewEncoder(w).Encode(m)
}
