package web

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emiliopalmerini/huesite/internal/favicon"
	"github.com/emiliopalmerini/huesite/internal/i18n"
	"github.com/emiliopalmerini/huesite/internal/theme"
)

type pageView struct {
	route, locale string
	hue           int
}

type hueChange struct{ from, to int }

type fakeMetrics struct {
	mu         sync.Mutex
	views      []pageView
	changes    []hueChange
	injections int
}

func (m *fakeMetrics) RecordCompile(context.Context, int, bool, time.Duration) {}

func (m *fakeMetrics) RecordInjection(context.Context, int, string) {
	m.mu.Lock()
	m.injections++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordHueChange(_ context.Context, from, to int) {
	m.mu.Lock()
	m.changes = append(m.changes, hueChange{from: from, to: to})
	m.mu.Unlock()
}

func (m *fakeMetrics) hueChanges() []hueChange {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]hueChange(nil), m.changes...)
}

func (m *fakeMetrics) RecordFaviconRender(context.Context, int, time.Duration) {}

func (m *fakeMetrics) RecordPageView(_ context.Context, route, locale string, hue int) {
	m.mu.Lock()
	m.views = append(m.views, pageView{route: route, locale: locale, hue: hue})
	m.mu.Unlock()
}

func (m *fakeMetrics) Close(context.Context) error { return nil }

func (m *fakeMetrics) pageViews() []pageView {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]pageView(nil), m.views...)
}

func newTestServer(t *testing.T, production bool) (*Server, *fakeMetrics) {
	t.Helper()
	return newTestServerWith(t, Options{
		SiteURL:     "https://example.test",
		Production:  production,
		FaviconWait: 10 * time.Second,
	})
}

func newTestServerWith(t *testing.T, opts Options) (*Server, *fakeMetrics) {
	t.Helper()
	catalog, err := i18n.Load()
	require.NoError(t, err)

	metrics := &fakeMetrics{}
	s := NewServer(opts,
		catalog,
		theme.NewCache(theme.NewCompiler()),
		favicon.NewRasterizer(metrics),
		metrics,
		zerolog.Nop(),
	)
	return s, metrics
}

func do(t *testing.T, s *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func get(t *testing.T, s *Server, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return do(t, s, req)
}

func formRequest(path string, form url.Values, htmx bool) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	return req
}

func postForm(t *testing.T, s *Server, path string, form url.Values, htmx bool) *httptest.ResponseRecorder {
	t.Helper()
	return do(t, s, formRequest(path, form, htmx))
}

func parse(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	return doc
}

func styleIDs(doc *goquery.Document) []string {
	var ids []string
	doc.Find("head style").Each(func(_ int, s *goquery.Selection) {
		id, _ := s.Attr("id")
		ids = append(ids, id)
	})
	return ids
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestHome_DefaultHueWithoutCookie(t *testing.T) {
	s, _ := newTestServer(t, false)
	rec := get(t, s, "/")
	require.Equal(t, http.StatusOK, rec.Code)

	doc := parse(t, rec)
	body, _ := doc.Find("body").Attr("data-hue")
	assert.Equal(t, "233", body)
	assert.Equal(t, 1, doc.Find(`style[id="hue-233"]`).Length())
	assert.ElementsMatch(t, []string{"hue-173", "hue-203", "hue-233", "hue-263", "hue-293"}, styleIDs(doc))
	assert.Contains(t, doc.Find(`style[id="hue-233"]`).Text(), "--color-accent-primary")

	assert.Nil(t, findCookie(rec, "hue"), "rendering must not rewrite an unchanged hue")
	assert.Equal(t, theme.ClientHintColorScheme, rec.Header().Get("Accept-CH"))
}

func TestHome_FaviconAndThemeColor(t *testing.T) {
	s, _ := newTestServer(t, false)
	doc := parse(t, get(t, s, "/"))

	color, _ := doc.Find(`meta[name="theme-color"]`).Attr("content")
	assert.Regexp(t, `^#[0-9a-f]{6}$`, color)

	icon, _ := doc.Find(favicon.IconSelector).Attr("href")
	touch, _ := doc.Find(favicon.TouchIconSelector).Attr("href")
	svg, _ := doc.Find(favicon.SVGIconSelector).Attr("href")
	assert.True(t, strings.HasPrefix(icon, "data:image/png;base64,"), icon)
	assert.True(t, strings.HasPrefix(touch, "data:image/png;base64,"), touch)
	assert.Equal(t, favicon.SVGDataURL(color), svg)
}

func TestHome_LinkedIcons(t *testing.T) {
	s, _ := newTestServerWith(t, Options{SiteURL: "https://example.test"})
	doc := parse(t, get(t, s, "/", &http.Cookie{Name: "hue", Value: "120"}))

	color, _ := doc.Find(`meta[name="theme-color"]`).Attr("content")
	assert.Equal(t, theme.Hex(120, "light", "primary"), color)

	icon, _ := doc.Find(favicon.IconSelector).Attr("href")
	touch, _ := doc.Find(favicon.TouchIconSelector).Attr("href")
	svg, _ := doc.Find(favicon.SVGIconSelector).Attr("href")
	assert.Equal(t, "/favicon.png?hue=120", icon)
	assert.Equal(t, "/apple-touch-icon.png?hue=120", touch)
	assert.Equal(t, favicon.SVGDataURL(color), svg)
}

func TestHome_HueFromCookie(t *testing.T) {
	s, _ := newTestServer(t, false)
	doc := parse(t, get(t, s, "/", &http.Cookie{Name: "hue", Value: "120"}))

	body, _ := doc.Find("body").Attr("data-hue")
	assert.Equal(t, "120", body)
	assert.Equal(t, 1, doc.Find(`style[id="hue-120"]`).Length())
	assert.Zero(t, doc.Find(`style[id="hue-233"]`).Length())
}

func TestHome_InvalidCookieFallsBack(t *testing.T) {
	s, _ := newTestServer(t, false)
	for _, v := range []string{"abc", "360", "-4"} {
		doc := parse(t, get(t, s, "/", &http.Cookie{Name: "hue", Value: v}))
		body, _ := doc.Find("body").Attr("data-hue")
		assert.Equal(t, "233", body, v)
	}
}

func TestHome_ForcedModeAndLocale(t *testing.T) {
	s, _ := newTestServer(t, false)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "mode", Value: "dark"})
	req.Header.Set("Accept-Language", "it-IT,it;q=0.9")
	doc := parse(t, do(t, s, req))

	mode, _ := doc.Find("body").Attr("data-mode")
	lang, _ := doc.Find("html").Attr("lang")
	assert.Equal(t, "dark", mode)
	assert.Equal(t, "it", lang)
	assert.Equal(t, "Ciao, sono Emilio", doc.Find("h1").Text())

	color, _ := doc.Find(`meta[name="theme-color"]`).Attr("content")
	assert.Equal(t, theme.Hex(233, "dark", "primary"), color)
}

func TestHueRoute(t *testing.T) {
	s, _ := newTestServer(t, false)

	rec := get(t, s, "/42")
	require.Equal(t, http.StatusOK, rec.Code)
	doc := parse(t, rec)
	body, _ := doc.Find("body").Attr("data-hue")
	assert.Equal(t, "42", body)
	assert.Equal(t, 1, doc.Find(`style[id="hue-42"]`).Length())

	for _, path := range []string{"/360", "/042", "/-1", "/blue"} {
		rec := get(t, s, path)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Equal(t, 1, parse(t, rec).Find("main.not-found").Length(), path)
	}
}

func TestNotFound(t *testing.T) {
	s, _ := newTestServer(t, false)
	rec := get(t, s, "/a/b")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 1, parse(t, rec).Find(`style[id="hue-233"]`).Length())
}

func TestColors(t *testing.T) {
	s, _ := newTestServer(t, false)
	rec := get(t, s, "/colors?hue=10")
	require.Equal(t, http.StatusOK, rec.Code)

	doc := parse(t, rec)
	assert.Equal(t, 6, doc.Find("tr[data-color]").Length())
	assert.Equal(t, 1, doc.Find(`style[id="hue-30"]`).Length(), "linked hues get their fragment")

	assert.Equal(t, http.StatusBadRequest, get(t, s, "/colors?hue=999").Code)
}

func TestAPISetHue(t *testing.T) {
	s, _ := newTestServer(t, false)

	rec := postForm(t, s, "/api/hue", url.Values{"hue": {"77"}}, false)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	c := findCookie(rec, "hue")
	require.NotNil(t, c)
	assert.Equal(t, "77", c.Value)
	assert.Equal(t, 2592000, c.MaxAge)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.False(t, c.HttpOnly)

	// The cookie drives the next render.
	doc := parse(t, get(t, s, "/", c))
	body, _ := doc.Find("body").Attr("data-hue")
	assert.Equal(t, "77", body)

	assert.Equal(t, http.StatusBadRequest, postForm(t, s, "/api/hue", url.Values{"hue": {"360"}}, false).Code)
	assert.Equal(t, http.StatusBadRequest, postForm(t, s, "/api/hue", url.Values{}, false).Code)
}

func TestAPISetHue_HTMX(t *testing.T) {
	s, metrics := newTestServer(t, false)
	rec := postForm(t, s, "/api/hue", url.Values{"hue": {"10"}}, true)
	require.Equal(t, http.StatusOK, rec.Code)

	var trigger map[string]map[string]int
	require.NoError(t, json.Unmarshal([]byte(rec.Header().Get("HX-Trigger")), &trigger))
	assert.Equal(t, 10, trigger["hue-change"]["hue"])

	doc := parse(t, rec)
	assert.Equal(t, 1, doc.Find(`#hue-nav li[data-hue="340"]`).Length())
	checked, _ := doc.Find(`li[data-hue="10"] button`).Attr("aria-checked")
	assert.Equal(t, "true", checked)

	oob, _ := doc.Find(`[hx-swap-oob]`).Attr("hx-swap-oob")
	assert.Equal(t, "beforeend:head", oob)
	assert.Equal(t, 1, doc.Find(`[hx-swap-oob] style[id="hue-10"]`).Length(), "fragment is injected before the hue is applied")

	c := findCookie(rec, "hue")
	require.NotNil(t, c)
	assert.Equal(t, "10", c.Value)
	assert.Equal(t, []hueChange{{from: 233, to: 10}}, metrics.hueChanges())
}

func TestAPISetHue_SameHueIsNoop(t *testing.T) {
	s, metrics := newTestServer(t, false)
	req := formRequest("/api/hue", url.Values{"hue": {"10"}}, true)
	req.AddCookie(&http.Cookie{Name: "hue", Value: "10"})
	rec := do(t, s, req)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Empty(t, rec.Header().Get("HX-Trigger"))
	doc := parse(t, rec)
	assert.Zero(t, doc.Find(`[hx-swap-oob]`).Length())
	assert.Equal(t, 1, doc.Find(`#hue-nav`).Length())
	assert.Empty(t, metrics.hueChanges())

	c := findCookie(rec, "hue")
	require.NotNil(t, c)
	assert.Equal(t, "10", c.Value)
}

func TestAPISetHue_FromHueRoute(t *testing.T) {
	s, metrics := newTestServer(t, false)

	// The page at /120 already shows 120, whatever the cookie says.
	req := formRequest("/api/hue", url.Values{"hue": {"120"}}, true)
	req.Header.Set("HX-Current-URL", "http://example.com/120")
	req.AddCookie(&http.Cookie{Name: "hue", Value: "10"})
	rec := do(t, s, req)
	assert.Empty(t, rec.Header().Get("HX-Trigger"))
	c := findCookie(rec, "hue")
	require.NotNil(t, c)
	assert.Equal(t, "120", c.Value)

	req = formRequest("/api/hue", url.Values{"hue": {"233"}}, false)
	req.Header.Set("Referer", "http://example.com/120")
	rec = do(t, s, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/120", rec.Header().Get("Location"))
	assert.Equal(t, []hueChange{{from: 120, to: 233}}, metrics.hueChanges())
}

func TestAPISetMode(t *testing.T) {
	s, _ := newTestServer(t, false)

	rec := postForm(t, s, "/api/mode", url.Values{"mode": {"dark"}}, false)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	c := findCookie(rec, "mode")
	require.NotNil(t, c)
	assert.Equal(t, "dark", c.Value)

	rec = postForm(t, s, "/api/mode", url.Values{"mode": {"system"}}, true)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	c = findCookie(rec, "mode")
	require.NotNil(t, c)
	assert.Negative(t, c.MaxAge)

	assert.Equal(t, http.StatusBadRequest, postForm(t, s, "/api/mode", url.Values{"mode": {"sepia"}}, false).Code)
}

func TestAPISetMode_UnchangedModeKeepsCookie(t *testing.T) {
	s, _ := newTestServer(t, false)
	req := formRequest("/api/mode", url.Values{"mode": {"dark"}}, true)
	req.AddCookie(&http.Cookie{Name: "mode", Value: "dark"})
	rec := do(t, s, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Nil(t, findCookie(rec, "mode"))
}

func TestAPIStylesheet(t *testing.T) {
	s, _ := newTestServer(t, false)

	rec := get(t, s, "/api/hue/233/style.css")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/css; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "--color-accent-primary")
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/api/hue/233/style.css", nil)
	req.Header.Set("If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, do(t, s, req).Code)

	other := get(t, s, "/api/hue/234/style.css")
	assert.NotEqual(t, etag, other.Header().Get("ETag"))

	assert.Equal(t, http.StatusBadRequest, get(t, s, "/api/hue/400/style.css").Code)
}

func TestAPIPalette(t *testing.T) {
	s, _ := newTestServer(t, false)
	rec := get(t, s, "/api/palette/233")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp PaletteResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 233, resp.Hue)
	for _, mode := range []string{"light", "dark"} {
		require.Len(t, resp.Modes[mode], 6, mode)
		for slot, hex := range resp.Modes[mode] {
			assert.Regexp(t, `^#[0-9a-f]{6}$`, hex, slot)
		}
	}
	assert.Equal(t, "oklch(55% 0.15 233)", resp.CSS["light"]["primary"])

	assert.Equal(t, http.StatusBadRequest, get(t, s, "/api/palette/x").Code)
}

func TestIcons(t *testing.T) {
	s, _ := newTestServer(t, false)

	rec := get(t, s, "/icon.svg?hue=10")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), theme.Hex(10, "light", "primary"))

	for path, size := range map[string]int{"/favicon.png?hue=10": 32, "/apple-touch-icon.png": 180} {
		rec := get(t, s, path)
		require.Equal(t, http.StatusOK, rec.Code, path)
		img, err := png.Decode(rec.Body)
		require.NoError(t, err, path)
		assert.Equal(t, size, img.Bounds().Dx(), path)
	}

	assert.Equal(t, http.StatusBadRequest, get(t, s, "/favicon.png?hue=abc").Code)
}

func TestIcons_ResolvedColor(t *testing.T) {
	s, _ := newTestServer(t, false)

	rec := get(t, s, "/icon.svg?color=0080B8&hue=10")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, favicon.SVG("#0080b8"), rec.Body.String(), "a resolved colour wins over the hue")
	assert.Contains(t, rec.Header().Get("Cache-Control"), "immutable")

	rec = get(t, s, "/apple-touch-icon.png?color=0080b8")
	require.Equal(t, http.StatusOK, rec.Code)
	img, err := png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, favicon.TouchIconSize, img.Bounds().Dx())

	for _, bad := range []string{"red", "#0080b8", "0080b", "0080b8ff"} {
		assert.Equal(t, http.StatusBadRequest, get(t, s, "/favicon.png?color="+url.QueryEscape(bad)).Code, bad)
	}
}

func TestRobots(t *testing.T) {
	dev, _ := newTestServer(t, false)
	body := get(t, dev, "/robots.txt").Body.String()
	assert.Contains(t, body, "Disallow: /")
	assert.Contains(t, body, "Sitemap: https://example.test/sitemap.xml")

	prod, _ := newTestServer(t, true)
	body = get(t, prod, "/robots.txt").Body.String()
	assert.Contains(t, body, "Allow: /")
	assert.NotContains(t, body, "Disallow")
}

func TestSitemapAndManifest(t *testing.T) {
	s, _ := newTestServer(t, false)

	rec := get(t, s, "/sitemap.xml")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<loc>https://example.test/colors</loc>")

	rec = get(t, s, "/manifest.webmanifest", &http.Cookie{Name: "hue", Value: "10"})
	require.Equal(t, http.StatusOK, rec.Code)
	var m webManifest
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&m))
	assert.Len(t, m.Icons, 3)
	assert.Equal(t, theme.Hex(10, "light", "primary"), m.ThemeColor)
}

func TestHealthAndStatic(t *testing.T) {
	s, _ := newTestServer(t, false)
	assert.Equal(t, "ok", get(t, s, "/health").Body.String())

	rec := get(t, s, "/static/hue.js")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "MutationObserver")
}

func TestPageViews(t *testing.T) {
	s, metrics := newTestServer(t, false)

	get(t, s, "/")
	get(t, s, "/42")
	get(t, s, "/", &http.Cookie{Name: "opt_out", Value: "1"})

	views := metrics.pageViews()
	require.Len(t, views, 2)
	assert.Equal(t, pageView{route: "/", locale: "en", hue: 233}, views[0])
	assert.Equal(t, pageView{route: "/{hue}", locale: "en", hue: 42}, views[1])
}
