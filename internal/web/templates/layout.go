package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/emiliopalmerini/huesite/internal/domain"
)

// Layout renders the document shell around body. The stylesheet fragments
// are not part of the markup; the renderer injects them.
func Layout(p Page, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		title := p.Tr.T("metadata.title")
		if p.Title != "" {
			title = title + "/" + p.Title
		}
		desc := p.Description
		if desc == "" {
			desc = p.Tr.T("metadata.description")
		}

		h.rawf(`<!DOCTYPE html><html lang="%s"><head>`, attr(p.Tr.Lang()))
		h.raw(`<meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<meta name="color-scheme" content="light dark">`)
		h.raw(`<title>`)
		h.text(title)
		h.raw(`</title>`)
		h.rawf(`<meta name="description" content="%s">`, attr(desc))
		h.rawf(`<meta name="theme-color" content="%s">`, attr(p.ThemeColor()))
		h.rawf(`<link rel="icon" sizes="any" href="%s">`, attr(string(iconURL("/favicon.png", p.Hue))))
		h.rawf(`<link rel="icon" type="image/svg+xml" href="%s">`, attr(string(iconURL("/icon.svg", p.Hue))))
		h.rawf(`<link rel="apple-touch-icon" href="%s">`, attr(string(iconURL("/apple-touch-icon.png", p.Hue))))
		h.raw(`<link rel="manifest" href="/manifest.webmanifest">`)
		h.raw(`<link rel="stylesheet" href="/static/site.css">`)
		h.raw(`<script defer src="/static/hue.js"></script>`)
		h.raw(`</head>`)

		h.rawf(`<body data-hue="%d"`, int(p.Hue))
		if p.Mode.Valid() {
			h.rawf(` data-mode="%s"`, attr(string(p.Mode)))
		}
		if p.Analytics {
			h.raw(` data-analytics="on"`)
		}
		h.raw(`>`)
		if h.err != nil {
			return h.err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		if err := HueNav(p).Render(ctx, w); err != nil {
			return err
		}
		h.raw(`</body></html>`)
		return h.err
	})
}

// HueNav is the action bar: preset hues, a free hue picker and the mode
// toggle. Each preset carries data-hue so its fragment is present before
// it is hovered or chosen.
func HueNav(p Page) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.rawf(`<nav id="hue-nav" class="hue-nav" aria-label="%s" hx-target="this" hx-swap="outerHTML">`, attr(p.Tr.T("hue.presets")))
		h.raw(`<ul role="radiogroup">`)
		for _, hue := range p.Presets {
			h.rawf(`<li data-hue="%d">`, int(hue))
			h.raw(`<form method="post" action="/api/hue" hx-post="/api/hue">`)
			h.rawf(`<input type="hidden" name="hue" value="%d">`, int(hue))
			h.rawf(`<button type="submit" role="radio" aria-checked="%t" aria-label="%s %d">`, hue == p.Hue, attr(p.Tr.T("hue.label")), int(hue))
			h.raw(`<span class="swatch" style="background: var(--color-accent-primary)"></span></button>`)
			h.raw(`</form></li>`)
		}
		h.raw(`</ul>`)

		h.raw(`<form class="hue-picker" method="post" action="/api/hue" hx-post="/api/hue">`)
		h.raw(`<label>`)
		h.text(p.Tr.T("hue.label"))
		h.rawf(` <input type="range" name="hue" min="%d" max="%d" value="%d"></label>`, domain.MinHue, domain.MaxHue, int(p.Hue))
		h.raw(`<button type="submit">`)
		h.text(p.Tr.T("hue.apply"))
		h.raw(`</button></form>`)

		h.raw(`<form class="mode-toggle" method="post" action="/api/mode" hx-post="/api/mode">`)
		h.rawf(`<fieldset><legend>%s</legend>`, attr(p.Tr.T("hue.mode")))
		for _, m := range domain.Modes() {
			h.rawf(`<button type="submit" name="mode" value="%s" aria-pressed="%t">`, attr(string(m)), p.Mode == m)
			h.text(p.Tr.T("hue.mode_" + string(m)))
			h.raw(`</button>`)
		}
		h.raw(`</fieldset></form>`)
		h.raw(`</nav>`)
		return h.err
	})
}
