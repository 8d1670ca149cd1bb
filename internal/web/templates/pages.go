package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/emiliopalmerini/huesite/internal/domain"
)

const (
	ResumeURL = "https://github.com/emiliopalmerini"
	EmailURL  = "mailto:hello@emilio.dev"
)

func Home(p Page) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<main class="home"><h1>`)
		h.text(p.Tr.T("home.headline"))
		h.raw(`</h1><p>`)
		h.text(p.Tr.T("home.bio"))
		h.raw(` `)
		h.rich(p.Tr.Rich("home.about"), map[string]templ.SafeURL{
			"resume": templ.SafeURL(ResumeURL),
			"email":  templ.SafeURL(EmailURL),
		})
		h.raw(`</p><p>`)
		h.rich(p.Tr.Rich("home.how_it_works"), map[string]templ.SafeURL{
			"any_hue": hueURL(domain.WrapHue(int(p.Hue) + 180)),
			"docs":    templ.SafeURL("/colors"),
		})
		h.raw(`</p></main>`)
		return h.err
	})
}

// Colors shows every slot of the active hue in both modes.
func Colors(p Page) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<main class="colors"><h1>`)
		h.text(p.Tr.T("colors.headline"))
		h.raw(`</h1><p>`)
		h.text(p.Tr.T("colors.description"))
		h.raw(`</p><table class="swatches"><thead><tr><th></th>`)
		for _, m := range domain.Modes() {
			h.raw(`<th>`)
			h.text(p.Tr.T("hue.mode_" + string(m)))
			h.raw(`</th>`)
		}
		h.raw(`</tr></thead><tbody>`)
		for _, s := range Swatches(p.Hue) {
			h.rawf(`<tr data-color="%s"><th scope="row">`, attr(string(s.Slot)))
			h.text(string(s.Slot))
			h.raw(`</th>`)
			for _, hex := range []string{s.Light, s.Dark} {
				h.rawf(`<td><span class="swatch" style="background: %s"></span> <code>%s</code></td>`, attr(hex), attr(hex))
			}
			h.raw(`</tr>`)
		}
		h.raw(`</tbody></table>`)

		h.raw(`<ul class="hue-wheel">`)
		for hue := 0; hue < domain.HueCount; hue += 30 {
			h.rawf(`<li><a href="%s" data-hue="%d"><span class="swatch" style="background: var(--color-accent-primary)"></span>%d</a></li>`,
				attr(string(hueURL(domain.Hue(hue)))), hue, hue)
		}
		h.raw(`</ul></main>`)
		return h.err
	})
}

func NotFound(p Page) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<main class="not-found"><h1>`)
		h.text(p.Tr.T("not_found.headline"))
		h.raw(`</h1><p>`)
		h.rich(p.Tr.Rich("not_found.body"), map[string]templ.SafeURL{
			"home": templ.SafeURL("/"),
		})
		h.raw(`</p></main>`)
		return h.err
	})
}
