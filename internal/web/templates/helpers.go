package templates

import (
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/emiliopalmerini/huesite/internal/domain"
	"github.com/emiliopalmerini/huesite/internal/i18n"
)

// htmlWriter keeps the first write error so component bodies stay linear.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *htmlWriter) rawf(format string, args ...any) {
	if h.err == nil {
		_, h.err = fmt.Fprintf(h.w, format, args...)
	}
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func attr(s string) string {
	return templ.EscapeString(s)
}

func hueURL(hue domain.Hue) templ.SafeURL {
	return templ.SafeURL("/" + hue.String())
}

func iconURL(path string, hue domain.Hue) templ.SafeURL {
	return templ.SafeURL(path + "?hue=" + hue.String())
}

// rich writes segments, turning tagged segments into links from hrefs.
// Unknown tags render as plain text.
func (h *htmlWriter) rich(segs []i18n.Segment, hrefs map[string]templ.SafeURL) {
	for _, s := range segs {
		href, ok := hrefs[s.Tag]
		if s.Tag == "" || !ok {
			h.text(s.Text)
			continue
		}
		external := strings.HasPrefix(string(href), "mailto:") || strings.HasPrefix(string(href), "http")
		if external {
			h.rawf(`<a href="%s" rel="noopener">`, attr(string(href)))
		} else {
			h.rawf(`<a href="%s">`, attr(string(href)))
		}
		h.text(s.Text)
		h.raw(`</a>`)
	}
}
