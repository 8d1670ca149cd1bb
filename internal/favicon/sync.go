package favicon

import (
	"context"
	"encoding/base64"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/emiliopalmerini/huesite/internal/theme"
)

// Link selectors for the icons the synchronizer rewrites.
const (
	IconSelector      = `link[rel="icon"][sizes="any"]`
	SVGIconSelector   = `link[rel="icon"][type="image/svg+xml"]`
	TouchIconSelector = `link[rel="apple-touch-icon"]`

	ThemeColorMeta = "theme-color"
)

// Document is what the synchronizer reads and rewrites.
type Document interface {
	// ComputedAccent is the resolved accent-color, or "" if unavailable.
	ComputedAccent() string
	SetMetaContent(name, content string)
	SetLinkHref(selector, href string)
}

// Synchronizer keeps theme-color and favicons in step with the accent colour.
type Synchronizer struct {
	raster *Rasterizer
	log    zerolog.Logger
	linked bool
}

type SyncOption func(*Synchronizer)

// WithLinkedRenditions leaves the PNG icon links pointing at the icon
// endpoints. The renditions are still rasterised, which warms the
// rasterizer for the requests those links will make.
func WithLinkedRenditions() SyncOption {
	return func(s *Synchronizer) { s.linked = true }
}

func NewSynchronizer(raster *Rasterizer, log zerolog.Logger, opts ...SyncOption) *Synchronizer {
	s := &Synchronizer{raster: raster, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Pending resolves once both raster renditions have been written.
type Pending struct {
	Color string

	done chan struct{}
	err  error
}

func completed(color string) *Pending {
	p := &Pending{Color: color, done: make(chan struct{})}
	close(p.done)
	return p
}

// Skipped reports that no accent colour was available and nothing changed.
func (p *Pending) Skipped() bool {
	return p.Color == ""
}

// Wait blocks until the renditions are written or ctx ends. Returning on
// ctx does not cancel the renders; they still land when finished.
func (p *Pending) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Sync writes theme-color and the SVG icon immediately and rasterises the
// PNG renditions in the background, writing them as data URLs unless the
// synchronizer links renditions. A missing accent leaves the document
// untouched.
func (s *Synchronizer) Sync(ctx context.Context, doc Document) *Pending {
	accent := doc.ComputedAccent()
	if accent == "" {
		s.log.Debug().Msg("no computed accent colour, skipping theme-color sync")
		return completed("")
	}
	color, err := theme.ToHex(accent)
	if err != nil {
		s.log.Warn().Err(err).Str("accent", accent).Msg("unreadable accent colour, skipping theme-color sync")
		return completed("")
	}

	doc.SetMetaContent(ThemeColorMeta, color)
	doc.SetLinkHref(SVGIconSelector, SVGDataURL(color))

	p := &Pending{Color: color, done: make(chan struct{})}
	renderCtx := context.WithoutCancel(ctx)

	var g errgroup.Group
	for _, r := range []struct {
		selector string
		size     int
	}{
		{IconSelector, IconSize},
		{TouchIconSelector, TouchIconSize},
	} {
		g.Go(func() error {
			img, err := s.raster.PNG(renderCtx, color, r.size)
			if err != nil {
				return err
			}
			if !s.linked {
				doc.SetLinkHref(r.selector, PNGDataURL(img))
			}
			return nil
		})
	}

	go func() {
		if err := g.Wait(); err != nil {
			s.log.Error().Err(err).Str("color", color).Msg("favicon rasterisation failed")
			p.err = err
		}
		close(p.done)
	}()
	return p
}

func PNGDataURL(img []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(img)
}

func SVGDataURL(color string) string {
	return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(SVG(color)))
}
