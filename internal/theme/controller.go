package theme

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/rs/zerolog"

	"github.com/emiliopalmerini/huesite/internal/domain"
	"github.com/emiliopalmerini/huesite/internal/ports"
)

// Surface is the part of a document the controller drives.
type Surface interface {
	Registry
	BodyAttr(name string) (string, bool)
	SetBodyAttr(name, value string)
	RemoveBodyAttr(name string)
	// AttrValues returns the value of name on every element carrying it.
	AttrValues(name string) []string
	// OnAttributeChange calls fn once per batch of changes to name anywhere
	// in the document. The returned func unsubscribes.
	OnAttributeChange(name string, fn func()) (cancel func())
}

// CookieWriter persists preference cookies for the next server render.
type CookieWriter interface {
	SetCookie(c *http.Cookie)
}

// Controller owns the active hue of one document.
type Controller struct {
	surface  Surface
	injector *Injector
	cookies  CookieWriter
	metrics  ports.ThemeMetrics
	log      zerolog.Logger

	// setMu serialises SetHue; mu guards the fields below it.
	setMu sync.Mutex

	mu      sync.Mutex
	hue     domain.Hue
	subs    map[int]func(domain.Hue)
	nextSub int
	stop    func()
}

type ControllerOption func(*Controller)

func WithLogger(l zerolog.Logger) ControllerOption {
	return func(c *Controller) { c.log = l }
}

func WithControllerMetrics(m ports.ThemeMetrics) ControllerOption {
	return func(c *Controller) { c.metrics = m }
}

// NewController starts from initial, which the caller has already resolved
// from a cookie or route and reflected in the surface.
func NewController(surface Surface, injector *Injector, cookies CookieWriter, initial domain.Hue, opts ...ControllerOption) *Controller {
	c := &Controller{
		surface:  surface,
		injector: injector,
		cookies:  cookies,
		log:      zerolog.Nop(),
		hue:      initial,
		subs:     make(map[int]func(domain.Hue)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) Hue() domain.Hue {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hue
}

// Subscribe registers fn for active hue changes.
func (c *Controller) Subscribe(fn func(domain.Hue)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// Start scans the document once and then watches data-hue attributes.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.stop != nil {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	if _, err := c.injector.EnsureInjected(ctx, c.Hue(), c.surface); err != nil {
		return err
	}
	c.recolor(ctx)

	cancel := c.surface.OnAttributeChange(domain.HueAttr, func() { c.recolor(ctx) })
	c.mu.Lock()
	c.stop = cancel
	c.mu.Unlock()
	return nil
}

// Stop disconnects the attribute watcher.
func (c *Controller) Stop() {
	c.mu.Lock()
	cancel := c.stop
	c.stop = nil
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// SetHue makes hue active. The fragment is injected before the body
// attribute changes, and the choice is written to the hue cookie.
func (c *Controller) SetHue(ctx context.Context, hue domain.Hue) error {
	c.setMu.Lock()
	defer c.setMu.Unlock()

	prev := c.Hue()
	if hue == prev {
		return nil
	}
	if _, err := c.injector.EnsureInjected(ctx, hue, c.surface); err != nil {
		return err
	}

	// Update the in-memory hue before the attribute so the watcher sees the
	// change as our own.
	subs := c.adopt(hue)
	c.surface.SetBodyAttr(domain.HueAttr, hue.String())
	c.persist(hue)
	c.notify(ctx, prev, hue, subs)
	return nil
}

// SetMode forces the body into mode, overriding the colour-scheme preference.
func (c *Controller) SetMode(mode domain.Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("set mode: unknown mode %q", mode)
	}
	if current, ok := c.surface.BodyAttr(domain.ModeAttr); ok && current == string(mode) {
		return nil
	}
	c.surface.SetBodyAttr(domain.ModeAttr, string(mode))
	c.cookies.SetCookie(ModeCookie(mode))
	return nil
}

// ClearMode drops the forced mode so the colour-scheme preference applies
// again, and expires the mode cookie.
func (c *Controller) ClearMode() {
	c.surface.RemoveBodyAttr(domain.ModeAttr)
	expired := ModeCookie(domain.DefaultMode)
	expired.Value = ""
	expired.MaxAge = -1
	c.cookies.SetCookie(expired)
}

// recolor makes sure every hue referenced in the document has its fragment,
// and adopts a body hue set by someone else. Malformed values are skipped.
func (c *Controller) recolor(ctx context.Context) {
	if raw, ok := c.surface.BodyAttr(domain.HueAttr); ok {
		if hue, err := domain.ParseHue(raw); err == nil {
			prev := c.Hue()
			if hue != prev {
				if _, err := c.injector.EnsureInjected(ctx, hue, c.surface); err != nil {
					c.log.Error().Err(err).Int("hue", int(hue)).Msg("inject body hue")
				} else {
					subs := c.adopt(hue)
					c.persist(hue)
					c.notify(ctx, prev, hue, subs)
				}
			}
		}
	}

	for _, raw := range c.surface.AttrValues(domain.HueAttr) {
		hue, err := domain.ParseHue(raw)
		if err != nil {
			c.log.Debug().Str("value", raw).Msg("skipping malformed hue attribute")
			continue
		}
		if _, err := c.injector.EnsureInjected(ctx, hue, c.surface); err != nil {
			c.log.Error().Err(err).Int("hue", int(hue)).Msg("inject hue")
		}
	}
}

func (c *Controller) adopt(hue domain.Hue) []func(domain.Hue) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hue = hue
	subs := make([]func(domain.Hue), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	return subs
}

func (c *Controller) persist(hue domain.Hue) {
	c.cookies.SetCookie(HueCookie(hue))
}

func (c *Controller) notify(ctx context.Context, prev, hue domain.Hue, subs []func(domain.Hue)) {
	if c.metrics != nil {
		c.metrics.RecordHueChange(ctx, int(prev), int(hue))
	}
	for _, fn := range subs {
		fn(hue)
	}
}
