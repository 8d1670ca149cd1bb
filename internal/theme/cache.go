package theme

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/emiliopalmerini/huesite/internal/domain"
	"github.com/emiliopalmerini/huesite/internal/ports"
)

// StylesheetSource yields the stylesheet fragment for a hue.
type StylesheetSource interface {
	Stylesheet(ctx context.Context, hue domain.Hue) (string, error)
}

// Cache memoises compiled fragments for the process lifetime. Lookups fall
// through to an optional store and finally to the compiler.
type Cache struct {
	compiler *Compiler
	store    ports.StylesheetStore
	metrics  ports.ThemeMetrics

	mu     sync.RWMutex
	sheets map[domain.Hue]string
}

type CacheOption func(*Cache)

// WithStore reads precomputed fragments from s before compiling.
func WithStore(s ports.StylesheetStore) CacheOption {
	return func(c *Cache) { c.store = s }
}

func WithCacheMetrics(m ports.ThemeMetrics) CacheOption {
	return func(c *Cache) { c.metrics = m }
}

func NewCache(compiler *Compiler, opts ...CacheOption) *Cache {
	c := &Cache{
		compiler: compiler,
		sheets:   make(map[domain.Hue]string, domain.HueCount),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) Stylesheet(ctx context.Context, hue domain.Hue) (string, error) {
	start := time.Now()

	c.mu.RLock()
	sheet, ok := c.sheets[hue]
	c.mu.RUnlock()
	if ok {
		c.record(ctx, hue, true, start)
		return sheet, nil
	}

	if c.store != nil {
		stored, found, err := c.store.Get(ctx, int(hue))
		if err != nil {
			return "", fmt.Errorf("load stylesheet %d: %w", hue, err)
		}
		if found {
			c.put(hue, stored)
			c.record(ctx, hue, true, start)
			return stored, nil
		}
	}

	sheet, err := c.compiler.Compile(hue)
	if err != nil {
		return "", err
	}
	c.put(hue, sheet)
	c.record(ctx, hue, false, start)
	return sheet, nil
}

// Warm compiles every hue up front.
func (c *Cache) Warm(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, hue := range domain.AllHues() {
		g.Go(func() error {
			_, err := c.Stylesheet(gctx, hue)
			return err
		})
	}
	return g.Wait()
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sheets)
}

func (c *Cache) put(hue domain.Hue, sheet string) {
	c.mu.Lock()
	c.sheets[hue] = sheet
	c.mu.Unlock()
}

func (c *Cache) record(ctx context.Context, hue domain.Hue, cached bool, start time.Time) {
	if c.metrics != nil {
		c.metrics.RecordCompile(ctx, int(hue), cached, time.Since(start))
	}
}
