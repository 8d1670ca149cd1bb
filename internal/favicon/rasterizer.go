// Package favicon renders the site mark in the active accent colour and
// keeps a document's theme-color and icon links in step with it.
package favicon

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"
	"sync"
	"time"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/emiliopalmerini/huesite/internal/ports"
)

// Standard renditions.
const (
	IconSize      = 32
	TouchIconSize = 180
)

type renditionKey struct {
	color string
	size  int
}

// Rasterizer renders the mark to PNG. Results are memoised per colour and
// size, so repeated renders are idempotent and cheap.
type Rasterizer struct {
	metrics ports.ThemeMetrics

	mu    sync.Mutex
	cache map[renditionKey][]byte
}

func NewRasterizer(metrics ports.ThemeMetrics) *Rasterizer {
	return &Rasterizer{
		metrics: metrics,
		cache:   make(map[renditionKey][]byte),
	}
}

// PNG renders the mark stroked in color at size×size pixels.
func (r *Rasterizer) PNG(ctx context.Context, color string, size int) ([]byte, error) {
	if size <= 0 || size > 1024 {
		return nil, fmt.Errorf("rasterize: size %d out of range", size)
	}
	key := renditionKey{color: color, size: size}

	r.mu.Lock()
	cached, ok := r.cache[key]
	r.mu.Unlock()
	if ok {
		return cached, nil
	}

	start := time.Now()
	out, err := render(SVG(color), size)
	if err != nil {
		return nil, err
	}
	if r.metrics != nil {
		r.metrics.RecordFaviconRender(ctx, size, time.Since(start))
	}

	r.mu.Lock()
	r.cache[key] = out
	r.mu.Unlock()
	return out, nil
}

func render(svg string, size int) ([]byte, error) {
	icon, err := oksvg.ReadIconStream(strings.NewReader(svg))
	if err != nil {
		return nil, fmt.Errorf("parse glyph: %w", err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(size, size, scanner), 1)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
