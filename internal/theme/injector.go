package theme

import (
	"context"
	"fmt"
	"sync"

	"github.com/emiliopalmerini/huesite/internal/domain"
	"github.com/emiliopalmerini/huesite/internal/ports"
)

// Registry is the set of fragments materialised in one document.
type Registry interface {
	Has(id string) bool
	// Add stores css under id and reports false if id was already present.
	Add(id, css string) bool
}

// StyleID is the element id of a hue's fragment.
func StyleID(hue domain.Hue) string {
	return "hue-" + hue.String()
}

// Injector adds a hue's fragment to a registry at most once.
type Injector struct {
	source  StylesheetSource
	metrics ports.ThemeMetrics
	target  string
}

func NewInjector(source StylesheetSource, metrics ports.ThemeMetrics, target string) *Injector {
	return &Injector{source: source, metrics: metrics, target: target}
}

// EnsureInjected adds hue's fragment unless reg already holds it. It reports
// whether a fragment was added. The existence check and the add happen
// under the registry's own serialisation, so redundant calls are harmless.
func (i *Injector) EnsureInjected(ctx context.Context, hue domain.Hue, reg Registry) (bool, error) {
	if !hue.Valid() {
		return false, fmt.Errorf("inject: %w: %d", domain.ErrInvalidHue, hue)
	}
	id := StyleID(hue)
	if reg.Has(id) {
		return false, nil
	}
	sheet, err := i.source.Stylesheet(ctx, hue)
	if err != nil {
		return false, err
	}
	if !reg.Add(id, sheet) {
		return false, nil
	}
	if i.metrics != nil {
		i.metrics.RecordInjection(ctx, int(hue), i.target)
	}
	return true, nil
}

// MemoryRegistry is a Registry backed by a set, for contexts with no live
// document such as the CLI and tests.
type MemoryRegistry struct {
	mu     sync.Mutex
	order  []string
	sheets map[string]string
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{sheets: make(map[string]string)}
}

func (r *MemoryRegistry) Has(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sheets[id]
	return ok
}

func (r *MemoryRegistry) Add(id, css string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sheets[id]; ok {
		return false
	}
	r.sheets[id] = css
	r.order = append(r.order, id)
	return true
}

// IDs returns the registered ids in insertion order.
func (r *MemoryRegistry) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

func (r *MemoryRegistry) Sheet(id string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sheets[id]
	return s, ok
}
