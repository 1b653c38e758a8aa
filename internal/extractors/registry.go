package extractors

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/custodia-labs/ragserve/internal/core/domain"
	"github.com/custodia-labs/ragserve/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.TextExtractor = (*Registry)(nil)

// Registry selects an extractor by file extension.
type Registry struct {
	mu       sync.RWMutex
	byExt    map[string]driven.TextExtractor
	fallback driven.TextExtractor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byExt: make(map[string]driven.TextExtractor),
	}
}

// Register adds an extractor for every extension it reports.
// Later registrations replace earlier ones for the same extension.
func (r *Registry) Register(e driven.TextExtractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ext := range e.Extensions() {
		r.byExt[strings.ToLower(ext)] = e
	}
}

// SetFallback sets the extractor used for files without an extension.
func (r *Registry) SetFallback(e driven.TextExtractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = e
}

// Get returns the extractor for path.
func (r *Registry) Get(path string) (driven.TextExtractor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return r.fallback, r.fallback != nil
	}
	e, ok := r.byExt[ext]
	return e, ok
}

// Extensions returns every registered extension, sorted.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}

// Extract delegates to the extractor registered for path's extension.
func (r *Registry) Extract(ctx context.Context, path string) ([]string, error) {
	e, ok := r.Get(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, filepath.Ext(path))
	}
	return e.Extract(ctx, path)
}
