package services

import (
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/ragserve/internal/core/ports/driven"
)

// Registry is the process-wide model state: the shared generator, the
// "model ready" flag and the pipeline of every user. Readers always see
// either the previous or the next pipeline of a user, never a partial one.
type Registry struct {
	ready atomic.Bool

	mu        sync.RWMutex
	generator driven.TextGenerator
	pipelines map[string]*Pipeline
	building  map[string]int
}

// NewRegistry creates an empty registry with the model not ready.
func NewRegistry() *Registry {
	return &Registry{
		pipelines: make(map[string]*Pipeline),
		building:  make(map[string]int),
	}
}

// IsModelReady reports whether the base model has loaded.
func (r *Registry) IsModelReady() bool {
	return r.ready.Load()
}

// SetModelReady flips the ready flag.
func (r *Registry) SetModelReady(ready bool) {
	r.ready.Store(ready)
}

// Generator returns the shared generator, or nil before bootstrap.
func (r *Registry) Generator() driven.TextGenerator {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.generator
}

// SetGenerator installs the shared generator.
func (r *Registry) SetGenerator(g driven.TextGenerator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generator = g
}

// Pipeline returns the pipeline registered for user.
func (r *Registry) Pipeline(user string) (*Pipeline, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.pipelines[user]
	return p, ok
}

// SetPipeline registers p for user and returns the pipeline it replaced.
func (r *Registry) SetPipeline(user string, p *Pipeline) *Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.pipelines[user]
	r.pipelines[user] = p
	return prev
}

// Users returns the number of users with a pipeline.
func (r *Registry) Users() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.pipelines)
}

// State returns the lifecycle state of user's pipeline.
func (r *Registry) State(user string) PipelineState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.building[user] > 0 {
		return StateBuilding
	}
	if _, ok := r.pipelines[user]; ok {
		return StateReady
	}
	return StateNoPipeline
}

// beginBuild marks an upload for user as in progress and returns the
// function that ends it.
func (r *Registry) beginBuild(user string) func() {
	r.mu.Lock()
	r.building[user]++
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.building[user]--
		if r.building[user] <= 0 {
			delete(r.building, user)
		}
	}
}
