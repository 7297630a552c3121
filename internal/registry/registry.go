// Package registry holds the job identifiers accumulated during a session.
package registry

import "sync"

// Registry is an append-only, newest-first list of job identifiers. There is
// no removal, no capacity bound and no deduplication.
type Registry struct {
	mu      sync.RWMutex
	ids     []string
	changed chan struct{}
}

// New returns an empty registry
func New() *Registry {
	return &Registry{changed: make(chan struct{})}
}

// Prepend records a newly created job identifier at the front
func (r *Registry) Prepend(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.ids)+1)
	ids = append(ids, id)
	r.ids = append(ids, r.ids...)

	close(r.changed)
	r.changed = make(chan struct{})
}

// IDs returns a snapshot of the identifiers, newest first
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.ids))
	copy(out, r.ids)
	return out
}

// Len returns the number of tracked identifiers
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ids)
}

// Changed returns a channel that is closed on the next Prepend
func (r *Registry) Changed() <-chan struct{} {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.changed
}
