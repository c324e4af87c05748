// Package registry tracks the draw handlers that are currently registered with a host.
//
// Every overlay session adds its handle on register and removes it on unregister. A draw
// callback that finds the registry empty treats that as the signal that all consumers are
// gone and unregisters itself.
package registry

import "sync"

// Handle is the opaque token a host returns when a draw callback is registered.
// The zero Handle never identifies a live callback.
type Handle uint64

// Registry is the set of active draw handles shared by all sessions of one host.
type Registry struct {
	mu      sync.Mutex
	handles []Handle
}

func New() *Registry {
	return &Registry{}
}

// Add appends h. Adding a handle twice records it twice, matching the host
// which hands out a fresh handle on every registration.
func (r *Registry) Add(h Handle) {
	r.mu.Lock()
	r.handles = append(r.handles, h)
	r.mu.Unlock()
}

// Remove drops the first occurrence of h. Unknown handles are ignored.
func (r *Registry) Remove(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, cur := range r.handles {
		if cur == h {
			r.handles = append(r.handles[:i], r.handles[i+1:]...)
			return
		}
	}
}

func (r *Registry) Contains(h Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, cur := range r.handles {
		if cur == h {
			return true
		}
	}
	return false
}

func (r *Registry) IsEmpty() bool {
	return r.Len() == 0
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles)
}

// Clear forgets every handle. Sessions still registered with the host notice on their
// next frame and unregister themselves.
func (r *Registry) Clear() {
	r.mu.Lock()
	r.handles = nil
	r.mu.Unlock()
}
