package scm

import "sync"

// Registry maps client identity to its provider instance. It is an explicit
// object owned by the application context rather than a package-level static,
// so tests never leak providers into each other.
type Registry struct {
	mu        sync.Mutex
	providers map[string]*Provider
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]*Provider)}
}

// Register adds a provider for a client, returning the existing one if the
// client is already registered.
func (r *Registry) Register(clientName, root string) *Provider {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.providers[clientName]; ok {
		return p
	}
	p := NewProvider(clientName, root)
	r.providers[clientName] = p
	return p
}

// Lookup returns the provider for a client, or nil.
func (r *Registry) Lookup(clientName string) *Provider {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.providers[clientName]
}

// Clients lists registered client names.
func (r *Registry) Clients() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}

// UnregisterAll drops every provider.
func (r *Registry) UnregisterAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers = make(map[string]*Provider)
}
