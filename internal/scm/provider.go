package scm

import (
	"sync"
	"time"

	"github.com/joescharf/p4x/internal/model"
)

// Provider owns the projected group list for one client workspace. Groups
// are replaced atomically as a whole: the async refresh pipeline accumulates
// into local structures and only the finished result is handed to SetGroups,
// so a concurrent reader never observes a half-built state.
type Provider struct {
	ClientName string
	Root       string

	mu        sync.RWMutex
	groups    []model.ResourceGroup
	updatedAt time.Time
}

// NewProvider creates a Provider for the given client workspace.
func NewProvider(clientName, root string) *Provider {
	return &Provider{ClientName: clientName, Root: root}
}

// SetGroups swaps in a freshly projected group list.
func (p *Provider) SetGroups(groups []model.ResourceGroup) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.groups = groups
	p.updatedAt = time.Now()
}

// Groups returns the current group list. The slice is shared but never
// mutated after SetGroups, so readers may iterate it freely.
func (p *Provider) Groups() []model.ResourceGroup {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.groups
}

// UpdatedAt reports when groups were last swapped in; zero before the first
// successful refresh.
func (p *Provider) UpdatedAt() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.updatedAt
}
