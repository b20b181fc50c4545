package refresh

import "sync"

// ConflictTracker marks files as possibly stale for the duration of a
// refresh: between the moment a pass starts and the moment it completes, a
// file's on-disk open state may not match what is about to be redrawn. The
// UI layer uses the marks for transient warning indicators.
type ConflictTracker struct {
	mu    sync.Mutex
	stale map[string]struct{}
}

// NewConflictTracker creates an empty tracker.
func NewConflictTracker() *ConflictTracker {
	return &ConflictTracker{stale: make(map[string]struct{})}
}

// Mark flags the given depot paths as possibly stale.
func (t *ConflictTracker) Mark(paths ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, p := range paths {
		t.stale[p] = struct{}{}
	}
}

// IsStale reports whether a path is currently marked.
func (t *ConflictTracker) IsStale(path string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.stale[path]
	return ok
}

// Stale returns the currently marked paths.
func (t *ConflictTracker) Stale() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, 0, len(t.stale))
	for p := range t.stale {
		out = append(out, p)
	}
	return out
}

// Clear drops every mark; called when a refresh completes.
func (t *ConflictTracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stale = make(map[string]struct{})
}
