package model

import "time"

// Snapshot is one persisted reconciliation result for a client workspace.
// The store keeps a bounded history so `p4x status --cached` can render the
// last known good state without touching the server.
type Snapshot struct {
	ID      string
	Client  string
	TakenAt time.Time
	Groups  []ResourceGroup
}
