package store

import (
	"context"

	"github.com/joescharf/p4x/internal/model"
)

// Store defines the persistence interface for p4x snapshots.
type Store interface {
	// SaveSnapshot persists a reconciliation result; an empty ID is filled
	// in with a fresh ULID.
	SaveSnapshot(ctx context.Context, snap *model.Snapshot) error
	// LatestSnapshot returns the most recent snapshot for a client, or an
	// error when none exists.
	LatestSnapshot(ctx context.Context, client string) (*model.Snapshot, error)
	ListSnapshots(ctx context.Context, client string, limit int) ([]*model.Snapshot, error)
	// PruneSnapshots deletes all but the newest keep snapshots for a
	// client, returning how many were removed.
	PruneSnapshots(ctx context.Context, client string, keep int) (int64, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
