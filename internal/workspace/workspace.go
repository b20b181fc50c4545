// Package workspace wires one client workspace's reconciler, provider, and
// refresh coordinator together into the pipeline the commands drive.
package workspace

import (
	"context"

	"github.com/joescharf/p4x/internal/model"
	"github.com/joescharf/p4x/internal/p4"
	"github.com/joescharf/p4x/internal/reconcile"
	"github.com/joescharf/p4x/internal/refresh"
	"github.com/joescharf/p4x/internal/scm"
	"github.com/joescharf/p4x/internal/store"
)

// Config collects every recognized reconciliation and projection option.
type Config struct {
	Descending       bool
	IgnoredPrefix    string
	HideShelved      bool
	HideNonWorkspace bool
	HideEmpty        bool
	CountBadge       scm.CountPolicy
	WorkspaceRoots   []string
	// SnapshotHistory bounds how many snapshots the store keeps per client.
	SnapshotHistory int
}

// Workspace owns the refresh pipeline for one client workspace.
type Workspace struct {
	Client    *p4.Client
	Provider  *scm.Provider
	Conflicts *refresh.ConflictTracker

	coordinator *refresh.Coordinator
	reconciler  *reconcile.Reconciler
	snapshots   store.Store // optional
	cfg         Config
}

// New assembles a workspace. snapshots may be nil when persistence is not
// wanted (tests, one-shot queries).
func New(client *p4.Client, provider *scm.Provider, snapshots store.Store, log reconcile.Logger, cfg Config) *Workspace {
	if cfg.SnapshotHistory <= 0 {
		cfg.SnapshotHistory = 20
	}
	w := &Workspace{
		Client:    client,
		Provider:  provider,
		Conflicts: refresh.NewConflictTracker(),
		snapshots: snapshots,
		cfg:       cfg,
	}
	w.reconciler = reconcile.New(client, log)
	w.coordinator = refresh.NewCoordinator(w.run, w.markStale)
	return w
}

// Refresh runs (or joins) a refresh pass. See refresh.Coordinator for the
// coalescing contract.
func (w *Workspace) Refresh(ctx context.Context) error {
	return w.coordinator.Refresh(ctx)
}

// Refreshing reports whether a pass is in flight.
func (w *Workspace) Refreshing() bool {
	return w.coordinator.Refreshing()
}

// Groups returns the provider's current projected state.
func (w *Workspace) Groups() []model.ResourceGroup {
	return w.Provider.Groups()
}

// markStale flags every currently displayed file as possibly stale for the
// duration of the pass.
func (w *Workspace) markStale() {
	for _, g := range w.Provider.Groups() {
		for _, res := range g.Resources {
			w.Conflicts.Mark(res.DepotPath)
		}
	}
}

// run is the full pipeline: reconcile, project, swap, persist. Everything
// accumulates into locals; shared state changes only after the whole
// pipeline has settled, and only on success. On failure the provider keeps
// its previous groups and the stale marks clear regardless.
func (w *Workspace) run(ctx context.Context) error {
	defer w.Conflicts.Clear()

	changelists, err := w.reconciler.Reconcile(ctx, reconcile.Options{
		IgnoredPrefix:    w.cfg.IgnoredPrefix,
		HideShelved:      w.cfg.HideShelved,
		HideNonWorkspace: w.cfg.HideNonWorkspace,
		Descending:       w.cfg.Descending,
		WorkspaceRoots:   w.cfg.WorkspaceRoots,
	})
	if err != nil {
		return err
	}

	groups := scm.Project(changelists, scm.ProjectOptions{
		HideEmpty: w.cfg.HideEmpty,
		Count:     w.cfg.CountBadge,
	})
	w.Provider.SetGroups(groups)

	if w.snapshots != nil {
		snap := &model.Snapshot{Client: w.Provider.ClientName, Groups: groups}
		if err := w.snapshots.SaveSnapshot(ctx, snap); err != nil {
			return err
		}
		_, _ = w.snapshots.PruneSnapshots(ctx, w.Provider.ClientName, w.cfg.SnapshotHistory)
	}
	return nil
}
