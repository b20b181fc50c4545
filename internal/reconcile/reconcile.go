// Package reconcile merges the three independently-fetched views of pending
// work — the changelist list, the shelved-file listing, and the opened-file
// listing — into one consistent set of changelists keyed by number.
package reconcile

import (
	"context"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/joescharf/p4x/internal/model"
	"github.com/joescharf/p4x/internal/p4"
)

// Logger receives reconciliation diagnostics. Anomalies are reported here
// and never abort a refresh.
type Logger interface {
	Warning(format string, a ...any)
	VerboseLog(format string, a ...any)
}

type nopLogger struct{}

func (nopLogger) Warning(string, ...any)    {}
func (nopLogger) VerboseLog(string, ...any) {}

// Options configures one reconciliation pass.
type Options struct {
	// IgnoredPrefix excludes changelists whose description starts with it.
	// Their numbers stay known so files belonging to them are skipped
	// silently instead of flagged as orphans.
	IgnoredPrefix string
	// HideShelved skips the shelved-file fetch entirely.
	HideShelved bool
	// HideNonWorkspace drops opened files whose local path falls outside
	// every workspace root. Filtering happens at resource-build time.
	HideNonWorkspace bool
	// Descending orders numbered changelists high-to-low; "default" is
	// always first either way.
	Descending bool
	// WorkspaceRoots are the local folders considered in-workspace.
	WorkspaceRoots []string
}

// Reconciler runs the merge. It holds no cross-refresh state: every pass
// builds a fresh result that the caller swaps in atomically.
type Reconciler struct {
	client *p4.Client
	log    Logger
}

// New creates a Reconciler over the given client.
func New(client *p4.Client, log Logger) *Reconciler {
	if log == nil {
		log = nopLogger{}
	}
	return &Reconciler{client: client, log: log}
}

// Reconcile produces the full ordered changelist view. The pending-changelist
// query runs first so the set of ignorable numbers is known before shelved
// and opened results are bucketed; the shelved and opened fetches then run
// concurrently with no dependence on their relative completion order.
func (r *Reconciler) Reconcile(ctx context.Context, opts Options) ([]model.Changelist, error) {
	entries, ignorable, err := r.pendingEntries(ctx, opts)
	if err != nil {
		return nil, err
	}

	var numbered []string
	for _, e := range entries {
		if e.Number != model.DefaultChange {
			numbered = append(numbered, e.Number)
		}
	}

	var (
		wg         sync.WaitGroup
		shelved    []model.FileResource
		opened     []model.FileResource
		shelvedErr error
		openedErr  error
	)

	if !opts.HideShelved && len(numbered) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			shelved, shelvedErr = r.fetchShelved(ctx, numbered)
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		opened, openedErr = r.fetchOpened(ctx, opts)
	}()
	wg.Wait()

	if shelvedErr != nil {
		return nil, shelvedErr
	}
	if openedErr != nil {
		return nil, openedErr
	}

	return r.bucket(entries, ignorable, shelved, opened, opts), nil
}

// pendingEntries queries and filters the pending changelist list. The result
// always contains exactly one "default" entry, first. Duplicate numbers from
// the server are collapsed; ignored entries are remembered, not displayed.
func (r *Reconciler) pendingEntries(ctx context.Context, opts Options) ([]model.ChangelistEntry, map[string]bool, error) {
	infos, err := r.client.PendingChanges(ctx)
	if err != nil {
		return nil, nil, err
	}

	entries := []model.ChangelistEntry{{
		Number:      model.DefaultChange,
		Description: "Default Changelist",
	}}
	seen := map[string]bool{model.DefaultChange: true}
	ignorable := make(map[string]bool)

	for _, info := range infos {
		if seen[info.Number] {
			continue
		}
		seen[info.Number] = true
		if opts.IgnoredPrefix != "" && strings.HasPrefix(info.Description, opts.IgnoredPrefix) {
			ignorable[info.Number] = true
			continue
		}
		entries = append(entries, model.ChangelistEntry{
			Number:      info.Number,
			Description: info.Description,
			User:        info.User,
			Client:      info.Client,
			Date:        info.Date,
			Submitted:   info.Status == "submitted",
		})
	}
	return entries, ignorable, nil
}

// fetchShelved lists shelved files across all surviving changelists in one
// combined describe query, then batch-fstats each changelist's paths.
func (r *Reconciler) fetchShelved(ctx context.Context, changes []string) ([]model.FileResource, error) {
	files, err := r.client.ShelvedFiles(ctx, changes)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	// group per changelist, preserving listing order within each
	byChange := make(map[string][]p4.ShelvedFile)
	var order []string
	for _, f := range files {
		if _, ok := byChange[f.Change]; !ok {
			order = append(order, f.Change)
		}
		byChange[f.Change] = append(byChange[f.Change], f)
	}

	var resources []model.FileResource
	for _, change := range order {
		group := byChange[change]
		paths := make([]string, len(group))
		for i, f := range group {
			paths[i] = f.DepotPath
		}
		records, err := r.client.FstatShelved(ctx, change, paths)
		if err != nil {
			return nil, err
		}
		for i, f := range group {
			res := model.FileResource{
				DepotPath: f.DepotPath,
				Change:    f.Change,
				Shelved:   true,
				Operation: model.ParseOperation(f.Action),
				Revision:  f.Revision,
			}
			// A shelved add may have never been synced locally. A nil
			// record, or one without clientFile, is not an error.
			if rec := records[i]; rec != nil {
				res.LocalPath = rec["clientFile"]
				res.FileType = rec["headType"]
				res.ResolveFromPath = rec["resolveFromFile0"]
			}
			resources = append(resources, res)
		}
	}
	return resources, nil
}

// fetchOpened lists every opened file (single unfiltered query) and
// annotates each with its fstat record.
func (r *Reconciler) fetchOpened(ctx context.Context, opts Options) ([]model.FileResource, error) {
	files, err := r.client.Opened(ctx)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.DepotPath
	}
	records, err := r.client.FstatOpened(ctx, paths)
	if err != nil {
		return nil, err
	}

	var resources []model.FileResource
	for i, f := range files {
		res := model.FileResource{
			DepotPath: f.DepotPath,
			Change:    f.Change,
			Operation: model.ParseOperation(f.Action),
			FileType:  f.FileType,
			Revision:  f.Revision,
		}
		if rec := records[i]; rec != nil {
			res.LocalPath = rec["clientFile"]
			res.ResolveFromPath = rec["resolveFromFile0"]
			if ht := rec["headType"]; res.FileType == "" {
				res.FileType = ht
			}
		}
		if opts.HideNonWorkspace && !underAnyRoot(res.LocalPath, opts.WorkspaceRoots) {
			continue
		}
		resources = append(resources, res)
	}
	return resources, nil
}

// bucket attaches resources to their owning changelists, orders shelved
// before open within each, and applies the configured changelist ordering.
func (r *Reconciler) bucket(entries []model.ChangelistEntry, ignorable map[string]bool, shelved, opened []model.FileResource, opts Options) []model.Changelist {
	known := make(map[string]bool, len(entries))
	for _, e := range entries {
		known[e.Number] = true
	}

	buckets := make(map[string][]model.FileResource, len(entries))
	attach := func(res model.FileResource) {
		if !known[res.Change] {
			if !ignorable[res.Change] {
				r.log.Warning("file %s references unknown changelist %s, skipping", res.DepotPath, res.Change)
			}
			return
		}
		buckets[res.Change] = append(buckets[res.Change], res)
	}
	// shelved first: within one changelist, shelved resources are ordered
	// before open resources, each sub-list keeping its source query order
	for _, res := range shelved {
		attach(res)
	}
	for _, res := range opened {
		attach(res)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Number == model.DefaultChange {
			return true
		}
		if b.Number == model.DefaultChange {
			return false
		}
		an, _ := strconv.Atoi(a.Number)
		bn, _ := strconv.Atoi(b.Number)
		if opts.Descending {
			return an > bn
		}
		return an < bn
	})

	out := make([]model.Changelist, len(entries))
	for i, e := range entries {
		out[i] = model.Changelist{Entry: e, Resources: buckets[e.Number]}
	}
	return out
}

func underAnyRoot(localPath string, roots []string) bool {
	if localPath == "" {
		return false
	}
	clean := filepath.Clean(localPath)
	for _, root := range roots {
		root = filepath.Clean(root)
		if clean == root || strings.HasPrefix(clean, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
