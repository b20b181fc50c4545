// Package scm projects reconciled changelists into display-ready resource
// groups and owns the per-workspace provider state they are swapped into.
package scm

import (
	"fmt"

	"github.com/joescharf/p4x/internal/model"
)

// CountPolicy selects how a group's count badge is computed.
type CountPolicy string

const (
	CountOff           CountPolicy = "off"
	CountAll           CountPolicy = "all"
	CountAllButShelved CountPolicy = "all-but-shelved"
)

// ParseCountPolicy maps a config string to a CountPolicy, defaulting to
// all-but-shelved for unrecognized values.
func ParseCountPolicy(s string) CountPolicy {
	switch CountPolicy(s) {
	case CountOff, CountAll, CountAllButShelved:
		return CountPolicy(s)
	default:
		return CountAllButShelved
	}
}

// ProjectOptions configures the projection.
type ProjectOptions struct {
	// HideEmpty prunes changelists with no resources. Applied here, late,
	// because emptiness is only known after resource attachment.
	HideEmpty bool
	Count     CountPolicy
}

// Project converts reconciled changelists into ordered resource groups.
// Pure function of its inputs; groups are rebuilt wholesale, never patched.
func Project(changelists []model.Changelist, opts ProjectOptions) []model.ResourceGroup {
	groups := make([]model.ResourceGroup, 0, len(changelists))
	for _, cl := range changelists {
		if opts.HideEmpty && len(cl.Resources) == 0 && cl.Entry.Number != model.DefaultChange {
			continue
		}
		groups = append(groups, model.ResourceGroup{
			ID:        model.GroupID(cl.Entry.Number),
			Label:     groupLabel(cl.Entry),
			Count:     countBadge(cl.Resources, opts.Count),
			Resources: cl.Resources,
		})
	}
	return groups
}

func groupLabel(e model.ChangelistEntry) string {
	if e.Number == model.DefaultChange {
		return "Default Changelist"
	}
	return fmt.Sprintf("#%s: %s", e.Number, e.Description)
}

// countBadge computes the badge value. A paired move/add + move/delete is a
// single logical change and counts once: the move/delete half is skipped
// when a move/add in the same counted set resolves from its depot path.
func countBadge(resources []model.FileResource, policy CountPolicy) int {
	if policy == CountOff {
		return 0
	}

	moveSources := make(map[string]bool)
	for _, res := range resources {
		if policy == CountAllButShelved && res.Shelved {
			continue
		}
		if res.Operation == model.OpMoveAdd && res.ResolveFromPath != "" {
			moveSources[res.ResolveFromPath] = true
		}
	}

	count := 0
	for _, res := range resources {
		if policy == CountAllButShelved && res.Shelved {
			continue
		}
		if res.Operation == model.OpMoveDelete && moveSources[res.DepotPath] {
			continue
		}
		count++
	}
	return count
}
