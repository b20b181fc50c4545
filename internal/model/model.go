package model

// DefaultChange is the number of the implicit, unnumbered changelist.
const DefaultChange = "default"

// ChangelistEntry represents one pending (or submitted) changelist as reported
// by the server. Identity is Number; the reconciler guarantees no two entries
// share a number within one pass.
type ChangelistEntry struct {
	Number      string // "default" or a decimal changelist number
	Description string
	User        string
	Client      string
	Date        string
	Submitted   bool
}

// FileResource is one file attached to a changelist, either opened in the
// workspace or shelved server-side. The same depot path may legitimately
// appear as both a shelved and an open resource, possibly under different
// changelists; those are distinct resources and are never merged.
type FileResource struct {
	DepotPath       string
	LocalPath       string // empty when no working-copy file exists (e.g. shelved add)
	Change          string // owning changelist number, "default" or decimal
	Shelved         bool
	Operation       Operation
	ResolveFromPath string // source of a move/branch/integrate, if any
	FileType        string
	Revision        string
}

// Changelist pairs a ChangelistEntry with its ordered resources. Within the
// list, shelved resources come before open resources.
type Changelist struct {
	Entry     ChangelistEntry
	Resources []FileResource
}

// ResourceGroup is the projected, display-ready form of a changelist. Groups
// are rebuilt wholesale on every refresh rather than patched in place.
type ResourceGroup struct {
	ID        string // "default" or "pending:<num>"
	Label     string
	Count     int // badge value per the configured count policy
	Resources []FileResource
}

// GroupID returns the projected group id for a changelist number.
func GroupID(change string) string {
	if change == DefaultChange {
		return DefaultChange
	}
	return "pending:" + change
}
