package model

// Operation classifies what a changelist does to a file.
type Operation int

const (
	OpUnknown Operation = iota
	OpAdd
	OpEdit
	OpDelete
	OpBranch
	OpIntegrate
	OpMoveAdd
	OpMoveDelete
	OpPurge
	OpArchive
	OpImport
	OpLock
)

var opTokens = map[Operation]string{
	OpAdd:        "add",
	OpEdit:       "edit",
	OpDelete:     "delete",
	OpBranch:     "branch",
	OpIntegrate:  "integrate",
	OpMoveAdd:    "move/add",
	OpMoveDelete: "move/delete",
	OpPurge:      "purge",
	OpArchive:    "archive",
	OpImport:     "import",
	OpLock:       "lock",
}

var tokenOps = func() map[string]Operation {
	m := make(map[string]Operation, len(opTokens))
	for op, tok := range opTokens {
		m[tok] = op
	}
	return m
}()

// ParseOperation maps the tool's textual action token to an Operation.
// Unrecognized tokens map to OpUnknown rather than failing, since server
// versions grow new action types.
func ParseOperation(token string) Operation {
	if op, ok := tokenOps[token]; ok {
		return op
	}
	return OpUnknown
}

// String returns the action token the tool would display for the operation.
func (o Operation) String() string {
	if tok, ok := opTokens[o]; ok {
		return tok
	}
	return "unknown"
}

// IsDelete reports whether the operation removes the file from the workspace.
func (o Operation) IsDelete() bool {
	return o == OpDelete || o == OpMoveDelete || o == OpPurge
}
