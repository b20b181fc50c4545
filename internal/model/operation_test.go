package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOperation_RoundTrip(t *testing.T) {
	tokens := []string{
		"add", "edit", "delete", "branch", "integrate",
		"move/add", "move/delete", "purge", "import", "lock", "archive",
	}
	for _, tok := range tokens {
		op := ParseOperation(tok)
		assert.NotEqual(t, OpUnknown, op, "token %q should be recognized", tok)
		assert.Equal(t, tok, op.String())
	}
}

func TestParseOperation_Unknown(t *testing.T) {
	assert.Equal(t, OpUnknown, ParseOperation("frobnicate"))
	assert.Equal(t, "unknown", OpUnknown.String())
}

func TestOperation_IsDelete(t *testing.T) {
	assert.True(t, OpDelete.IsDelete())
	assert.True(t, OpMoveDelete.IsDelete())
	assert.True(t, OpPurge.IsDelete())
	assert.False(t, OpEdit.IsDelete())
	assert.False(t, OpMoveAdd.IsDelete())
}

func TestGroupID(t *testing.T) {
	assert.Equal(t, "default", GroupID(DefaultChange))
	assert.Equal(t, "pending:42", GroupID("42"))
}
