package p4

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChangeLine(t *testing.T) {
	c, ok := ParseChangeLine(`Change 142 on 2024/03/01 by joe@joe-ws *pending* 'Fix the widget frobnicator'`)
	require.True(t, ok)
	assert.Equal(t, "142", c.Number)
	assert.Equal(t, "2024/03/01", c.Date)
	assert.Equal(t, "joe", c.User)
	assert.Equal(t, "joe-ws", c.Client)
	assert.Equal(t, "pending", c.Status)
	assert.Equal(t, "Fix the widget frobnicator", c.Description)
}

func TestParseChangeLine_NoMatch(t *testing.T) {
	for _, line := range []string{
		"",
		"Warning: your client workspace is out of date",
		"Change abc on 2024/03/01 by joe@ws *pending* 'x'",
	} {
		_, ok := ParseChangeLine(line)
		assert.False(t, ok, "line %q should not match", line)
	}
}

func TestParseChanges_SkipsInterleavedWarnings(t *testing.T) {
	out := `Server warning: license expires soon
Change 9 on 2024/01/02 by joe@ws *pending* 'first '
garbage line
Change 8 on 2024/01/01 by joe@ws *pending* 'second'
`
	changes := ParseChanges(out)
	require.Len(t, changes, 2)
	assert.Equal(t, "9", changes[0].Number)
	assert.Equal(t, "first", changes[0].Description)
	assert.Equal(t, "8", changes[1].Number)
}

func TestParseFstat(t *testing.T) {
	out := `... depotFile //depot/main/a.txt
... clientFile /home/joe/ws/main/a.txt
... isMapped
... action edit
... change 42
... headType text
... ... otherOpen0 sue@sue-ws

... depotFile //depot/main/b.txt
... clientFile /home/joe/ws/main/b.txt
... action move/add
... resolveFromFile0 //depot/main/old-b.txt
`
	records := ParseFstat(out)
	require.Len(t, records, 2)

	a := records[0]
	assert.Equal(t, "//depot/main/a.txt", a.DepotFile())
	assert.Equal(t, "/home/joe/ws/main/a.txt", a["clientFile"])
	assert.Equal(t, "true", a["isMapped"], "valueless key becomes boolean flag")
	assert.Equal(t, "edit", a["action"])
	assert.Equal(t, "42", a["change"])
	assert.Equal(t, "sue@sue-ws", a["otherOpen0"])

	b := records[1]
	assert.Equal(t, "move/add", b["action"])
	assert.Equal(t, "//depot/main/old-b.txt", b["resolveFromFile0"])
}

func TestParseFstat_Empty(t *testing.T) {
	assert.Nil(t, ParseFstat(""))
	assert.Nil(t, ParseFstat("no such file(s).\n"))
}

func TestAlignFstat_HolesAndReordering(t *testing.T) {
	records := []FstatRecord{
		{"depotFile": "//depot/b.txt", "action": "edit"},
		{"depotFile": "//depot/a.txt", "action": "add"},
	}
	paths := []string{"//depot/a.txt", "//depot/missing.txt", "//depot/b.txt"}

	aligned := AlignFstat(paths, records)
	require.Len(t, aligned, 3)
	assert.Equal(t, "add", aligned[0]["action"])
	assert.Nil(t, aligned[1], "missing file resolves to nil slot")
	assert.Equal(t, "edit", aligned[2]["action"])
}

func TestAlignFstat_RevSuffix(t *testing.T) {
	records := []FstatRecord{{"depotFile": "//depot/a.txt"}}
	aligned := AlignFstat([]string{"//depot/a.txt#4"}, records)
	require.Len(t, aligned, 1)
	assert.NotNil(t, aligned[0])
}

func TestParseOpenedLine(t *testing.T) {
	f, ok := ParseOpenedLine(`//depot/main/a.txt#4 - edit change 59 (text)`)
	require.True(t, ok)
	assert.Equal(t, "//depot/main/a.txt", f.DepotPath)
	assert.Equal(t, "4", f.Revision)
	assert.Equal(t, "edit", f.Action)
	assert.Equal(t, "59", f.Change)
	assert.Equal(t, "text", f.FileType)
}

func TestParseOpenedLine_DefaultChange(t *testing.T) {
	f, ok := ParseOpenedLine(`//depot/main/new.txt#1 - add default change (text+x)`)
	require.True(t, ok)
	assert.Equal(t, "default", f.Change)
	assert.Equal(t, "add", f.Action)
	assert.Equal(t, "text+x", f.FileType)
}

func TestParseOpenedLine_Locked(t *testing.T) {
	f, ok := ParseOpenedLine(`//depot/main/a.txt#4 - edit change 59 (binary) *locked*`)
	require.True(t, ok)
	assert.Equal(t, "binary", f.FileType)
}

func TestParseOpened_SkipsNonMatching(t *testing.T) {
	out := `//depot/a.txt#1 - add default change (text)
File(s) not opened on this client.
//depot/b.txt#2 - delete change 7 (text)
`
	files := ParseOpened(out)
	require.Len(t, files, 2)
	assert.Equal(t, "default", files[0].Change)
	assert.Equal(t, "7", files[1].Change)
}

func TestParseShelved_AttributesFilesToHeaders(t *testing.T) {
	out := `Change 8 by joe@joe-ws on 2024/03/01 *pending*

	shelve me

Shelved files ...

... //depot/main/a.txt#1 edit
... //depot/main/b.txt#3 delete

Change 9 by joe@joe-ws on 2024/03/02 *pending*

	other shelf

Shelved files ...

... //depot/main/a.txt#1 edit
`
	files := ParseShelved(out)
	require.Len(t, files, 3)

	assert.Equal(t, "8", files[0].Change)
	assert.Equal(t, "//depot/main/a.txt", files[0].DepotPath)
	assert.Equal(t, "edit", files[0].Action)

	assert.Equal(t, "8", files[1].Change)
	assert.Equal(t, "delete", files[1].Action)

	// same depot path shelved under a second changelist stays distinct
	assert.Equal(t, "9", files[2].Change)
	assert.Equal(t, "//depot/main/a.txt", files[2].DepotPath)
}

func TestParseShelved_IgnoresFilesBeforeAnyHeader(t *testing.T) {
	out := `... //depot/orphan.txt#1 edit
Change 3 by joe@ws on 2024/01/01 *pending*
... //depot/owned.txt#1 add
`
	files := ParseShelved(out)
	require.Len(t, files, 1)
	assert.Equal(t, "3", files[0].Change)
	assert.Equal(t, "//depot/owned.txt", files[0].DepotPath)
}
