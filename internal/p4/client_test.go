package p4

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_PendingChangesArgs(t *testing.T) {
	r := &fakeRunner{responses: map[string]string{
		"changes": "Change 12 on 2024/02/02 by joe@joe-ws *pending* 'wip'\n",
	}}
	c := NewClient(r, "/ws", "joe-ws", 0)

	changes, err := c.PendingChanges(context.Background())
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, "12", changes[0].Number)

	calls := r.callsFor("changes")
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"-s", "pending", "-c", "joe-ws"}, calls[0].Args)
}

func TestClient_ShelvedFilesCombinedQuery(t *testing.T) {
	r := &fakeRunner{responses: map[string]string{}}
	c := NewClient(r, "/ws", "joe-ws", 0)

	_, err := c.ShelvedFiles(context.Background(), []string{"8", "9"})
	require.NoError(t, err)

	calls := r.callsFor("describe")
	require.Len(t, calls, 1, "all changelists go into one describe query")
	assert.Equal(t, []string{"-S", "-s", "8", "9"}, calls[0].Args)
}

func TestClient_ShelvedFiles_NoChanges(t *testing.T) {
	r := &fakeRunner{}
	c := NewClient(r, "/ws", "joe-ws", 0)
	files, err := c.ShelvedFiles(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, files)
	assert.Empty(t, r.calls)
}

func TestClient_FstatShelvedFlags(t *testing.T) {
	r := &fakeRunner{respond: fstatEcho}
	c := NewClient(r, "/ws", "joe-ws", 0)

	_, err := c.FstatShelved(context.Background(), "8", []string{"//depot/a.txt"})
	require.NoError(t, err)

	calls := r.callsFor("fstat")
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"-Or", "-Rs", "-e", "8", "//depot/a.txt"}, calls[0].Args)
}

func TestClient_DefaultChangelistGuards(t *testing.T) {
	r := &fakeRunner{}
	c := NewClient(r, "/ws", "joe-ws", 0)
	ctx := context.Background()

	assert.ErrorIs(t, c.Shelve(ctx, "default"), ErrDefaultChangelist)
	assert.ErrorIs(t, c.Shelve(ctx, ""), ErrDefaultChangelist)
	assert.ErrorIs(t, c.Unshelve(ctx, "default"), ErrDefaultChangelist)
	assert.ErrorIs(t, c.DeleteShelved(ctx, "default"), ErrDefaultChangelist)
	assert.ErrorIs(t, c.Fix(ctx, "default", "job000001"), ErrDefaultChangelist)

	assert.Empty(t, r.calls, "guards fire before any command executes")
}

func TestClient_SubmitDefaultRequiresDescription(t *testing.T) {
	r := &fakeRunner{}
	c := NewClient(r, "/ws", "joe-ws", 0)

	_, err := c.Submit(context.Background(), "default", "")
	require.Error(t, err)
	assert.Empty(t, r.calls)

	_, err = c.Submit(context.Background(), "", "quick fix")
	require.NoError(t, err)
	calls := r.callsFor("submit")
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"-d", "quick fix"}, calls[0].Args)
}

func TestClient_SaveChangeSpecPipesStdin(t *testing.T) {
	r := &fakeRunner{responses: map[string]string{"change": "Change 77 created."}}
	c := NewClient(r, "/ws", "joe-ws", 0)

	spec := &ChangeSpec{Change: "new", Description: "hello"}
	out, err := c.SaveChangeSpec(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, "Change 77 created.", out)

	calls := r.callsFor("change")
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"-i"}, calls[0].Args)
	assert.Contains(t, calls[0].Stdin, "Change:\tnew")
	assert.Contains(t, calls[0].Stdin, "Description:\n\thello")
}

func TestConn_Globals(t *testing.T) {
	assert.Nil(t, Conn{}.globals())
	assert.Equal(t,
		[]string{"-p", "ssl:1666", "-u", "joe", "-c", "joe-ws"},
		Conn{Port: "ssl:1666", User: "joe", Client: "joe-ws"}.globals())
}
