package p4

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner records invocations and serves canned or computed responses.
type fakeRunner struct {
	mu    sync.Mutex
	calls []fakeCall

	// respond computes a response per invocation; when nil, responses map
	// keyed by command is used.
	respond   func(command string, args []string) (string, error)
	responses map[string]string
}

type fakeCall struct {
	Command string
	Args    []string
	Stdin   string
}

func (f *fakeRunner) record(command string, args []string, stdin string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fakeCall{Command: command, Args: args, Stdin: stdin})
}

func (f *fakeRunner) Execute(_ context.Context, _ string, command string, args []string, stdin string) (string, error) {
	f.record(command, args, stdin)
	if f.respond != nil {
		return f.respond(command, args)
	}
	return f.responses[command], nil
}

func (f *fakeRunner) ExecuteLenient(ctx context.Context, dir, command string, args []string) (string, string, error) {
	out, err := f.Execute(ctx, dir, command, args, "")
	return out, "", err
}

func (f *fakeRunner) callsFor(command string) []fakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []fakeCall
	for _, c := range f.calls {
		if c.Command == command {
			out = append(out, c)
		}
	}
	return out
}

// fstatEcho answers any fstat invocation with one record per requested path,
// in reverse order to prove alignment does not rely on tool output order.
func fstatEcho(command string, args []string) (string, error) {
	if command != "fstat" {
		return "", nil
	}
	var paths []string
	for _, a := range args {
		if strings.HasPrefix(a, "//") {
			paths = append(paths, a)
		}
	}
	var b strings.Builder
	for i := len(paths) - 1; i >= 0; i-- {
		fmt.Fprintf(&b, "... depotFile %s\n... action edit\n\n", paths[i])
	}
	return b.String(), nil
}

func makePaths(n int) []string {
	paths := make([]string, n)
	for i := range paths {
		paths[i] = fmt.Sprintf("//depot/f%03d.txt", i)
	}
	return paths
}

func TestFstatBatch_AlignmentAcrossChunkSizes(t *testing.T) {
	const chunk = 4
	for _, n := range []int{1, chunk, 2*chunk + 1} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			r := &fakeRunner{respond: fstatEcho}
			paths := makePaths(n)

			records, err := FstatBatch(context.Background(), r, "/ws", paths, []string{"-Or"}, chunk)
			require.NoError(t, err)
			require.Len(t, records, n)
			for i, rec := range records {
				require.NotNil(t, rec, "slot %d", i)
				assert.Equal(t, paths[i], rec.DepotFile(), "result[%d] must describe paths[%d]", i, i)
			}

			wantCalls := (n + chunk - 1) / chunk
			assert.Len(t, r.callsFor("fstat"), wantCalls)
		})
	}
}

func TestFstatBatch_ChunkArgumentLimit(t *testing.T) {
	r := &fakeRunner{respond: fstatEcho}
	_, err := FstatBatch(context.Background(), r, "/ws", makePaths(10), nil, 3)
	require.NoError(t, err)

	for _, call := range r.callsFor("fstat") {
		pathCount := 0
		for _, a := range call.Args {
			if strings.HasPrefix(a, "//") {
				pathCount++
			}
		}
		assert.LessOrEqual(t, pathCount, 3)
	}
}

func TestFstatBatch_MissingPathsLeaveHoles(t *testing.T) {
	r := &fakeRunner{respond: func(command string, args []string) (string, error) {
		// only ever answer for f001
		return "... depotFile //depot/f001.txt\n... action add\n", nil
	}}
	records, err := FstatBatch(context.Background(), r, "/ws", makePaths(3), nil, 10)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Nil(t, records[0])
	assert.NotNil(t, records[1])
	assert.Nil(t, records[2])
}

func TestFstatBatch_FailedChunkFailsWholeBatch(t *testing.T) {
	boom := errors.New("connect to server failed")
	var n int
	var mu sync.Mutex
	r := &fakeRunner{respond: func(command string, args []string) (string, error) {
		mu.Lock()
		n++
		fail := n == 2
		mu.Unlock()
		if fail {
			return "", boom
		}
		return fstatEcho(command, args)
	}}

	_, err := FstatBatch(context.Background(), r, "/ws", makePaths(9), nil, 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestFstatBatch_EmptyInput(t *testing.T) {
	r := &fakeRunner{}
	records, err := FstatBatch(context.Background(), r, "/ws", nil, nil, 5)
	require.NoError(t, err)
	assert.Nil(t, records)
	assert.Empty(t, r.calls)
}
