package p4

import (
	"context"
	"sync"
)

// DefaultMaxPerCommand bounds how many file arguments go into a single fstat
// invocation, keeping the command line under host OS argument-length limits.
const DefaultMaxPerCommand = 200

// FstatBatch runs fstat over paths in chunks of at most maxPerCommand,
// issuing one invocation per chunk concurrently. Round trips dominate
// latency for this tool, so chunks run in parallel rather than in sequence.
//
// The result always has exactly len(paths) entries and result[i] describes
// paths[i]; a path the tool produced no record for (a shelved add with no
// working-copy file, say) gets a nil slot. Callers must tolerate holes.
//
// Any chunk failing with a real error fails the whole batch: a partial
// status snapshot presented as authoritative would be silently wrong data.
// Benign stderr from missing files is absorbed by the lenient runner path.
func FstatBatch(ctx context.Context, r Runner, dir string, paths []string, flags []string, maxPerCommand int) ([]FstatRecord, error) {
	if maxPerCommand < 1 {
		maxPerCommand = DefaultMaxPerCommand
	}
	if len(paths) == 0 {
		return nil, nil
	}

	type chunk struct {
		start int
		paths []string
	}
	var chunks []chunk
	for start := 0; start < len(paths); start += maxPerCommand {
		end := start + maxPerCommand
		if end > len(paths) {
			end = len(paths)
		}
		chunks = append(chunks, chunk{start: start, paths: paths[start:end]})
	}

	results := make([]FstatRecord, len(paths))
	errs := make([]error, len(chunks))

	var wg sync.WaitGroup
	for i, ch := range chunks {
		wg.Add(1)
		go func(i int, ch chunk) {
			defer wg.Done()
			args := append(append([]string{}, flags...), ch.paths...)
			out, _, err := r.ExecuteLenient(ctx, dir, "fstat", args)
			if err != nil {
				errs[i] = err
				return
			}
			aligned := AlignFstat(ch.paths, ParseFstat(out))
			copy(results[ch.start:], aligned)
		}(i, ch)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}
