package p4

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrDefaultChangelist is returned by operations that cannot act on the
// implicit default changelist (shelve, fix). The guard fires before any
// command executes.
var ErrDefaultChangelist = errors.New("operation not supported on the default changelist")

// Client provides the higher-level operations p4x consumes, built on a
// Runner. All queries run against Dir, the client workspace root.
type Client struct {
	Runner        Runner
	Dir           string
	ClientName    string
	MaxPerCommand int
}

// NewClient builds a Client for the given workspace root.
func NewClient(r Runner, dir, clientName string, maxPerCommand int) *Client {
	if maxPerCommand < 1 {
		maxPerCommand = DefaultMaxPerCommand
	}
	return &Client{Runner: r, Dir: dir, ClientName: clientName, MaxPerCommand: maxPerCommand}
}

// PendingChanges lists non-submitted changelists for the current client.
func (c *Client) PendingChanges(ctx context.Context) ([]ChangeInfo, error) {
	args := []string{"-s", "pending"}
	if c.ClientName != "" {
		args = append(args, "-c", c.ClientName)
	}
	out, err := c.Runner.Execute(ctx, c.Dir, "changes", args, "")
	if err != nil {
		return nil, err
	}
	return ParseChanges(out), nil
}

// ShelvedFiles lists shelved files across the given changelists in one
// combined describe query. Diff output is omitted (-s) and shelved files
// requested (-S).
func (c *Client) ShelvedFiles(ctx context.Context, changes []string) ([]ShelvedFile, error) {
	if len(changes) == 0 {
		return nil, nil
	}
	args := append([]string{"-S", "-s"}, changes...)
	out, _, err := c.Runner.ExecuteLenient(ctx, c.Dir, "describe", args)
	if err != nil {
		return nil, err
	}
	return ParseShelved(out), nil
}

// Opened lists every file opened in the workspace, across all changelists.
// "File(s) not opened on this client" arrives on stderr with a zero exit and
// is absorbed, not surfaced.
func (c *Client) Opened(ctx context.Context) ([]OpenedFile, error) {
	out, _, err := c.Runner.ExecuteLenient(ctx, c.Dir, "opened", nil)
	if err != nil {
		return nil, err
	}
	return ParseOpened(out), nil
}

// FstatOpened batch-fetches status for opened depot paths. Results align
// positionally with paths; see FstatBatch.
func (c *Client) FstatOpened(ctx context.Context, paths []string) ([]FstatRecord, error) {
	return FstatBatch(ctx, c.Runner, c.Dir, paths, []string{"-Or"}, c.MaxPerCommand)
}

// FstatShelved batch-fetches status for paths shelved in one changelist.
func (c *Client) FstatShelved(ctx context.Context, change string, paths []string) ([]FstatRecord, error) {
	return FstatBatch(ctx, c.Runner, c.Dir, paths, []string{"-Or", "-Rs", "-e", change}, c.MaxPerCommand)
}

// ChangeSpec reads a changelist spec, or a fresh template when change is
// empty or "new".
func (c *Client) ChangeSpec(ctx context.Context, change string) (*ChangeSpec, error) {
	args := []string{"-o"}
	if change != "" && change != "new" && change != "default" {
		args = append(args, change)
	}
	out, err := c.Runner.Execute(ctx, c.Dir, "change", args, "")
	if err != nil {
		return nil, err
	}
	return ParseChangeSpec(out), nil
}

// SaveChangeSpec writes a spec back through `change -i` and returns the
// tool's confirmation line (e.g. "Change 42 created.").
func (c *Client) SaveChangeSpec(ctx context.Context, spec *ChangeSpec) (string, error) {
	out, err := c.Runner.Execute(ctx, c.Dir, "change", []string{"-i"}, spec.Marshal())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Shelve shelves all files opened in the given numbered changelist,
// replacing any previously shelved revisions.
func (c *Client) Shelve(ctx context.Context, change string) error {
	if change == "" || change == "default" {
		return fmt.Errorf("shelve: %w", ErrDefaultChangelist)
	}
	_, err := c.Runner.Execute(ctx, c.Dir, "shelve", []string{"-f", "-c", change}, "")
	return err
}

// DeleteShelved discards the shelved files of a changelist.
func (c *Client) DeleteShelved(ctx context.Context, change string) error {
	if change == "" || change == "default" {
		return fmt.Errorf("shelve -d: %w", ErrDefaultChangelist)
	}
	_, err := c.Runner.Execute(ctx, c.Dir, "shelve", []string{"-d", "-c", change}, "")
	return err
}

// Unshelve restores shelved files from a changelist into the workspace,
// overwriting writable files (-f).
func (c *Client) Unshelve(ctx context.Context, change string) error {
	if change == "" || change == "default" {
		return fmt.Errorf("unshelve: %w", ErrDefaultChangelist)
	}
	_, err := c.Runner.Execute(ctx, c.Dir, "unshelve", []string{"-s", change, "-f"}, "")
	return err
}

// Revert discards open changes. With paths, only those files revert;
// otherwise the whole changelist reverts.
func (c *Client) Revert(ctx context.Context, change string, paths ...string) error {
	args := []string{"-c", orDefault(change, "default")}
	if len(paths) > 0 {
		args = append(args, paths...)
	} else {
		args = append(args, "//...")
	}
	_, err := c.Runner.Execute(ctx, c.Dir, "revert", args, "")
	return err
}

// Submit submits a numbered changelist, or the default changelist with the
// given description.
func (c *Client) Submit(ctx context.Context, change, description string) (string, error) {
	var args []string
	switch {
	case change != "" && change != "default":
		args = []string{"-c", change}
	case description != "":
		args = []string{"-d", description}
	default:
		return "", errors.New("submit: default changelist requires a description")
	}
	out, err := c.Runner.Execute(ctx, c.Dir, "submit", args, "")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Fix links a job to a changelist.
func (c *Client) Fix(ctx context.Context, change, job string) error {
	if change == "" || change == "default" {
		return fmt.Errorf("fix: %w", ErrDefaultChangelist)
	}
	_, err := c.Runner.Execute(ctx, c.Dir, "fix", []string{"-c", change, job}, "")
	return err
}

// Diff returns a unified diff of the given opened files against their have
// revisions, used for description suggestion. With no paths, diffs every
// opened file.
func (c *Client) Diff(ctx context.Context, paths ...string) (string, error) {
	args := append([]string{"-du"}, paths...)
	out, _, err := c.Runner.ExecuteLenient(ctx, c.Dir, "diff", args)
	if err != nil {
		return "", err
	}
	return out, nil
}
