package p4

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CommandError describes a p4 invocation that exited nonzero or failed to run.
type CommandError struct {
	Command string
	Args    []string
	Stdout  string
	Stderr  string
	Err     error
}

func (e *CommandError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("p4 %s: %s", e.Command, msg)
}

func (e *CommandError) Unwrap() error { return e.Err }

// Runner executes a single p4 subcommand and returns its stdout.
// All methods take a dir parameter since p4x can operate against multiple
// client workspaces.
type Runner interface {
	// Execute runs the subcommand and fails on nonzero exit.
	Execute(ctx context.Context, dir, command string, args []string, stdin string) (string, error)
	// ExecuteLenient runs the subcommand and, on zero exit, returns stdout
	// together with whatever the tool wrote to stderr. Several read-only
	// subcommands emit benign warnings on stderr ("no files opened") that
	// must not be treated as failures.
	ExecuteLenient(ctx context.Context, dir, command string, args []string) (stdout, stderr string, err error)
}

// Conn holds the global connection flags passed to every p4 invocation.
// Empty fields fall back to the tool's own environment resolution.
type Conn struct {
	Port   string
	User   string
	Client string
}

func (c Conn) globals() []string {
	var g []string
	if c.Port != "" {
		g = append(g, "-p", c.Port)
	}
	if c.User != "" {
		g = append(g, "-u", c.User)
	}
	if c.Client != "" {
		g = append(g, "-c", c.Client)
	}
	return g
}

// CLIRunner implements Runner by shelling out to the p4 binary.
type CLIRunner struct {
	Conn Conn
}

// NewRunner returns a CLIRunner with the given connection settings.
func NewRunner(conn Conn) *CLIRunner {
	return &CLIRunner{Conn: conn}
}

func (r *CLIRunner) command(ctx context.Context, dir, command string, args []string) *exec.Cmd {
	full := append(r.Conn.globals(), command)
	full = append(full, args...)
	cmd := exec.CommandContext(ctx, "p4", full...)
	cmd.Dir = dir
	return cmd
}

func (r *CLIRunner) Execute(ctx context.Context, dir, command string, args []string, stdin string) (string, error) {
	cmd := r.command(ctx, dir, command, args)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	var out, errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut
	if err := cmd.Run(); err != nil {
		return "", &CommandError{
			Command: command,
			Args:    args,
			Stdout:  out.String(),
			Stderr:  errOut.String(),
			Err:     err,
		}
	}
	return out.String(), nil
}

func (r *CLIRunner) ExecuteLenient(ctx context.Context, dir, command string, args []string) (string, string, error) {
	cmd := r.command(ctx, dir, command, args)
	var out, errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut
	if err := cmd.Run(); err != nil {
		return "", "", &CommandError{
			Command: command,
			Args:    args,
			Stdout:  out.String(),
			Stderr:  errOut.String(),
			Err:     err,
		}
	}
	return out.String(), errOut.String(), nil
}
