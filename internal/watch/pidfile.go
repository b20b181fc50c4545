package watch

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// PIDFile guards against two watchers running on the same workspace. The
// file lives in the state dir, named by a hash of the workspace root.
type PIDFile struct {
	Path string
}

// NewPIDFile creates the PIDFile for a workspace root under stateDir.
func NewPIDFile(stateDir, root string) *PIDFile {
	sum := sha1.Sum([]byte(root))
	name := fmt.Sprintf("watch-%s.pid", hex.EncodeToString(sum[:8]))
	return &PIDFile{Path: filepath.Join(stateDir, name)}
}

// Acquire claims the watch lock for this process. It fails when another
// live process already holds it; a stale file from a dead process is
// replaced silently.
func (p *PIDFile) Acquire() error {
	if pid, running := p.isRunning(); running {
		return fmt.Errorf("another watcher is already running (pid %d)", pid)
	}
	if err := os.MkdirAll(filepath.Dir(p.Path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p.Path, []byte(strconv.Itoa(os.Getpid())+"\n"), 0o644)
}

// Release removes the PID file. Missing files are not an error.
func (p *PIDFile) Release() error {
	err := os.Remove(p.Path)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

func (p *PIDFile) read() (int, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID file content: %w", err)
	}
	return pid, nil
}

// isRunning reports whether the PID file points at a live process.
func (p *PIDFile) isRunning() (int, bool) {
	pid, err := p.read()
	if err != nil {
		return 0, false
	}
	return pid, processAlive(pid)
}
