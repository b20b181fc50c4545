//go:build windows

package watch

import (
	"os"
	"syscall"
)

// processAlive tests process existence. FindProcess always succeeds on
// Windows, so probe with a zero signal.
func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}
