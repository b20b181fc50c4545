// Package watch feeds filesystem change events into the refresh pipeline.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watcher observes a client workspace recursively and invokes a trigger
// callback for every relevant change. The callback is expected to debounce;
// the watcher itself forwards raw events.
type Watcher struct {
	root    string
	trigger func()
	fw      *fsnotify.Watcher
}

// New creates a watcher over root. trigger fires on every write, create,
// remove, or rename under the tree.
func New(root string, trigger func()) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &Watcher{root: root, trigger: trigger, fw: fw}
	if err := w.addRecursive(root); err != nil {
		_ = fw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable subtree is not fatal
		}
		if !d.IsDir() {
			return nil
		}
		if skipDir(d.Name()) && path != root {
			return filepath.SkipDir
		}
		return w.fw.Add(path)
	})
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "node_modules"
}

// Run pumps events until ctx is cancelled. Newly created directories are
// added to the watch set on the fly.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fw.Close()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			if ev.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if !skipDir(filepath.Base(ev.Name)) {
						_ = w.addRecursive(ev.Name)
					}
					continue
				}
			}
			if ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create) ||
				ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename) {
				w.trigger()
			}
		case _, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			// watch errors are transient; keep pumping
		}
	}
}
