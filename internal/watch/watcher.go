// Package watch re-decompiles smali files when they change on disk.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"

	"github.com/Iron-Ham/smali2java/internal/logging"
)

// DefaultDebounce is used when a Watcher is created with a zero debounce.
const DefaultDebounce = 300 * time.Millisecond

// Handler is called once per settled file. It runs on the watcher's
// goroutine; a slow handler delays later batches, not event collection.
type Handler func(ctx context.Context, path string)

// Watcher watches directory trees and calls a Handler for every included
// file that was created or written, after writes have settled.
type Watcher struct {
	watcher  *fsnotify.Watcher
	roots    []string
	match    *Matcher
	debounce time.Duration
	handler  Handler
	logger   *logging.Logger
}

// New watches roots recursively. Every root must be an existing directory.
func New(roots []string, match *Matcher, debounce time.Duration, handler Handler, logger *logging.Logger) (*Watcher, error) {
	if len(roots) == 0 {
		return nil, fmt.Errorf("no directories to watch")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = logging.NopLogger()
	}

	abs := make([]string, 0, len(roots))
	for _, r := range roots {
		a, err := filepath.Abs(r)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", r, err)
		}
		info, err := os.Stat(a)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", r)
		}
		abs = append(abs, a)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:  fw,
		roots:    abs,
		match:    match,
		debounce: debounce,
		handler:  handler,
		logger:   logger,
	}
	for _, r := range abs {
		if err := w.addRecursive(r); err != nil {
			_ = fw.Close()
			return nil, err
		}
	}
	return w, nil
}

// addRecursive registers dir and every subdirectory with fsnotify.
func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			// Directories can vanish between the event and the walk.
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && ignoredDirs[d.Name()] {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// rootOf returns the watched root containing path.
func (w *Watcher) rootOf(path string) (string, bool) {
	best := ""
	for _, r := range w.roots {
		if path == r || strings.HasPrefix(path, r+string(filepath.Separator)) {
			if len(r) > len(best) {
				best = r
			}
		}
	}
	return best, best != ""
}

func (w *Watcher) included(path string) bool {
	root, ok := w.rootOf(path)
	return ok && w.match.MatchUnder(root, path)
}

// Run processes events until ctx is done. It closes the underlying watcher
// before returning.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.watcher.Close() }()

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := make(map[string]struct{})

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			for _, path := range w.collect(event) {
				pending[path] = struct{}{}
			}
			if len(pending) > 0 {
				timer.Reset(w.debounce)
			}

		case <-timer.C:
			w.flush(ctx, pending)
			pending = make(map[string]struct{})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err.Error())
		}
	}
}

// collect turns one event into the included files it touches. A new
// directory is registered and scanned, since files may land in it before
// the watch is in place.
func (w *Watcher) collect(event fsnotify.Event) []string {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return nil
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		return nil
	}

	if info.IsDir() {
		if !event.Has(fsnotify.Create) || ignoredDirs[info.Name()] {
			return nil
		}
		if err := w.addRecursive(event.Name); err != nil {
			w.logger.Warn("cannot watch new directory", "path", event.Name, "error", err.Error())
		}
		root, ok := w.rootOf(event.Name)
		if !ok {
			return nil
		}
		files, err := w.match.Expand(afero.NewOsFs(), event.Name)
		if err != nil {
			return nil
		}
		var out []string
		for _, f := range files {
			if w.match.MatchUnder(root, f) {
				out = append(out, f)
			}
		}
		return out
	}

	if info.Mode().IsRegular() && w.included(event.Name) {
		return []string{event.Name}
	}
	return nil
}

// flush hands settled files to the handler in path order.
func (w *Watcher) flush(ctx context.Context, pending map[string]struct{}) {
	paths := make([]string, 0, len(pending))
	for p := range pending {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		if ctx.Err() != nil {
			return
		}
		w.logger.Debug("file changed", "path", p)
		w.handler(ctx, p)
	}
}

// Roots returns the absolute directories being watched.
func (w *Watcher) Roots() []string {
	return append([]string(nil), w.roots...)
}
