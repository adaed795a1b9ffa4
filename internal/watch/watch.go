// Package watch reports debounced file changes.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/samber/oops"
)

const DefaultDebounce = 300 * time.Millisecond

type Options struct {
	Debounce time.Duration
	// Match filters changed files by path relative to the watched directory.
	// Nil accepts everything.
	Match func(rel string) bool
	// SkipDir prunes directories during recursive registration.
	SkipDir func(rel string) bool
}

// Watcher batches filesystem events for a set of files or a directory tree.
type Watcher struct {
	fs      *fsnotify.Watcher
	root    string
	files   map[string]struct{}
	opts    Options
	onError func(error)
}

// Files watches individual files. Their parent directories are watched so
// editors that replace files by rename are still seen.
func Files(paths []string, opts Options) (*Watcher, error) {
	w, err := newWatcher("", opts)
	if err != nil {
		return nil, err
	}

	w.files = make(map[string]struct{}, len(paths))
	dirs := map[string]struct{}{}
	for _, path := range paths {
		abs, absErr := filepath.Abs(path)
		if absErr != nil {
			_ = w.Close()
			return nil, oops.Code("WATCH_FAILED").With("path", path).Wrapf(absErr, "resolving %q", path)
		}
		w.files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}

	for dir := range dirs {
		if addErr := w.add(dir); addErr != nil {
			_ = w.Close()
			return nil, addErr
		}
	}

	return w, nil
}

// Tree watches root and every directory below it not pruned by SkipDir.
// Directories created later are added as they appear.
func Tree(root string, opts Options) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, oops.Code("WATCH_FAILED").With("path", root).Wrapf(err, "resolving %q", root)
	}

	w, err := newWatcher(abs, opts)
	if err != nil {
		return nil, err
	}

	if err := w.addTree(abs); err != nil {
		_ = w.Close()
		return nil, err
	}

	return w, nil
}

func newWatcher(root string, opts Options) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, oops.
			Code("WATCH_FAILED").
			Hint("The system may be out of inotify watches").
			Wrapf(err, "creating file watcher")
	}

	return &Watcher{fs: fsw, root: root, opts: opts, onError: func(error) {}}, nil
}

// OnError sets the handler for errors reported while running.
func (w *Watcher) OnError(fn func(error)) {
	if fn != nil {
		w.onError = fn
	}
}

func (w *Watcher) Close() error {
	return w.fs.Close()
}

func (w *Watcher) add(dir string) error {
	if err := w.fs.Add(dir); err != nil {
		return oops.
			Code("WATCH_FAILED").
			With("path", dir).
			Wrapf(err, "watching %q", dir)
	}
	return nil
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return oops.Code("WATCH_FAILED").With("path", path).Wrapf(walkErr, "walking %q", path)
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.opts.SkipDir != nil && w.opts.SkipDir(w.rel(path)) {
			return filepath.SkipDir
		}
		return w.add(path)
	})
}

func (w *Watcher) rel(path string) string {
	if w.root == "" {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// relevant reports the name to record for event, if any.
func (w *Watcher) relevant(event fsnotify.Event) (string, bool) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return "", false
	}

	if w.files != nil {
		_, ok := w.files[event.Name]
		return event.Name, ok
	}

	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			rel := w.rel(event.Name)
			if w.opts.SkipDir == nil || !w.opts.SkipDir(rel) {
				if err := w.addTree(event.Name); err != nil {
					w.onError(err)
				}
			}
			return "", false
		}
	}

	rel := w.rel(event.Name)
	if w.opts.Match != nil && !w.opts.Match(rel) {
		return "", false
	}
	return rel, true
}

// Run delivers batches of changed paths to onChange until ctx is done.
// Paths are relative to the tree root, or absolute for Files watchers, and
// sorted. onChange runs on the calling goroutine, so events arriving during
// a callback are batched into the next one.
func (w *Watcher) Run(ctx context.Context, onChange func(changed []string)) error {
	pending := map[string]struct{}{}
	timer := time.NewTimer(w.opts.Debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			name, relevant := w.relevant(event)
			if !relevant {
				continue
			}
			pending[name] = struct{}{}
			timer.Reset(w.opts.Debounce)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for name := range pending {
				changed = append(changed, name)
			}
			sort.Strings(changed)
			pending = map[string]struct{}{}
			onChange(changed)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.onError(oops.Code("WATCH_FAILED").Wrapf(err, "watching files"))
		}
	}
}
