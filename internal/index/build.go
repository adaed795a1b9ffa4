package index

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/oops"
	"golang.org/x/sync/errgroup"

	"github.com/g5becks/outline/internal/config"
	"github.com/g5becks/outline/internal/element"
	"github.com/g5becks/outline/internal/lockfile"
	"github.com/g5becks/outline/internal/parser"
)

type EventKind int

const (
	EventRunStart EventKind = iota
	EventFileStart
	EventFileDone
)

// Status says what happened to a file during a run.
type Status string

const (
	StatusScanned Status = "scanned"
	StatusReused  Status = "reused"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Event is emitted once per run with Total set, then twice per file. OnEvent
// callbacks run on worker goroutines and must be safe for concurrent use.
type Event struct {
	Kind     EventKind
	Total    int
	Path     string
	Status   Status
	Elements int
	Warning  string
	Err      error
}

type Options struct {
	// Root defaults to the config directory.
	Root     string
	Force    bool
	Parallel int
	OnEvent  func(Event)
}

type RunResult struct {
	Index    *Index
	Files    int
	Scanned  int
	Reused   int
	Skipped  int
	Errors   int
	Removed  int
	Elements int
	Duration time.Duration
}

type fileState struct {
	status Status
	file   *File
	entry  *lockfile.Entry
	err    error
}

// Run indexes every matching file below the root and writes index.json and
// the lock file to cfg.Output. Per-file read errors do not stop the run; they
// are reported through events and a final error once everything else is saved.
func Run(ctx context.Context, cfg *config.Config, reg *parser.Registry, opts Options) (*RunResult, error) {
	if cfg == nil || reg == nil {
		return nil, oops.
			Code("CONFIG_INVALID").
			Errorf("config and registry are required")
	}

	started := time.Now()

	root := opts.Root
	if root == "" {
		root = cfg.ConfigDir
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, oops.Wrapf(err, "resolving index root")
	}

	outputDir := cfg.OutputDir()

	paths, err := Collect(ctx, root, cfg.Include, cfg.Exclude)
	if err != nil {
		return nil, err
	}
	paths = withoutOutput(paths, root, outputDir)

	previous, lock, err := loadState(outputDir, opts.Force)
	if err != nil {
		return nil, err
	}

	parallel := opts.Parallel
	if parallel <= 0 {
		parallel = cfg.Parallel
	}

	emit := opts.OnEvent
	if emit == nil {
		emit = func(Event) {}
	}

	emit(Event{Kind: EventRunStart, Total: len(paths)})

	previousFiles := byPath(previous)
	states := make([]fileState, len(paths))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(parallel)

	for i, rel := range paths {
		prevFile := previousFiles[rel]
		prevEntry := lock.Get(rel)

		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			emit(Event{Kind: EventFileStart, Path: rel})

			state := indexFile(filepath.Join(root, filepath.FromSlash(rel)), rel, fileInput{
				previous: prevFile,
				entry:    prevEntry,
				force:    opts.Force,
				maxSize:  cfg.MaxFileSize,
				registry: reg,
			})
			states[i] = state

			done := Event{Kind: EventFileDone, Path: rel, Status: state.status, Err: state.err}
			if state.file != nil {
				done.Elements = element.Count(state.file.Elements)
				done.Warning = state.file.Warning
			}
			emit(done)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, oops.
			Code("INDEX_WRITE_ERROR").
			Wrapf(err, "waiting for index workers")
	}

	result := &RunResult{Index: New(root), Files: len(paths)}
	keep := make(map[string]struct{}, len(paths))

	for i, rel := range paths {
		state := states[i]
		switch state.status {
		case StatusScanned:
			result.Scanned++
		case StatusReused:
			result.Reused++
		case StatusSkipped:
			result.Skipped++
		case StatusFailed:
			result.Errors++
			continue
		}

		keep[rel] = struct{}{}
		result.Index.Files = append(result.Index.Files, *state.file)
		if state.entry != nil {
			lock.Set(rel, state.entry)
		} else {
			lock.Remove(rel)
		}
	}

	result.Removed = lock.Prune(keep)
	result.Elements = result.Index.ElementCount()

	if err := result.Index.Save(outputDir); err != nil {
		return nil, err
	}
	if err := lock.Save(outputDir); err != nil {
		return nil, err
	}

	result.Duration = time.Since(started)

	if result.Errors > 0 {
		return result, oops.
			Code("FILE_READ_ERROR").
			With("failed_files", result.Errors).
			Errorf("%d file(s) could not be indexed", result.Errors)
	}

	return result, nil
}

func loadState(outputDir string, force bool) (*Index, *lockfile.LockFile, error) {
	if force {
		return nil, lockfile.New(), nil
	}

	var previous *Index
	if Exists(outputDir) {
		loaded, err := Load(outputDir)
		if err != nil {
			return nil, nil, err
		}
		previous = loaded
	}

	lock, err := lockfile.Load(outputDir)
	if err != nil {
		return nil, nil, err
	}

	return previous, lock, nil
}

func withoutOutput(paths []string, root string, outputDir string) []string {
	rel, err := filepath.Rel(root, outputDir)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return paths
	}

	prefix := filepath.ToSlash(rel) + "/"
	out := paths[:0]
	for _, p := range paths {
		if !strings.HasPrefix(p, prefix) {
			out = append(out, p)
		}
	}
	return out
}

func byPath(ix *Index) map[string]*File {
	files := make(map[string]*File)
	if ix == nil {
		return files
	}
	for i := range ix.Files {
		files[ix.Files[i].Path] = &ix.Files[i]
	}
	return files
}

type fileInput struct {
	previous *File
	entry    *lockfile.Entry
	force    bool
	maxSize  int64
	registry *parser.Registry
}

func indexFile(absPath string, rel string, in fileInput) fileState {
	key := parser.DetectKind(rel)

	info, err := os.Stat(absPath)
	if err != nil {
		return fileState{status: StatusFailed, err: oops.
			Code("FILE_READ_ERROR").
			With("path", rel).
			Wrapf(err, "checking file %q", rel)}
	}

	file := &File{
		Path:     rel,
		Key:      key,
		Scanner:  in.registry.Name(key),
		Size:     info.Size(),
		Modified: info.ModTime().UTC(),
		Elements: []element.Element{},
	}

	if !in.registry.Supports(key) {
		file.Warning = WarnUnsupported
		return fileState{status: StatusSkipped, file: file}
	}

	reusable := !in.force && in.previous != nil && scannedWarning(in.previous.Warning) &&
		in.previous.Key == key && in.previous.Scanner == file.Scanner
	if reusable && !in.entry.Stale(info.Size(), info.ModTime()) {
		return fileState{status: StatusReused, file: in.previous, entry: in.entry}
	}

	if in.maxSize > 0 && info.Size() > in.maxSize {
		file.Warning = WarnTooLarge
		return fileState{status: StatusSkipped, file: file}
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return fileState{status: StatusFailed, err: oops.
			Code("FILE_READ_ERROR").
			With("path", rel).
			Wrapf(err, "reading file %q", rel)}
	}

	if parser.IsBinary(content) {
		file.Warning = WarnBinary
		return fileState{status: StatusSkipped, file: file}
	}

	entry := &lockfile.Entry{
		Size:      info.Size(),
		ModTime:   info.ModTime(),
		SHA256:    lockfile.Digest(content),
		Key:       key,
		IndexedAt: time.Now().UTC(),
	}

	if reusable && in.entry != nil && in.entry.SHA256 == entry.SHA256 {
		entry.IndexedAt = in.entry.IndexedAt
		reused := *in.previous
		reused.Modified = file.Modified
		return fileState{status: StatusReused, file: &reused, entry: entry}
	}

	if !parser.IsValidUTF8(content) {
		file.Warning = WarnInvalidUTF8
	}

	lines := parser.Lines(content)
	elements, _ := in.registry.Scan(key, lines, 0)
	if elements != nil {
		file.Elements = elements
	}
	file.Lines = len(lines)

	return fileState{status: StatusScanned, file: file, entry: entry}
}

// scannedWarning reports whether a file carrying warning still had its
// elements recorded.
func scannedWarning(warning string) bool {
	return warning == "" || warning == WarnInvalidUTF8
}
