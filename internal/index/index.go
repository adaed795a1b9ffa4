// Package index builds and stores outlines for a whole directory tree.
package index

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/samber/oops"

	"github.com/g5becks/outline/internal/element"
	"github.com/g5becks/outline/internal/lockfile"
)

const (
	CurrentVersion = 1
	FileName       = "index.json"
)

// Warnings recorded on files that were listed but not scanned.
const (
	WarnTooLarge    = "file_too_large"
	WarnBinary      = "binary"
	WarnUnsupported = "unsupported_kind"
)

// WarnInvalidUTF8 marks a file that was scanned although its text is not
// valid UTF-8. Its elements are kept.
const WarnInvalidUTF8 = "invalid_utf8"

type Index struct {
	Version   int       `json:"version"`
	Generated time.Time `json:"generated"`
	Root      string    `json:"root"`
	Files     []File    `json:"files"`
}

// File is the outline of one source file. Path is slash separated and
// relative to Index.Root.
type File struct {
	Path     string            `json:"path"`
	Key      string            `json:"key"`
	Scanner  string            `json:"scanner,omitempty"`
	Size     int64             `json:"size"`
	Lines    int               `json:"lines"`
	Modified time.Time         `json:"modified"`
	Warning  string            `json:"warning,omitempty"`
	Elements []element.Element `json:"elements"`
}

func New(root string) *Index {
	return &Index{
		Version:   CurrentVersion,
		Generated: time.Now().UTC(),
		Root:      root,
		Files:     []File{},
	}
}

func Path(outputDir string) string {
	return filepath.Join(outputDir, FileName)
}

// Exists reports whether an index file is present in outputDir.
func Exists(outputDir string) bool {
	_, err := os.Stat(Path(outputDir))
	return err == nil
}

func Load(outputDir string) (*Index, error) {
	indexPath := Path(outputDir)
	data, err := os.ReadFile(indexPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, oops.
				Code("INDEX_NOT_FOUND").
				With("path", indexPath).
				Hint("Run 'outline index' to build the index").
				Errorf("index not found at %q", indexPath)
		}

		return nil, oops.
			Code("INDEX_NOT_FOUND").
			With("path", indexPath).
			Wrapf(err, "reading index file")
	}

	ix := &Index{}
	if unmarshalErr := json.Unmarshal(data, ix); unmarshalErr != nil {
		return nil, oops.
			Code("INDEX_CORRUPTED").
			With("path", indexPath).
			Hint("Run 'outline index --force' to rebuild it").
			Wrapf(unmarshalErr, "parsing index file")
	}

	if ix.Version != CurrentVersion {
		return nil, oops.
			Code("INDEX_CORRUPTED").
			With("path", indexPath).
			With("version", ix.Version).
			Hint("Run 'outline index --force' to rebuild it").
			Errorf("unsupported index version %d", ix.Version)
	}

	if ix.Files == nil {
		ix.Files = []File{}
	}

	return ix, nil
}

// Save writes the index atomically. Files are stored in path order.
func (ix *Index) Save(outputDir string) error {
	if ix == nil {
		return oops.
			Code("INDEX_WRITE_ERROR").
			Hint("Initialize the index before saving").
			Errorf("cannot save nil index")
	}

	sort.Slice(ix.Files, func(i, j int) bool {
		return ix.Files[i].Path < ix.Files[j].Path
	})

	data, err := json.MarshalIndent(ix, "", "  ")
	if err != nil {
		return oops.
			Code("INDEX_WRITE_ERROR").
			Wrapf(err, "encoding index")
	}

	return lockfile.WriteAtomic(Path(outputDir), append(data, '\n'), "INDEX_WRITE_ERROR")
}

// Lookup finds a file by its relative path.
func (ix *Index) Lookup(path string) (*File, bool) {
	if ix == nil {
		return nil, false
	}
	for i := range ix.Files {
		if ix.Files[i].Path == path {
			return &ix.Files[i], true
		}
	}
	return nil, false
}

// ElementCount totals the non-synthetic elements across files.
func (ix *Index) ElementCount() int {
	if ix == nil {
		return 0
	}
	total := 0
	for _, file := range ix.Files {
		total += element.Count(file.Elements)
	}
	return total
}
