// Package lockfile records per-file fingerprints so unchanged files can be
// reused between index runs.
package lockfile

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/samber/oops"
)

const (
	FileName       = ".outline.lock"
	currentVersion = 1
)

type LockFile struct {
	Version int               `json:"version"`
	Files   map[string]*Entry `json:"files"`
}

// Entry fingerprints one indexed file.
type Entry struct {
	Size      int64     `json:"size"`
	ModTime   time.Time `json:"mod_time"`
	SHA256    string    `json:"sha256"`
	Key       string    `json:"key"`
	IndexedAt time.Time `json:"indexed_at"`
}

// Stale reports whether the cheap size and mtime check says the file changed.
func (e *Entry) Stale(size int64, modTime time.Time) bool {
	return e == nil || e.Size != size || !e.ModTime.Equal(modTime)
}

// Digest returns the hex sha256 of content.
func Digest(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Load reads the lock file from outputDir. A missing file yields an empty lock.
func Load(outputDir string) (*LockFile, error) {
	lockPath := filepath.Join(outputDir, FileName)
	data, err := os.ReadFile(lockPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return New(), nil
		}

		return nil, oops.
			Code("LOCK_ERROR").
			With("path", lockPath).
			Wrapf(err, "reading lock file")
	}

	lock := &LockFile{}
	if unmarshalErr := json.Unmarshal(data, lock); unmarshalErr != nil {
		return nil, oops.
			Code("LOCK_ERROR").
			With("path", lockPath).
			Hint("Delete the lock file or run 'outline index --force' to regenerate it").
			Wrapf(unmarshalErr, "parsing lock file")
	}

	if lock.Version == 0 {
		lock.Version = currentVersion
	}

	if lock.Files == nil {
		lock.Files = map[string]*Entry{}
	}

	return lock, nil
}

func New() *LockFile {
	return &LockFile{
		Version: currentVersion,
		Files:   map[string]*Entry{},
	}
}

// Save writes the lock file atomically through a temp file and rename.
func (l *LockFile) Save(outputDir string) error {
	if l == nil {
		return oops.
			Code("LOCK_ERROR").
			Hint("Initialize lock file state before saving").
			Errorf("cannot save nil lock file")
	}

	if l.Version == 0 {
		l.Version = currentVersion
	}

	if l.Files == nil {
		l.Files = map[string]*Entry{}
	}

	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return oops.
			Code("LOCK_ERROR").
			Wrapf(err, "encoding lock file")
	}

	return WriteAtomic(filepath.Join(outputDir, FileName), append(data, '\n'), "LOCK_ERROR")
}

func (l *LockFile) Get(path string) *Entry {
	if l == nil {
		return nil
	}

	return l.Files[path]
}

func (l *LockFile) Set(path string, entry *Entry) {
	if l == nil {
		return
	}

	if l.Files == nil {
		l.Files = map[string]*Entry{}
	}

	l.Files[path] = entry
}

func (l *LockFile) Remove(path string) {
	if l == nil || l.Files == nil {
		return
	}

	delete(l.Files, path)
}

// Prune drops entries whose path is not in keep and returns how many went.
func (l *LockFile) Prune(keep map[string]struct{}) int {
	if l == nil {
		return 0
	}

	removed := 0
	for path := range l.Files {
		if _, ok := keep[path]; !ok {
			delete(l.Files, path)
			removed++
		}
	}
	return removed
}

// WriteAtomic writes data to path through a temp file in the same
// directory, creating the directory first. Failures carry code.
func WriteAtomic(path string, data []byte, code string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return oops.
			Code(code).
			With("path", dir).
			Wrapf(err, "creating directory")
	}

	tempFile, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return oops.
			Code(code).
			With("path", dir).
			Wrapf(err, "creating temporary file")
	}

	tempPath := tempFile.Name()
	defer func() {
		_ = os.Remove(tempPath)
	}()

	if _, writeErr := tempFile.Write(data); writeErr != nil {
		_ = tempFile.Close()
		return oops.
			Code(code).
			With("path", tempPath).
			Wrapf(writeErr, "writing temporary file")
	}

	if closeErr := tempFile.Close(); closeErr != nil {
		return oops.
			Code(code).
			With("path", tempPath).
			Wrapf(closeErr, "closing temporary file")
	}

	if renameErr := os.Rename(tempPath, path); renameErr != nil {
		return oops.
			Code(code).
			With("from", tempPath).
			With("to", path).
			Wrapf(renameErr, "replacing %s", filepath.Base(path))
	}

	return nil
}
