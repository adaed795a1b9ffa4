// Package source loads documents for scanning from local files and URLs.
package source

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/samber/oops"
	"resty.dev/v3"

	"github.com/g5becks/outline/internal/config"
	"github.com/g5becks/outline/internal/parser"
)

// Document is a loaded input ready for a scanner.
type Document struct {
	// Ref is the path or URL the document was loaded from.
	Ref     string
	Key     string
	Content []byte
	Size    int64
	ModTime time.Time
	Remote  bool
	// ValidUTF8 is false for text in a legacy encoding. Such documents are
	// still scanned but names may be garbled.
	ValidUTF8 bool
}

// Lines splits the content the way scanners expect it.
func (d *Document) Lines() []string {
	return parser.Lines(d.Content)
}

// Loader reads documents, fetching URLs through a shared HTTP client.
type Loader struct {
	maxSize int64
	client  *resty.Client
}

// NewLoader builds a Loader from the size and remote settings in cfg.
func NewLoader(cfg *config.Config) *Loader {
	return &Loader{
		maxSize: cfg.MaxFileSize,
		client:  newHTTPClient(cfg.Remote),
	}
}

func (l *Loader) Close() error {
	return l.client.Close()
}

// Load dispatches on ref: URLs are fetched, everything else is read from disk.
func (l *Loader) Load(ctx context.Context, ref string) (*Document, error) {
	if IsURL(ref) {
		return l.Fetch(ctx, ref)
	}
	return ReadFile(ref, l.maxSize)
}

// IsURL reports whether ref is an http or https URL.
func IsURL(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// ReadFile reads a local document. Files over maxSize and binary files are
// rejected. A maxSize of zero disables the size check.
func ReadFile(path string, maxSize int64) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, oops.
				Code("FILE_READ_ERROR").
				With("path", path).
				Hint("Check the path and try again").
				Errorf("file %q does not exist", path)
		}
		return nil, oops.
			Code("FILE_READ_ERROR").
			With("path", path).
			Wrapf(err, "checking file %q", path)
	}

	if info.IsDir() {
		return nil, oops.
			Code("FILE_READ_ERROR").
			With("path", path).
			Hint("Use 'outline index' to scan a directory").
			Errorf("%q is a directory", path)
	}

	if maxSize > 0 && info.Size() > maxSize {
		return nil, oops.
			Code("FILE_TOO_LARGE").
			With("path", path).
			With("size", info.Size()).
			With("max_file_size", maxSize).
			Hint("Raise max_file_size in outline.toml").
			Errorf("file %q is %d bytes, limit is %d", path, info.Size(), maxSize)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, oops.
			Code("FILE_READ_ERROR").
			With("path", path).
			Wrapf(err, "reading file %q", path)
	}

	if parser.IsBinary(content) {
		return nil, oops.
			Code("BINARY_FILE").
			With("path", path).
			Errorf("file %q looks binary", path)
	}

	return &Document{
		Ref:       path,
		Key:       parser.DetectKind(path),
		Content:   content,
		Size:      info.Size(),
		ModTime:   info.ModTime(),
		ValidUTF8: parser.IsValidUTF8(content),
	}, nil
}
