package source

import (
	"context"
	"io"
	"mime"
	neturl "net/url"
	"path"
	"strings"
	"time"

	"github.com/samber/oops"
	"resty.dev/v3"

	"github.com/g5becks/outline/internal/config"
	"github.com/g5becks/outline/internal/parser"
)

const (
	defaultUserAgent = "outline"
	retryWait        = 500 * time.Millisecond
	retryMaxWait     = 5 * time.Second
)

// contentTypeKeys maps media types to file kind keys for URLs without a
// usable extension.
var contentTypeKeys = map[string]string{ //nolint:gochecknoglobals // read-only lookup table
	"text/html":              ".html",
	"application/xhtml+xml":  ".html",
	"text/xml":               ".xml",
	"application/xml":        ".xml",
	"image/svg+xml":          ".svg",
	"text/markdown":          ".md",
	"text/x-markdown":        ".md",
	"text/javascript":        ".js",
	"application/javascript": ".js",
	"application/typescript": ".ts",
	"text/x-java-source":     ".java",
	"text/x-java":            ".java",
	"text/x-csharp":          ".cs",
}

func newHTTPClient(cfg config.Remote) *resty.Client {
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	client := resty.New()
	client.SetHeader("User-Agent", userAgent)
	client.SetRetryCount(cfg.Retries)
	client.SetRetryWaitTime(retryWait)
	client.SetRetryMaxWaitTime(retryMaxWait)
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	return client
}

// Fetch downloads rawURL. The file kind comes from the URL path extension,
// falling back to the response Content-Type.
func (l *Loader) Fetch(ctx context.Context, rawURL string) (*Document, error) {
	response, err := l.client.R().
		SetContext(ctx).
		Get(rawURL)
	if err != nil {
		return nil, oops.
			Code("FETCH_FAILED").
			With("url", rawURL).
			Hint("Check the URL and your network connection").
			Wrapf(err, "fetching %q", rawURL)
	}

	if !response.IsSuccess() {
		return nil, oops.
			Code("FETCH_FAILED").
			With("url", rawURL).
			With("status", response.StatusCode()).
			Errorf("%q returned non-success status %d", rawURL, response.StatusCode())
	}

	var body io.Reader = response.Body
	if l.maxSize > 0 {
		body = io.LimitReader(response.Body, l.maxSize+1)
	}

	content, err := io.ReadAll(body)
	if err != nil {
		return nil, oops.
			Code("FETCH_FAILED").
			With("url", rawURL).
			Wrapf(err, "reading response body")
	}

	if l.maxSize > 0 && int64(len(content)) > l.maxSize {
		return nil, oops.
			Code("FILE_TOO_LARGE").
			With("url", rawURL).
			With("max_file_size", l.maxSize).
			Hint("Raise max_file_size in outline.toml").
			Errorf("%q is larger than %d bytes", rawURL, l.maxSize)
	}

	if parser.IsBinary(content) {
		return nil, oops.
			Code("BINARY_FILE").
			With("url", rawURL).
			Errorf("%q looks binary", rawURL)
	}

	return &Document{
		Ref:       rawURL,
		Key:       keyFromURL(rawURL, response.Header().Get("Content-Type")),
		Content:   content,
		Size:      int64(len(content)),
		ModTime:   lastModified(response.Header().Get("Last-Modified")),
		Remote:    true,
		ValidUTF8: parser.IsValidUTF8(content),
	}, nil
}

func keyFromURL(rawURL string, contentType string) string {
	parsed, err := neturl.Parse(rawURL)
	if err == nil {
		if ext := path.Ext(parsed.Path); ext != "" {
			return parser.NormalizeKey(ext)
		}
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return contentTypeKeys[strings.ToLower(mediaType)]
}

func lastModified(header string) time.Time {
	if header == "" {
		return time.Time{}
	}
	parsed, err := time.Parse(time.RFC1123, header)
	if err != nil {
		return time.Time{}
	}
	return parsed.UTC()
}
