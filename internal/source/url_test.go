package source_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/g5becks/outline/internal/config"
	"github.com/g5becks/outline/internal/source"
)

func TestKeyFromURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		rawURL      string
		contentType string
		want        string
	}{
		{name: "path extension", rawURL: "https://example.test/src/App.VUE", want: ".vue"},
		{name: "extension wins over header", rawURL: "https://example.test/a.cs", contentType: "text/html", want: ".cs"},
		{name: "query ignored", rawURL: "https://example.test/readme.md?lang=en", want: ".md"},
		{name: "content type fallback", rawURL: "https://example.test/", contentType: "text/html; charset=utf-8", want: ".html"},
		{name: "markdown content type", rawURL: "https://example.test/docs", contentType: "text/markdown", want: ".md"},
		{name: "unknown", rawURL: "https://example.test/docs", contentType: "application/octet-stream", want: ""},
		{name: "no header", rawURL: "https://example.test/docs", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, source.KeyFromURL(tt.rawURL, tt.contentType))
		})
	}
}

func TestFetchReturnsDocument(t *testing.T) {
	t.Parallel()

	var userAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		w.Header().Set("Last-Modified", "Tue, 15 Jan 2024 10:30:00 GMT")
		_, _ = w.Write([]byte("<div id=\"app\"></div>\n"))
	}))
	defer server.Close()

	cfg := config.Default(t.TempDir())
	cfg.Remote.UserAgent = "outline-test"
	cfg.Remote.Retries = 0
	loader := source.NewLoader(cfg)
	defer func() { _ = loader.Close() }()

	doc, err := loader.Load(context.Background(), server.URL+"/page")
	require.NoError(t, err)

	assert.Equal(t, "outline-test", userAgent)
	assert.True(t, doc.Remote)
	assert.Equal(t, ".html", doc.Key)
	assert.Equal(t, []string{`<div id="app"></div>`}, doc.Lines())
	assert.Equal(t, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), doc.ModTime)
}

func TestFetchReturnsErrorOnFailureStatus(t *testing.T) {
	t.Parallel()

	loader := source.NewLoader(config.Default(t.TempDir()))
	loader.SetClient(source.NewMockRestyClient(func(req *http.Request) *http.Response {
		return source.NewHTTPResponse(req, http.StatusBadGateway, "gateway error", nil)
	}))

	_, err := loader.Fetch(context.Background(), "https://example.test/a.md")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-success status 502")
}

func TestFetchEnforcesMaxSize(t *testing.T) {
	t.Parallel()

	cfg := config.Default(t.TempDir())
	cfg.MaxFileSize = 8
	loader := source.NewLoader(cfg)
	loader.SetClient(source.NewMockRestyClient(func(req *http.Request) *http.Response {
		return source.NewHTTPResponse(req, http.StatusOK, strings.Repeat("a", 32), nil)
	}))

	_, err := loader.Fetch(context.Background(), "https://example.test/a.md")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "larger than 8 bytes")
}

func TestFetchRejectsBinary(t *testing.T) {
	t.Parallel()

	loader := source.NewLoader(config.Default(t.TempDir()))
	loader.SetClient(source.NewMockRestyClient(func(req *http.Request) *http.Response {
		return source.NewHTTPResponse(req, http.StatusOK, "PK\x00\x03", nil)
	}))

	_, err := loader.Fetch(context.Background(), "https://example.test/a.md")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "looks binary")
}
