package index_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/g5becks/outline/internal/config"
	"github.com/g5becks/outline/internal/element"
	"github.com/g5becks/outline/internal/index"
	"github.com/g5becks/outline/internal/lockfile"
	"github.com/g5becks/outline/internal/parser"
)

const csharpSource = `namespace Shop
{
    public class Cart
    {
        /// <summary>Adds an item.</summary>
        public void Add(Item item) { }
    }
}
`

const markdownSource = "# Guide\n\nIntro.\n\n## Install\n"

type eventLog struct {
	mu     sync.Mutex
	events []index.Event
}

func (l *eventLog) handle(e index.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) done() map[string]index.Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	statuses := map[string]index.Status{}
	for _, e := range l.events {
		if e.Kind == index.EventFileDone {
			statuses[e.Path] = e.Status
		}
	}
	return statuses
}

func newProject(t *testing.T) (string, *config.Config) {
	t.Helper()
	root := t.TempDir()
	writeTree(t, root, "src/Cart.cs", csharpSource)
	writeTree(t, root, "docs/guide.md", markdownSource)
	return root, config.Default(root)
}

func TestRunIndexesProject(t *testing.T) {
	root, cfg := newProject(t)
	log := &eventLog{}

	result, err := index.Run(context.Background(), cfg, parser.DefaultRegistry(), index.Options{OnEvent: log.handle})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Files)
	assert.Equal(t, 2, result.Scanned)
	assert.Zero(t, result.Reused)
	assert.Equal(t, map[string]index.Status{
		"docs/guide.md": index.StatusScanned,
		"src/Cart.cs":   index.StatusScanned,
	}, log.done())
	require.NotEmpty(t, log.events)
	assert.Equal(t, index.EventRunStart, log.events[0].Kind)
	assert.Equal(t, 2, log.events[0].Total)

	loaded, err := index.Load(filepath.Join(root, config.DefaultOutput))
	require.NoError(t, err)
	require.Len(t, loaded.Files, 2)
	assert.Equal(t, "docs/guide.md", loaded.Files[0].Path)

	cart, ok := loaded.Lookup("src/Cart.cs")
	require.True(t, ok)
	assert.Equal(t, ".cs", cart.Key)
	assert.Equal(t, "csharp", cart.Scanner)
	assert.Equal(t, 8, cart.Lines)
	require.Len(t, cart.Elements, 1)
	assert.Equal(t, "Shop", cart.Elements[0].Name)
	assert.Equal(t, "Cart", cart.Elements[0].Children[0].Name)
	assert.Equal(t, 5, result.Elements)

	lock, err := lockfile.Load(filepath.Join(root, config.DefaultOutput))
	require.NoError(t, err)
	assert.Equal(t, lockfile.Digest([]byte(csharpSource)), lock.Get("src/Cart.cs").SHA256)
}

func TestRunReusesUnchangedFiles(t *testing.T) {
	root, cfg := newProject(t)
	reg := parser.DefaultRegistry()

	_, err := index.Run(context.Background(), cfg, reg, index.Options{})
	require.NoError(t, err)

	writeTree(t, root, "docs/guide.md", markdownSource+"\n## Usage\n")
	log := &eventLog{}

	result, err := index.Run(context.Background(), cfg, reg, index.Options{OnEvent: log.handle})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Reused)
	assert.Equal(t, 1, result.Scanned)
	assert.Equal(t, index.StatusReused, log.done()["src/Cart.cs"])
	assert.Equal(t, index.StatusScanned, log.done()["docs/guide.md"])

	guide, ok := result.Index.Lookup("docs/guide.md")
	require.True(t, ok)
	assert.Equal(t, []string{"Install", "Usage"}, names(guide.Elements[0].Children))
}

func TestRunKeepsElementsOfInvalidUTF8Files(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "src/Legacy.cs", "// caf\xe9 menu\npublic class Legacy\n{\n}\n")
	cfg := config.Default(root)
	reg := parser.DefaultRegistry()

	result, err := index.Run(context.Background(), cfg, reg, index.Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Scanned)
	assert.Zero(t, result.Skipped)
	legacy, ok := result.Index.Lookup("src/Legacy.cs")
	require.True(t, ok)
	assert.Equal(t, index.WarnInvalidUTF8, legacy.Warning)
	assert.Equal(t, []string{"Legacy"}, names(legacy.Elements))

	log := &eventLog{}
	result, err = index.Run(context.Background(), cfg, reg, index.Options{OnEvent: log.handle})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Reused)
	assert.Equal(t, index.StatusReused, log.done()["src/Legacy.cs"])
}

func TestRunReusesWhenOnlyMtimeChanged(t *testing.T) {
	root, cfg := newProject(t)
	reg := parser.DefaultRegistry()

	_, err := index.Run(context.Background(), cfg, reg, index.Options{})
	require.NoError(t, err)

	later := time.Now().Add(time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(filepath.Join(root, "src", "Cart.cs"), later, later))

	result, err := index.Run(context.Background(), cfg, reg, index.Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Reused)

	cart, ok := result.Index.Lookup("src/Cart.cs")
	require.True(t, ok)
	assert.True(t, cart.Modified.Equal(later.UTC()))
}

func TestRunForceRescansEverything(t *testing.T) {
	_, cfg := newProject(t)
	reg := parser.DefaultRegistry()

	_, err := index.Run(context.Background(), cfg, reg, index.Options{})
	require.NoError(t, err)

	result, err := index.Run(context.Background(), cfg, reg, index.Options{Force: true, Parallel: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Scanned)
	assert.Zero(t, result.Reused)
}

func TestRunDropsDeletedFiles(t *testing.T) {
	root, cfg := newProject(t)
	reg := parser.DefaultRegistry()

	_, err := index.Run(context.Background(), cfg, reg, index.Options{})
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(root, "docs", "guide.md")))

	result, err := index.Run(context.Background(), cfg, reg, index.Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Files)
	assert.Equal(t, 1, result.Removed)

	_, ok := result.Index.Lookup("docs/guide.md")
	assert.False(t, ok)
}

func TestRunRecordsSkippedFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "big.md", "# Big\n\nlots of text here\n")
	writeTree(t, root, "logo.svg", "\x00\x01binary")
	writeTree(t, root, "notes.txt", "plain")

	cfg := config.Default(root)
	cfg.Include = []string{"**/*"}
	cfg.MaxFileSize = 8

	result, err := index.Run(context.Background(), cfg, parser.DefaultRegistry(), index.Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Skipped)

	warnings := map[string]string{}
	for _, f := range result.Index.Files {
		warnings[f.Path] = f.Warning
	}
	assert.Equal(t, map[string]string{
		"big.md":    index.WarnTooLarge,
		"logo.svg":  index.WarnBinary,
		"notes.txt": index.WarnUnsupported,
	}, warnings)

	cfg.MaxFileSize = 1024
	result, err = index.Run(context.Background(), cfg, parser.DefaultRegistry(), index.Options{})
	require.NoError(t, err)
	svg, ok := result.Index.Lookup("logo.svg")
	require.True(t, ok)
	assert.Equal(t, index.WarnBinary, svg.Warning)
	big, ok := result.Index.Lookup("big.md")
	require.True(t, ok)
	assert.Empty(t, big.Warning)
	assert.Equal(t, []string{"Big"}, names(big.Elements))
}

func TestRunSkipsOutputDirectory(t *testing.T) {
	root, cfg := newProject(t)
	cfg.Exclude = []string{}
	reg := parser.DefaultRegistry()

	_, err := index.Run(context.Background(), cfg, reg, index.Options{})
	require.NoError(t, err)

	writeTree(t, root, ".outline/stray.md", "# stray\n")

	result, err := index.Run(context.Background(), cfg, reg, index.Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Files)
}

func TestRunIsDeterministicAcrossParallelism(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{"a.ts", "b.js", "c/d.java", "c/e.html", "f.vue", "g.mdx"} {
		writeTree(t, root, rel, "class Model {\n}\n")
	}
	cfg := config.Default(root)
	reg := parser.DefaultRegistry()

	serial, err := index.Run(context.Background(), cfg, reg, index.Options{Force: true, Parallel: 1})
	require.NoError(t, err)
	parallel, err := index.Run(context.Background(), cfg, reg, index.Options{Force: true, Parallel: 8})
	require.NoError(t, err)

	require.Len(t, parallel.Index.Files, len(serial.Index.Files))
	for i := range serial.Index.Files {
		assert.Equal(t, serial.Index.Files[i].Path, parallel.Index.Files[i].Path)
		assert.Equal(t, serial.Index.Files[i].Elements, parallel.Index.Files[i].Elements)
	}
}

func TestRunRequiresConfig(t *testing.T) {
	_, err := index.Run(context.Background(), nil, parser.DefaultRegistry(), index.Options{})
	require.Error(t, err)
}

func TestRunRejectsCorruptedIndexUnlessForced(t *testing.T) {
	root, cfg := newProject(t)
	writeTree(t, root, ".outline/index.json", "{")

	_, err := index.Run(context.Background(), cfg, parser.DefaultRegistry(), index.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing index file")

	_, err = index.Run(context.Background(), cfg, parser.DefaultRegistry(), index.Options{Force: true})
	require.NoError(t, err)
}

func names(elems []element.Element) []string {
	out := []string{}
	for _, e := range elems {
		if !e.Synthetic {
			out = append(out, e.Name)
		}
	}
	return out
}
