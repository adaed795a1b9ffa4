package index_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/g5becks/outline/internal/index"
)

func TestCollect(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{
		"src/App.cs",
		"src/view.vue",
		"src/deep/util.ts",
		"README.md",
		"notes.txt",
		"node_modules/pkg/index.js",
		"bin/Debug/App.cs",
	} {
		writeTree(t, root, rel, "x")
	}

	tests := []struct {
		name    string
		include []string
		exclude []string
		want    []string
	}{
		{
			name:    "default style patterns",
			include: []string{"**/*.cs", "**/*.{ts,js,vue}", "**/*.md"},
			exclude: []string{"**/node_modules/**", "**/bin/**"},
			want:    []string{"README.md", "src/App.cs", "src/deep/util.ts", "src/view.vue"},
		},
		{
			name:    "scoped include",
			include: []string{"src/**/*.ts"},
			want:    []string{"src/deep/util.ts"},
		},
		{
			name:    "file exclude",
			include: []string{"**/*"},
			exclude: []string{"**/*.txt", "node_modules/**", "bin/**", "src/**"},
			want:    []string{"README.md"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := index.Collect(context.Background(), root, tt.include, tt.exclude)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCollectMissingRoot(t *testing.T) {
	_, err := index.Collect(context.Background(), filepath.Join(t.TempDir(), "missing"), []string{"**/*"}, nil)
	require.Error(t, err)
}

func TestCollectHonorsCancellation(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a.cs", "x")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := index.Collect(ctx, root, []string{"**/*"}, nil)
	require.Error(t, err)
}

func writeTree(t *testing.T, root string, rel string, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSelectedAndPrunedDir(t *testing.T) {
	include := []string{"**/*.cs"}
	exclude := []string{"**/obj/**"}

	assert.True(t, index.Selected("src/A.cs", include, exclude))
	assert.False(t, index.Selected("src/obj/A.cs", include, exclude))
	assert.False(t, index.Selected("src/A.ts", include, exclude))
	assert.True(t, index.PrunedDir("src/obj", exclude))
	assert.False(t, index.PrunedDir("src", exclude))
}
