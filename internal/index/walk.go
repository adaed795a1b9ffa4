package index

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/samber/oops"
)

// Collect walks root and returns the slash separated relative paths of files
// matching at least one include pattern and no exclude pattern, sorted.
// Excluded directories are not descended into.
func Collect(ctx context.Context, root string, include []string, exclude []string) ([]string, error) {
	var paths []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." && PrunedDir(rel, exclude) {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		if Selected(rel, include, exclude) {
			paths = append(paths, rel)
		}
		return nil
	})
	if err != nil {
		return nil, oops.
			Code("FILE_READ_ERROR").
			With("root", root).
			Wrapf(err, "walking %q", root)
	}

	sort.Strings(paths)
	return paths, nil
}

// Selected reports whether the relative file path rel is indexed.
func Selected(rel string, include []string, exclude []string) bool {
	return matchAny(include, rel) && !matchAny(exclude, rel)
}

// PrunedDir reports whether the relative directory rel is excluded.
func PrunedDir(rel string, exclude []string) bool {
	return matchAny(exclude, rel) || matchAny(exclude, rel+"/")
}

func matchAny(patterns []string, name string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}
