// Package search finds elements in an index by fuzzy name match.
package search

import (
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sahilm/fuzzy"
	"github.com/samber/oops"

	"github.com/g5becks/outline/internal/element"
	"github.com/g5becks/outline/internal/index"
)

const (
	FieldName    = "name"
	FieldComment = "comment"
)

// Result is one matched element.
type Result struct {
	Path       string       `json:"path"`
	Name       string       `json:"name"`
	Kind       element.Kind `json:"kind"`
	Line       int          `json:"line"`
	Scope      string       `json:"scope,omitempty"`
	Comment    string       `json:"comment,omitempty"`
	MatchField string       `json:"match_field"`
	Score      int          `json:"score"`
}

type Options struct {
	Query string
	// Kind restricts results to one element kind when set.
	Kind element.Kind
	// Path is a doublestar pattern over indexed file paths.
	Path string
	// Docs also matches against doc comments.
	Docs  bool
	Limit int
}

type entry struct {
	id         int
	path       string
	scope      string
	element    element.Element
	matchField string
	matchValue string
}

type entries []entry

func (s entries) String(i int) string {
	return s[i].matchValue
}

func (s entries) Len() int {
	return len(s)
}

// Elements performs a fuzzy search over the non-synthetic elements of ix.
// Each element appears at most once, with its best scoring field.
func Elements(ix *index.Index, opts Options) ([]Result, error) {
	query := strings.TrimSpace(opts.Query)
	if query == "" {
		return nil, oops.
			Code("INVALID_ARGS").
			Hint("Provide a non-empty search query").
			Errorf("search query cannot be empty")
	}

	if opts.Kind != "" && !opts.Kind.Valid() {
		return nil, oops.
			Code("INVALID_ARGS").
			With("kind", opts.Kind).
			Hint("Run 'outline find --help' for the list of kinds").
			Errorf("unknown element kind %q", opts.Kind)
	}

	if opts.Path != "" && !doublestar.ValidatePattern(opts.Path) {
		return nil, oops.
			Code("INVALID_ARGS").
			With("path", opts.Path).
			Hint("Check brackets and braces in the glob pattern").
			Errorf("invalid path pattern %q", opts.Path)
	}

	candidates := collect(ix, opts)
	matches := fuzzy.FindFrom(query, candidates)

	best := make(map[int]Result)
	for _, match := range matches {
		candidate := candidates[match.Index]
		if existing, ok := best[candidate.id]; ok && existing.Score >= match.Score {
			continue
		}
		best[candidate.id] = Result{
			Path:       candidate.path,
			Name:       candidate.element.Name,
			Kind:       candidate.element.Kind,
			Line:       candidate.element.Line,
			Scope:      candidate.scope,
			Comment:    candidate.element.Comment,
			MatchField: candidate.matchField,
			Score:      match.Score,
		}
	}

	results := make([]Result, 0, len(best))
	for _, result := range best {
		results = append(results, result)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].Path != results[j].Path {
			return results[i].Path < results[j].Path
		}
		return results[i].Line < results[j].Line
	})

	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}

	return results, nil
}

func collect(ix *index.Index, opts Options) entries {
	var out entries
	if ix == nil {
		return out
	}

	id := 0
	for _, file := range ix.Files {
		if opts.Path != "" {
			if ok, err := doublestar.Match(opts.Path, file.Path); err != nil || !ok {
				continue
			}
		}

		var scope []string
		element.Walk(file.Elements, func(e element.Element, depth int) bool {
			if e.Synthetic {
				return false
			}
			scope = append(scope[:depth], e.Name)

			if opts.Kind == "" || e.Kind == opts.Kind {
				base := entry{
					id:      id,
					path:    file.Path,
					scope:   strings.Join(scope[:depth], "."),
					element: e,
				}

				byName := base
				byName.matchField = FieldName
				byName.matchValue = e.Name
				out = append(out, byName)

				if opts.Docs && e.Comment != "" {
					byComment := base
					byComment.matchField = FieldComment
					byComment.matchValue = e.Comment
					out = append(out, byComment)
				}
			}

			id++
			return true
		})
	}

	return out
}
