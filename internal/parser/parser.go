package parser

import (
	"slices"

	"github.com/g5becks/outline/internal/element"
)

// Scanner turns the lines of one document into an ordered element forest.
// offset is added to every reported line so fragments cut out of a larger
// document report positions in the original.
type Scanner interface {
	Scan(lines []string, offset int) []element.Element
}

// Factory builds a fresh scanner. Scanners hold per-call state only, so a
// factory may return a shared value.
type Factory func() Scanner

// Registry maps normalized file-kind keys to scanner factories. It is meant
// to be filled once at startup and then only read.
type Registry struct {
	factories map[string]Factory
	names     map[string]string
}

func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		names:     make(map[string]string),
	}
}

// Register maps key to factory. A later registration for the same key wins.
func (r *Registry) Register(key string, factory Factory) {
	r.RegisterNamed(key, "", factory)
}

// RegisterNamed is Register with a human-readable scanner name for listings.
func (r *Registry) RegisterNamed(key, name string, factory Factory) {
	key = NormalizeKey(key)
	if key == "" || factory == nil {
		return
	}
	r.factories[key] = factory
	r.names[key] = name
}

// Alias makes key resolve to whatever target currently resolves to.
// It reports false when target is not registered.
func (r *Registry) Alias(key, target string) bool {
	target = NormalizeKey(target)
	factory, ok := r.factories[target]
	if !ok {
		return false
	}
	r.RegisterNamed(key, r.names[target], factory)
	return true
}

func (r *Registry) Resolve(key string) (Factory, bool) {
	factory, ok := r.factories[NormalizeKey(key)]
	return factory, ok
}

func (r *Registry) Supports(key string) bool {
	_, ok := r.Resolve(key)
	return ok
}

// Keys returns the registered keys in sorted order.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.factories))
	for key := range r.factories {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

// Name returns the scanner name registered for key.
func (r *Registry) Name(key string) string {
	return r.names[NormalizeKey(key)]
}

// Scan resolves key and runs its scanner. ok is false when no scanner handles
// the key; that is an absence, not a failure.
func (r *Registry) Scan(key string, lines []string, offset int) ([]element.Element, bool) {
	factory, ok := r.Resolve(key)
	if !ok {
		return nil, false
	}
	return factory().Scan(lines, offset), true
}

// DefaultRegistry returns a new registry with every built-in scanner.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	csharp := func() Scanner { return NewBraceScanner(CSharp) }
	java := func() Scanner { return NewBraceScanner(Java) }
	javascript := func() Scanner { return NewScriptScanner(false) }
	typescript := func() Scanner { return NewScriptScanner(true) }
	markup := func() Scanner { return NewMarkupScanner() }
	container := func() Scanner { return NewContainerScanner() }
	markdown := func() Scanner { return NewMarkdownScanner() }
	mdx := func() Scanner { return NewMDXScanner() }

	r.RegisterNamed(".cs", "csharp", csharp)
	r.RegisterNamed(".java", "java", java)
	for _, ext := range []string{".js", ".mjs", ".cjs", ".jsx"} {
		r.RegisterNamed(ext, "javascript", javascript)
	}
	for _, ext := range []string{".ts", ".tsx", ".mts", ".cts"} {
		r.RegisterNamed(ext, "typescript", typescript)
	}
	for _, ext := range []string{".html", ".htm", ".xml", ".xaml", ".svg"} {
		r.RegisterNamed(ext, "markup", markup)
	}
	for _, ext := range []string{".vue", ".svelte"} {
		r.RegisterNamed(ext, "container", container)
	}
	r.RegisterNamed(".md", "markdown", markdown)
	r.RegisterNamed(".markdown", "markdown", markdown)
	r.RegisterNamed(".mdx", "mdx", mdx)

	return r
}
