// Package element defines the structural outline tree produced by the scanners.
package element

import "strings"

// Kind is the closed set of element categories.
type Kind string

const (
	KindNamespace   Kind = "namespace"
	KindClass       Kind = "class"
	KindInterface   Kind = "interface"
	KindEnum        Kind = "enum"
	KindConstructor Kind = "constructor"
	KindMethod      Kind = "method"
	KindFunction    Kind = "function"
	KindProperty    Kind = "property"
	KindField       Kind = "field"
	KindVariable    Kind = "variable"
	KindModule      Kind = "module"
)

// Kinds lists every Kind in declaration order.
func Kinds() []Kind {
	return []Kind{
		KindNamespace, KindClass, KindInterface, KindEnum, KindConstructor,
		KindMethod, KindFunction, KindProperty, KindField, KindVariable, KindModule,
	}
}

// Callable reports whether elements of this kind get synthesized doc children.
func (k Kind) Callable() bool {
	return k == KindConstructor || k == KindMethod || k == KindFunction
}

// Valid reports whether k is a member of the closed set.
func (k Kind) Valid() bool {
	for _, known := range Kinds() {
		if k == known {
			return true
		}
	}
	return false
}

type Accessibility string

const (
	AccessPublic    Accessibility = "public"
	AccessPrivate   Accessibility = "private"
	AccessProtected Accessibility = "protected"
	AccessInternal  Accessibility = "internal"
	AccessDefault   Accessibility = "default"
)

// AccessibilityFrom returns the first access keyword found in a modifier run,
// or AccessDefault when none is present.
func AccessibilityFrom(modifiers string) Accessibility {
	for _, word := range strings.Fields(modifiers) {
		switch word {
		case "public":
			return AccessPublic
		case "private":
			return AccessPrivate
		case "protected":
			return AccessProtected
		case "internal":
			return AccessInternal
		}
	}
	return AccessDefault
}

type ParamDoc struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Doc is the structured documentation recovered for one declaration.
type Doc struct {
	Summary string
	Params  []ParamDoc
	Returns string
}

func (d Doc) Empty() bool {
	return d.Summary == "" && d.Returns == "" && len(d.Params) == 0
}

// Element is one recovered structural unit. Line is 1-based in the original
// document, even when the element was found while scanning a fragment.
type Element struct {
	Name              string        `json:"name"`
	Kind              Kind          `json:"kind"`
	Accessibility     Accessibility `json:"accessibility"`
	Line              int           `json:"line"`
	Children          []Element     `json:"children"`
	Comment           string        `json:"comment,omitempty"`
	ReturnType        string        `json:"return_type,omitempty"`
	Parameters        string        `json:"parameters,omitempty"`
	Returns           string        `json:"returns,omitempty"`
	ParamDescriptions []ParamDoc    `json:"param_descriptions,omitempty"`
	Tag               string        `json:"tag,omitempty"`
	Synthetic         bool          `json:"synthetic,omitempty"`
}

// Walk visits roots depth-first in order. Returning false from fn skips the
// element's children.
func Walk(roots []Element, fn func(e Element, depth int) bool) {
	walk(roots, 0, fn)
}

func walk(elems []Element, depth int, fn func(e Element, depth int) bool) {
	for _, e := range elems {
		if fn(e, depth) {
			walk(e.Children, depth+1, fn)
		}
	}
}

// Count returns the number of elements in the trees, synthetic nodes excluded.
func Count(roots []Element) int {
	n := 0
	Walk(roots, func(e Element, _ int) bool {
		if e.Synthetic {
			return false
		}
		n++
		return true
	})
	return n
}

// CountByKind tallies non-synthetic elements per kind.
func CountByKind(roots []Element) map[Kind]int {
	counts := make(map[Kind]int)
	Walk(roots, func(e Element, _ int) bool {
		if e.Synthetic {
			return false
		}
		counts[e.Kind]++
		return true
	})
	return counts
}

// Structural returns the children that came from the source rather than from
// documentation.
func (e Element) Structural() []Element {
	out := make([]Element, 0, len(e.Children))
	for _, c := range e.Children {
		if !c.Synthetic {
			out = append(out, c)
		}
	}
	return out
}

// StripSynthetic returns a copy of the trees without builder pseudo-elements.
func StripSynthetic(roots []Element) []Element {
	out := make([]Element, 0, len(roots))
	for _, e := range roots {
		if e.Synthetic {
			continue
		}
		e.Children = StripSynthetic(e.Children)
		out = append(out, e)
	}
	return out
}
