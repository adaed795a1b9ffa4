package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/list"
	"github.com/samber/oops"

	"github.com/g5becks/outline/internal/element"
)

const maxCommentLength = 72

type TreeOptions struct {
	HideDocs bool
	NoColor  bool
}

// RenderTree prints title followed by the element trees as a connected list.
func RenderTree(w io.Writer, title string, roots []element.Element, opts TreeOptions) {
	s := newStyles(opts.NoColor)

	if opts.HideDocs {
		roots = element.StripSynthetic(roots)
	}

	fmt.Fprintln(w, s.bold.Sprint(title))

	if len(roots) == 0 {
		fmt.Fprintln(w, s.dim.Sprint("  (no elements)"))
		return
	}

	writer := list.NewWriter()
	writer.SetStyle(list.StyleConnectedRounded)
	appendElements(writer, roots, s, opts)
	fmt.Fprintln(w, writer.Render())
}

func appendElements(writer list.Writer, elems []element.Element, s styles, opts TreeOptions) {
	for _, e := range elems {
		writer.AppendItem(formatElement(e, s, opts))
		if len(e.Children) > 0 {
			writer.Indent()
			appendElements(writer, e.Children, s, opts)
			writer.UnIndent()
		}
	}
}

func formatElement(e element.Element, s styles, opts TreeOptions) string {
	if e.Synthetic {
		if e.Comment == "" {
			return s.dim.Sprint(e.Name)
		}
		return s.dim.Sprintf("%s: %s", e.Name, truncate(e.Comment, maxCommentLength))
	}

	var b strings.Builder
	b.WriteString(s.kind(e.Kind).Sprint(e.Kind))
	b.WriteString(" ")
	b.WriteString(s.bold.Sprint(e.Name))

	if e.Tag != "" && e.Tag != e.Name {
		b.WriteString(s.dim.Sprintf(" <%s>", e.Tag))
	}

	if e.Kind.Callable() {
		b.WriteString("(" + e.Parameters + ")")
	}

	if e.ReturnType != "" {
		b.WriteString(": " + e.ReturnType)
	}

	if e.Accessibility != "" && e.Accessibility != element.AccessDefault {
		b.WriteString(s.dim.Sprintf(" [%s]", e.Accessibility))
	}

	b.WriteString(s.dim.Sprintf(" :%d", e.Line))

	if !opts.HideDocs && e.Comment != "" && !e.Kind.Callable() {
		b.WriteString(s.dim.Sprintf("  // %s", truncate(e.Comment, maxCommentLength)))
	}

	return b.String()
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if limit <= 0 || len(runes) <= limit {
		return text
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

// RenderJSON writes v as indented JSON.
func RenderJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return oops.
			Code("JSON_ERROR").
			Wrapf(err, "encoding json output")
	}
	return nil
}
