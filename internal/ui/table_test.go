package ui_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/g5becks/outline/internal/element"
	"github.com/g5becks/outline/internal/search"
	"github.com/g5becks/outline/internal/ui"
)

func TestRenderKinds(t *testing.T) {
	var buf bytes.Buffer
	ui.RenderKinds(&buf, []ui.KindRow{
		{Key: ".cs", Scanner: "csharp"},
		{Key: ".razor", Scanner: "markup", Alias: ".html"},
	})

	out := buf.String()
	assert.Contains(t, out, "KEY")
	assert.Contains(t, out, "SCANNER")
	assert.Contains(t, out, ".cs")
	assert.Contains(t, out, "csharp")
	assert.Contains(t, out, ".razor")
	assert.Contains(t, out, ".html")
	assert.Contains(t, out, "╭")
}

func TestRenderResults(t *testing.T) {
	results := []search.Result{
		{Path: "src/Cart.cs", Name: "Cart", Kind: element.KindClass, Line: 3, Scope: "Shop", Score: 42, Comment: "Shopping\ncart."},
	}

	var plain bytes.Buffer
	ui.RenderResults(&plain, results, false)
	assert.Contains(t, plain.String(), "src/Cart.cs:3")
	assert.Contains(t, plain.String(), "Shop")
	assert.Contains(t, plain.String(), "42")
	assert.NotContains(t, plain.String(), "COMMENT")

	var docs bytes.Buffer
	ui.RenderResults(&docs, results, true)
	assert.Contains(t, docs.String(), "COMMENT")
	assert.Contains(t, docs.String(), "Shopping cart.")
}

func TestRenderStats(t *testing.T) {
	var buf bytes.Buffer
	ui.RenderStats(&buf, []ui.IndexStat{
		{Path: "a.cs", Scanner: "csharp", Lines: 10, Elements: 3},
		{Path: "b.bin", Scanner: "", Warning: "binary"},
	})

	out := buf.String()
	assert.Contains(t, out, "a.cs")
	assert.Contains(t, out, "binary")
	assert.Contains(t, out, "TOTAL")
	assert.Contains(t, out, "2 file(s)")
}
