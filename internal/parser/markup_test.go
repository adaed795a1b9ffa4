package parser_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/g5becks/outline/internal/element"
	"github.com/g5becks/outline/internal/parser"
)

func scanMarkup(src string) []element.Element {
	return parser.NewMarkupScanner().Scan(strings.Split(src, "\n"), 0)
}

func TestMarkupScannerNesting(t *testing.T) {
	roots := scanMarkup(`<div id="x"><span>...</span></div>`)

	require.Len(t, roots, 1)
	div := roots[0]
	assert.Equal(t, "x", div.Name)
	assert.Equal(t, "div", div.Tag)
	assert.Equal(t, element.KindModule, div.Kind)

	require.Len(t, div.Children, 1)
	assert.Equal(t, "span", div.Children[0].Name)
	assert.Equal(t, "span", div.Children[0].Tag)
	assert.Empty(t, div.Children[0].Children)
}

func TestMarkupScannerDocument(t *testing.T) {
	src := `<!DOCTYPE html>
<html>
<!-- main navigation -->
<nav class="top">
  <img src="logo.png">
  <br/>
  <ul>
    <li>One</li>
  </ul>
</nav>
<script>
  if (a < b) { document.write("<div>") }
</script>
<style>
  div > p { color: red }
</style>
<!--
<div id="hidden"></div>
-->
<footer
   id="foot">
</footer>
</html>`

	roots := scanMarkup(src)

	require.Len(t, roots, 1)
	html := roots[0]
	assert.Equal(t, "html", html.Name)
	assert.Equal(t, 2, html.Line)
	assert.Equal(t, []string{"top", "foot"}, names(html.Children))

	nav := html.Children[0]
	assert.Equal(t, "main navigation", nav.Comment)
	assert.Equal(t, []string{"img", "br", "ul"}, names(nav.Children))
	assert.Equal(t, []string{"li"}, names(nav.Children[2].Children))
	assert.Empty(t, nav.Children[0].Children)

	assert.Equal(t, 20, html.Children[1].Line)
}

func TestMarkupScannerCloseTolerance(t *testing.T) {
	src := `</span>
<section>
  <div>
    <em>
  </div>
  <p>x</p>
</section>
</em>
<aside id="after"></aside>`

	roots := scanMarkup(src)

	require.Len(t, roots, 2)
	assert.Equal(t, "after", roots[1].Name)

	section := roots[0]
	require.Len(t, section.Children, 1)
	div := section.Children[0]
	require.Len(t, div.Children, 1)
	em := div.Children[0]
	assert.Equal(t, "em", em.Name)
	assert.Equal(t, []string{"p"}, names(em.Children))
}

func TestMarkupScannerXAML(t *testing.T) {
	src := `<Window x:Class="App.Main">
  <Grid>
    <Button x:Name="Save" Content="Save" />
  </Grid>
</Window>`

	roots := scanMarkup(src)

	require.Len(t, roots, 1)
	assert.Equal(t, "Window", roots[0].Tag)
	grid := roots[0].Children[0]
	require.Len(t, grid.Children, 1)
	assert.Equal(t, "Save", grid.Children[0].Name)
	assert.Equal(t, "Button", grid.Children[0].Tag)
}

func TestMarkupScannerOffsetAndIdempotence(t *testing.T) {
	lines := []string{"<main>", "  <p class=\"lead\">hi</p>", "</main>"}
	s := parser.NewMarkupScanner()

	first := s.Scan(lines, 4)

	assert.Equal(t, first, s.Scan(lines, 4))
	require.Len(t, first, 1)
	assert.Equal(t, 5, first[0].Line)
	assert.Equal(t, "lead", first[0].Children[0].Name)
	assert.Equal(t, 6, first[0].Children[0].Line)
}
