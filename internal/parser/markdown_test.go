package parser_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/g5becks/outline/internal/element"
	"github.com/g5becks/outline/internal/parser"
)

func TestMarkdownScannerNestsHeadings(t *testing.T) {
	src := `# Main Title
Intro paragraph
spanning two lines.

## Section 1
### Subsection
` + "```" + `
# not a heading
` + "```" + `
## Section 2

Setext
------`

	roots := parser.NewMarkdownScanner().Scan(strings.Split(src, "\n"), 0)

	require.Len(t, roots, 1)
	main := roots[0]
	assert.Equal(t, "Main Title", main.Name)
	assert.Equal(t, element.KindModule, main.Kind)
	assert.Equal(t, "Intro paragraph spanning two lines.", main.Comment)
	assert.Equal(t, 1, main.Line)

	assert.Equal(t, []string{"Section 1", "Section 2", "Setext"}, names(main.Children))
	section1 := main.Children[0]
	assert.Equal(t, 5, section1.Line)
	assert.Equal(t, []string{"Subsection"}, names(section1.Children))
	assert.Equal(t, 6, section1.Children[0].Line)
	assert.Equal(t, 10, main.Children[1].Line)
	assert.Equal(t, 12, main.Children[2].Line)
}

func TestMarkdownScannerFrontmatter(t *testing.T) {
	src := `---
title: My Document
description: A test document
---
# Content`

	roots := parser.NewMarkdownScanner().Scan(strings.Split(src, "\n"), 0)

	require.Len(t, roots, 2)
	assert.Equal(t, "My Document", roots[0].Name)
	assert.Equal(t, "A test document", roots[0].Comment)
	assert.Equal(t, 2, roots[0].Line)
	assert.Equal(t, "Content", roots[1].Name)
	assert.Equal(t, 5, roots[1].Line)
}

func TestMDXScannerSkipsModuleLines(t *testing.T) {
	src := `import { Chart } from './chart'
export const meta = { title: 'x' }

# Usage

<Chart />

## Options`

	roots := parser.NewMDXScanner().Scan(strings.Split(src, "\n"), 0)

	require.Len(t, roots, 1)
	assert.Equal(t, "Usage", roots[0].Name)
	assert.Equal(t, 4, roots[0].Line)
	assert.Equal(t, []string{"Options"}, names(roots[0].Children))
	assert.Equal(t, 8, roots[0].Children[0].Line)
}

func TestMarkdownScannerEmpty(t *testing.T) {
	roots := parser.NewMarkdownScanner().Scan([]string{"just text"}, 0)
	assert.Empty(t, roots)
}
