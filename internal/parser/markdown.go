package parser

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/gomarkdown/markdown/ast"
	mdparser "github.com/gomarkdown/markdown/parser"

	"github.com/g5becks/outline/internal/element"
)

const (
	setextH1Level = 1
	setextH2Level = 2
)

var (
	importLineRegex = regexp.MustCompile(`^\s*import\s+`)
	exportMetaRegex = regexp.MustCompile(`^\s*export\s+(?:default\b|(?:const|let|var|function)\s+\w+)`)
)

// MarkdownScanner outlines a Markdown document by its headings. Headings nest
// by level; each carries the first paragraph of its section as its comment.
// A frontmatter title becomes a separate root element.
type MarkdownScanner struct {
	mdx bool
}

func NewMarkdownScanner() *MarkdownScanner {
	return &MarkdownScanner{}
}

// NewMDXScanner returns a MarkdownScanner that ignores MDX import and export
// lines.
func NewMDXScanner() *MarkdownScanner {
	return &MarkdownScanner{mdx: true}
}

type heading struct {
	level   int
	text    string
	comment string
	line    int
}

func (p *MarkdownScanner) Scan(lines []string, offset int) []element.Element {
	if p.mdx {
		lines = stripMDXSyntax(lines)
	}

	content := []byte(strings.Join(lines, "\n"))
	body, fmTitle, fmDesc := StripFrontmatter(content)
	fmLineOffset := bytes.Count(content[:len(content)-len(body)], []byte("\n"))

	doc := mdparser.NewWithExtensions(mdparser.CommonExtensions).Parse(body)
	headings := extractHeadings(doc)
	assignHeadingLineNumbers(headings, body, offset+fmLineOffset)

	arena := element.NewArena()
	if fmTitle != "" {
		arena.Add(element.Root, element.Build(element.Decl{
			Name: fmTitle,
			Kind: element.KindModule,
			Line: offset + frontmatterTitleLine(lines) + 1,
		}, element.Doc{Summary: fmDesc}))
	}

	type open struct {
		level int
		id    int
	}
	var stack []open
	prevLine := offset + fmLineOffset + 1

	for _, h := range headings {
		for len(stack) > 0 && stack[len(stack)-1].level >= h.level {
			stack = stack[:len(stack)-1]
		}
		parent := element.Root
		if len(stack) > 0 {
			parent = stack[len(stack)-1].id
		}
		if h.line == 0 {
			h.line = prevLine
		}
		prevLine = h.line

		id := arena.Add(parent, element.Build(element.Decl{
			Name: h.text,
			Kind: element.KindModule,
			Line: h.line,
		}, element.Doc{Summary: h.comment}))
		stack = append(stack, open{level: h.level, id: id})
	}

	return arena.Tree()
}

// extractHeadings returns the non-empty headings in document order, each with
// the first paragraph that follows it before the next heading.
func extractHeadings(doc ast.Node) []heading {
	var headings []heading

	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		if !entering {
			return ast.GoToNext
		}

		switch n := node.(type) {
		case *ast.Heading:
			if text := extractText(n); text != "" {
				headings = append(headings, heading{level: n.Level, text: text})
			}
			return ast.SkipChildren
		case *ast.Paragraph:
			if len(headings) > 0 && headings[len(headings)-1].comment == "" {
				headings[len(headings)-1].comment = extractText(n)
			}
			return ast.SkipChildren
		}

		return ast.GoToNext
	})

	return headings
}

func extractText(node ast.Node) string {
	var buf strings.Builder
	ast.WalkFunc(node, func(n ast.Node, entering bool) ast.WalkStatus {
		if entering {
			switch t := n.(type) {
			case *ast.Text:
				buf.Write(t.Literal)
			case *ast.Code:
				buf.Write(t.Literal)
			}
		}
		return ast.GoToNext
	})
	// Collapse runs of spaces and newlines.
	return strings.Join(strings.Fields(buf.String()), " ")
}

// assignHeadingLineNumbers scans content for heading markers and assigns
// the line of each heading in document order.
// gomarkdown's AST does not store source positions.
func assignHeadingLineNumbers(headings []heading, content []byte, lineOffset int) {
	if len(headings) == 0 {
		return
	}

	lines := bytes.Split(content, []byte("\n"))
	hi := 0
	inFenced := false

	for lineIdx := 0; lineIdx < len(lines) && hi < len(headings); lineIdx++ {
		line := lines[lineIdx]
		trimmed := bytes.TrimSpace(line)

		if isFenceMarker(trimmed) {
			inFenced = !inFenced
			continue
		}
		if inFenced {
			continue
		}

		if level := atxHeadingLevel(line); level == headings[hi].level {
			headings[hi].line = lineOffset + lineIdx + 1
			hi++
			continue
		}

		if level := setextHeadingLevel(lines, lineIdx, trimmed); level == headings[hi].level {
			headings[hi].line = lineOffset + lineIdx + 1
			hi++
		}
	}
}

func isFenceMarker(trimmed []byte) bool {
	return bytes.HasPrefix(trimmed, []byte("```")) || bytes.HasPrefix(trimmed, []byte("~~~"))
}

// atxHeadingLevel returns the heading level (1-6) for an ATX heading line,
// or 0 if the line is not an ATX heading.
func atxHeadingLevel(line []byte) int {
	spaces := 0
	for spaces < len(line) && spaces < 4 && line[spaces] == ' ' {
		spaces++
	}
	if spaces >= 4 || spaces >= len(line) || line[spaces] != '#' {
		return 0
	}

	level := 0
	for spaces+level < len(line) && level < 7 && line[spaces+level] == '#' {
		level++
	}
	if level >= 1 && level <= 6 && spaces+level < len(line) && line[spaces+level] == ' ' {
		return level
	}
	return 0
}

// setextHeadingLevel returns 1 for a line underlined with `=`, 2 for one
// underlined with `-`, and 0 otherwise.
func setextHeadingLevel(lines [][]byte, lineIdx int, trimmed []byte) int {
	if lineIdx+1 >= len(lines) || len(trimmed) == 0 {
		return 0
	}
	nextTrimmed := bytes.TrimSpace(lines[lineIdx+1])
	if allSameChar(nextTrimmed, '=') {
		return setextH1Level
	}
	if allSameChar(nextTrimmed, '-') {
		return setextH2Level
	}
	return 0
}

func allSameChar(b []byte, ch byte) bool {
	if len(b) == 0 {
		return false
	}
	for _, c := range b {
		if c != ch {
			return false
		}
	}
	return true
}

// frontmatterTitleLine returns the index of the `title:` line inside leading
// frontmatter, or 0.
func frontmatterTitleLine(lines []string) int {
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return 0
	}
	for i := 1; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "---" {
			break
		}
		if strings.HasPrefix(trimmed, "title:") {
			return i
		}
	}
	return 0
}

// stripMDXSyntax blanks import and export lines so the remaining lines keep
// their positions.
func stripMDXSyntax(lines []string) []string {
	cleaned := make([]string, len(lines))
	for i, line := range lines {
		if importLineRegex.MatchString(line) || exportMetaRegex.MatchString(line) {
			continue
		}
		cleaned[i] = line
	}
	return cleaned
}
