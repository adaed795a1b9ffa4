// Package comment recovers documentation blocks that precede a declaration.
//
// Extraction runs two independent passes over a bounded window above the
// declaration line. The first looks for a documentation block (XML `///`
// comments or a `/** */` block) and mines it for a summary, parameter
// descriptions and a return description. The second, used only when no
// documentation block exists, takes a plain comment ending right above the
// declaration, with only attribute lines between, as the summary.
package comment

import (
	"regexp"
	"strings"

	"github.com/g5becks/outline/internal/element"
)

// Style selects the comment dialect a scanner expects.
type Style int

const (
	// StyleXML is C#-style `///` comments with <summary>, <param> and <returns>.
	StyleXML Style = iota
	// StyleJSDoc is a Javadoc/JSDoc `/** */` block with @param and @returns.
	StyleJSDoc
	// StyleMarkup only knows plain `<!-- -->` comments.
	StyleMarkup
)

const (
	// PlainWindow caps how far a plain block comment may extend upward.
	PlainWindow = 5
	// DocWindow caps how far a documentation block may extend upward.
	DocWindow = 40
)

var (
	xmlSummaryRegex = regexp.MustCompile(`(?s)<summary>(.*?)</summary>`)
	xmlParamRegex   = regexp.MustCompile(`(?s)<param\s+name\s*=\s*"([^"]*)"\s*>(.*?)</param>`)
	xmlReturnsRegex = regexp.MustCompile(`(?s)<returns>(.*?)</returns>`)
	xmlTagRegex     = regexp.MustCompile(`<[^>]+>`)

	jsdocParamRegex   = regexp.MustCompile(`^@(?:param|arg|argument)\s+(?:\{[^}]*\}\s*)?\[?([\w$.]+)(?:=[^\]]*)?\]?\s*(?:-\s*)?(.*)$`)
	jsdocReturnsRegex = regexp.MustCompile(`^@returns?\b\s*(?:\{[^}]*\}\s*)?(.*)$`)
	jsdocSummaryRegex = regexp.MustCompile(`^@(?:summary|description|desc)\b\s*(.*)$`)
)

// Extract returns the documentation for the declaration at lines[index].
func Extract(lines []string, index int, style Style) element.Doc {
	if index <= 0 || index > len(lines) {
		return element.Doc{}
	}

	start := skipDecorations(lines, index, style)
	if start < 0 {
		return element.Doc{}
	}

	if block := docBlock(lines, start, index, style); len(block) > 0 {
		switch style {
		case StyleXML:
			return mineXML(strings.Join(block, "\n"))
		case StyleJSDoc:
			return mineJSDoc(block)
		}
	}

	if !adjacent(lines, start, index, style) {
		return element.Doc{}
	}
	return element.Doc{Summary: plain(lines, start, style)}
}

// adjacent reports whether only attribute lines separate lines[start] from
// the declaration at lines[index]. Plain comments must sit directly above.
func adjacent(lines []string, start, index int, style Style) bool {
	for i := start + 1; i < index; i++ {
		if !isAttribute(strings.TrimSpace(lines[i]), style) {
			return false
		}
	}
	return true
}

// Clean strips comment noise from every line of span and joins the remaining
// text with single spaces.
func Clean(span string) string {
	parts := make([]string, 0, strings.Count(span, "\n")+1)
	for line := range strings.SplitSeq(span, "\n") {
		line = strings.TrimLeft(line, " \t/*")
		line = strings.TrimSuffix(strings.TrimSpace(line), "*/")
		line = strings.TrimSpace(line)
		if line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " ")
}

// skipDecorations walks upward past blank and attribute lines and returns the
// index of the first line worth inspecting, or -1.
func skipDecorations(lines []string, index int, style Style) int {
	i := index - 1
	for i >= 0 && index-i <= DocWindow {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed != "" && !isAttribute(trimmed, style) {
			return i
		}
		i--
	}
	return -1
}

func isAttribute(trimmed string, style Style) bool {
	if style == StyleMarkup {
		return false
	}
	if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
		return true
	}
	return strings.HasPrefix(trimmed, "@")
}

func docBlock(lines []string, start, index int, style Style) []string {
	switch style {
	case StyleXML:
		return xmlBlock(lines, start, index)
	case StyleJSDoc:
		return jsdocBlock(lines, start, index)
	default:
		return nil
	}
}

func xmlBlock(lines []string, start, index int) []string {
	var block []string
	for i := start; i >= 0 && index-i <= DocWindow; i-- {
		trimmed := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(trimmed, "///") {
			break
		}
		block = append(block, trimmed)
	}
	reverse(block)
	return block
}

func jsdocBlock(lines []string, start, index int) []string {
	last := strings.TrimSpace(lines[start])
	if !strings.HasSuffix(last, "*/") {
		return nil
	}

	for i := start; i >= 0 && index-i <= DocWindow; i-- {
		trimmed := strings.TrimSpace(lines[i])
		open := strings.Index(trimmed, "/*")
		if open < 0 {
			continue
		}
		if !strings.HasPrefix(trimmed[open:], "/**") || strings.HasPrefix(trimmed[open:], "/**/") {
			return nil
		}
		block := make([]string, 0, start-i+1)
		for j := i; j <= start; j++ {
			block = append(block, strings.TrimSpace(lines[j]))
		}
		block[0] = strings.TrimSpace(block[0][open:])
		return block
	}

	return nil
}

func mineXML(text string) element.Doc {
	var doc element.Doc

	for _, m := range xmlParamRegex.FindAllStringSubmatch(text, -1) {
		doc.Params = append(doc.Params, element.ParamDoc{Name: m[1], Description: Clean(m[2])})
	}

	if m := xmlReturnsRegex.FindStringSubmatch(text); m != nil {
		doc.Returns = Clean(m[1])
	}

	if m := xmlSummaryRegex.FindStringSubmatch(text); m != nil {
		doc.Summary = Clean(m[1])
		return doc
	}

	rest := xmlParamRegex.ReplaceAllString(text, "")
	rest = xmlReturnsRegex.ReplaceAllString(rest, "")
	rest = xmlTagRegex.ReplaceAllString(rest, "")
	doc.Summary = Clean(rest)

	return doc
}

// jsdocSpan is the text collected for one tag of a JSDoc block.
type jsdocSpan struct {
	kind  string
	name  string
	lines []string
}

func mineJSDoc(block []string) element.Doc {
	spans := []*jsdocSpan{{kind: "summary"}}
	current := spans[0]

	for _, raw := range block {
		line := strings.TrimLeft(raw, " \t/*")
		line = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(line), "*/"))

		if !strings.HasPrefix(line, "@") {
			if current != nil {
				current.lines = append(current.lines, line)
			}
			continue
		}

		switch {
		case jsdocParamRegex.MatchString(line):
			m := jsdocParamRegex.FindStringSubmatch(line)
			current = &jsdocSpan{kind: "param", name: m[1], lines: []string{m[2]}}
		case jsdocReturnsRegex.MatchString(line):
			m := jsdocReturnsRegex.FindStringSubmatch(line)
			current = &jsdocSpan{kind: "returns", lines: []string{m[1]}}
		case jsdocSummaryRegex.MatchString(line):
			m := jsdocSummaryRegex.FindStringSubmatch(line)
			current = spans[0]
			current.lines = append(current.lines, m[1])
			continue
		default:
			current = nil
			continue
		}
		spans = append(spans, current)
	}

	var doc element.Doc
	for _, s := range spans {
		text := Clean(strings.Join(s.lines, "\n"))
		switch s.kind {
		case "summary":
			doc.Summary = text
		case "param":
			doc.Params = append(doc.Params, element.ParamDoc{Name: s.name, Description: text})
		case "returns":
			if doc.Returns == "" {
				doc.Returns = text
			}
		}
	}

	return doc
}

func plain(lines []string, start int, style Style) string {
	trimmed := strings.TrimSpace(lines[start])

	if style == StyleMarkup {
		if !strings.HasSuffix(trimmed, "-->") {
			return ""
		}
		return blockComment(lines, start, "<!--", "-->")
	}

	if strings.HasPrefix(trimmed, "//") {
		return strings.TrimSpace(strings.TrimLeft(trimmed, "/"))
	}

	if strings.HasSuffix(trimmed, "*/") {
		return blockComment(lines, start, "/*", "*/")
	}

	return ""
}

func blockComment(lines []string, end int, open, close string) string {
	for i := end; i >= 0 && end-i < PlainWindow; i-- {
		idx := strings.Index(lines[i], open)
		if idx < 0 {
			continue
		}
		parts := make([]string, 0, end-i+1)
		for j := i; j <= end; j++ {
			text := lines[j]
			if j == i {
				text = text[idx+len(open):]
			}
			if j == end {
				if k := strings.LastIndex(text, close); k >= 0 {
					text = text[:k]
				}
			}
			parts = append(parts, text)
		}
		return Clean(strings.Join(parts, "\n"))
	}
	return ""
}

func reverse(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
