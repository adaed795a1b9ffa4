package parser

import (
	"regexp"
	"strings"

	"github.com/g5becks/outline/internal/comment"
	"github.com/g5becks/outline/internal/element"
)

// StyleName names the placeholder element emitted per style region.
const StyleName = "style"

var (
	regionTagRegex = regexp.MustCompile(`(?i)<(/?)(template|script|style)\b([^>]*)>`)
	langTSRegex    = regexp.MustCompile(`(?i)\blang\s*=\s*["']tsx?["']`)
)

type region int

const (
	regionNone region = iota
	regionTemplate
	regionScript
	regionStyle
)

// ContainerScanner splits single-file components into template, script and
// style regions. Scripts are delegated to a ScriptScanner with their line
// offset, styles become placeholders and templates are skipped.
type ContainerScanner struct{}

func NewContainerScanner() *ContainerScanner {
	return &ContainerScanner{}
}

type containerScan struct {
	lines  []string
	offset int
	roots  []element.Element

	region        region
	templateDepth int
	script        []string
	scriptStart   int
	typescript    bool
	seen          bool
}

func (c *ContainerScanner) Scan(lines []string, offset int) []element.Element {
	s := &containerScan{lines: lines, offset: offset, roots: []element.Element{}}
	for i, line := range lines {
		s.line(i, line)
	}
	if !s.seen {
		return NewScriptScanner(false).Scan(lines, offset)
	}
	if s.region == regionScript {
		s.flushScript()
	}
	return s.roots
}

func (s *containerScan) line(i int, line string) {
	pos := 0
	for pos <= len(line) {
		switch s.region {
		case regionScript:
			closeAt := indexFold(line[pos:], "</script")
			if closeAt < 0 {
				s.script = append(s.script, line[pos:])
				return
			}
			s.script = append(s.script, line[pos:pos+closeAt])
			s.flushScript()
			pos = skipTag(line, pos+closeAt)
			continue
		case regionStyle:
			closeAt := indexFold(line[pos:], "</style")
			if closeAt < 0 {
				return
			}
			s.region = regionNone
			pos = skipTag(line, pos+closeAt)
			continue
		}

		loc := regionTagRegex.FindStringSubmatchIndex(line[pos:])
		if loc == nil {
			return
		}
		closing := loc[3] > loc[2]
		name := strings.ToLower(line[pos+loc[4] : pos+loc[5]])
		attrs := line[pos+loc[6] : pos+loc[7]]
		pos += loc[1]

		if s.region == regionTemplate {
			if name != "template" {
				continue
			}
			switch {
			case closing:
				s.templateDepth--
			case !strings.HasSuffix(attrs, "/"):
				s.templateDepth++
			}
			if s.templateDepth <= 0 {
				s.region = regionNone
			}
			continue
		}

		if !closing {
			s.seen = true
			s.open(i, name, attrs)
		}
	}
}

func (s *containerScan) open(i int, name, attrs string) {
	if strings.HasSuffix(strings.TrimSpace(attrs), "/") {
		return
	}
	switch name {
	case "template":
		s.region = regionTemplate
		s.templateDepth = 1
	case "script":
		s.region = regionScript
		s.script = nil
		s.scriptStart = i
		s.typescript = langTSRegex.MatchString(attrs)
	case "style":
		s.region = regionStyle
		s.roots = append(s.roots, element.Build(element.Decl{
			Name: StyleName,
			Kind: element.KindModule,
			Line: s.offset + i + 1,
			Tag:  StyleName,
		}, comment.Extract(s.lines, i, comment.StyleMarkup)))
	}
}

// flushScript scans the collected script region. The first fragment line
// is the remainder of the opening tag's line, so the fragment offset is the
// opening line itself.
func (s *containerScan) flushScript() {
	roots := NewScriptScanner(s.typescript).Scan(s.script, s.offset+s.scriptStart)
	s.roots = append(s.roots, roots...)
	s.script = nil
	s.region = regionNone
}

// skipTag returns the index just past the `>` that ends the tag starting at at.
func skipTag(line string, at int) int {
	if end := strings.IndexByte(line[at:], '>'); end >= 0 {
		return at + end + 1
	}
	return len(line)
}
