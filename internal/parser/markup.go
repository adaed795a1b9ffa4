package parser

import (
	"regexp"
	"strings"

	"github.com/g5becks/outline/internal/comment"
	"github.com/g5becks/outline/internal/element"
)

var (
	tagRegex       = regexp.MustCompile(`<(/?)([A-Za-z][\w:.-]*)((?:[^<>"']|"[^"]*"|'[^']*')*?)(/?)>`)
	tagOpenRegex   = regexp.MustCompile(`<[A-Za-z][\w:.-]*(?:[^<>"']|"[^"]*"|'[^']*')*$`)
	idAttrRegex    = regexp.MustCompile(`(?:^|\s)(?:id|x:Name)\s*=\s*(?:"([^"]*)"|'([^']*)')`)
	classAttrRegex = regexp.MustCompile(`(?:^|\s)class\s*=\s*(?:"([^"]*)"|'([^']*)')`)
)

// voidElements never have content and are always self-closing.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true, "hr": true,
	"img": true, "input": true, "link": true, "meta": true, "source": true,
	"track": true, "wbr": true,
}

// excludedTags are left to the container scanner.
var excludedTags = map[string]bool{"script": true, "style": true, "template": true}

// MarkupScanner builds an element per tag of HTML-like documents, nesting by
// an explicit stack of open tags.
type MarkupScanner struct{}

func NewMarkupScanner() *MarkupScanner {
	return &MarkupScanner{}
}

type tagFrame struct {
	tag   string
	count int
	id    int
}

type markupScan struct {
	lines  []string
	offset int
	arena  *element.Arena
	stack  []tagFrame

	inComment  bool
	raw        string
	pending    string
	pendingAt  int
	documented int
}

func (m *MarkupScanner) Scan(lines []string, offset int) []element.Element {
	s := &markupScan{lines: lines, offset: offset, arena: element.NewArena(), documented: -1}
	for i, line := range lines {
		s.line(i, s.blankComments(line))
	}
	return s.arena.Tree()
}

// blankComments replaces the inside of `<!-- -->` comments with spaces so
// tag matching cannot see them. Comments may span lines.
func (s *markupScan) blankComments(line string) string {
	b := []byte(line)
	for i := 0; i < len(b); i++ {
		if s.inComment {
			if strings.HasPrefix(string(b[i:]), "-->") {
				s.inComment = false
				i += 2
				continue
			}
			b[i] = ' '
			continue
		}
		if strings.HasPrefix(string(b[i:]), "<!--") {
			s.inComment = true
			b[i] = ' '
		}
	}
	return string(b)
}

func (s *markupScan) line(i int, line string) {
	pos := 0

	if s.pending != "" {
		end := strings.IndexByte(line, '>')
		if end < 0 {
			s.pending += " " + line
			return
		}
		text := s.pending + " " + line[:end+1]
		s.pending = ""
		if m := tagRegex.FindStringSubmatch(text); m != nil {
			s.tag(s.pendingAt, m)
		}
		pos = end + 1
	}

	for pos < len(line) {
		if s.raw != "" {
			closeAt := indexFold(line[pos:], "</"+s.raw)
			if closeAt < 0 {
				return
			}
			s.raw = ""
			pos += closeAt
		}

		loc := tagRegex.FindStringSubmatchIndex(line[pos:])
		if loc == nil {
			if open := tagOpenRegex.FindStringIndex(line[pos:]); open != nil {
				s.pending = line[pos+open[0]:]
				s.pendingAt = i
			}
			return
		}

		m := make([]string, len(loc)/2)
		for g := range m {
			if loc[2*g] >= 0 {
				m[g] = line[pos+loc[2*g] : pos+loc[2*g+1]]
			}
		}
		pos += loc[1]
		s.tag(i, m)
	}
}

// tag handles one matched tag: m holds the close slash, the name, the
// attribute text and the self-close slash.
func (s *markupScan) tag(i int, m []string) {
	name := strings.ToLower(m[2])
	if excludedTags[name] {
		if m[1] == "" && m[4] == "" && name != "template" {
			s.raw = name
		}
		return
	}

	if m[1] == "/" {
		s.close(name)
		return
	}

	parent := element.Root
	if len(s.stack) > 0 {
		parent = s.stack[len(s.stack)-1].id
	}

	var doc element.Doc
	if s.documented != i {
		doc = comment.Extract(s.lines, i, comment.StyleMarkup)
		s.documented = i
	}
	id := s.arena.Add(parent, element.Build(element.Decl{
		Name: markupName(m[2], m[3]),
		Kind: element.KindModule,
		Line: s.offset + i + 1,
		Tag:  m[2],
	}, doc))

	if m[4] == "/" || voidElements[name] {
		return
	}
	s.stack = append(s.stack, tagFrame{tag: name, count: 1, id: id})
}

// close decrements the nearest open frame with the same tag. Frames above it
// stay open; unmatched closes are ignored.
func (s *markupScan) close(name string) {
	for k := len(s.stack) - 1; k >= 0; k-- {
		if s.stack[k].tag != name {
			continue
		}
		s.stack[k].count--
		if s.stack[k].count <= 0 {
			s.stack = append(s.stack[:k], s.stack[k+1:]...)
		}
		return
	}
}

func markupName(tag, attrs string) string {
	for _, re := range []*regexp.Regexp{idAttrRegex, classAttrRegex} {
		if m := re.FindStringSubmatch(attrs); m != nil {
			if v := strings.TrimSpace(m[1] + m[2]); v != "" {
				return v
			}
		}
	}
	return tag
}
