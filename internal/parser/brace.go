package parser

import (
	"regexp"
	"strings"

	"github.com/g5becks/outline/internal/comment"
	"github.com/g5becks/outline/internal/element"
)

// Flavor selects the language rules of a BraceScanner.
type Flavor struct {
	Name         string
	Namespaces   bool
	Constructors bool
	DocStyle     comment.Style
}

var (
	// CSharp knows namespaces (block and file-scoped), constructors and `///` docs.
	CSharp = Flavor{Name: "csharp", Namespaces: true, Constructors: true, DocStyle: comment.StyleXML}
	// Java has neither namespace blocks nor constructor detection and uses Javadoc.
	Java = Flavor{Name: "java", DocStyle: comment.StyleJSDoc}
)

const (
	modifierWords = `public|private|protected|internal|static|abstract|sealed|partial|virtual|override|` +
		`async|extern|unsafe|new|readonly|const|volatile|final|synchronized|native|transient|` +
		`strictfp|default|required|file`
	modifierRun = `((?:(?:` + modifierWords + `)\s+)*)`
	typeName    = `[\w.]+(?:<[^()]*?>)?(?:\[[\s,]*\])*\??`
)

var (
	namespaceRegex = regexp.MustCompile(`^\s*namespace\s+([\w.]+)\s*(;)?`)
	classRegex     = regexp.MustCompile(`^\s*` + modifierRun + `(?:class|struct|record(?:\s+(?:class|struct))?)\s+(\w+)`)
	interfaceRegex = regexp.MustCompile(`^\s*` + modifierRun + `interface\s+(\w+)`)
	enumRegex      = regexp.MustCompile(`^\s*` + modifierRun + `enum\s+(?:class\s+)?(\w+)`)

	ctorStaticRegex = regexp.MustCompile(`^\s*(static)\s+(\w+)\s*\(`)
	ctorAccessRegex = regexp.MustCompile(`^\s*((?:(?:public|private|protected|internal)\s+)+)(\w+)\s*\(`)
	ctorBareRegex   = regexp.MustCompile(`^\s*()(\w+)\s*\(`)

	methodRegex   = regexp.MustCompile(`^\s*((?:(?:` + modifierWords + `)\s+)+)(?:<[^>]*>\s+)?(` + typeName + `)\s+(\w+)\s*(?:<[^>]*>)?\s*\(`)
	propertyRegex = regexp.MustCompile(`^\s*` + modifierRun + `(` + typeName + `)\s+(\w+)\s*\{`)
	fieldRegex    = regexp.MustCompile(`^\s*((?:(?:` + modifierWords + `|event)\s+)+)(` + typeName + `)\s+(\w+)\s*(?:=|;)`)
	accessorRegex = regexp.MustCompile(`\b(?:get|set|init)\b`)
)

// notPropertyTypes are words the property pattern would otherwise take for a type.
var notPropertyTypes = map[string]bool{
	"class": true, "struct": true, "interface": true, "enum": true, "record": true,
	"new": true, "namespace": true, "return": true, "else": true, "switch": true,
	"using": true, "get": true, "set": true, "init": true, "do": true, "try": true,
}

// BraceScanner recovers namespaces, types and members of class-like
// languages by tracking the net brace depth of every line.
type BraceScanner struct {
	flavor Flavor
}

func NewBraceScanner(flavor Flavor) *BraceScanner {
	return &BraceScanner{flavor: flavor}
}

func (b *BraceScanner) Scan(lines []string, offset int) []element.Element {
	s := &braceScan{
		flavor: b.flavor,
		lines:  lines,
		offset: offset,
		arena:  element.NewArena(),
	}
	for i, line := range lines {
		segs := splitStatements(line)
		for k, text := range segs {
			seg := segment{
				text: text,
				line: i,
				last: k == len(segs)-1,
				lead: leadingSegment(segs[:k]),
			}
			before := s.depth
			opens, closes := braceDelta(text)
			s.depth += opens - closes
			s.closeFrames()
			s.classify(seg, before)
		}
	}
	return s.arena.Tree()
}

// segment is one statement-sized piece of a physical line. Several
// declarations written on one line are classified one segment at a time.
type segment struct {
	text string
	line int
	last bool
	lead bool
}

// splitStatements cuts line after `{` and `;` and around `}`, outside
// parentheses, string literals and comments. A line without such cuts is
// returned whole.
func splitStatements(line string) []string {
	var segs []string
	start, parens := 0, 0
	cut := func(end int) {
		if strings.TrimSpace(line[start:end]) != "" {
			segs = append(segs, line[start:end])
		}
		start = end
	}

scan:
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"', '\'':
			i = closingQuote(line, i)
		case '/':
			if i+1 < len(line) && line[i+1] == '/' {
				break scan
			}
			if i+1 < len(line) && line[i+1] == '*' {
				end := strings.Index(line[i+2:], "*/")
				if end < 0 {
					break scan
				}
				i += end + 3
			}
		case '(':
			parens++
		case ')':
			if parens > 0 {
				parens--
			}
		case '{', ';':
			if parens == 0 {
				cut(i + 1)
			}
		case '}':
			if parens == 0 {
				cut(i)
				cut(i + 1)
			}
		}
	}

	rest := strings.TrimSpace(line[start:])
	switch {
	case len(segs) == 0:
		return []string{line}
	case rest == "" || strings.HasPrefix(rest, "//") || strings.HasPrefix(rest, "/*"):
		segs[len(segs)-1] += line[start:]
	default:
		segs = append(segs, line[start:])
	}
	return segs
}

func closingQuote(line string, open int) int {
	for j := open + 1; j < len(line); j++ {
		switch line[j] {
		case '\\':
			j++
		case line[open]:
			return j
		}
	}
	return len(line)
}

// leadingSegment reports whether only punctuation precedes a segment on its
// line, so doc comments above the line belong to it.
func leadingSegment(prev []string) bool {
	for _, p := range prev {
		if strings.Trim(p, " \t{};") != "" {
			return false
		}
	}
	return true
}

// frame is one open scope. floor is the depth at the start of the segment that
// opened it. A frame whose brace sits on a later line is pending until the
// depth first rises above its floor.
type frame struct {
	id      int
	name    string
	floor   int
	entered bool
}

func (f *frame) closed(depth int) bool {
	if depth > f.floor {
		f.entered = true
		return false
	}
	return f.entered
}

type braceScan struct {
	flavor Flavor
	lines  []string
	offset int
	arena  *element.Arena
	depth  int

	namespaces []frame
	class      *frame
	methods    []frame
}

func (s *braceScan) closeFrames() {
	for len(s.methods) > 0 && s.methods[len(s.methods)-1].closed(s.depth) {
		s.methods = s.methods[:len(s.methods)-1]
	}
	if s.class != nil && s.class.closed(s.depth) {
		s.class = nil
		s.methods = nil
	}
	for len(s.namespaces) > 0 && s.namespaces[len(s.namespaces)-1].closed(s.depth) {
		s.namespaces = s.namespaces[:len(s.namespaces)-1]
		s.class = nil
		s.methods = nil
	}
}

func (s *braceScan) classify(seg segment, before int) {
	switch {
	case len(s.methods) > 0:
		s.callable(seg, before)
	case s.class != nil:
		if s.callable(seg, before) || s.property(seg) {
			return
		}
		s.field(seg)
	default:
		s.topLevel(seg, before)
	}
}

func (s *braceScan) topLevel(seg segment, before int) {
	line := seg.text
	if s.flavor.Namespaces {
		if m := namespaceRegex.FindStringSubmatch(line); m != nil {
			id := s.add(s.namespaceParent(), seg, element.Decl{Name: m[1], Kind: element.KindNamespace})
			if m[2] != "" {
				s.namespaces = append(s.namespaces, frame{id: id, name: m[1], floor: -1, entered: true})
				return
			}
			if f, ok := s.open(seg, before); ok {
				f.id, f.name = id, m[1]
				s.namespaces = append(s.namespaces, f)
			}
			return
		}
	}

	for _, t := range []struct {
		re   *regexp.Regexp
		kind element.Kind
	}{
		{classRegex, element.KindClass},
		{interfaceRegex, element.KindInterface},
		{enumRegex, element.KindEnum},
	} {
		m := t.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		id := s.add(s.namespaceParent(), seg, element.Decl{
			Name:          m[2],
			Kind:          t.kind,
			Accessibility: element.AccessibilityFrom(m[1]),
		})
		if f, ok := s.open(seg, before); ok {
			f.id, f.name = id, m[2]
			s.class = &f
		}
		return
	}
}

// callable tries the constructor patterns and then the method pattern. A
// match becomes a child of the open class and opens a method frame.
func (s *braceScan) callable(seg segment, before int) bool {
	decl, ok := s.constructor(seg.text)
	if !ok {
		decl, ok = s.method(seg.text)
	}
	if !ok {
		return false
	}

	id := s.add(s.class.id, seg, decl)
	if f, ok := s.open(seg, before); ok {
		f.id, f.name = id, decl.Name
		s.methods = append(s.methods, f)
	}
	return true
}

func (s *braceScan) constructor(line string) (element.Decl, bool) {
	if !s.flavor.Constructors {
		return element.Decl{}, false
	}

	for _, re := range []*regexp.Regexp{ctorStaticRegex, ctorAccessRegex, ctorBareRegex} {
		loc := re.FindStringSubmatchIndex(line)
		if loc == nil {
			continue
		}
		name := line[loc[4]:loc[5]]
		if name != s.class.name {
			continue
		}
		params, end := parens(line, loc[1]-1)
		if re == ctorBareRegex && !constructorTail(line, end) {
			continue
		}
		return element.Decl{
			Name:          name,
			Kind:          element.KindConstructor,
			Accessibility: element.AccessibilityFrom(line[loc[2]:loc[3]]),
			Parameters:    params,
		}, true
	}

	return element.Decl{}, false
}

// constructorTail rejects bare `Name(...)` lines that look like calls.
func constructorTail(line string, end int) bool {
	if end < 0 {
		return !strings.HasSuffix(strings.TrimSpace(line), ";")
	}
	tail := strings.TrimSpace(line[end+1:])
	return tail == "" || strings.HasPrefix(tail, "{") || strings.HasPrefix(tail, ":")
}

func (s *braceScan) method(line string) (element.Decl, bool) {
	loc := methodRegex.FindStringSubmatchIndex(line)
	if loc == nil {
		return element.Decl{}, false
	}
	mods := line[loc[2]:loc[3]]
	if element.AccessibilityFrom(mods) == element.AccessDefault && !strings.Contains(" "+mods, " static ") {
		return element.Decl{}, false
	}
	if isAccessorLine(line) {
		return element.Decl{}, false
	}

	params, _ := parens(line, loc[1]-1)
	return element.Decl{
		Name:          line[loc[6]:loc[7]],
		Kind:          element.KindMethod,
		Accessibility: element.AccessibilityFrom(mods),
		ReturnType:    line[loc[4]:loc[5]],
		Parameters:    params,
	}, true
}

func (s *braceScan) property(seg segment) bool {
	m := propertyRegex.FindStringSubmatch(seg.text)
	if m == nil || notPropertyTypes[m[2]] || notPropertyTypes[m[3]] {
		return false
	}
	s.add(s.class.id, seg, element.Decl{
		Name:          m[3],
		Kind:          element.KindProperty,
		Accessibility: element.AccessibilityFrom(m[1]),
	})
	return true
}

func (s *braceScan) field(seg segment) bool {
	line := seg.text
	if strings.Contains(line, "(") || isAccessorLine(line) {
		return false
	}
	m := fieldRegex.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	s.add(s.class.id, seg, element.Decl{
		Name:          m[3],
		Kind:          element.KindField,
		Accessibility: element.AccessibilityFrom(m[1]),
	})
	return true
}

func isAccessorLine(line string) bool {
	return strings.Contains(line, "{") && accessorRegex.MatchString(line)
}

// open returns the frame a declaration segment starts, if its body is a
// block that stays open past the segment. A brace on a later line only
// counts for the last segment of a line.
func (s *braceScan) open(seg segment, before int) (frame, bool) {
	if strings.Contains(seg.text, "{") {
		if s.depth > before {
			return frame{floor: before, entered: true}, true
		}
		return frame{}, false
	}
	if seg.last && s.nextOpensBlock(seg.line) {
		return frame{floor: before}, true
	}
	return frame{}, false
}

func (s *braceScan) nextOpensBlock(i int) bool {
	for j := i + 1; j < len(s.lines); j++ {
		trimmed := strings.TrimSpace(s.lines[j])
		if trimmed == "" || strings.HasPrefix(trimmed, "//") {
			continue
		}
		return strings.HasPrefix(trimmed, "{")
	}
	return false
}

func (s *braceScan) namespaceParent() int {
	if len(s.namespaces) == 0 {
		return element.Root
	}
	return s.namespaces[len(s.namespaces)-1].id
}

func (s *braceScan) add(parent int, seg segment, d element.Decl) int {
	d.Line = s.offset + seg.line + 1
	var doc element.Doc
	if seg.lead {
		doc = comment.Extract(s.lines, seg.line, s.flavor.DocStyle)
	}
	return s.arena.Add(parent, element.Build(d, doc))
}

// parens returns the trimmed text inside the parentheses opening at open and
// the index of the closing one. When they do not close on this line the rest
// of the line is returned with end -1.
func parens(line string, open int) (inner string, end int) {
	if open < 0 || open >= len(line) || line[open] != '(' {
		return "", -1
	}
	depth := 0
	for i := open; i < len(line); i++ {
		switch line[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return strings.TrimSpace(line[open+1 : i]), i
			}
		}
	}
	return strings.TrimSpace(line[open+1:]), -1
}
