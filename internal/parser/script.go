package parser

import (
	"regexp"
	"strings"

	"github.com/g5becks/outline/internal/comment"
	"github.com/g5becks/outline/internal/element"
)

// ExportName is the name of the element emitted for an options object.
const ExportName = "export default"

var (
	scriptFunctionRegex  = regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(?:async\s+)?function\s*\*?\s*([\w$]+)\s*(?:<[^>]*>)?\s*\(`)
	scriptAssignedRegex  = regexp.MustCompile(`^\s*(?:export\s+)?(?:const|let|var)\s+([\w$]+)\s*(?::[^=]+)?=\s*(?:async\s+)?(?:function\b|(?:<[^>]*>\s*)?\([^)]*\)\s*(?::[^=]+)?=>|[\w$]+\s*=>)`)
	scriptBareArrowRegex = regexp.MustCompile(`^\s*([\w$]+(?:\.[\w$]+)*)\s*=\s*(?:async\s+)?(?:\([^)]*\)|[\w$]+)\s*=>`)
	scriptClassRegex     = regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(?:declare\s+)?(?:abstract\s+)?class\s+([\w$]+)`)
	scriptInterfaceRegex = regexp.MustCompile(`^\s*(?:export\s+)?(?:declare\s+)?interface\s+([\w$]+)`)
	scriptEnumRegex      = regexp.MustCompile(`^\s*(?:export\s+)?(?:declare\s+)?(?:const\s+)?enum\s+([\w$]+)`)
	scriptReturnRegex    = regexp.MustCompile(`^\s*:\s*([^={]+?)\s*(?:\{|=>|$)`)

	optionsStartRegex = regexp.MustCompile(`^\s*(?:export\s+default|module\.exports\s*=)\s*(?:defineComponent\s*\(|Vue\.extend\s*\()?\s*\{`)
	optionKeyRegex    = regexp.MustCompile(`^(?:async\s+)?['"]?([\w$]+)['"]?\s*(\(|:)`)

	methodEntryRegex    = regexp.MustCompile(`^(?:async\s+)?\*?['"]?([\w$]+)['"]?\s*(?:\(|:\s*(?:async\s+)?(?:function\b|\(|[\w$]+\s*=>))`)
	watchEntryRegex     = regexp.MustCompile(`^['"]?([\w$.]+)['"]?\s*(?:\(|:)`)
	propertyEntryRegex  = regexp.MustCompile(`^(?:get\s+)?['"]?([\w$]+)['"]?\s*(?:\(|:)`)
	fieldEntryRegex     = regexp.MustCompile(`^['"]?([\w$]+)['"]?\s*(?::|,|$)`)
	componentEntryRegex = regexp.MustCompile(`^['"]?([\w$-]+)['"]?\s*(?::|,|$)`)
	quotedRegex         = regexp.MustCompile(`['"]([^'"]+)['"]`)
)

// optionBag describes one recognized key of an options object whose value
// is a block of entries.
type optionBag struct {
	kind  element.Kind
	entry *regexp.Regexp
}

var optionBags = map[string]optionBag{
	"data":       {kind: element.KindField, entry: fieldEntryRegex},
	"methods":    {kind: element.KindMethod, entry: methodEntryRegex},
	"computed":   {kind: element.KindProperty, entry: propertyEntryRegex},
	"watch":      {kind: element.KindMethod, entry: watchEntryRegex},
	"props":      {kind: element.KindProperty, entry: componentEntryRegex},
	"components": {kind: element.KindField, entry: componentEntryRegex},
}

var lifecycleHooks = map[string]bool{
	"beforeCreate": true,
	"created":      true,
	"beforeMount":  true,
	"mounted":      true,
	"beforeUpdate": true,
	"updated":      true,
	"unmounted":    true,
}

// ScriptScanner recognizes top-level declarations of ECMAScript-family
// sources and mines component options objects.
type ScriptScanner struct {
	TypeScript bool
}

func NewScriptScanner(typescript bool) *ScriptScanner {
	return &ScriptScanner{TypeScript: typescript}
}

func (s *ScriptScanner) Scan(lines []string, offset int) []element.Element {
	arena := element.NewArena()
	for i := 0; i < len(lines); i++ {
		if optionsStartRegex.MatchString(lines[i]) {
			vlines, end := splitObject(lines, i)
			o := &optionsScan{lines: lines, offset: offset, arena: arena}
			o.scan(vlines)
			i = end
			continue
		}
		if d, ok := s.declaration(lines[i]); ok {
			d.Line = offset + i + 1
			arena.Add(element.Root, element.Build(d, comment.Extract(lines, i, comment.StyleJSDoc)))
		}
	}
	return arena.Tree()
}

func (s *ScriptScanner) declaration(line string) (element.Decl, bool) {
	for _, re := range []*regexp.Regexp{scriptFunctionRegex, scriptAssignedRegex, scriptBareArrowRegex} {
		m := re.FindStringSubmatchIndex(line)
		if m == nil {
			continue
		}
		d := element.Decl{Name: line[m[2]:m[3]], Kind: element.KindFunction}
		rest := line[m[3]:]
		open := strings.IndexByte(rest, '(')
		arrow := strings.Index(rest, "=>")
		switch {
		case open >= 0 && (arrow < 0 || open < arrow):
			var end int
			d.Parameters, end = parens(line, m[3]+open)
			if s.TypeScript && end >= 0 {
				if r := scriptReturnRegex.FindStringSubmatch(line[end+1:]); r != nil {
					d.ReturnType = strings.TrimSpace(r[1])
				}
			}
		case arrow >= 0:
			eq := strings.IndexByte(rest, '=')
			params := strings.TrimSpace(rest[eq+1 : arrow])
			d.Parameters = strings.TrimSpace(strings.TrimPrefix(params, "async"))
		}
		return d, true
	}

	if m := scriptClassRegex.FindStringSubmatch(line); m != nil {
		return element.Decl{Name: m[1], Kind: element.KindClass}, true
	}
	if !s.TypeScript {
		return element.Decl{}, false
	}
	if m := scriptInterfaceRegex.FindStringSubmatch(line); m != nil {
		return element.Decl{Name: m[1], Kind: element.KindInterface}, true
	}
	if m := scriptEnumRegex.FindStringSubmatch(line); m != nil {
		return element.Decl{Name: m[1], Kind: element.KindEnum}, true
	}
	return element.Decl{}, false
}

// vline is one virtual line of an options object. line is the physical
// index it starts on and first marks the first segment of that line.
type vline struct {
	text  string
	line  int
	first bool
	delta int
}

// splitObject cuts the object literal opening on lines[start] into virtual
// lines: a break follows every `{` and `,` and precedes every `}` that sit
// directly inside braces. Comments are dropped. It returns the segments and
// the physical index where the object closes.
func splitObject(lines []string, start int) ([]vline, int) {
	var (
		out      []vline
		stack    []byte
		seg      strings.Builder
		segLine  = -1
		lastLine = -1
		delta    int
		braces   int
		quote    byte
		inBlock  bool
	)

	top := func() byte {
		if len(stack) == 0 {
			return 0
		}
		return stack[len(stack)-1]
	}
	write := func(i int, ch byte) {
		if segLine < 0 && ch != ' ' && ch != '\t' {
			segLine = i
		}
		if segLine >= 0 {
			seg.WriteByte(ch)
		}
	}
	emit := func() {
		text := strings.TrimSpace(seg.String())
		if text != "" {
			out = append(out, vline{text: text, line: segLine, first: segLine != lastLine, delta: delta})
			lastLine = segLine
		}
		seg.Reset()
		segLine = -1
		delta = 0
	}

	for i := start; i < len(lines); i++ {
		line := lines[i]
		if quote != '`' {
			quote = 0
		}

	chars:
		for j := 0; j < len(line); j++ {
			ch := line[j]

			if inBlock {
				if ch == '*' && j+1 < len(line) && line[j+1] == '/' {
					inBlock = false
					j++
				}
				continue
			}

			if quote != 0 {
				write(i, ch)
				if ch == '\\' && j+1 < len(line) {
					j++
					write(i, line[j])
				} else if ch == quote {
					quote = 0
				}
				continue
			}

			switch ch {
			case '/':
				if j+1 < len(line) && line[j+1] == '/' {
					break chars
				}
				if j+1 < len(line) && line[j+1] == '*' {
					inBlock = true
					j++
					continue
				}
			case '\'', '"', '`':
				quote = ch
			case '(', '[':
				stack = append(stack, ch)
			case ')', ']':
				if t := top(); t == '(' || t == '[' {
					stack = stack[:len(stack)-1]
				}
			case '{':
				write(i, ch)
				stack = append(stack, ch)
				braces++
				delta++
				emit()
				continue
			case '}':
				emit()
				write(i, ch)
				delta--
				braces--
				if top() == '{' {
					stack = stack[:len(stack)-1]
				}
				if braces <= 0 {
					emit()
					return out, i
				}
				continue
			case ',':
				write(i, ch)
				if top() == '{' {
					emit()
				}
				continue
			}

			write(i, ch)
		}

		if t := top(); t == 0 || t == '{' {
			emit()
		} else if segLine >= 0 {
			seg.WriteByte(' ')
		}
	}

	emit()
	return out, len(lines) - 1
}

// bagState tracks the block of one option bag. floor is the object depth of
// its key line and entries sit at entry.
type bagState struct {
	id       int
	bag      optionBag
	floor    int
	entry    int
	gated    bool
	inReturn bool
}

type optionsScan struct {
	lines  []string
	offset int
	arena  *element.Arena
	root   int
}

func (o *optionsScan) scan(vlines []vline) {
	if len(vlines) == 0 {
		return
	}
	o.root = o.add(element.Root, vlines[0], element.Decl{Name: ExportName, Kind: element.KindModule})

	depth := vlines[0].delta
	var bag *bagState

	for _, v := range vlines[1:] {
		before := depth
		depth += v.delta

		if bag != nil && before > bag.floor {
			o.bagLine(bag, v, before)
			if depth <= bag.floor {
				bag = nil
			}
			continue
		}

		if before == 1 {
			bag = o.optionKey(v, before, depth)
		}
		if depth <= 0 {
			return
		}
	}
}

// optionKey handles a line at object level. It returns the state of the bag
// the line opens, if any.
func (o *optionsScan) optionKey(v vline, before, after int) *bagState {
	m := optionKeyRegex.FindStringSubmatch(v.text)
	if m == nil {
		return nil
	}
	key := m[1]

	if lifecycleHooks[key] {
		d := element.Decl{Name: key, Kind: element.KindMethod}
		if open := strings.IndexByte(v.text, '('); open >= 0 {
			d.Parameters, _ = parens(v.text, open)
		}
		o.add(o.root, v, d)
		return nil
	}

	bag, ok := optionBags[key]
	if !ok {
		return nil
	}
	id := o.add(o.root, v, element.Decl{Name: key, Kind: element.KindModule})

	if key == "props" && strings.Contains(v.text, "[") {
		for _, q := range quotedRegex.FindAllStringSubmatch(v.text[strings.IndexByte(v.text, '['):], -1) {
			o.add(id, v, element.Decl{Name: q[1], Kind: element.KindProperty})
		}
		return nil
	}
	if after <= before {
		return nil
	}

	state := &bagState{id: id, bag: bag, floor: before, entry: before + 1}
	if blockBody(v.text, m[2]) {
		state.entry = before + 2
		state.gated = true
	}
	return state
}

// blockBody reports whether a key line opens a function body rather than an
// object literal, as in `data() {` or `data: function () {`.
func blockBody(text, sep string) bool {
	if !strings.HasSuffix(text, "{") || strings.HasSuffix(text, "({") {
		return false
	}
	return sep == "(" || strings.Contains(text, "function") || strings.Contains(text, "=>")
}

func (o *optionsScan) bagLine(b *bagState, v vline, before int) {
	if b.gated && before == b.floor+1 {
		b.inReturn = strings.HasPrefix(v.text, "return") && strings.HasSuffix(v.text, "{")
		return
	}
	if before != b.entry || (b.gated && !b.inReturn) {
		return
	}

	m := b.bag.entry.FindStringSubmatchIndex(v.text)
	if m == nil {
		return
	}
	d := element.Decl{Name: v.text[m[2]:m[3]], Kind: b.bag.kind}
	if d.Kind == element.KindMethod {
		if open := strings.IndexByte(v.text[m[3]:], '('); open >= 0 {
			d.Parameters, _ = parens(v.text, m[3]+open)
		}
	}
	o.add(b.id, v, d)
}

func (o *optionsScan) add(parent int, v vline, d element.Decl) int {
	d.Line = o.offset + v.line + 1
	var doc element.Doc
	if v.first {
		doc = comment.Extract(o.lines, v.line, comment.StyleJSDoc)
	}
	return o.arena.Add(parent, element.Build(d, doc))
}
