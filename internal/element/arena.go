package element

// Root is the parent id of top-level arena nodes.
const Root = -1

type node struct {
	elem     Element
	parent   int
	children []int
}

// Arena stores elements flat with an explicit parent index. Scanners append
// into it while walking lines and call Tree once at the end.
type Arena struct {
	nodes []node
	roots []int
}

func NewArena() *Arena {
	return &Arena{}
}

// Add appends e under parent and returns its id. Children already present on
// e are added first, so builder pseudo-elements stay ahead of anything the
// scanner attaches later. An out-of-range parent attaches to the root.
func (a *Arena) Add(parent int, e Element) int {
	pre := e.Children
	e.Children = nil

	if parent < 0 || parent >= len(a.nodes) {
		parent = Root
	}

	id := len(a.nodes)
	a.nodes = append(a.nodes, node{elem: e, parent: parent})

	if parent == Root {
		a.roots = append(a.roots, id)
	} else {
		a.nodes[parent].children = append(a.nodes[parent].children, id)
	}

	for _, child := range pre {
		a.Add(id, child)
	}

	return id
}

func (a *Arena) Len() int {
	return len(a.nodes)
}

// Parent returns the parent id of id; ok is false for roots and unknown ids.
func (a *Arena) Parent(id int) (int, bool) {
	if id < 0 || id >= len(a.nodes) {
		return Root, false
	}
	p := a.nodes[id].parent
	return p, p != Root
}

// Element returns the stored element without its children.
func (a *Arena) Element(id int) Element {
	if id < 0 || id >= len(a.nodes) {
		return Element{}
	}
	return a.nodes[id].elem
}

func (a *Arena) Children(id int) []int {
	if id < 0 || id >= len(a.nodes) {
		return nil
	}
	return append([]int(nil), a.nodes[id].children...)
}

func (a *Arena) Roots() []int {
	return append([]int(nil), a.roots...)
}

// Tree assembles the value trees in insertion order.
func (a *Arena) Tree() []Element {
	out := make([]Element, 0, len(a.roots))
	for _, id := range a.roots {
		out = append(out, a.assemble(id))
	}
	return out
}

func (a *Arena) assemble(id int) Element {
	n := a.nodes[id]
	e := n.elem
	e.Children = make([]Element, 0, len(n.children))
	for _, child := range n.children {
		e.Children = append(e.Children, a.assemble(child))
	}
	return e
}

// Flatten loads finished trees into an arena for O(1) parent lookups.
func Flatten(roots []Element) *Arena {
	a := NewArena()
	for _, e := range roots {
		a.Add(Root, e)
	}
	return a
}
