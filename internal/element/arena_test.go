package element_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/g5becks/outline/internal/element"
)

func TestArenaTreePreservesInsertionOrder(t *testing.T) {
	a := element.NewArena()
	ns := a.Add(element.Root, element.Element{Name: "Foo", Kind: element.KindNamespace})
	class := a.Add(ns, element.Element{Name: "Bar", Kind: element.KindClass})
	a.Add(class, element.Element{Name: "Bar", Kind: element.KindConstructor})
	a.Add(class, element.Element{Name: "Baz", Kind: element.KindMethod})
	a.Add(element.Root, element.Element{Name: "Other", Kind: element.KindEnum})

	tree := a.Tree()
	require.Len(t, tree, 2)
	assert.Equal(t, "Foo", tree[0].Name)
	assert.Equal(t, "Other", tree[1].Name)
	assert.NotNil(t, tree[1].Children)

	bar := tree[0].Children[0]
	require.Len(t, bar.Children, 2)
	assert.Equal(t, element.KindConstructor, bar.Children[0].Kind)
	assert.Equal(t, "Baz", bar.Children[1].Name)
}

func TestArenaParentLookup(t *testing.T) {
	a := element.NewArena()
	root := a.Add(element.Root, element.Element{Name: "root"})
	child := a.Add(root, element.Element{Name: "child"})

	parent, ok := a.Parent(child)
	require.True(t, ok)
	assert.Equal(t, root, parent)

	_, ok = a.Parent(root)
	assert.False(t, ok)

	_, ok = a.Parent(42)
	assert.False(t, ok)

	assert.Equal(t, []int{child}, a.Children(root))
	assert.Equal(t, []int{root}, a.Roots())
}

func TestArenaAddKeepsPrebuiltChildrenFirst(t *testing.T) {
	a := element.NewArena()
	method := element.Build(element.Decl{Name: "m", Kind: element.KindMethod}, element.Doc{Summary: "doc"})
	id := a.Add(element.Root, method)
	a.Add(id, element.Element{Name: "later", Kind: element.KindVariable})

	tree := a.Tree()
	require.Len(t, tree[0].Children, 2)
	assert.Equal(t, element.DescriptionName, tree[0].Children[0].Name)
	assert.Equal(t, "later", tree[0].Children[1].Name)
}

func TestFlattenRoundTrip(t *testing.T) {
	method := element.Build(element.Decl{Name: "Add", Kind: element.KindMethod, Line: 4},
		element.Doc{Summary: "adds", Params: []element.ParamDoc{{Name: "a", Description: "first"}}})
	roots := []element.Element{{
		Name:     "Calc",
		Kind:     element.KindClass,
		Line:     1,
		Children: []element.Element{method},
	}}

	a := element.Flatten(roots)
	assert.Equal(t, 5, a.Len())

	for id := 1; id < a.Len(); id++ {
		_, ok := a.Parent(id)
		assert.True(t, ok, "node %d should have a parent", id)
	}

	assert.Equal(t, roots, a.Tree())
}
