package vdom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElBasic(t *testing.T) {
	node := Div(Class("container"), ID("root"),
		H1(Text("Title")),
		P("shorthand text"),
	)

	require.Equal(t, KindElement, node.Kind)
	assert.Equal(t, "div", node.Tag)
	assert.Equal(t, "container", node.Props["class"])
	assert.Equal(t, "root", node.Props["id"])
	require.Len(t, node.Children, 2)
	assert.Equal(t, "h1", node.Children[0].Tag)
	require.Equal(t, KindText, node.Children[1].Children[0].Kind)
	assert.Equal(t, "shorthand text", node.Children[1].Children[0].Text)
}

func TestElSkipsNilChildren(t *testing.T) {
	node := Ul(
		Li(Text("a")),
		If(false, Li(Text("hidden"))),
		nil,
		Li(Text("b")),
	)
	assert.Len(t, node.Children, 2)
}

func TestElFlattensSlices(t *testing.T) {
	items := Range([]string{"x", "y", "z"}, func(s string, _ int) *VNode {
		return Li(Text(s))
	})
	node := Ul(items)
	assert.Len(t, node.Children, 3)
}

func TestComponentChild(t *testing.T) {
	comp := Func(func() *VNode { return Span(Text("inner")) })
	node := Div(comp)

	require.Len(t, node.Children, 1)
	assert.Equal(t, KindComponent, node.Children[0].Kind)
	assert.NotNil(t, node.Children[0].Comp)
}

func TestNeedsMarker(t *testing.T) {
	plain := Div(Class("x"))
	bound := Button(On("click", "nav#toggle"))
	text := Text("hi")

	assert.False(t, plain.NeedsMarker())
	assert.True(t, bound.NeedsMarker())
	assert.False(t, text.NeedsMarker())
	assert.False(t, (*VNode)(nil).NeedsMarker())
}

func TestSwitch(t *testing.T) {
	pick := func(v string) *VNode {
		return Switch(v,
			CaseOf("a", Span(Text("A"))),
			CaseOf("b", Span(Text("B"))),
			Default[string](Span(Text("?"))),
		)
	}
	assert.Equal(t, "A", pick("a").Children[0].Text)
	assert.Equal(t, "B", pick("b").Children[0].Text)
	assert.Equal(t, "?", pick("zzz").Children[0].Text)
}

func TestFragmentMixedArgs(t *testing.T) {
	frag := Fragment(
		"lead",
		Div(),
		[]*VNode{Span(), nil, Span()},
		Func(func() *VNode { return P() }),
	)
	require.Equal(t, KindFragment, frag.Kind)
	assert.Len(t, frag.Children, 5)
}

func TestAssignAndCollectMarkers(t *testing.T) {
	tree := Div(
		Button(On("click", "a")),
		Div(
			A(Href("/x"), On("click", "b"), Text("link")),
		),
		Span(Text("static")),
	)

	var gen MarkerGen
	AssignMarkers(tree, &gen)

	assert.Equal(t, uint32(2), gen.Count())
	markers := CollectMarkers(tree)
	require.Len(t, markers, 2)
	assert.Equal(t, "button", markers["h1"].Tag)
	assert.Equal(t, "a", markers["h2"].Tag)
	assert.Equal(t, 2, CountBindings(tree))
}

func TestClassesAndClassIf(t *testing.T) {
	assert.Equal(t, "a b", Classes("a", "", "b").Value)
	assert.Equal(t, "on", ClassIf(true, "on").Value)
	assert.Equal(t, "", ClassIf(false, "on").Key)
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "42", ValueString(42))
	assert.Equal(t, "true", ValueString(true))
	assert.Equal(t, "1.5", ValueString(1.5))
	assert.Equal(t, "", ValueString(nil))
}
