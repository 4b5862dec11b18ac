// Package vdom provides the virtual node tree that Isora pages are built
// from. Trees are constructed on the server, rendered to HTML once per
// request, and never mutated afterwards.
package vdom

import "strings"

// Kind is the node type discriminator.
type Kind uint8

const (
	KindElement   Kind = iota // <div>, <button>, ...
	KindText                  // escaped text
	KindFragment              // grouping without a wrapper element
	KindComponent             // nested component
	KindRaw                   // pre-rendered HTML, emitted verbatim
)

// String returns the kind name for diagnostics.
func (k Kind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindFragment:
		return "Fragment"
	case KindComponent:
		return "Component"
	case KindRaw:
		return "Raw"
	default:
		return "Unknown"
	}
}

// Props holds element attributes. Keys starting with "on" describe
// client-side action bindings (see On) and are emitted as data
// attributes rather than HTML event attributes.
type Props map[string]any

// VNode is a virtual DOM node.
type VNode struct {
	Kind     Kind
	Tag      string // element tag, KindElement only
	Props    Props  // attributes and action bindings
	Children []*VNode
	Text     string    // KindText and KindRaw content
	Comp     Component // KindComponent only

	// Marker is the hydration marker id ("h1", "h2", ...) for elements
	// that carry action bindings. The renderer issues marker ids
	// without touching the tree; this field is only filled in by
	// AssignMarkers for tooling that inspects trees directly.
	Marker string
}

// NeedsMarker reports whether the node carries at least one action
// binding and therefore needs a hydration marker in the markup.
func (v *VNode) NeedsMarker() bool {
	if v == nil || v.Kind != KindElement {
		return false
	}
	for key := range v.Props {
		if strings.HasPrefix(key, "on") && len(key) > 2 {
			return true
		}
	}
	return false
}

// Attr is a single attribute. Element constructors accept Attr values
// alongside children.
type Attr struct {
	Key   string
	Value any
}

// Component is anything that can render itself to a VNode.
type Component interface {
	Render() *VNode
}

// FuncComponent adapts a plain render function to Component.
type FuncComponent struct {
	render func() *VNode
}

// Render implements Component.
func (f *FuncComponent) Render() *VNode { return f.render() }

// Func wraps a render function as a Component.
func Func(render func() *VNode) Component {
	return &FuncComponent{render: render}
}
