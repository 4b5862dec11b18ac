package vdom

import "fmt"

// MarkerGen generates sequential hydration marker ids ("h1", "h2", ...).
// The renderer uses one generator per request, so marker assignment is
// deterministic for a given tree and the client can rely on ordering.
type MarkerGen struct {
	counter uint32
}

// Next returns the next marker id.
func (g *MarkerGen) Next() string {
	g.counter++
	return fmt.Sprintf("h%d", g.counter)
}

// Count returns how many markers have been issued.
func (g *MarkerGen) Count() uint32 { return g.counter }

// Reset restarts numbering. Renderers call this when reused.
func (g *MarkerGen) Reset() { g.counter = 0 }

// AssignMarkers walks the tree and fills in Marker on elements with
// action bindings. The renderer never writes to the tree; this exists
// for tests and tooling that inspect trees directly, and visits nodes
// in the same order the renderer numbers them.
func AssignMarkers(node *VNode, gen *MarkerGen) {
	if node == nil {
		return
	}
	if node.NeedsMarker() {
		node.Marker = gen.Next()
	}
	for _, child := range node.Children {
		AssignMarkers(child, gen)
	}
}

// CollectMarkers returns marker id → node for every marked node.
func CollectMarkers(node *VNode) map[string]*VNode {
	out := make(map[string]*VNode)
	Walk(node, func(n *VNode) {
		if n.Marker != "" {
			out[n.Marker] = n
		}
	})
	return out
}

// CountBindings returns the number of elements carrying action bindings.
func CountBindings(node *VNode) int {
	count := 0
	Walk(node, func(n *VNode) {
		if n.NeedsMarker() {
			count++
		}
	})
	return count
}
