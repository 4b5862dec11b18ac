package vdom

import "fmt"

// Text creates an escaped text node.
func Text(content string) *VNode {
	return &VNode{Kind: KindText, Text: content}
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *VNode {
	return Text(fmt.Sprintf(format, args...))
}

// Raw creates a node whose content is emitted without escaping.
// Never feed it user-provided input; see render.WithSanitizer for
// rendering untrusted HTML safely.
func Raw(html string) *VNode {
	return &VNode{Kind: KindRaw, Text: html}
}

// Fragment groups children without introducing a wrapper element.
func Fragment(children ...any) *VNode {
	node := &VNode{Kind: KindFragment}
	for _, child := range children {
		switch v := child.(type) {
		case nil:
		case *VNode:
			if v != nil {
				node.Children = append(node.Children, v)
			}
		case []*VNode:
			for _, c := range v {
				if c != nil {
					node.Children = append(node.Children, c)
				}
			}
		case Component:
			node.Children = append(node.Children, &VNode{Kind: KindComponent, Comp: v})
		case string:
			node.Children = append(node.Children, Text(v))
		}
	}
	return node
}

// If returns node when cond holds, nil otherwise. El and Fragment skip
// nil children, so this composes directly inside element calls.
func If(cond bool, node *VNode) *VNode {
	if cond {
		return node
	}
	return nil
}

// IfElse returns the first node when cond holds, the second otherwise.
func IfElse(cond bool, yes, no *VNode) *VNode {
	if cond {
		return yes
	}
	return no
}

// When is If with lazy construction; fn runs only when cond holds.
func When(cond bool, fn func() *VNode) *VNode {
	if cond {
		return fn()
	}
	return nil
}

// Unless is the inverse of If.
func Unless(cond bool, node *VNode) *VNode {
	if !cond {
		return node
	}
	return nil
}

// Case is one arm of a Switch.
type Case[T comparable] struct {
	Value     T
	Node      *VNode
	IsDefault bool
}

// CaseOf creates a Switch arm.
func CaseOf[T comparable](value T, node *VNode) Case[T] {
	return Case[T]{Value: value, Node: node}
}

// Default creates the fallback arm of a Switch.
func Default[T comparable](node *VNode) Case[T] {
	return Case[T]{Node: node, IsDefault: true}
}

// Switch returns the node of the first arm matching value, or the
// default arm, or nil.
func Switch[T comparable](value T, cases ...Case[T]) *VNode {
	for _, c := range cases {
		if !c.IsDefault && c.Value == value {
			return c.Node
		}
	}
	for _, c := range cases {
		if c.IsDefault {
			return c.Node
		}
	}
	return nil
}

// Range maps a slice to child nodes, dropping nils.
func Range[T any](items []T, fn func(item T, index int) *VNode) []*VNode {
	out := make([]*VNode, 0, len(items))
	for i, item := range items {
		if node := fn(item, i); node != nil {
			out = append(out, node)
		}
	}
	return out
}

// Repeat builds n nodes from an index function, dropping nils.
func Repeat(n int, fn func(i int) *VNode) []*VNode {
	if n <= 0 {
		return nil
	}
	out := make([]*VNode, 0, n)
	for i := 0; i < n; i++ {
		if node := fn(i); node != nil {
			out = append(out, node)
		}
	}
	return out
}

// Walk visits node and all descendants depth-first. Component nodes are
// not expanded; rendering does that.
func Walk(node *VNode, visit func(*VNode)) {
	if node == nil {
		return
	}
	visit(node)
	for _, child := range node.Children {
		Walk(child, visit)
	}
}
