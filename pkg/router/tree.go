package router

import (
	"strings"

	"github.com/isora-dev/isora/pkg/loader"
	"github.com/isora-dev/isora/pkg/server"
)

// node is one segment in the route tree. Static children are matched
// before the parameter child, which is matched before the catch-all
// child, with backtracking between the tiers.
type node struct {
	segment    string
	isParam    bool
	isCatchAll bool
	paramName  string

	pattern    string
	page       Page
	layout     Layout
	loaders    []loader.Func
	middleware []server.Middleware

	children      []*node
	paramChild    *node
	catchAllChild *node
}

func newNode(segment string) *node {
	return &node{segment: segment}
}

func (n *node) findChild(segment string) *node {
	for _, child := range n.children {
		if child.segment == segment {
			return child
		}
	}
	return nil
}

func (n *node) addChild(segment string) *node {
	if child := n.findChild(segment); child != nil {
		return child
	}
	child := newNode(segment)
	n.children = append(n.children, child)
	return child
}

func (n *node) addParamChild(name string) *node {
	if n.paramChild != nil {
		return n.paramChild
	}
	child := newNode("")
	child.isParam = true
	child.paramName = name
	n.paramChild = child
	return child
}

func (n *node) addCatchAllChild(name string) *node {
	if n.catchAllChild != nil {
		return n.catchAllChild
	}
	child := newNode("")
	child.isCatchAll = true
	child.paramName = name
	n.catchAllChild = child
	return child
}

// insert walks (and extends) the tree along path, returning the leaf
// node for registration. A catch-all segment consumes the rest of the
// path.
func (n *node) insert(path string) *node {
	current := n
	for _, seg := range splitPath(path) {
		switch {
		case strings.HasPrefix(seg, "*"):
			return current.addCatchAllChild(seg[1:])
		case strings.HasPrefix(seg, ":"):
			current = current.addParamChild(seg[1:])
		default:
			current = current.addChild(seg)
		}
	}
	return current
}

// chain accumulates layouts, loaders, and middleware along the match
// path.
type chain struct {
	layouts    []Layout
	loaders    []loader.Func
	middleware []server.Middleware
}

func (c *chain) collect(n *node) {
	if n.layout != nil {
		c.layouts = append(c.layouts, n.layout)
	}
	c.loaders = append(c.loaders, n.loaders...)
	c.middleware = append(c.middleware, n.middleware...)
}

// match resolves segments against the subtree. params and ch are
// mutated along the way; on backtracking both are restored.
func (n *node) match(segments []string, params map[string]string, ch *chain) (*node, bool) {
	if len(segments) == 0 {
		if n.page != nil {
			return n, true
		}
		// A catch-all also matches an empty remainder, so /files/*path
		// serves /files itself with path set to "".
		if n.catchAllChild != nil && n.catchAllChild.page != nil {
			params[n.catchAllChild.paramName] = ""
			ch.collect(n.catchAllChild)
			return n.catchAllChild, true
		}
		return nil, false
	}

	segment := segments[0]
	remaining := segments[1:]
	mark := ch.mark()

	if child := n.findChild(segment); child != nil {
		ch.collect(child)
		if leaf, ok := child.match(remaining, params, ch); ok {
			return leaf, true
		}
		ch.rewind(mark)
	}

	if n.paramChild != nil && segment != "" {
		params[n.paramChild.paramName] = segment
		ch.collect(n.paramChild)
		if leaf, ok := n.paramChild.match(remaining, params, ch); ok {
			return leaf, true
		}
		ch.rewind(mark)
		delete(params, n.paramChild.paramName)
	}

	if n.catchAllChild != nil && n.catchAllChild.page != nil {
		params[n.catchAllChild.paramName] = strings.Join(segments, "/")
		ch.collect(n.catchAllChild)
		return n.catchAllChild, true
	}

	return nil, false
}

type chainMark struct {
	layouts    int
	loaders    int
	middleware int
}

func (c *chain) mark() chainMark {
	return chainMark{len(c.layouts), len(c.loaders), len(c.middleware)}
}

func (c *chain) rewind(m chainMark) {
	c.layouts = c.layouts[:m.layouts]
	c.loaders = c.loaders[:m.loaders]
	c.middleware = c.middleware[:m.middleware]
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
