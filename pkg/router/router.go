// Package router maps URL paths to pages, layouts, loaders, and
// middleware.
//
// Routes are registered as patterns with static segments, :name
// parameters, and a trailing *name catch-all. Matching prefers static
// over parameter over catch-all at each level, with backtracking, so
// "/posts/new" beats "/posts/:id" regardless of registration order.
//
// Layouts, loaders, and middleware attach to patterns too and are
// collected hierarchically: a match at "/posts/:id" inherits whatever
// was registered at "/" and "/posts" on the way down.
package router

import (
	"sort"

	"github.com/isora-dev/isora/pkg/loader"
	"github.com/isora-dev/isora/pkg/server"
)

// Router holds the route tree.
//
// Registration is not synchronized; register everything before
// serving. Match is read-only and safe for concurrent use afterwards.
type Router struct {
	root      *node
	global    []server.Middleware
	notFound  Page
	errorPage ErrorPage
	patterns  []string
}

// New creates an empty router.
func New() *Router {
	return &Router{root: newNode("")}
}

// Page registers a page handler for a pattern.
func (r *Router) Page(pattern string, page Page) {
	n := r.root.insert(pattern)
	n.page = page
	n.pattern = normalizePattern(pattern)
	r.patterns = append(r.patterns, n.pattern)
}

// Layout registers a layout at a pattern. Every page at or below the
// pattern renders inside it.
func (r *Router) Layout(pattern string, layout Layout) {
	r.root.insert(pattern).layout = layout
}

// Loader registers a named data loader at a pattern. Loaders attached
// to ancestors of a matched page run together with the page's own.
func (r *Router) Loader(pattern, name string, fn loader.Loader) {
	n := r.root.insert(pattern)
	n.loaders = append(n.loaders, loader.Named(name, fn))
}

// Middleware attaches middleware to a pattern and everything below it.
func (r *Router) Middleware(pattern string, mw ...server.Middleware) {
	n := r.root.insert(pattern)
	n.middleware = append(n.middleware, mw...)
}

// Use adds global middleware, run before any route-level middleware.
func (r *Router) Use(mw ...server.Middleware) {
	r.global = append(r.global, mw...)
}

// SetNotFound sets the page rendered when no route matches.
func (r *Router) SetNotFound(page Page) { r.notFound = page }

// NotFound returns the 404 page, or nil.
func (r *Router) NotFound() Page { return r.notFound }

// SetErrorPage sets the page rendered when a loader or handler fails.
func (r *Router) SetErrorPage(page ErrorPage) { r.errorPage = page }

// ErrorPage returns the error page, or nil.
func (r *Router) ErrorPage() ErrorPage { return r.errorPage }

// Patterns returns every registered page pattern, sorted.
func (r *Router) Patterns() []string {
	out := make([]string, len(r.patterns))
	copy(out, r.patterns)
	sort.Strings(out)
	return out
}

// Match resolves a request path. The returned Match carries the page
// plus the layouts, loaders, and middleware collected from root to
// leaf. Returns false when no page is registered for the path.
func (r *Router) Match(path string) (*Match, bool) {
	params := make(map[string]string)
	ch := &chain{middleware: append([]server.Middleware{}, r.global...)}
	ch.collect(r.root)

	leaf, ok := r.root.match(splitPath(path), params, ch)
	if !ok {
		return nil, false
	}

	return &Match{
		Page:       leaf.page,
		Pattern:    leaf.pattern,
		Params:     params,
		Layouts:    ch.layouts,
		Loaders:    ch.loaders,
		Middleware: ch.middleware,
	}, true
}

// normalizePattern strips a trailing slash so "/posts/" and "/posts"
// register the same pattern, keeping "/" itself intact.
func normalizePattern(pattern string) string {
	if len(pattern) > 1 && pattern[len(pattern)-1] == '/' {
		return pattern[:len(pattern)-1]
	}
	if pattern == "" {
		return "/"
	}
	return pattern
}
