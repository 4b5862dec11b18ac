package router

import (
	"github.com/isora-dev/isora/pkg/loader"
	"github.com/isora-dev/isora/pkg/server"
	"github.com/isora-dev/isora/pkg/vdom"
)

// Page renders a matched route into a component tree. It runs after
// every loader for the match has finished, so ctx.State() is complete.
type Page func(ctx *server.Ctx) *vdom.VNode

// Layout wraps child content. Layouts nest root to leaf: the root
// layout receives the output of the next layout down, and the deepest
// layout receives the page.
type Layout func(ctx *server.Ctx, children *vdom.VNode) *vdom.VNode

// ErrorPage renders the error document when a loader or handler fails.
type ErrorPage func(ctx *server.Ctx, err error) *vdom.VNode

// Match is the result of resolving a path: the page handler plus
// everything collected along the way from root to leaf.
type Match struct {
	// Page is the matched page handler.
	Page Page

	// Pattern is the registered route pattern, e.g. "/posts/:id".
	// Stable across requests, usable as a metrics label.
	Pattern string

	// Params holds the extracted route parameters. Catch-all
	// parameters contain the joined remaining segments.
	Params map[string]string

	// Layouts are the layout handlers from root to leaf.
	Layouts []Layout

	// Loaders are the data loaders collected root to leaf. They all
	// run before rendering starts.
	Loaders []loader.Func

	// Middleware is the combined chain: global first, then each
	// matched level root to leaf.
	Middleware []server.Middleware
}
