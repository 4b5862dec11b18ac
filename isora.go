// Package isora is a server-side rendering framework: pages are Go
// functions building virtual node trees, routes declare loaders that
// prefetch data concurrently, and every response ships the state the
// markup was rendered from so a client runtime can hydrate in place.
package isora

import (
	"github.com/isora-dev/isora/internal/config"
	"github.com/isora-dev/isora/pkg/loader"
	"github.com/isora-dev/isora/pkg/router"
	"github.com/isora-dev/isora/pkg/server"
	"github.com/isora-dev/isora/pkg/vdom"
)

// Re-exported types so applications import one package for the
// common path.
type (
	// Ctx is the per-request context.
	Ctx = server.Ctx

	// VNode is a virtual DOM node.
	VNode = vdom.VNode

	// Page renders a matched route.
	Page = router.Page

	// Layout wraps child content.
	Layout = router.Layout

	// ErrorPage renders failures.
	ErrorPage = router.ErrorPage

	// Loader prefetches data for a route.
	Loader = loader.Loader

	// Middleware wraps pipeline steps.
	Middleware = server.Middleware

	// MiddlewareFunc adapts a function to Middleware.
	MiddlewareFunc = server.MiddlewareFunc

	// Config is the server configuration.
	Config = config.Config
)

// ErrNotFound is returned by loaders and handlers for missing
// entities; the pipeline responds with the 404 page.
var ErrNotFound = server.ErrNotFound

// Redirect creates a 302 redirect error for loaders to return.
func Redirect(url string) error { return server.Redirect(url) }

// RedirectWithCode creates a redirect error with an explicit status.
func RedirectWithCode(url string, code int) error {
	return server.RedirectWithCode(url, code)
}

// LoadConfig reads isora.yaml/isora.json plus ISORA_* environment
// variables from dir.
func LoadConfig(dir string) (*Config, error) { return config.Load(dir) }

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config { return config.Default() }
