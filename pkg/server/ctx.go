// Package server holds the per-request context shared by loaders,
// middleware, and page handlers, plus the control-flow errors that steer
// the SSR pipeline (redirects, not-found).
package server

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	ierrors "github.com/isora-dev/isora/internal/errors"
	"github.com/isora-dev/isora/pkg/head"
	"github.com/isora-dev/isora/pkg/session"
	"github.com/isora-dev/isora/pkg/state"
)

// Ctx carries everything a loader, middleware, or page handler needs
// for one request. A fresh Ctx (with fresh Store and head Manager) is
// created per request; none of it survives the response.
type Ctx struct {
	request *http.Request
	params  map[string]string
	store   *state.Store
	head    *head.Manager
	session *session.Session
	logger  *slog.Logger
	// mu guards the response-side fields below. Loaders run on their
	// own goroutines, so Redirect, Status, SetHeader, SetCookie, and
	// SetValue must all be safe to call concurrently.
	mu       sync.Mutex
	values   map[any]any
	status   int
	header   http.Header
	cookies  []*http.Cookie
	redirect *RedirectError
}

// NewCtx creates a request context. params may be nil.
func NewCtx(r *http.Request, params map[string]string, logger *slog.Logger) *Ctx {
	if params == nil {
		params = make(map[string]string)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Ctx{
		request: r,
		params:  params,
		store:   state.New(),
		head:    head.NewManager(),
		logger:  logger,
		values:  make(map[any]any),
		status:  http.StatusOK,
		header:  make(http.Header),
	}
}

// Request returns the underlying HTTP request.
func (c *Ctx) Request() *http.Request { return c.request }

// SetRequest swaps the underlying request, typically to carry a
// derived context (tracing spans, deadlines) into loaders.
func (c *Ctx) SetRequest(r *http.Request) { c.request = r }

// Path returns the request URL path.
func (c *Ctx) Path() string { return c.request.URL.Path }

// Method returns the HTTP method.
func (c *Ctx) Method() string { return c.request.Method }

// Query returns the parsed query string.
func (c *Ctx) Query() url.Values { return c.request.URL.Query() }

// QueryParam returns a single query parameter.
func (c *Ctx) QueryParam(key string) string { return c.request.URL.Query().Get(key) }

// Param returns a route parameter extracted during matching.
func (c *Ctx) Param(key string) string { return c.params[key] }

// ParamInt returns a route parameter parsed as int.
func (c *Ctx) ParamInt(key string) (int, error) {
	v, err := strconv.Atoi(c.params[key])
	if err != nil {
		return 0, ierrors.New("I202").Wrap(err)
	}
	return v, nil
}

// Params returns all route parameters.
func (c *Ctx) Params() map[string]string { return c.params }

// Header returns a request header value.
func (c *Ctx) Header(key string) string { return c.request.Header.Get(key) }

// Cookie returns a request cookie.
func (c *Ctx) Cookie(name string) (*http.Cookie, error) { return c.request.Cookie(name) }

// State returns the per-request hydration store.
func (c *Ctx) State() *state.Store { return c.store }

// Head returns the per-request head manager.
func (c *Ctx) Head() *head.Manager { return c.head }

// Session returns the request session, or nil when sessions are not
// configured.
func (c *Ctx) Session() *session.Session { return c.session }

// SetSession attaches the request session. Called by App.
func (c *Ctx) SetSession(s *session.Session) { c.session = s }

// Logger returns the request-scoped logger.
func (c *Ctx) Logger() *slog.Logger { return c.logger }

// SetValue stores a request-scoped value, for middleware passing data
// to handlers. Unlike State, these values are never serialized.
func (c *Ctx) SetValue(key, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
}

// Value returns a request-scoped value.
func (c *Ctx) Value(key any) any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values[key]
}

// StdContext returns the request's context.Context.
func (c *Ctx) StdContext() context.Context { return c.request.Context() }

// Status sets the response status code for the rendered document.
func (c *Ctx) Status(code int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = code
}

// StatusCode returns the response status that will be written.
func (c *Ctx) StatusCode() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// SetHeader sets a response header.
func (c *Ctx) SetHeader(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.header.Set(key, value)
}

// SetCookie queues a response cookie.
func (c *Ctx) SetCookie(cookie *http.Cookie) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cookies = append(c.cookies, cookie)
}

// Redirect aborts rendering and responds with a redirect. Safe to call
// from middleware, loaders, and handlers; the first call wins.
func (c *Ctx) Redirect(target string, code int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.redirect != nil {
		return
	}
	if code == 0 {
		code = http.StatusFound
	}
	c.redirect = &RedirectError{URL: target, Code: code}
}

// Redirection returns the pending redirect, if any.
func (c *Ctx) Redirection() *RedirectError {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.redirect
}

// ApplyTo writes queued headers and cookies to the response writer.
// Must run before WriteHeader.
func (c *Ctx) ApplyTo(w http.ResponseWriter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, vals := range c.header {
		for _, v := range vals {
			w.Header().Add(key, v)
		}
	}
	for _, cookie := range c.cookies {
		http.SetCookie(w, cookie)
	}
}
