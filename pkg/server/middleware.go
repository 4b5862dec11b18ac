package server

// Middleware wraps a step of the SSR pipeline. It may short-circuit by
// returning without calling next (e.g. after Ctx.Redirect), pass an
// error up, or decorate the work around next().
type Middleware interface {
	Handle(ctx *Ctx, next func() error) error
}

// MiddlewareFunc adapts a function to Middleware.
type MiddlewareFunc func(ctx *Ctx, next func() error) error

// Handle implements Middleware.
func (f MiddlewareFunc) Handle(ctx *Ctx, next func() error) error {
	return f(ctx, next)
}

// RunMiddleware executes a middleware chain and then final.
//
// ranFinal reports whether the chain reached final: middleware can
// short-circuit by returning nil without calling next, leaving
// ranFinal false and err nil. The caller then responds from Ctx state
// (status, redirect) instead of rendering.
func RunMiddleware(ctx *Ctx, chain []Middleware, final func() error) (ranFinal bool, err error) {
	if final == nil {
		return false, nil
	}

	ran := false
	wrapped := func() error {
		ran = true
		return final()
	}

	if len(chain) == 0 {
		return true, wrapped()
	}

	index := 0
	var next func() error
	next = func() error {
		if index >= len(chain) {
			return wrapped()
		}
		mw := chain[index]
		index++
		if mw == nil {
			return next()
		}
		return mw.Handle(ctx, next)
	}

	err = next()
	return ran, err
}
