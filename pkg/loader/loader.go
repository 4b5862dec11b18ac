// Package loader runs route data loaders before rendering.
//
// Loaders fetch the data a page needs and write it into the request
// state store. All loaders for a match run concurrently; rendering
// starts only after every one of them has finished, so the markup is
// always produced from a complete snapshot.
package loader

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	ierrors "github.com/isora-dev/isora/internal/errors"
	"github.com/isora-dev/isora/pkg/server"
)

// Loader fetches data for a route and stores it via ctx.State().
// Returning server.ErrNotFound yields the 404 page; returning a
// *server.RedirectError (or calling ctx.Redirect) aborts rendering in
// favor of a redirect.
type Loader func(ctx *server.Ctx) error

// Func names a loader for logs and error messages.
type Func struct {
	Name string
	Run  Loader
}

// Named wraps a loader with a name.
func Named(name string, fn Loader) Func {
	return Func{Name: name, Run: fn}
}

// Run executes all loaders concurrently and waits for every one of
// them to finish. The first error (in completion order) is returned;
// later errors are dropped. A panicking loader is recovered and
// reported as an error rather than taking the server down.
//
// Run also watches the request context: when it is canceled before the
// loaders finish, the context error is returned. The loaders
// themselves still run to completion in the background; they must
// honor ctx.StdContext() to stop early.
func Run(ctx *server.Ctx, loaders []Func) error {
	if len(loaders) == 0 {
		return nil
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	record := func(err error) {
		if err == nil {
			return
		}
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	for _, l := range loaders {
		if l.Run == nil {
			continue
		}
		wg.Add(1)
		go func(l Func) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					ctx.Logger().Error("loader panicked",
						"loader", l.Name,
						"panic", r,
						"stack", string(debug.Stack()))
					record(ierrors.New("I301").Wrap(fmt.Errorf("loader %s panicked: %v", l.Name, r)))
				}
			}()
			if err := l.Run(ctx); err != nil {
				record(wrapLoaderErr(l.Name, err))
			}
		}(l)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.StdContext().Done():
		return ierrors.New("I302").Wrap(ctx.StdContext().Err())
	}

	mu.Lock()
	defer mu.Unlock()
	return firstErr
}

// wrapLoaderErr keeps control-flow errors (not-found, redirect)
// unwrapped so the pipeline can branch on them.
func wrapLoaderErr(name string, err error) error {
	if errors.Is(err, server.ErrNotFound) {
		return err
	}
	if _, ok := server.AsRedirect(err); ok {
		return err
	}
	return fmt.Errorf("loader %s: %w", name, err)
}
