package middleware

import (
	"fmt"
	"runtime/debug"

	ierrors "github.com/isora-dev/isora/internal/errors"
	"github.com/isora-dev/isora/pkg/server"
)

// Recover converts panics in downstream middleware and handlers into
// errors, so one broken page renders the error document instead of
// killing the connection.
type Recover struct{}

// NewRecover creates the panic recovery middleware.
func NewRecover() *Recover { return &Recover{} }

// Handle implements server.Middleware.
func (rec *Recover) Handle(ctx *server.Ctx, next func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			ctx.Logger().Error("request panicked",
				"path", ctx.Path(),
				"panic", r,
				"stack", string(debug.Stack()))
			err = ierrors.Newf(ierrors.CategoryRender, "recovered panic").Wrap(fmt.Errorf("%v", r))
		}
	}()
	return next()
}
