package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mwCtx(t *testing.T) *Ctx {
	t.Helper()
	return NewCtx(httptest.NewRequest(http.MethodGet, "/", nil), nil, nil)
}

func TestRunMiddlewareEmptyChain(t *testing.T) {
	called := false
	ran, err := RunMiddleware(mwCtx(t), nil, func() error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
	assert.True(t, called)
}

func TestRunMiddlewareOrder(t *testing.T) {
	var order []string
	mk := func(name string) Middleware {
		return MiddlewareFunc(func(ctx *Ctx, next func() error) error {
			order = append(order, name+":before")
			err := next()
			order = append(order, name+":after")
			return err
		})
	}

	ran, err := RunMiddleware(mwCtx(t), []Middleware{mk("a"), mk("b")}, func() error {
		order = append(order, "final")
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, []string{"a:before", "b:before", "final", "b:after", "a:after"}, order)
}

func TestRunMiddlewareShortCircuit(t *testing.T) {
	ctx := mwCtx(t)
	stop := MiddlewareFunc(func(c *Ctx, next func() error) error {
		c.Redirect("/login", 0)
		return nil
	})

	ran, err := RunMiddleware(ctx, []Middleware{stop}, func() error {
		t.Fatal("final must not run")
		return nil
	})
	require.NoError(t, err)
	assert.False(t, ran)
	require.NotNil(t, ctx.Redirection())
	assert.Equal(t, "/login", ctx.Redirection().URL)
}

func TestRunMiddlewareError(t *testing.T) {
	boom := errors.New("boom")
	failing := MiddlewareFunc(func(c *Ctx, next func() error) error {
		return boom
	})

	ran, err := RunMiddleware(mwCtx(t), []Middleware{failing}, func() error {
		t.Fatal("final must not run")
		return nil
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, ran)
}

func TestRunMiddlewareNilEntries(t *testing.T) {
	called := false
	ran, err := RunMiddleware(mwCtx(t), []Middleware{nil, nil}, func() error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
	assert.True(t, called)
}

func TestRunMiddlewareNilFinal(t *testing.T) {
	ran, err := RunMiddleware(mwCtx(t), nil, nil)
	require.NoError(t, err)
	assert.False(t, ran)
}
