package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isora-dev/isora/pkg/loader"
	"github.com/isora-dev/isora/pkg/server"
	"github.com/isora-dev/isora/pkg/vdom"
)

func page(name string) Page {
	return func(ctx *server.Ctx) *vdom.VNode {
		return vdom.Div(vdom.Class(name))
	}
}

func pageName(t *testing.T, p Page) string {
	t.Helper()
	require.NotNil(t, p)
	ctx := server.NewCtx(httptest.NewRequest(http.MethodGet, "/", nil), nil, nil)
	n := p(ctx)
	require.NotNil(t, n)
	return n.Props["class"].(string)
}

func TestMatchStatic(t *testing.T) {
	r := New()
	r.Page("/", page("home"))
	r.Page("/about", page("about"))

	m, ok := r.Match("/")
	require.True(t, ok)
	assert.Equal(t, "home", pageName(t, m.Page))
	assert.Equal(t, "/", m.Pattern)

	m, ok = r.Match("/about")
	require.True(t, ok)
	assert.Equal(t, "about", pageName(t, m.Page))

	_, ok = r.Match("/missing")
	assert.False(t, ok)
}

func TestMatchTrailingSlash(t *testing.T) {
	r := New()
	r.Page("/about", page("about"))

	_, ok := r.Match("/about/")
	assert.True(t, ok)
}

func TestMatchParams(t *testing.T) {
	r := New()
	r.Page("/posts/:id", page("post"))
	r.Page("/posts/:id/comments/:cid", page("comment"))

	m, ok := r.Match("/posts/42")
	require.True(t, ok)
	assert.Equal(t, map[string]string{"id": "42"}, m.Params)
	assert.Equal(t, "/posts/:id", m.Pattern)

	m, ok = r.Match("/posts/42/comments/7")
	require.True(t, ok)
	assert.Equal(t, "42", m.Params["id"])
	assert.Equal(t, "7", m.Params["cid"])
}

func TestMatchStaticBeatsParam(t *testing.T) {
	r := New()
	r.Page("/posts/:id", page("post"))
	r.Page("/posts/new", page("new"))

	m, ok := r.Match("/posts/new")
	require.True(t, ok)
	assert.Equal(t, "new", pageName(t, m.Page))
	assert.Empty(t, m.Params)

	m, ok = r.Match("/posts/42")
	require.True(t, ok)
	assert.Equal(t, "post", pageName(t, m.Page))
}

func TestMatchBacktracksToParam(t *testing.T) {
	r := New()
	// "/files/special" exists as a static dead end without a page; a
	// lookup for it must fall back to the parameter route.
	r.Page("/files/special/detail", page("detail"))
	r.Page("/files/:name", page("file"))

	m, ok := r.Match("/files/special")
	require.True(t, ok)
	assert.Equal(t, "file", pageName(t, m.Page))
	assert.Equal(t, "special", m.Params["name"])
}

func TestMatchCatchAll(t *testing.T) {
	r := New()
	r.Page("/docs/*path", page("docs"))

	m, ok := r.Match("/docs/guide/install/linux")
	require.True(t, ok)
	assert.Equal(t, "guide/install/linux", m.Params["path"])

	// A catch-all also covers its own mount point.
	m, ok = r.Match("/docs")
	require.True(t, ok)
	assert.Equal(t, "", m.Params["path"])

	m, ok = r.Match("/docs/")
	require.True(t, ok)
	assert.Equal(t, "", m.Params["path"])
}

func TestMatchStaticBeatsCatchAll(t *testing.T) {
	r := New()
	r.Page("/docs/*path", page("docs"))
	r.Page("/docs/intro", page("intro"))

	m, ok := r.Match("/docs/intro")
	require.True(t, ok)
	assert.Equal(t, "intro", pageName(t, m.Page))

	m, ok = r.Match("/docs/other")
	require.True(t, ok)
	assert.Equal(t, "docs", pageName(t, m.Page))
}

func TestMatchCollectsLayouts(t *testing.T) {
	r := New()
	var order []string
	layout := func(name string) Layout {
		return func(ctx *server.Ctx, children *vdom.VNode) *vdom.VNode {
			order = append(order, name)
			return children
		}
	}

	r.Layout("/", layout("root"))
	r.Layout("/admin", layout("admin"))
	r.Page("/admin/users", page("users"))
	r.Page("/about", page("about"))

	m, ok := r.Match("/admin/users")
	require.True(t, ok)
	require.Len(t, m.Layouts, 2)

	ctx := server.NewCtx(httptest.NewRequest(http.MethodGet, "/", nil), nil, nil)
	for _, l := range m.Layouts {
		l(ctx, nil)
	}
	assert.Equal(t, []string{"root", "admin"}, order)

	m, ok = r.Match("/about")
	require.True(t, ok)
	assert.Len(t, m.Layouts, 1)
}

func TestMatchCollectsLoaders(t *testing.T) {
	r := New()
	noop := func(ctx *server.Ctx) error { return nil }

	r.Loader("/", "session", noop)
	r.Loader("/posts/:id", "post", noop)
	r.Loader("/posts/:id", "comments", noop)
	r.Page("/posts/:id", page("post"))

	m, ok := r.Match("/posts/7")
	require.True(t, ok)
	require.Len(t, m.Loaders, 3)
	assert.Equal(t, "session", m.Loaders[0].Name)
	assert.Equal(t, "post", m.Loaders[1].Name)
	assert.Equal(t, "comments", m.Loaders[2].Name)
}

func TestMatchMiddlewareOrder(t *testing.T) {
	r := New()
	mk := func(name string, log *[]string) server.Middleware {
		return server.MiddlewareFunc(func(ctx *server.Ctx, next func() error) error {
			*log = append(*log, name)
			return next()
		})
	}

	var log []string
	r.Use(mk("global", &log))
	r.Middleware("/admin", mk("admin", &log))
	r.Page("/admin/users", page("users"))

	m, ok := r.Match("/admin/users")
	require.True(t, ok)
	require.Len(t, m.Middleware, 2)

	ctx := server.NewCtx(httptest.NewRequest(http.MethodGet, "/", nil), nil, nil)
	ran, err := server.RunMiddleware(ctx, m.Middleware, func() error { return nil })
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, []string{"global", "admin"}, log)
}

func TestLoaderIntegration(t *testing.T) {
	r := New()
	r.Loader("/posts/:id", "post", func(ctx *server.Ctx) error {
		ctx.State().Set("post", "post-"+ctx.Param("id"))
		return nil
	})
	r.Page("/posts/:id", page("post"))

	m, ok := r.Match("/posts/9")
	require.True(t, ok)

	req := httptest.NewRequest(http.MethodGet, "/posts/9", nil)
	ctx := server.NewCtx(req, m.Params, nil)
	require.NoError(t, loader.Run(ctx, m.Loaders))

	v, ok2 := ctx.State().Get("post")
	require.True(t, ok2)
	assert.Equal(t, "post-9", v)
}

func TestPatterns(t *testing.T) {
	r := New()
	r.Page("/b", page("b"))
	r.Page("/a/", page("a"))
	r.Page("/", page("home"))

	assert.Equal(t, []string{"/", "/a", "/b"}, r.Patterns())
}

func TestNotFoundAndErrorPage(t *testing.T) {
	r := New()
	assert.Nil(t, r.NotFound())
	assert.Nil(t, r.ErrorPage())

	r.SetNotFound(page("404"))
	r.SetErrorPage(func(ctx *server.Ctx, err error) *vdom.VNode {
		return vdom.Div(vdom.Text(err.Error()))
	})
	assert.NotNil(t, r.NotFound())
	assert.NotNil(t, r.ErrorPage())
}
