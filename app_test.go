package isora

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isora-dev/isora/internal/config"
	"github.com/isora-dev/isora/pkg/vdom"
)

func newTestApp(t *testing.T, mutate func(cfg *config.Config)) *App {
	t.Helper()
	cfg := config.Default()
	cfg.Assets.Dir = "" // no static dir in tests
	if mutate != nil {
		mutate(cfg)
	}
	app, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { app.Sessions().Close() })
	return app
}

func get(t *testing.T, app *App, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestServePage(t *testing.T) {
	app := newTestApp(t, nil)
	app.Page("/", func(ctx *Ctx) *VNode {
		ctx.Head().SetTitle("Home")
		return vdom.H1(vdom.Text("Welcome"))
	})

	rec := get(t, app, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "<!DOCTYPE html>"))
	assert.Contains(t, body, "<title>Home</title>")
	assert.Contains(t, body, "<h1>Welcome</h1>")
	assert.Contains(t, body, `id="__isora_state__"`)
}

func TestLoaderStateInlined(t *testing.T) {
	app := newTestApp(t, nil)
	app.Loader("/posts/:id", "post", func(ctx *Ctx) error {
		id, err := ctx.ParamInt("id")
		if err != nil {
			return err
		}
		ctx.State().Set("post", map[string]any{"id": id, "title": "Post " + ctx.Param("id")})
		return nil
	})
	app.Page("/posts/:id", func(ctx *Ctx) *VNode {
		return vdom.Div(vdom.Text("post " + ctx.Param("id")))
	})

	rec := get(t, app, "/posts/7")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"post":{"id":7,"title":"Post 7"}`)
}

func TestLayoutWrapsPage(t *testing.T) {
	app := newTestApp(t, nil)
	app.Layout("/", func(ctx *Ctx, children *VNode) *VNode {
		return vdom.Div(vdom.Class("shell"), children)
	})
	app.Page("/about", func(ctx *Ctx) *VNode {
		return vdom.P(vdom.Text("about"))
	})

	body := get(t, app, "/about").Body.String()
	assert.Contains(t, body, `<div class="shell"><p>about</p></div>`)
}

func TestNotFound(t *testing.T) {
	app := newTestApp(t, nil)
	app.Page("/", func(ctx *Ctx) *VNode { return vdom.Div() })

	rec := get(t, app, "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCustomNotFoundPage(t *testing.T) {
	app := newTestApp(t, nil)
	app.SetNotFound(func(ctx *Ctx) *VNode {
		return vdom.H1(vdom.Text("page missing"))
	})

	rec := get(t, app, "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "page missing")
}

func TestLoaderNotFound(t *testing.T) {
	app := newTestApp(t, nil)
	app.Loader("/posts/:id", "post", func(ctx *Ctx) error {
		return ErrNotFound
	})
	app.Page("/posts/:id", func(ctx *Ctx) *VNode { return vdom.Div() })

	rec := get(t, app, "/posts/404")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLoaderRedirect(t *testing.T) {
	app := newTestApp(t, nil)
	app.Loader("/old", "forward", func(ctx *Ctx) error {
		return Redirect("/new")
	})
	app.Page("/old", func(ctx *Ctx) *VNode { return vdom.Div() })

	rec := get(t, app, "/old")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/new", rec.Header().Get("Location"))
}

func TestMiddlewareRedirect(t *testing.T) {
	app := newTestApp(t, nil)
	app.Middleware("/admin", MiddlewareFunc(func(ctx *Ctx, next func() error) error {
		ctx.Redirect("/login", 0)
		return nil
	}))
	app.Page("/admin/users", func(ctx *Ctx) *VNode {
		t.Fatal("page must not run")
		return nil
	})

	rec := get(t, app, "/admin/users")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestErrorPage(t *testing.T) {
	app := newTestApp(t, nil)
	app.SetErrorPage(func(ctx *Ctx, err error) *VNode {
		return vdom.H1(vdom.Text("something broke: " + err.Error()))
	})
	app.Loader("/broken", "fail", func(ctx *Ctx) error {
		return errors.New("db down")
	})
	app.Page("/broken", func(ctx *Ctx) *VNode { return vdom.Div() })

	rec := get(t, app, "/broken")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "something broke")
}

func TestErrorWithoutErrorPage(t *testing.T) {
	app := newTestApp(t, nil)
	app.Loader("/broken", "fail", func(ctx *Ctx) error {
		return errors.New("db down")
	})
	app.Page("/broken", func(ctx *Ctx) *VNode { return vdom.Div() })

	rec := get(t, app, "/broken")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestNilPageIsError(t *testing.T) {
	app := newTestApp(t, nil)
	app.Page("/nil", func(ctx *Ctx) *VNode { return nil })

	rec := get(t, app, "/nil")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSessionCookieRoundTrip(t *testing.T) {
	app := newTestApp(t, nil)
	app.Page("/visit", func(ctx *Ctx) *VNode {
		var visits int
		ctx.Session().Get("visits", &visits)
		visits++
		ctx.Session().Set("visits", visits)
		return vdom.Div(vdom.Text(fmt.Sprintf("visit %d", visits)))
	})

	rec := get(t, app, "/visit")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "visit 1")

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	sessionCookie := cookies[0]
	assert.Equal(t, "isora_session", sessionCookie.Name)
	assert.True(t, sessionCookie.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/visit", nil)
	req.AddCookie(sessionCookie)
	rec2 := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec2, req)
	assert.Contains(t, rec2.Body.String(), "visit 2")
}

func TestNoCookieForUntouchedSession(t *testing.T) {
	app := newTestApp(t, nil)
	app.Page("/", func(ctx *Ctx) *VNode { return vdom.Div() })

	rec := get(t, app, "/")
	assert.Empty(t, rec.Result().Cookies())
}

func TestPageCache(t *testing.T) {
	app := newTestApp(t, func(cfg *config.Config) {
		cfg.Cache.Enabled = true
		cfg.Cache.TTL = time.Minute
	})

	var renders atomic.Int32
	app.Page("/cached", func(ctx *Ctx) *VNode {
		renders.Add(1)
		return vdom.Div(vdom.Text("cached content"))
	})

	first := get(t, app, "/cached")
	require.Equal(t, http.StatusOK, first.Code)

	second := get(t, app, "/cached")
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, int32(1), renders.Load())
	assert.NotEmpty(t, second.Header().Get("Age"))
}

func TestCacheSkipsSessions(t *testing.T) {
	app := newTestApp(t, func(cfg *config.Config) {
		cfg.Cache.Enabled = true
	})

	var renders atomic.Int32
	app.Page("/me", func(ctx *Ctx) *VNode {
		renders.Add(1)
		ctx.Session().Set("seen", true)
		return vdom.Div(vdom.Text("personal"))
	})

	rec := get(t, app, "/me")
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(cookies[0])
	rec2 := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec2, req)
	assert.Equal(t, int32(2), renders.Load())
}

func TestHealthz(t *testing.T) {
	app := newTestApp(t, nil)
	rec := get(t, app, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t, nil)
	rec := get(t, app, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestMethodNotAllowed(t *testing.T) {
	app := newTestApp(t, nil)
	app.Page("/", func(ctx *Ctx) *VNode { return vdom.Div() })

	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestActionBindingsInDocument(t *testing.T) {
	app := newTestApp(t, nil)
	app.Page("/counter", func(ctx *Ctx) *VNode {
		ctx.State().Set("count", 0)
		return vdom.Div(
			vdom.Button(vdom.On("click", "counter.increment"), vdom.Text("+")),
		)
	})

	body := get(t, app, "/counter").Body.String()
	assert.Contains(t, body, `data-h="h1"`)
	assert.Contains(t, body, `data-on-click="counter.increment"`)
	assert.Contains(t, body, `"count":0`)
}

func TestDevModeIncludesReload(t *testing.T) {
	app := newTestApp(t, func(cfg *config.Config) {
		cfg.Dev.Enabled = true
	})
	app.Page("/", func(ctx *Ctx) *VNode { return vdom.Div() })

	body := get(t, app, "/").Body.String()
	assert.Contains(t, body, "_isora/reload")
}
