package isora

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/isora-dev/isora/internal/dev"
	ierrors "github.com/isora-dev/isora/internal/errors"
	"github.com/isora-dev/isora/pkg/cache"
	"github.com/isora-dev/isora/pkg/loader"
	"github.com/isora-dev/isora/pkg/middleware"
	"github.com/isora-dev/isora/pkg/render"
	"github.com/isora-dev/isora/pkg/router"
	"github.com/isora-dev/isora/pkg/server"
	"github.com/isora-dev/isora/pkg/session"
	"github.com/isora-dev/isora/pkg/vdom"
)

const htmlContentType = "text/html; charset=utf-8"

// serveSSR is the page pipeline: match, session, middleware, loaders,
// render, respond. Mounted as the mux catch-all.
func (a *App) serveSSR(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cacheKey := r.URL.Path
	if r.URL.RawQuery != "" {
		cacheKey += "?" + r.URL.RawQuery
	}
	if entry := a.cachedPage(r, cacheKey); entry != nil {
		w.Header().Set("Content-Type", entry.ContentType)
		w.Header().Set("Age", strconv.Itoa(int(entry.Age().Seconds())))
		w.WriteHeader(entry.Status)
		if r.Method != http.MethodHead {
			w.Write(entry.Body)
		}
		return
	}

	match, ok := a.router.Match(r.URL.Path)
	if !ok {
		a.renderNotFound(w, r)
		return
	}

	ctx := server.NewCtx(r, match.Params, a.logger.With("route", match.Pattern))
	middleware.SetRoutePattern(ctx, match.Pattern)

	sess, existed := a.resolveSession(ctx)

	var body []byte
	final := func() error {
		if err := loader.Run(ctx, match.Loaders); err != nil {
			return err
		}
		if re := ctx.Redirection(); re != nil {
			return re
		}
		rendered, err := a.renderPage(ctx, match)
		if err != nil {
			return err
		}
		body = rendered
		return nil
	}

	ranFinal, err := server.RunMiddleware(ctx, match.Middleware, final)

	a.persistSession(ctx, sess, existed, w)

	if re := redirectFrom(ctx, err); re != nil {
		ctx.ApplyTo(w)
		http.Redirect(w, r, re.URL, re.Code)
		return
	}
	if err != nil {
		if errors.Is(err, server.ErrNotFound) {
			a.renderNotFound(w, r)
			return
		}
		a.renderError(w, ctx, err)
		return
	}
	if !ranFinal {
		// Middleware ended the request without rendering.
		ctx.ApplyTo(w)
		w.WriteHeader(ctx.StatusCode())
		return
	}

	ctx.ApplyTo(w)
	w.Header().Set("Content-Type", htmlContentType)
	w.WriteHeader(ctx.StatusCode())
	if r.Method != http.MethodHead {
		w.Write(body)
	}

	a.storePage(ctx, sess, existed, cacheKey, body)
}

// redirectFrom merges the two redirect channels: Ctx.Redirect calls
// and RedirectError returns.
func redirectFrom(ctx *server.Ctx, err error) *server.RedirectError {
	if re := ctx.Redirection(); re != nil {
		return re
	}
	if re, ok := server.AsRedirect(err); ok {
		return re
	}
	return nil
}

// renderPage runs the handler and wraps the layouts around its output,
// deepest layout first.
func (a *App) renderPage(ctx *server.Ctx, match *router.Match) ([]byte, error) {
	node := match.Page(ctx)
	if node == nil {
		return nil, ierrors.New("I102")
	}
	for i := len(match.Layouts) - 1; i >= 0; i-- {
		node = match.Layouts[i](ctx, node)
		if node == nil {
			return nil, ierrors.New("I102")
		}
	}
	return a.renderDocument(ctx, node)
}

func (a *App) renderDocument(ctx *server.Ctx, node *vdom.VNode) ([]byte, error) {
	docCfg := render.DocumentConfig{
		ClientScript: a.manifest.Resolve("client.js"),
	}
	if a.reload != nil {
		docCfg.ReloadScript = dev.ReloadScript
	}
	doc := render.NewDocument(docCfg, render.New(render.Config{Pretty: a.config.Dev.Enabled}))
	out, err := doc.Render(node, ctx.Head(), ctx.State())
	if err != nil {
		return nil, ierrors.From(err, "I103")
	}
	return out, nil
}

func (a *App) renderNotFound(w http.ResponseWriter, r *http.Request) {
	page := a.router.NotFound()
	if page == nil {
		http.NotFound(w, r)
		return
	}
	ctx := server.NewCtx(r, nil, a.logger)
	ctx.Status(http.StatusNotFound)
	ctx.Head().SetTitle("Not Found")

	node := page(ctx)
	body, err := a.renderDocument(ctx, node)
	if err != nil {
		a.logger.Error("404 page render failed", "err", err)
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", htmlContentType)
	w.WriteHeader(http.StatusNotFound)
	w.Write(body)
}

func (a *App) renderError(w http.ResponseWriter, ctx *server.Ctx, cause error) {
	a.logger.Error("page failed", "path", ctx.Path(), "err", cause)

	page := a.router.ErrorPage()
	if page == nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	// Fresh context: state and head collected by the failed page must
	// not leak into the error document.
	errCtx := server.NewCtx(ctx.Request(), nil, a.logger)
	errCtx.Head().SetTitle("Error")

	node := page(errCtx, cause)
	body, err := a.renderDocument(errCtx, node)
	if err != nil {
		a.logger.Error("error page render failed", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", htmlContentType)
	w.WriteHeader(http.StatusInternalServerError)
	w.Write(body)
}

// resolveSession loads the session named by the request cookie, or
// creates a fresh one.
func (a *App) resolveSession(ctx *server.Ctx) (*session.Session, bool) {
	var id string
	if cookie, err := ctx.Cookie(session.CookieName); err == nil {
		id = cookie.Value
	}
	sess, existed, err := a.sessions.Resolve(ctx.StdContext(), id)
	if err != nil {
		a.logger.Warn("session resolve failed", "err", err)
		sess, existed = session.NewSession(), false
	}
	ctx.SetSession(sess)
	return sess, existed
}

// persistSession saves dirty sessions and sets the cookie on first
// use. Untouched fresh sessions are not persisted, so anonymous
// crawlers never fill the store.
func (a *App) persistSession(ctx *server.Ctx, sess *session.Session, existed bool, w http.ResponseWriter) {
	if sess == nil {
		return
	}
	if !existed && !sess.Dirty() {
		return
	}
	if err := a.sessions.Persist(ctx.StdContext(), sess); err != nil {
		a.logger.Warn("session persist failed", "err", err)
		return
	}
	if !existed {
		http.SetCookie(w, &http.Cookie{
			Name:     session.CookieName,
			Value:    sess.ID(),
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   int(a.sessions.TTL().Seconds()),
		})
	}
}

// cachedPage returns a cache hit for anonymous GET requests.
func (a *App) cachedPage(r *http.Request, key string) *cache.Entry {
	if a.cache == nil || r.Method != http.MethodGet {
		return nil
	}
	if _, err := r.Cookie(session.CookieName); err == nil {
		return nil
	}
	return a.cache.Get(key)
}

// storePage fills the micro-cache with anonymous 200 responses.
func (a *App) storePage(ctx *server.Ctx, sess *session.Session, existed bool, key string, body []byte) {
	if a.cache == nil || ctx.StatusCode() != http.StatusOK || len(body) == 0 {
		return
	}
	// Personalized output must never be shared.
	if existed || (sess != nil && sess.Dirty()) {
		return
	}
	a.cache.Set(key, bytes.Clone(body), http.StatusOK, htmlContentType)
}
