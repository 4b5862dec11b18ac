package isora

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/isora-dev/isora/internal/config"
	"github.com/isora-dev/isora/internal/dev"
	ierrors "github.com/isora-dev/isora/internal/errors"
	"github.com/isora-dev/isora/pkg/assets"
	"github.com/isora-dev/isora/pkg/cache"
	"github.com/isora-dev/isora/pkg/middleware"
	"github.com/isora-dev/isora/pkg/router"
	"github.com/isora-dev/isora/pkg/session"
)

// App is the SSR server: routes, session manager, asset manifest,
// page cache, and the HTTP wiring around them.
type App struct {
	config   *config.Config
	logger   *slog.Logger
	router   *router.Router
	sessions *session.Manager
	cache    *cache.PageCache
	manifest *assets.Manifest
	reload   *dev.ReloadHub
	watcher  *dev.Watcher
	registry *prometheus.Registry
	srv      *http.Server
	handler  http.Handler
}

// New creates an App from configuration. A nil config uses defaults.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	a := &App{
		config:   cfg,
		logger:   newLogger(cfg.Log),
		router:   router.New(),
		registry: prometheus.NewRegistry(),
	}
	a.router.Use(
		middleware.NewRecover(),
		middleware.NewOTel(),
		middleware.NewMetrics(middleware.WithRegistry(a.registry)),
	)

	sessions, err := newSessionManager(cfg.Session)
	if err != nil {
		return nil, err
	}
	a.sessions = sessions

	if cfg.Cache.Enabled {
		a.cache = cache.New(cache.Config{
			TTL:        cfg.Cache.TTL,
			MaxEntries: cfg.Cache.MaxEntries,
		})
	}

	if cfg.Assets.Manifest != "" {
		a.manifest, err = assets.LoadManifest(cfg.Assets.Manifest, cfg.Assets.BaseURL)
		if err != nil {
			return nil, err
		}
	} else {
		a.manifest = assets.EmptyManifest(cfg.Assets.BaseURL)
	}

	if cfg.Dev.Enabled {
		a.reload = dev.NewReloadHub(a.logger)
	}

	return a, nil
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func newSessionManager(cfg config.SessionConfig) (*session.Manager, error) {
	var store session.Store
	switch cfg.Backend {
	case "", "memory":
		store = session.NewMemoryStore()
	case "redis":
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, ierrors.From(err, "I501")
		}
		store = session.NewRedisStore(redis.NewClient(opts))
	case "sql":
		db, err := sql.Open(cfg.SQLDriver, cfg.SQLDSN)
		if err != nil {
			return nil, ierrors.From(err, "I501")
		}
		sqlStore := session.NewSQLStore(db, sqlDialectOption(cfg.SQLDriver))
		if err := sqlStore.EnsureSchema(context.Background()); err != nil {
			return nil, ierrors.From(err, "I501")
		}
		store = sqlStore
	default:
		return nil, ierrors.Newf(ierrors.CategorySession,
			"unknown session backend %q", cfg.Backend)
	}
	return session.NewManager(store, cfg.TTL), nil
}

func sqlDialectOption(driver string) session.SQLOption {
	switch driver {
	case "postgres", "pgx":
		return session.WithDialect(session.DialectPostgres)
	case "mysql":
		return session.WithDialect(session.DialectMySQL)
	default:
		return session.WithDialect(session.DialectSQLite)
	}
}

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger { return a.logger }

// Router returns the route table for direct access.
func (a *App) Router() *router.Router { return a.router }

// Config returns the active configuration.
func (a *App) Config() *config.Config { return a.config }

// Sessions returns the session manager.
func (a *App) Sessions() *session.Manager { return a.sessions }

// Manifest returns the asset manifest.
func (a *App) Manifest() *assets.Manifest { return a.manifest }

// Page registers a page route.
func (a *App) Page(pattern string, page Page) { a.router.Page(pattern, page) }

// Layout registers a layout at a pattern.
func (a *App) Layout(pattern string, layout Layout) { a.router.Layout(pattern, layout) }

// Loader registers a named data loader at a pattern.
func (a *App) Loader(pattern, name string, fn Loader) { a.router.Loader(pattern, name, fn) }

// Middleware attaches middleware to a pattern.
func (a *App) Middleware(pattern string, mw ...Middleware) { a.router.Middleware(pattern, mw...) }

// Use adds global middleware.
func (a *App) Use(mw ...Middleware) { a.router.Use(mw...) }

// SetNotFound sets the 404 page.
func (a *App) SetNotFound(page Page) { a.router.SetNotFound(page) }

// SetErrorPage sets the error page.
func (a *App) SetErrorPage(page ErrorPage) { a.router.SetErrorPage(page) }

// Handler builds (once) and returns the HTTP handler: operational
// endpoints, static assets, the dev reload socket, and the SSR
// catch-all.
func (a *App) Handler() http.Handler {
	if a.handler != nil {
		return a.handler
	}

	mux := chi.NewRouter()
	mux.Use(chimw.RealIP)
	mux.Use(chimw.RequestID)

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	gatherers := prometheus.Gatherers{prometheus.DefaultGatherer, a.registry}
	mux.Method(http.MethodGet, "/metrics",
		promhttp.HandlerFor(gatherers, promhttp.HandlerOpts{}))

	if a.reload != nil {
		mux.Handle("/_isora/reload", a.reload)
	}

	if dir := a.config.Assets.Dir; dir != "" {
		base := strings.TrimSuffix(a.config.Assets.BaseURL, "/")
		fileServer := http.StripPrefix(base+"/", http.FileServer(http.Dir(dir)))
		mux.Method(http.MethodGet, base+"/*", fileServer)
	}

	mux.NotFound(a.serveSSR)
	mux.MethodNotAllowed(a.serveSSR)

	a.handler = mux
	return a.handler
}

// Run starts the server and blocks until ctx is canceled or the
// listener fails. In dev mode it also starts the file watcher.
func (a *App) Run(ctx context.Context) error {
	if a.config.Dev.Enabled {
		watcher, err := dev.NewWatcher(dev.WatcherConfig{
			Dirs:   a.config.Dev.WatchDirs,
			Logger: a.logger,
		})
		if err != nil {
			return err
		}
		a.watcher = watcher
		go a.watchLoop(ctx)
	}

	a.srv = &http.Server{
		Addr:         a.config.Server.Addr(),
		Handler:      a.Handler(),
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("listening",
			"addr", a.srv.Addr,
			"dev", a.config.Dev.Enabled,
			"routes", len(a.router.Patterns()))
		errCh <- a.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return a.Shutdown()
	}
}

// Shutdown drains in-flight requests and closes backends.
func (a *App) Shutdown() error {
	if a.watcher != nil {
		a.watcher.Close()
	}
	if a.reload != nil {
		a.reload.Close()
	}

	var err error
	if a.srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err = a.srv.Shutdown(ctx)
	}
	if cerr := a.sessions.Close(); err == nil {
		err = cerr
	}
	return err
}

func (a *App) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case changed, ok := <-a.watcher.Changes():
			if !ok {
				return
			}
			kind := dev.ReloadFull
			if strings.HasSuffix(changed, ".css") {
				kind = dev.ReloadCSS
			}
			a.logger.Debug("change detected", "file", changed)
			if a.manifest != nil {
				_ = a.manifest.Reload()
			}
			a.reload.Broadcast(dev.ReloadMessage{Kind: kind, File: changed})
		}
	}
}
