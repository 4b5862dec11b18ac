// Package middleware provides reusable middleware for the SSR
// pipeline: Prometheus metrics, OpenTelemetry tracing, and panic
// recovery. All of them wrap the server.Middleware interface so they
// compose with application middleware on any route.
package middleware

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/isora-dev/isora/pkg/server"
)

// MetricsConfig configures the Prometheus middleware.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "isora").
	Namespace string

	// Subsystem is the metrics subsystem (default: "ssr").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for render duration.
	// Default: prometheus.DefBuckets.
	Buckets []float64

	// Registry is the Prometheus registerer.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus middleware.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) { c.Namespace = namespace }
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) { c.Subsystem = subsystem }
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) { c.ConstLabels = labels }
}

// WithBuckets sets the duration histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) { c.Buckets = buckets }
}

// WithRegistry sets the Prometheus registerer. Tests pass a private
// registry to avoid duplicate registration across cases.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) { c.Registry = registry }
}

// Metrics is the Prometheus middleware. The route pattern, not the raw
// path, labels the series so cardinality stays bounded.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	renderErrors    *prometheus.CounterVec
	inFlight        prometheus.Gauge
}

// NewMetrics creates the Prometheus middleware and registers its
// collectors.
func NewMetrics(opts ...MetricsOption) *Metrics {
	cfg := MetricsConfig{
		Namespace: "isora",
		Subsystem: "ssr",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	factory := promauto.With(cfg.Registry)
	return &Metrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "requests_total",
			Help:        "Page requests by route pattern and status.",
			ConstLabels: cfg.ConstLabels,
		}, []string{"route", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "request_duration_seconds",
			Help:        "Time from match to rendered document.",
			ConstLabels: cfg.ConstLabels,
			Buckets:     cfg.Buckets,
		}, []string{"route"}),
		renderErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "render_errors_total",
			Help:        "Loader and render failures by route pattern.",
			ConstLabels: cfg.ConstLabels,
		}, []string{"route"}),
		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "requests_in_flight",
			Help:        "Requests currently being rendered.",
			ConstLabels: cfg.ConstLabels,
		}),
	}
}

// routePatternKey labels requests in Ctx values; App sets it after
// matching.
type routePatternKey struct{}

// SetRoutePattern records the matched pattern for metric labels.
func SetRoutePattern(ctx *server.Ctx, pattern string) {
	ctx.SetValue(routePatternKey{}, pattern)
}

// RoutePattern returns the matched pattern, or the raw path when the
// pattern was never recorded.
func RoutePattern(ctx *server.Ctx) string {
	if v, ok := ctx.Value(routePatternKey{}).(string); ok && v != "" {
		return v
	}
	return ctx.Path()
}

// Handle implements server.Middleware.
func (m *Metrics) Handle(ctx *server.Ctx, next func() error) error {
	route := RoutePattern(ctx)
	m.inFlight.Inc()
	start := time.Now()

	err := next()

	m.inFlight.Dec()
	m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())

	status := ctx.StatusCode()
	if re := ctx.Redirection(); re != nil {
		status = re.Code
	}
	if err != nil {
		if re, ok := server.AsRedirect(err); ok {
			status = re.Code
		} else {
			m.renderErrors.WithLabelValues(route).Inc()
			status = 500
		}
	}
	m.requestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	return err
}
