package middleware

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/isora-dev/isora/pkg/server"
)

const defaultTracerName = "isora"

// OTelConfig configures the OpenTelemetry middleware.
type OTelConfig struct {
	// TracerName is the tracer name (default: "isora").
	TracerName string

	// Filter decides which requests to trace. Nil traces everything.
	Filter func(ctx *server.Ctx) bool

	// AttributeExtractor adds custom attributes per request.
	AttributeExtractor func(ctx *server.Ctx) []attribute.KeyValue

	tracer trace.Tracer
}

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) { c.TracerName = name }
}

// WithTraceFilter sets a request filter.
func WithTraceFilter(filter func(ctx *server.Ctx) bool) OTelOption {
	return func(c *OTelConfig) { c.Filter = filter }
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(ctx *server.Ctx) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) { c.AttributeExtractor = extractor }
}

// OTel traces each request as one span covering loaders and rendering.
type OTel struct {
	config OTelConfig
}

// NewOTel creates the tracing middleware. Spans go to the global
// tracer provider; configure an exporter at process startup.
func NewOTel(opts ...OTelOption) *OTel {
	cfg := OTelConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.tracer = otel.Tracer(cfg.TracerName)
	return &OTel{config: cfg}
}

// Handle implements server.Middleware.
func (o *OTel) Handle(ctx *server.Ctx, next func() error) error {
	if o.config.Filter != nil && !o.config.Filter(ctx) {
		return next()
	}

	route := RoutePattern(ctx)
	spanCtx, span := o.config.tracer.Start(ctx.StdContext(), "ssr "+route,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("http.route", route),
			attribute.String("http.method", ctx.Method()),
			attribute.String("url.path", ctx.Path()),
		),
	)
	defer span.End()

	// Loaders see the span through the request context.
	ctx.SetRequest(ctx.Request().WithContext(spanCtx))

	if o.config.AttributeExtractor != nil {
		span.SetAttributes(o.config.AttributeExtractor(ctx)...)
	}

	err := next()

	status := ctx.StatusCode()
	if re := ctx.Redirection(); re != nil {
		status = re.Code
	}
	if err != nil {
		if re, ok := server.AsRedirect(err); ok {
			status = re.Code
		} else {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			status = 500
		}
	}
	span.SetAttributes(attribute.Int("http.status_code", status))
	return err
}
