// Package tracing provides OpenTelemetry spans for cache operations. It is
// entirely optional — spans are only created when a [Config] is wired in via
// the cache's WithTracing option.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Config holds the OpenTelemetry configuration used for cache spans.
type Config struct {
	// TracerProvider supplies the Tracer used to create spans. When nil the
	// global otel.GetTracerProvider() is used.
	TracerProvider trace.TracerProvider
}

// tracer returns a configured [trace.Tracer].
func (c *Config) tracer() trace.Tracer {
	tp := c.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return tp.Tracer("github.com/futa-t/fucache/tracing")
}

// Start opens a span for one cache operation against the given namespace.
// A nil Config is valid and yields a nil span, which every helper in this
// package treats as a no-op.
func (c *Config) Start(ctx context.Context, op, namespace string) (context.Context, trace.Span) {
	if c == nil {
		return ctx, nil
	}
	ctx, span := c.tracer().Start(ctx, "fucache."+op, trace.WithSpanKind(trace.SpanKindInternal))
	span.SetAttributes(
		attribute.String("cache.system", "fucache"),
		attribute.String("cache.operation", op),
		attribute.String("cache.namespace", namespace),
	)
	return ctx, span
}

// SetHit annotates a load span with the hit/miss outcome.
func SetHit(span trace.Span, hit bool) {
	if span == nil {
		return
	}
	span.SetAttributes(attribute.Bool("cache.hit", hit))
}

// SetRemoved annotates a sweep span with the number of entries removed.
func SetRemoved(span trace.Span, removed, failed int) {
	if span == nil {
		return
	}
	span.SetAttributes(
		attribute.Int("cache.sweep.removed", removed),
		attribute.Int("cache.sweep.failed", failed),
	)
}

// End records err on the span and finishes it.
func End(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
