package tracing

import (
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newRecorder() (*Config, *tracetest.SpanRecorder) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	return &Config{TracerProvider: tp}, rec
}

func TestStart_RecordsOperationSpan(t *testing.T) {
	cfg, rec := newRecorder()

	_, span := cfg.Start(t.Context(), "load", "myapp")
	SetHit(span, true)
	End(span, nil)

	spans := rec.Ended()
	if len(spans) != 1 {
		t.Fatalf("recorded %d spans, want 1", len(spans))
	}
	s := spans[0]
	if s.Name() != "fucache.load" {
		t.Fatalf("span name = %q, want %q", s.Name(), "fucache.load")
	}
	if s.Status().Code != otelcodes.Ok {
		t.Fatalf("status = %v, want Ok", s.Status().Code)
	}

	attrs := make(map[attribute.Key]attribute.Value)
	for _, kv := range s.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	if got := attrs["cache.namespace"].AsString(); got != "myapp" {
		t.Fatalf("cache.namespace = %q, want %q", got, "myapp")
	}
	if got := attrs["cache.operation"].AsString(); got != "load" {
		t.Fatalf("cache.operation = %q, want %q", got, "load")
	}
	if !attrs["cache.hit"].AsBool() {
		t.Fatal("cache.hit attribute not set")
	}
}

func TestEnd_RecordsError(t *testing.T) {
	cfg, rec := newRecorder()

	_, span := cfg.Start(t.Context(), "save", "myapp")
	End(span, errors.New("disk full"))

	spans := rec.Ended()
	if len(spans) != 1 {
		t.Fatalf("recorded %d spans, want 1", len(spans))
	}
	if spans[0].Status().Code != otelcodes.Error {
		t.Fatalf("status = %v, want Error", spans[0].Status().Code)
	}
	if len(spans[0].Events()) == 0 {
		t.Fatal("expected a recorded error event")
	}
}

func TestNilConfig_IsNoOp(t *testing.T) {
	var cfg *Config

	ctx, span := cfg.Start(t.Context(), "load", "myapp")
	if ctx == nil {
		t.Fatal("nil config must return the caller's context")
	}
	if span != nil {
		t.Fatal("nil config must not create spans")
	}

	// All helpers must tolerate the nil span.
	SetHit(span, false)
	SetRemoved(span, 0, 0)
	End(span, errors.New("ignored"))
}
