// Package observability provides optional tracing for column file
// operations.
package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const tracerName = "axcol"

var (
	tracer   trace.Tracer = noop.NewTracerProvider().Tracer(tracerName)
	provider *sdktrace.TracerProvider
	initOnce sync.Once
)

// Config controls the tracer setup.
type Config struct {
	ServiceName string
	// Pretty emits indented trace output, for reading by hand.
	Pretty bool
}

// Init installs a stdout trace exporter. Without Init all spans are
// no-ops. Safe to call more than once; only the first call takes effect.
func Init(cfg Config) error {
	var err error
	initOnce.Do(func() {
		opts := []stdouttrace.Option{}
		if cfg.Pretty {
			opts = append(opts, stdouttrace.WithPrettyPrint())
		}
		var exp *stdouttrace.Exporter
		exp, err = stdouttrace.New(opts...)
		if err != nil {
			return
		}

		provider = sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp))
		otel.SetTracerProvider(provider)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
		tracer = provider.Tracer(tracerName)
	})
	return err
}

// Shutdown flushes buffered spans. A no-op when Init was never called.
func Shutdown(ctx context.Context) error {
	if provider == nil {
		return nil
	}
	return provider.Shutdown(ctx)
}

// Span wraps one traced operation.
type Span struct {
	span  trace.Span
	start time.Time
}

// StartSpan begins a span for the named operation.
func StartSpan(ctx context.Context, operation string) (context.Context, *Span) {
	ctx, span := tracer.Start(ctx, operation)
	return ctx, &Span{span: span, start: time.Now()}
}

// SetAttribute records one attribute on the span.
func (s *Span) SetAttribute(key string, value interface{}) {
	var attr attribute.KeyValue
	switch v := value.(type) {
	case string:
		attr = attribute.String(key, v)
	case int:
		attr = attribute.Int(key, v)
	case int64:
		attr = attribute.Int64(key, v)
	case float64:
		attr = attribute.Float64(key, v)
	case bool:
		attr = attribute.Bool(key, v)
	default:
		attr = attribute.String(key, fmt.Sprintf("%v", v))
	}
	s.span.SetAttributes(attr)
}

// End finishes the span, marking it failed when err is non-nil.
func (s *Span) End(err error) {
	if err != nil {
		s.span.SetStatus(codes.Error, err.Error())
	} else {
		s.span.SetStatus(codes.Ok, "")
	}
	s.span.SetAttributes(attribute.Int64("duration_us", time.Since(s.start).Microseconds()))
	s.span.End()
}

// Traced runs fn inside a span named operation.
func Traced(ctx context.Context, operation string, fn func(context.Context) error) error {
	ctx, span := StartSpan(ctx, operation)
	err := fn(ctx)
	span.End(err)
	return err
}
