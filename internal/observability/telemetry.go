package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const serviceName = "property-listings"

// Config holds tracing configuration.
type Config struct {
	Enabled    bool
	Endpoint   string  // OTLP/HTTP collector, e.g. localhost:4318
	SampleRate float64 // 0.0 to 1.0
}

type provider struct {
	tp     *sdktrace.TracerProvider
	tracer trace.Tracer
}

var global = &provider{tracer: noop.NewTracerProvider().Tracer(serviceName)}

// Init installs the global tracer provider. With tracing disabled every span is a no-op.
func Init(ctx context.Context, cfg Config) error {
	if !cfg.Enabled {
		global = &provider{tracer: noop.NewTracerProvider().Tracer(serviceName)}
		return nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return fmt.Errorf("create resource: %w", err)
	}

	exp, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(cfg.Endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return fmt.Errorf("create OTLP exporter: %w", err)
	}

	sampler := sdktrace.AlwaysSample()
	if cfg.SampleRate < 1.0 && cfg.SampleRate >= 0 {
		sampler = sdktrace.TraceIDRatioBased(cfg.SampleRate)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sampler)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	global = &provider{tp: tp, tracer: tp.Tracer(serviceName)}
	return nil
}

// Shutdown flushes pending spans.
func Shutdown(ctx context.Context) error {
	if global.tp == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return global.tp.Shutdown(ctx)
}

// Tracer returns the global tracer
func Tracer() trace.Tracer {
	return global.tracer
}
