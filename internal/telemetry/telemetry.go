// Package telemetry provides opt-in distributed tracing for the
// interceptor's decision path. It is off by default; enabling it never
// touches stdout, which carries the wire protocol — spans go to stderr.
package telemetry

import (
	"context"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const tracerName = "github.com/mcpgov/interceptor"

// Provider wraps a tracer provider and its shutdown hook.
type Provider struct {
	tp     *sdktrace.TracerProvider
	tracer trace.Tracer
}

// NewDisabled returns a Provider whose Tracer is a no-op, for the common
// case where tracing was not requested.
func NewDisabled() *Provider {
	return &Provider{tracer: otel.Tracer(tracerName)}
}

// NewStderr builds a Provider that writes spans as JSON to w (normally
// os.Stderr), one line per span. Spans are exported in batches as the
// batcher fills or times out, and any remainder on Shutdown/ForceFlush.
func NewStderr(w io.Writer, serviceName string) (*Provider, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithoutTimestamps())
	if err != nil {
		return nil, err
	}

	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		semconv.ServiceName(serviceName),
	))
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	return &Provider{tp: tp, tracer: tp.Tracer(tracerName)}, nil
}

// Tracer returns the tracer to start spans with.
func (p *Provider) Tracer() trace.Tracer { return p.tracer }

// Shutdown flushes and stops the tracer provider. No-op when tracing
// was never enabled.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.tp == nil {
		return nil
	}
	return p.tp.Shutdown(ctx)
}
