// Package tracing records a boot span per kernel run with one span event
// per context switch, exported as JSON by the OpenTelemetry stdout
// exporter.
package tracing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const instrumentation = "tickos/kernel"

// MaxSwitchEvents caps the switch events kept on one run span, well above
// the SDK default of 128.
const MaxSwitchEvents = 1 << 16

// Provider owns the tracer provider and, when opened from a path, the
// output file.
type Provider struct {
	tp     *sdktrace.TracerProvider
	closer io.Closer
}

// Open creates path and exports spans into it.
func Open(serviceName, version, path string) (*Provider, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}
	p, err := New(serviceName, version, f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	p.closer = f
	return p, nil
}

// New exports spans to w and installs the provider as the global one.
func New(serviceName, version string, w io.Writer) (*Provider, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, fmt.Errorf("stdout exporter: %w", err)
	}
	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			attribute.String("service.name", serviceName),
			attribute.String("service.version", version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("trace resource: %w", err)
	}

	limits := sdktrace.NewSpanLimits()
	limits.EventCountLimit = MaxSwitchEvents

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
		sdktrace.WithResource(res),
		sdktrace.WithRawSpanLimits(limits),
	)
	otel.SetTracerProvider(tp)
	return &Provider{tp: tp}, nil
}

// Shutdown flushes pending spans and closes the output file.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	err := p.tp.Shutdown(ctx)
	if p.closer != nil {
		err = errors.Join(err, p.closer.Close())
	}
	return err
}

// Run is the span covering one kernel run. A nil *Run discards
// everything, so callers need not check whether tracing is on.
type Run struct {
	span trace.Span

	mu       sync.Mutex
	switches int
}

// StartRun opens the boot span.
func StartRun(ctx context.Context, bootID string, hz int) (context.Context, *Run) {
	ctx, span := otel.Tracer(instrumentation).Start(ctx, "kernel.run",
		trace.WithAttributes(
			attribute.String("boot.id", bootID),
			attribute.Int("kernel.hz", hz),
		),
	)
	return ctx, &Run{span: span}
}

// Switch records a context switch as a span event.
func (r *Run) Switch(from, to int, jiffies uint64) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.switches++
	r.mu.Unlock()
	r.span.AddEvent("switch", trace.WithAttributes(
		attribute.Int("from", from),
		attribute.Int("to", to),
		attribute.Int64("jiffies", int64(jiffies)),
	))
}

// Halt records the halt reason and marks the span failed.
func (r *Run) Halt(slot int, reason string) {
	if r == nil {
		return
	}
	r.span.AddEvent("halt", trace.WithAttributes(
		attribute.Int("slot", slot),
		attribute.String("reason", reason),
	))
}

// End closes the span. err marks it failed.
func (r *Run) End(jiffies uint64, err error) {
	if r == nil {
		return
	}
	r.mu.Lock()
	n := r.switches
	r.mu.Unlock()

	r.span.SetAttributes(
		attribute.Int("kernel.switches", n),
		attribute.Int64("kernel.jiffies", int64(jiffies)),
	)
	if err != nil {
		r.span.RecordError(err)
		r.span.SetStatus(codes.Error, err.Error())
	} else {
		r.span.SetStatus(codes.Ok, "")
	}
	r.span.End()
}
