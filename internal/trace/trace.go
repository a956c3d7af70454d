// Package trace records tracker operations as OpenTelemetry spans written
// by the stdout exporter. Until Setup enables export, StartSpan returns the
// caller's span unchanged and nothing is recorded.
package trace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"

	"totw-tracker/internal/store"
)

const instrumentationName = "totw-tracker"

// pipeline is one configured export path; a nil pipeline means disabled
type pipeline struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
	out      io.Closer
}

var active atomic.Pointer[pipeline]

// Setup replaces the export pipeline according to cfg. A disabled config
// shuts the previous pipeline down and turns StartSpan into a no-op.
func Setup(ctx context.Context, cfg store.TracingConfig, platform string) error {
	if err := Shutdown(ctx); err != nil {
		return err
	}
	if !cfg.Enabled {
		return nil
	}

	w, closer, err := openOutput(cfg.Output)
	if err != nil {
		return err
	}

	exportOpts := []stdouttrace.Option{stdouttrace.WithWriter(w)}
	if cfg.Pretty {
		exportOpts = append(exportOpts, stdouttrace.WithPrettyPrint())
	}
	exporter, err := stdouttrace.New(exportOpts...)
	if err != nil {
		closeQuietly(closer)
		return fmt.Errorf("create span exporter: %w", err)
	}

	res := resource.NewWithAttributes(semconv.SchemaURL,
		semconv.ServiceName(instrumentationName),
		attribute.String("futbin.platform", platform),
	)

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	)
	otel.SetTracerProvider(provider)

	active.Store(&pipeline{
		provider: provider,
		tracer:   provider.Tracer(instrumentationName),
		out:      closer,
	})
	return nil
}

// Shutdown flushes pending spans and closes the output file, if any.
func Shutdown(ctx context.Context) error {
	p := active.Swap(nil)
	if p == nil {
		return nil
	}
	err := p.provider.Shutdown(ctx)
	if p.out != nil {
		err = errors.Join(err, p.out.Close())
	}
	return err
}

// StartSpan opens a child span of whatever ctx carries.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	p := active.Load()
	if p == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return p.tracer.Start(ctx, name, opts...)
}

func Enabled() bool {
	return active.Load() != nil
}

// SpanIDs returns the hex trace and span ids of the span in ctx.
func SpanIDs(ctx context.Context) (traceID, spanID string, ok bool) {
	if !Enabled() {
		return "", "", false
	}
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return "", "", false
	}
	return sc.TraceID().String(), sc.SpanID().String(), true
}

// openOutput resolves the configured destination. Only files are closed.
func openOutput(output string) (io.Writer, io.Closer, error) {
	switch output {
	case "", "stderr":
		return os.Stderr, nil, nil
	case "stdout":
		return os.Stdout, nil, nil
	}
	f, err := os.OpenFile(output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open span output: %w", err)
	}
	return f, f, nil
}

func closeQuietly(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}
