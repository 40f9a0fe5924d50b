// Package trace provides the spans recorded around runs, steps and actions.
package trace

import (
	"context"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/liuxd6825/flakerun/scenario"
)

const tracerName = "flakerun"

// Tracer adds the batch metadata to every span it starts.
type Tracer struct {
	trace.Tracer

	metadata []attribute.KeyValue
}

// NewTracer creates a new Tracer from the given TracerProvider.
func NewTracer(tp trace.TracerProvider, metadata map[string]string, options ...trace.TracerOption) *Tracer {
	return &Tracer{
		Tracer:   tp.Tracer(tracerName, options...),
		metadata: buildMetadataAttributes(metadata),
	}
}

// NewNoopTracer returns a tracer which records nothing.
func NewNoopTracer() *Tracer {
	return NewTracer(noop.NewTracerProvider(), nil)
}

// Start overrides the underlying OTEL tracer method to include the tracer metadata.
func (t *Tracer) Start(
	ctx context.Context, spanName string, opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	opts = append(opts, trace.WithAttributes(t.metadata...))
	return t.Tracer.Start(ctx, spanName, opts...)
}

// TraceRun starts the span of a single run.
func (t *Tracer) TraceRun(ctx context.Context, runIndex int) (context.Context, trace.Span) {
	return t.Start(ctx, "run", trace.WithAttributes(attribute.Int("run.index", runIndex)))
}

// TraceStep starts the span of step number n.
func (t *Tracer) TraceStep(ctx context.Context, n int, name string) (context.Context, trace.Span) {
	return t.Start(ctx, "step", trace.WithAttributes(
		attribute.Int("step.number", n),
		attribute.String("step.name", name),
	))
}

// TraceAction starts the span of an action.
func (t *Tracer) TraceAction(ctx context.Context, a scenario.Action) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{attribute.String("action.type", string(a.Type))}
	if a.Label != "" {
		attrs = append(attrs, attribute.String("action.label", a.Label))
	}
	if a.Target != "" {
		attrs = append(attrs, attribute.String("action.target", a.Target))
	}
	if !a.Frame.IsMain() {
		attrs = append(attrs, attribute.String("action.frame", a.Frame.String()))
	}
	return t.Start(ctx, a.Name(), trace.WithAttributes(attrs...))
}

// End records err, if any, as the status of span and ends it.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

func buildMetadataAttributes(metadata map[string]string) []attribute.KeyValue {
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	meta := make([]attribute.KeyValue, 0, len(metadata))
	for _, k := range keys {
		meta = append(meta, attribute.String(k, metadata[k]))
	}

	return meta
}
