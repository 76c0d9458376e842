// Package trace carries span contexts across the realtime broker so a
// notification delivered by another process joins the trace of the send.
package trace

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// SpanContext is the wire form of an otel span context.
type SpanContext struct {
	TraceID    [16]byte `json:"trace_id"`
	SpanID     [8]byte  `json:"span_id"`
	TraceFlags byte     `json:"trace_flags"`
	TraceState string   `json:"trace_state"`
}

func ParseSpanContext(sc SpanContext) (trace.SpanContext, error) {
	traceState, err := trace.ParseTraceState(sc.TraceState)
	if err != nil {
		return trace.SpanContext{}, err
	}
	config := trace.SpanContextConfig{
		TraceID:    sc.TraceID,
		SpanID:     sc.SpanID,
		TraceFlags: trace.TraceFlags(sc.TraceFlags),
		TraceState: traceState,
		Remote:     true,
	}
	return trace.NewSpanContext(config), nil
}

func BuildSpanContext(sc trace.SpanContext) SpanContext {
	return SpanContext{
		TraceID:    sc.TraceID(),
		SpanID:     sc.SpanID(),
		TraceFlags: byte(sc.TraceFlags()),
		TraceState: sc.TraceState().String(),
	}
}

// FromContext captures the span context active in ctx.
func FromContext(ctx context.Context) SpanContext {
	return BuildSpanContext(trace.SpanContextFromContext(ctx))
}

// WithRemote returns ctx carrying sc as its remote parent. Invalid or
// unparsable span contexts leave ctx untouched.
func WithRemote(ctx context.Context, sc SpanContext) context.Context {
	spanCtx, err := ParseSpanContext(sc)
	if err != nil || !spanCtx.IsValid() {
		return ctx
	}
	return trace.ContextWithRemoteSpanContext(ctx, spanCtx)
}
