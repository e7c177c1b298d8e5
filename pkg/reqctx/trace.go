package reqctx

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// TraceIDFromContext returns the trace ID of the active span, or an empty
// string when the request is not traced.
func TraceIDFromContext(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

// SpanIDFromContext returns the span ID of the active span, or an empty string.
func SpanIDFromContext(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasSpanID() {
		return ""
	}
	return sc.SpanID().String()
}

// LogAttrs returns the request and trace identifiers as slog key/value pairs.
func LogAttrs(ctx context.Context) []any {
	attrs := make([]any, 0, 6)
	if id := RequestIDFromContext(ctx); id != "" {
		attrs = append(attrs, "request_id", id)
	}
	if id := TraceIDFromContext(ctx); id != "" {
		attrs = append(attrs, "trace_id", id)
	}
	if id := SpanIDFromContext(ctx); id != "" {
		attrs = append(attrs, "span_id", id)
	}
	return attrs
}
