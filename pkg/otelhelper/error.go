package otelhelper

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SetError marks the span as failed and attaches a workflow.rejected event so
// trace backends can separate rejected transitions from infrastructure faults.
func SetError(span trace.Span, err error, attrs ...attribute.KeyValue) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	attrs = append(attrs, attribute.String("haldesk.error.message", err.Error()))
	span.AddEvent("workflow.rejected", trace.WithAttributes(attrs...))
}
