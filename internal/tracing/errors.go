package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrorType classifies span errors for filtering.
type ErrorType string

const (
	ErrorTypeEmbedding  ErrorType = "embedding"
	ErrorTypeIndex      ErrorType = "index"
	ErrorTypeCorpus     ErrorType = "corpus"
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeExternal   ErrorType = "external_system"
)

// RecordError marks span as failed with err and its type.
func RecordError(span trace.Span, err error, errorType ErrorType, attributes ...attribute.KeyValue) {
	if span == nil || err == nil {
		return
	}

	span.RecordError(err)
	span.SetAttributes(
		attribute.String("error.type", string(errorType)),
		attribute.String("error.message", err.Error()),
	)
	if len(attributes) > 0 {
		span.SetAttributes(attributes...)
	}
	span.SetStatus(codes.Error, err.Error())
}
