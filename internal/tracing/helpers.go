// Package tracing provides OpenTelemetry distributed tracing setup and utilities.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ProviderOperation represents the type of external provider call being traced.
type ProviderOperation string

const (
	// ProviderOperationEmbed represents an embedding request.
	ProviderOperationEmbed ProviderOperation = "embed"
	// ProviderOperationGenerate represents an LLM text generation request.
	ProviderOperationGenerate ProviderOperation = "generate"
	// ProviderOperationQuery represents a similarity index query.
	ProviderOperationQuery ProviderOperation = "query"
	// ProviderOperationUpsert represents a similarity index upsert.
	ProviderOperationUpsert ProviderOperation = "upsert"
	// ProviderOperationFetch represents an RSS feed fetch.
	ProviderOperationFetch ProviderOperation = "fetch"
)

// StartProviderSpan creates a new span for an external provider call.
// Returns the new context and a function to end the span.
//
// Example usage:
//
//	ctx, endSpan := tracing.StartProviderSpan(ctx, "gemini", tracing.ProviderOperationEmbed)
//	defer endSpan(err)
//	// ... call the provider ...
func StartProviderSpan(ctx context.Context, provider string, operation ProviderOperation) (context.Context, func(error)) {
	tracer := otel.Tracer("pai/provider")

	spanName := string(operation)
	if provider != "" {
		spanName = spanName + " " + provider
	}

	ctx, span := tracer.Start(ctx, spanName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("provider.name", provider),
			attribute.String("provider.operation", string(operation)),
		),
	)

	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

// StartSpan creates a new span for a general operation.
// Returns the new context and a function to end the span.
//
// Example usage:
//
//	ctx, endSpan := tracing.StartSpan(ctx, "rank_signals")
//	defer endSpan(err)
//	// ... perform operation ...
func StartSpan(ctx context.Context, name string) (context.Context, func(error)) {
	tracer := otel.Tracer("pai")

	ctx, span := tracer.Start(ctx, name)

	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

// AddEvent adds an event to the current span.
func AddEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// SetAttributes sets attributes on the current span.
func SetAttributes(ctx context.Context, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attrs...)
}
