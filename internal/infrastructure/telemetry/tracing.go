// Package telemetry wires OpenTelemetry traces, metrics and logs for the invoice service.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "invoice-service"

// Span attributes set by the command and query handlers
var (
	AttrInvoiceID     = attribute.Key("invoice.id")
	AttrInvoiceNumber = attribute.Key("invoice.number")
	AttrInvoiceStatus = attribute.Key("invoice.status")
	AttrCustomerID    = attribute.Key("customer.id")
	AttrPaymentID     = attribute.Key("payment.id")
	AttrPaymentAmount = attribute.Key("payment.amount")
)

// StartServiceSpan starts an internal span named "{service}.{method}", e.g.
// "invoice.send", on the global tracer provider. The caller ends the span.
func StartServiceSpan(ctx context.Context, service, method string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, service+"."+method,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// RecordError marks the span failed. A nil err is ignored.
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
