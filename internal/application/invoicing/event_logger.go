package invoicing

import (
	"context"

	"go.uber.org/zap"

	"github.com/invoiceme/backend/internal/domain/invoicing"
	"github.com/invoiceme/backend/internal/domain/shared"
)

// InvoiceEventLogger is an event bus subscriber that writes an audit line per invoice event
type InvoiceEventLogger struct {
	logger *zap.Logger
}

// NewInvoiceEventLogger creates a new InvoiceEventLogger
func NewInvoiceEventLogger(logger *zap.Logger) *InvoiceEventLogger {
	return &InvoiceEventLogger{logger: logger.Named("invoice_audit")}
}

// EventTypes returns the invoice event types this handler consumes
func (l *InvoiceEventLogger) EventTypes() []string {
	return []string{
		invoicing.EventTypeInvoiceCreated,
		invoicing.EventTypeInvoiceUpdated,
		invoicing.EventTypeInvoiceSent,
		invoicing.EventTypeInvoicePaymentRecorded,
		invoicing.EventTypeInvoicePaid,
	}
}

// Handle logs the event with its most relevant fields
func (l *InvoiceEventLogger) Handle(_ context.Context, event shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_id", event.EventID().String()),
		zap.String("event_type", event.EventType()),
		zap.String("invoice_id", event.AggregateID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	}

	switch e := event.(type) {
	case *invoicing.InvoiceCreatedEvent:
		fields = append(fields, zap.String("invoice_number", e.InvoiceNumber), zap.String("total", e.Total.String()))
	case *invoicing.InvoiceUpdatedEvent:
		fields = append(fields, zap.String("invoice_number", e.InvoiceNumber), zap.String("total", e.Total.String()))
	case *invoicing.InvoiceSentEvent:
		fields = append(fields, zap.String("invoice_number", e.InvoiceNumber), zap.Time("due_date", e.DueDate))
	case *invoicing.InvoicePaymentRecordedEvent:
		fields = append(fields,
			zap.String("payment_id", e.PaymentID.String()),
			zap.String("amount", e.Amount.String()),
			zap.String("balance", e.Balance.String()),
		)
	case *invoicing.InvoicePaidEvent:
		fields = append(fields, zap.String("invoice_number", e.InvoiceNumber), zap.String("amount_paid", e.AmountPaid.String()))
	}

	l.logger.Info("Invoice event", fields...)
	return nil
}
