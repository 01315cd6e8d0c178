package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/invoiceme/backend/internal/domain/invoicing"
	"github.com/invoiceme/backend/internal/domain/shared"
)

// InvoiceMetrics is an event bus subscriber that turns invoice events into
// business metrics. Monetary values are recorded in major currency units and
// labeled with the currency, so sums are only meaningful per currency.
type InvoiceMetrics struct {
	created       *Counter
	updated       *Counter
	sent          *Counter
	paid          *Counter
	payments      *Counter
	paymentAmount *FloatCounter
	invoiceTotal  *Histogram
}

// NewInvoiceMetrics creates the invoice instruments on meter
func NewInvoiceMetrics(meter metric.Meter) (*InvoiceMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	m := &InvoiceMetrics{}
	var err error

	if m.created, err = NewCounter(meter, "invoices_created_total", "Number of invoices created", "{invoice}"); err != nil {
		return nil, err
	}
	if m.updated, err = NewCounter(meter, "invoices_updated_total", "Number of draft invoice edits", "{invoice}"); err != nil {
		return nil, err
	}
	if m.sent, err = NewCounter(meter, "invoices_sent_total", "Number of invoices sent to customers", "{invoice}"); err != nil {
		return nil, err
	}
	if m.paid, err = NewCounter(meter, "invoices_paid_total", "Number of invoices fully paid", "{invoice}"); err != nil {
		return nil, err
	}
	if m.payments, err = NewCounter(meter, "invoice_payments_total", "Number of payments recorded", "{payment}"); err != nil {
		return nil, err
	}
	if m.paymentAmount, err = NewFloatCounter(meter, "invoice_payment_amount_total", "Sum of recorded payment amounts", "{currency_unit}"); err != nil {
		return nil, err
	}
	m.invoiceTotal, err = NewHistogram(meter, HistogramOpts{
		Name:        "invoice_total_amount",
		Description: "Distribution of invoice totals at the time they are sent",
		Unit:        "{currency_unit}",
		Boundaries:  AmountBuckets,
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// EventTypes returns the invoice event types this handler consumes
func (m *InvoiceMetrics) EventTypes() []string {
	return []string{
		invoicing.EventTypeInvoiceCreated,
		invoicing.EventTypeInvoiceUpdated,
		invoicing.EventTypeInvoiceSent,
		invoicing.EventTypeInvoicePaymentRecorded,
		invoicing.EventTypeInvoicePaid,
	}
}

// Handle records the event; unknown event types are ignored
func (m *InvoiceMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *invoicing.InvoiceCreatedEvent:
		m.created.Inc(ctx, AttrCurrency.String(e.Currency.String()))
	case *invoicing.InvoiceUpdatedEvent:
		m.updated.Inc(ctx)
	case *invoicing.InvoiceSentEvent:
		currency := e.Total.Currency().String()
		m.sent.Inc(ctx, AttrCurrency.String(currency))
		m.invoiceTotal.Record(ctx, e.Total.Amount().InexactFloat64(), AttrCurrency.String(currency))
	case *invoicing.InvoicePaymentRecordedEvent:
		attrs := []attribute.KeyValue{
			AttrCurrency.String(e.Amount.Currency().String()),
			AttrPaymentMethod.String(string(e.Method)),
		}
		m.payments.Inc(ctx, attrs...)
		m.paymentAmount.Add(ctx, e.Amount.Amount().InexactFloat64(), attrs...)
	case *invoicing.InvoicePaidEvent:
		m.paid.Inc(ctx, AttrCurrency.String(e.Total.Currency().String()))
	}
	return nil
}
