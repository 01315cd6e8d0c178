package event

import (
	"github.com/invoiceme/backend/internal/domain/invoicing"
	"github.com/invoiceme/backend/internal/domain/partner"
)

// RegisterAllEvents registers every domain event the outbox processor may need to decode
func RegisterAllEvents(serializer *EventSerializer) {
	// Invoicing
	serializer.Register(invoicing.EventTypeInvoiceCreated, &invoicing.InvoiceCreatedEvent{})
	serializer.Register(invoicing.EventTypeInvoiceUpdated, &invoicing.InvoiceUpdatedEvent{})
	serializer.Register(invoicing.EventTypeInvoiceSent, &invoicing.InvoiceSentEvent{})
	serializer.Register(invoicing.EventTypeInvoicePaymentRecorded, &invoicing.InvoicePaymentRecordedEvent{})
	serializer.Register(invoicing.EventTypeInvoicePaid, &invoicing.InvoicePaidEvent{})

	// Partner
	serializer.Register(partner.EventTypeCustomerCreated, &partner.CustomerCreatedEvent{})
	serializer.Register(partner.EventTypeCustomerUpdated, &partner.CustomerUpdatedEvent{})
	serializer.Register(partner.EventTypeCustomerDeleted, &partner.CustomerDeletedEvent{})
}
