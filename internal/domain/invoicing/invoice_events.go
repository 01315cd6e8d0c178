package invoicing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/invoiceme/backend/internal/domain/shared"
	"github.com/invoiceme/backend/internal/domain/shared/valueobject"
)

// Event type constants for invoices
const (
	EventTypeInvoiceCreated         = "InvoiceCreated"
	EventTypeInvoiceUpdated         = "InvoiceUpdated"
	EventTypeInvoiceSent            = "InvoiceSent"
	EventTypeInvoicePaymentRecorded = "InvoicePaymentRecorded"
	EventTypeInvoicePaid            = "InvoicePaid"
)

// InvoiceCreatedEvent is raised when a draft invoice is created
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID            `json:"invoice_id"`
	InvoiceNumber string               `json:"invoice_number"`
	CustomerID    uuid.UUID            `json:"customer_id"`
	IssueDate     time.Time            `json:"issue_date"`
	DueDate       time.Time            `json:"due_date"`
	Currency      valueobject.Currency `json:"currency"`
	Total         valueobject.Money    `json:"total"`
	LineItemCount int                  `json:"line_item_count"`
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(i *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCreated, AggregateTypeInvoice, i.ID),
		InvoiceID:       i.ID,
		InvoiceNumber:   i.invoiceNumber.String(),
		CustomerID:      i.customerID,
		IssueDate:       i.issueDate,
		DueDate:         i.dueDate,
		Currency:        i.currency,
		Total:           i.CalculateTotal(),
		LineItemCount:   len(i.lineItems),
	}
}

// InvoiceUpdatedEvent is raised when an editable field of a draft changes.
// It carries the invoice's state after the change.
type InvoiceUpdatedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID         `json:"invoice_id"`
	InvoiceNumber string            `json:"invoice_number"`
	DueDate       time.Time         `json:"due_date"`
	TaxRate       decimal.Decimal   `json:"tax_rate"`
	Notes         string            `json:"notes,omitempty"`
	LineItemCount int               `json:"line_item_count"`
	Subtotal      valueobject.Money `json:"subtotal"`
	Total         valueobject.Money `json:"total"`
}

// NewInvoiceUpdatedEvent creates a new InvoiceUpdatedEvent
func NewInvoiceUpdatedEvent(i *Invoice) *InvoiceUpdatedEvent {
	return &InvoiceUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceUpdated, AggregateTypeInvoice, i.ID),
		InvoiceID:       i.ID,
		InvoiceNumber:   i.invoiceNumber.String(),
		DueDate:         i.dueDate,
		TaxRate:         i.taxRate,
		Notes:           i.notes,
		LineItemCount:   len(i.lineItems),
		Subtotal:        i.CalculateSubtotal(),
		Total:           i.CalculateTotal(),
	}
}

// InvoiceSentEvent is raised when a draft is sent to the customer
type InvoiceSentEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID         `json:"invoice_id"`
	InvoiceNumber string            `json:"invoice_number"`
	CustomerID    uuid.UUID         `json:"customer_id"`
	DueDate       time.Time         `json:"due_date"`
	Total         valueobject.Money `json:"total"`
	Balance       valueobject.Money `json:"balance"`
}

// NewInvoiceSentEvent creates a new InvoiceSentEvent
func NewInvoiceSentEvent(i *Invoice) *InvoiceSentEvent {
	return &InvoiceSentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceSent, AggregateTypeInvoice, i.ID),
		InvoiceID:       i.ID,
		InvoiceNumber:   i.invoiceNumber.String(),
		CustomerID:      i.customerID,
		DueDate:         i.dueDate,
		Total:           i.CalculateTotal(),
		Balance:         i.CalculateBalance(),
	}
}

// InvoicePaymentRecordedEvent is raised for every accepted payment
type InvoicePaymentRecordedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID         `json:"invoice_id"`
	InvoiceNumber string            `json:"invoice_number"`
	PaymentID     uuid.UUID         `json:"payment_id"`
	Amount        valueobject.Money `json:"amount"`
	PaymentDate   time.Time         `json:"payment_date"`
	Method        PaymentMethod     `json:"method"`
	Reference     string            `json:"reference,omitempty"`
	Balance       valueobject.Money `json:"balance"`
}

// NewInvoicePaymentRecordedEvent creates a new InvoicePaymentRecordedEvent
func NewInvoicePaymentRecordedEvent(i *Invoice, p Payment, balance valueobject.Money) *InvoicePaymentRecordedEvent {
	return &InvoicePaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePaymentRecorded, AggregateTypeInvoice, i.ID),
		InvoiceID:       i.ID,
		InvoiceNumber:   i.invoiceNumber.String(),
		PaymentID:       p.ID(),
		Amount:          p.Amount(),
		PaymentDate:     p.PaymentDate(),
		Method:          p.Method(),
		Reference:       p.Reference(),
		Balance:         balance,
	}
}

// InvoicePaidEvent is raised when a payment settles the invoice
type InvoicePaidEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID         `json:"invoice_id"`
	InvoiceNumber string            `json:"invoice_number"`
	CustomerID    uuid.UUID         `json:"customer_id"`
	Total         valueobject.Money `json:"total"`
	AmountPaid    valueobject.Money `json:"amount_paid"`
	PaidAt        time.Time         `json:"paid_at"`
}

// NewInvoicePaidEvent creates a new InvoicePaidEvent
func NewInvoicePaidEvent(i *Invoice) *InvoicePaidEvent {
	return &InvoicePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePaid, AggregateTypeInvoice, i.ID),
		InvoiceID:       i.ID,
		InvoiceNumber:   i.invoiceNumber.String(),
		CustomerID:      i.customerID,
		Total:           i.CalculateTotal(),
		AmountPaid:      i.CalculateAmountPaid(),
		PaidAt:          time.Now().UTC(),
	}
}
