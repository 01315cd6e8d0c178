package invoicing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/invoiceme/backend/internal/domain/shared"
	"github.com/invoiceme/backend/internal/domain/shared/valueobject"
)

// AggregateTypeInvoice is the aggregate type name carried by invoice events
const AggregateTypeInvoice = "Invoice"

// InvoiceStatus represents the lifecycle status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft InvoiceStatus = "DRAFT" // Editable, not yet sent to the customer
	InvoiceStatusSent  InvoiceStatus = "SENT"  // Locked, awaiting payment
	InvoiceStatusPaid  InvoiceStatus = "PAID"  // Fully settled, terminal
)

// IsValid checks if the status is a known InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid:
		return true
	}
	return false
}

func (s InvoiceStatus) String() string {
	return string(s)
}

// IsTerminal returns true if no further operation is allowed
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusPaid
}

// CanEdit returns true if line items, due date, tax rate and notes may change
func (s InvoiceStatus) CanEdit() bool {
	return s == InvoiceStatusDraft
}

// CanSend returns true if the invoice may be sent
func (s InvoiceStatus) CanSend() bool {
	return s == InvoiceStatusDraft
}

// CanRecordPayment returns true if payments may be appended.
// Draft invoices accept payments as well as sent ones.
func (s InvoiceStatus) CanRecordPayment() bool {
	return s == InvoiceStatusDraft || s == InvoiceStatusSent
}

// Invoice is the aggregate root for a customer invoice.
// It enforces the DRAFT -> SENT -> PAID lifecycle and the payment-vs-balance rule,
// and buffers one domain event per state change.
type Invoice struct {
	shared.BaseAggregateRoot
	customerID    uuid.UUID
	invoiceNumber InvoiceNumber
	issueDate     time.Time
	dueDate       time.Time
	status        InvoiceStatus
	currency      valueobject.Currency
	lineItems     []LineItem
	payments      []Payment
	notes         string
	taxRate       decimal.Decimal
}

// NewInvoiceParams holds the input for creating a draft invoice
type NewInvoiceParams struct {
	CustomerID    uuid.UUID
	InvoiceNumber InvoiceNumber
	IssueDate     time.Time
	DueDate       time.Time
	LineItems     []LineItem
	TaxRate       decimal.Decimal
	Notes         string
}

// NewInvoice validates the input and creates a DRAFT invoice, emitting InvoiceCreated
func NewInvoice(params NewInvoiceParams) (*Invoice, error) {
	if params.CustomerID == uuid.Nil {
		return nil, shared.NewValidationError("customer ID is required")
	}
	if params.InvoiceNumber.IsEmpty() {
		return nil, shared.NewValidationError("invoice number is required")
	}
	if params.IssueDate.IsZero() {
		return nil, shared.NewValidationError("issue date is required")
	}
	if params.DueDate.IsZero() {
		return nil, shared.NewValidationError("due date is required")
	}
	if err := validateTaxRate(params.TaxRate); err != nil {
		return nil, err
	}
	currency, err := validateLineItems(params.LineItems)
	if err != nil {
		return nil, err
	}

	invoice := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		customerID:        params.CustomerID,
		invoiceNumber:     params.InvoiceNumber,
		issueDate:         toDate(params.IssueDate),
		dueDate:           toDate(params.DueDate),
		status:            InvoiceStatusDraft,
		currency:          currency,
		lineItems:         copyLineItems(params.LineItems),
		payments:          make([]Payment, 0),
		notes:             params.Notes,
		taxRate:           params.TaxRate,
	}

	invoice.AddDomainEvent(NewInvoiceCreatedEvent(invoice))
	return invoice, nil
}

// InvoiceSnapshot is the persisted state used to rehydrate an Invoice
type InvoiceSnapshot struct {
	ID            uuid.UUID
	Version       int
	CreatedAt     time.Time
	UpdatedAt     time.Time
	CustomerID    uuid.UUID
	InvoiceNumber InvoiceNumber
	IssueDate     time.Time
	DueDate       time.Time
	Status        InvoiceStatus
	Currency      valueobject.Currency
	LineItems     []LineItem
	Payments      []Payment
	Notes         string
	TaxRate       decimal.Decimal
}

// ReconstructInvoice restores an invoice from persisted state.
// It only checks structure and never emits events.
func ReconstructInvoice(s InvoiceSnapshot) (*Invoice, error) {
	if s.ID == uuid.Nil {
		return nil, shared.NewValidationError("invoice ID is required")
	}
	if !s.Status.IsValid() {
		return nil, shared.NewValidationError("invalid invoice status %q", string(s.Status))
	}

	payments := make([]Payment, len(s.Payments))
	copy(payments, s.Payments)

	return &Invoice{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        s.ID,
				CreatedAt: s.CreatedAt,
				UpdatedAt: s.UpdatedAt,
			},
			Version: s.Version,
		},
		customerID:    s.CustomerID,
		invoiceNumber: s.InvoiceNumber,
		issueDate:     s.IssueDate,
		dueDate:       s.DueDate,
		status:        s.Status,
		currency:      s.Currency,
		lineItems:     copyLineItems(s.LineItems),
		payments:      payments,
		notes:         s.Notes,
		taxRate:       s.TaxRate,
	}, nil
}

// ============================================================================
// Mutators
// ============================================================================

// UpdateLineItems replaces all line items. Only allowed on DRAFT invoices.
func (i *Invoice) UpdateLineItems(items []LineItem) error {
	if err := i.ensureEditable("update line items of"); err != nil {
		return err
	}
	currency, err := validateLineItems(items)
	if err != nil {
		return err
	}
	if currency != i.currency {
		return shared.NewDomainError(shared.CodeCurrencyMismatch,
			"line items must be in invoice currency "+i.currency.String())
	}

	i.lineItems = copyLineItems(items)
	i.markUpdated()
	return nil
}

// UpdateDueDate sets a new due date. Only allowed on DRAFT invoices.
func (i *Invoice) UpdateDueDate(dueDate time.Time) error {
	if err := i.ensureEditable("change due date of"); err != nil {
		return err
	}
	if dueDate.IsZero() {
		return shared.NewValidationError("due date is required")
	}

	i.dueDate = toDate(dueDate)
	i.markUpdated()
	return nil
}

// UpdateTaxRate sets a new flat tax rate. Only allowed on DRAFT invoices.
func (i *Invoice) UpdateTaxRate(rate decimal.Decimal) error {
	if err := i.ensureEditable("change tax rate of"); err != nil {
		return err
	}
	if err := validateTaxRate(rate); err != nil {
		return err
	}

	i.taxRate = rate
	i.markUpdated()
	return nil
}

// UpdateNotes replaces the free-text notes. Only allowed on DRAFT invoices.
func (i *Invoice) UpdateNotes(notes string) error {
	if err := i.ensureEditable("change notes of"); err != nil {
		return err
	}

	i.notes = notes
	i.markUpdated()
	return nil
}

// Send moves a DRAFT invoice to SENT
func (i *Invoice) Send() error {
	if !i.status.CanSend() {
		return shared.NewInvalidStateError("cannot send invoice %s in status %s", i.invoiceNumber, i.status)
	}

	i.status = InvoiceStatusSent
	i.Touch()
	i.AddDomainEvent(NewInvoiceSentEvent(i))
	return nil
}

// RecordPayment appends a payment. The amount may not exceed the balance
// before the payment. When the balance becomes effectively zero the invoice
// is marked PAID and InvoicePaid is emitted after InvoicePaymentRecorded.
func (i *Invoice) RecordPayment(payment Payment) error {
	if !i.status.CanRecordPayment() {
		return shared.NewInvalidStateError("cannot record payment on invoice %s in status %s", i.invoiceNumber, i.status)
	}
	if i.HasPayment(payment.ID()) {
		return shared.NewDomainError(shared.CodeAlreadyExists, "payment "+payment.ID().String()+" is already recorded")
	}

	balance := i.CalculateBalance()
	exceeds, err := payment.Amount().GreaterThan(balance)
	if err != nil {
		return err
	}
	if exceeds {
		return shared.NewDomainError(shared.CodePaymentExceedsBalance,
			"payment amount "+payment.Amount().String()+" exceeds outstanding balance "+balance.String())
	}

	i.payments = append(i.payments, payment)
	i.Touch()

	newBalance := i.CalculateBalance()
	i.AddDomainEvent(NewInvoicePaymentRecordedEvent(i, payment, newBalance))

	if newBalance.IsEffectivelyZero() {
		i.status = InvoiceStatusPaid
		i.AddDomainEvent(NewInvoicePaidEvent(i))
	}
	return nil
}

func (i *Invoice) ensureEditable(action string) error {
	if !i.status.CanEdit() {
		return shared.NewInvalidStateError("cannot %s invoice %s in status %s", action, i.invoiceNumber, i.status)
	}
	return nil
}

func (i *Invoice) markUpdated() {
	i.Touch()
	i.AddDomainEvent(NewInvoiceUpdatedEvent(i))
}

// ============================================================================
// Derived values
// ============================================================================

// CalculateSubtotal sums the line item subtotals
func (i *Invoice) CalculateSubtotal() valueobject.Money {
	subtotal := valueobject.Zero(i.currency)
	for _, item := range i.lineItems {
		subtotal = subtotal.MustAdd(item.Subtotal())
	}
	return subtotal
}

// CalculateTax applies the flat tax rate to the subtotal
func (i *Invoice) CalculateTax() valueobject.Money {
	return i.CalculateSubtotal().Multiply(i.taxRate)
}

// CalculateTotal is subtotal plus tax
func (i *Invoice) CalculateTotal() valueobject.Money {
	return i.CalculateSubtotal().MustAdd(i.CalculateTax())
}

// CalculateAmountPaid sums all recorded payments
func (i *Invoice) CalculateAmountPaid() valueobject.Money {
	paid := valueobject.Zero(i.currency)
	for _, p := range i.payments {
		paid = paid.MustAdd(p.Amount())
	}
	return paid
}

// CalculateBalance is total minus all recorded payments
func (i *Invoice) CalculateBalance() valueobject.Money {
	return i.CalculateTotal().MustSubtract(i.CalculateAmountPaid())
}

// IsOverdue returns true if an unpaid invoice is past its due date
func (i *Invoice) IsOverdue(now time.Time) bool {
	return i.status != InvoiceStatusPaid && toDate(now).After(i.dueDate)
}

// HasPayment reports whether a payment with the given ID was already recorded
func (i *Invoice) HasPayment(id uuid.UUID) bool {
	for _, p := range i.payments {
		if p.ID() == id {
			return true
		}
	}
	return false
}

// ============================================================================
// Getters
// ============================================================================

func (i *Invoice) CustomerID() uuid.UUID {
	return i.customerID
}

func (i *Invoice) InvoiceNumber() InvoiceNumber {
	return i.invoiceNumber
}

func (i *Invoice) IssueDate() time.Time {
	return i.issueDate
}

func (i *Invoice) DueDate() time.Time {
	return i.dueDate
}

func (i *Invoice) Status() InvoiceStatus {
	return i.status
}

func (i *Invoice) Currency() valueobject.Currency {
	return i.currency
}

func (i *Invoice) Notes() string {
	return i.notes
}

func (i *Invoice) TaxRate() decimal.Decimal {
	return i.taxRate
}

// LineItems returns a copy of the line items
func (i *Invoice) LineItems() []LineItem {
	return copyLineItems(i.lineItems)
}

// Payments returns a copy of the recorded payments in the order they were recorded
func (i *Invoice) Payments() []Payment {
	payments := make([]Payment, len(i.payments))
	copy(payments, i.payments)
	return payments
}

func validateTaxRate(rate decimal.Decimal) error {
	if rate.IsNegative() {
		return shared.NewValidationError("tax rate cannot be negative, got %s", rate.String())
	}
	return nil
}

// validateLineItems checks that there is at least one item and that all share a currency
func validateLineItems(items []LineItem) (valueobject.Currency, error) {
	if len(items) == 0 {
		return "", shared.NewValidationError("invoice must have at least one line item")
	}
	currency := items[0].UnitPrice().Currency()
	for _, item := range items[1:] {
		if item.UnitPrice().Currency() != currency {
			return "", shared.NewDomainError(shared.CodeCurrencyMismatch,
				"all line items must share currency "+currency.String())
		}
	}
	return currency, nil
}

func copyLineItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}
