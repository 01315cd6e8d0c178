package invoicing

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/invoiceme/backend/internal/domain/shared"
	"github.com/invoiceme/backend/internal/domain/shared/valueobject"
)

// PaymentMethod is how a customer settled (part of) an invoice
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCreditCard   PaymentMethod = "CREDIT_CARD"
	PaymentMethodDebitCard    PaymentMethod = "DEBIT_CARD"
	PaymentMethodCheck        PaymentMethod = "CHECK"
	PaymentMethodWireTransfer PaymentMethod = "WIRE_TRANSFER"
	PaymentMethodOther        PaymentMethod = "OTHER"
)

// IsValid checks if the payment method is a known value
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodCreditCard,
		PaymentMethodDebitCard, PaymentMethodCheck, PaymentMethodWireTransfer, PaymentMethodOther:
		return true
	}
	return false
}

func (m PaymentMethod) String() string {
	return string(m)
}

const maxReferenceLength = 100

// Payment is an immutable record of money received against an invoice.
// Two payments are the same payment when their IDs match.
type Payment struct {
	id          uuid.UUID
	amount      valueobject.Money
	paymentDate time.Time
	method      PaymentMethod
	reference   string
}

// NewPayment creates a payment with a generated ID
func NewPayment(amount valueobject.Money, paymentDate time.Time, method PaymentMethod, reference string) (Payment, error) {
	return NewPaymentWithID(uuid.New(), amount, paymentDate, method, reference)
}

// NewPaymentWithID creates a payment with a caller supplied ID, used for idempotent retries
func NewPaymentWithID(id uuid.UUID, amount valueobject.Money, paymentDate time.Time, method PaymentMethod, reference string) (Payment, error) {
	reference = strings.TrimSpace(reference)
	switch {
	case id == uuid.Nil:
		return Payment{}, shared.NewValidationError("payment ID cannot be empty")
	case !amount.IsPositive():
		return Payment{}, shared.NewValidationError("payment amount must be positive, got %s", amount.String())
	case paymentDate.IsZero():
		return Payment{}, shared.NewValidationError("payment date is required")
	case !method.IsValid():
		return Payment{}, shared.NewValidationError("invalid payment method %q", string(method))
	case len(reference) > maxReferenceLength:
		return Payment{}, shared.NewValidationError("payment reference cannot exceed %d characters", maxReferenceLength)
	}

	return Payment{
		id:          id,
		amount:      amount,
		paymentDate: toDate(paymentDate),
		method:      method,
		reference:   reference,
	}, nil
}

// ReconstructPayment restores a persisted payment without validation
func ReconstructPayment(id uuid.UUID, amount valueobject.Money, paymentDate time.Time, method PaymentMethod, reference string) Payment {
	return Payment{
		id:          id,
		amount:      amount,
		paymentDate: paymentDate,
		method:      method,
		reference:   reference,
	}
}

func (p Payment) ID() uuid.UUID {
	return p.id
}

func (p Payment) Amount() valueobject.Money {
	return p.amount
}

func (p Payment) PaymentDate() time.Time {
	return p.paymentDate
}

func (p Payment) Method() PaymentMethod {
	return p.method
}

func (p Payment) Reference() string {
	return p.reference
}

// Equals compares payments by ID only
func (p Payment) Equals(other Payment) bool {
	return p.id == other.id
}

// toDate drops the clock part, keeping the calendar date in UTC
func toDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
