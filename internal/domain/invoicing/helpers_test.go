package invoicing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/invoiceme/backend/internal/domain/shared/valueobject"
)

var (
	issueDate = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	dueDate   = time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
)

func usd(amount string) valueobject.Money {
	return valueobject.MustNewMoney(amount, valueobject.USD)
}

func mustLineItem(t *testing.T, description, qty string, unitPrice valueobject.Money) LineItem {
	t.Helper()
	item, err := NewLineItem(description, decimal.RequireFromString(qty), unitPrice)
	require.NoError(t, err)
	return item
}

func mustPayment(t *testing.T, amount valueobject.Money) Payment {
	t.Helper()
	p, err := NewPayment(amount, issueDate.AddDate(0, 0, 5), PaymentMethodBankTransfer, "REF-1")
	require.NoError(t, err)
	return p
}

// newDraftInvoice builds the canonical invoice: 2 × 100.00 USD at 10% tax
func newDraftInvoice(t *testing.T) *Invoice {
	t.Helper()
	invoice, err := NewInvoice(NewInvoiceParams{
		CustomerID:    uuid.New(),
		InvoiceNumber: "INV-2026-000001",
		IssueDate:     issueDate,
		DueDate:       dueDate,
		LineItems:     []LineItem{mustLineItem(t, "Consulting", "2", usd("100.00"))},
		TaxRate:       decimal.RequireFromString("0.10"),
	})
	require.NoError(t, err)
	return invoice
}

func newSentInvoice(t *testing.T) *Invoice {
	t.Helper()
	invoice := newDraftInvoice(t)
	require.NoError(t, invoice.Send())
	invoice.PullDomainEvents()
	return invoice
}

func eventTypes(invoice *Invoice) []string {
	events := invoice.PullDomainEvents()
	types := make([]string, len(events))
	for i, e := range events {
		types[i] = e.EventType()
	}
	return types
}
