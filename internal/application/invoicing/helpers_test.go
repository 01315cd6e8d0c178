package invoicing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/invoiceme/backend/internal/domain/invoicing"
	"github.com/invoiceme/backend/internal/domain/shared"
	"github.com/invoiceme/backend/internal/domain/shared/valueobject"
)

var (
	testIssueDate = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	testDueDate   = time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC)
)

func usdInput(amount string) MoneyInput {
	return MoneyInput{Amount: amount, Currency: "USD"}
}

func consultingLines() []LineItemInput {
	return []LineItemInput{{Description: "Consulting", Quantity: decimal.NewFromInt(2), UnitPrice: usdInput("100.00")}}
}

// persistedInvoice returns a saved DRAFT invoice (2 × 100.00 USD, 10% tax) with an empty event buffer
func persistedInvoice(t *testing.T) *invoicing.Invoice {
	t.Helper()
	return persistedInvoiceIn(t, valueobject.USD)
}

// eurInvoice is persistedInvoice billed in EUR
func eurInvoice(t *testing.T) *invoicing.Invoice {
	t.Helper()
	return persistedInvoiceIn(t, valueobject.EUR)
}

func sentEURInvoice(t *testing.T) *invoicing.Invoice {
	t.Helper()
	invoice := eurInvoice(t)
	require.NoError(t, invoice.Send())
	invoice.PullDomainEvents()
	return invoice
}

func persistedInvoiceIn(t *testing.T, currency valueobject.Currency) *invoicing.Invoice {
	t.Helper()
	item, err := invoicing.NewLineItem("Consulting", decimal.NewFromInt(2), valueobject.MustNewMoney("100", currency))
	require.NoError(t, err)
	invoice, err := invoicing.NewInvoice(invoicing.NewInvoiceParams{
		CustomerID:    uuid.New(),
		InvoiceNumber: "INV-2026-000001",
		IssueDate:     testIssueDate,
		DueDate:       testDueDate,
		LineItems:     []invoicing.LineItem{item},
		TaxRate:       decimal.RequireFromString("0.10"),
	})
	require.NoError(t, err)
	invoice.PullDomainEvents()
	invoice.SetVersion(1)
	return invoice
}

func sentInvoice(t *testing.T) *invoicing.Invoice {
	t.Helper()
	invoice := persistedInvoice(t)
	require.NoError(t, invoice.Send())
	invoice.PullDomainEvents()
	return invoice
}

// capturePublished records the events passed to Publish
func capturePublished(publisher *MockEventPublisher, err error) *[]shared.DomainEvent {
	var captured []shared.DomainEvent
	publisher.On("Publish", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		captured = append(captured, args.Get(1).([]shared.DomainEvent)...)
	}).Return(err)
	return &captured
}

func types(events []shared.DomainEvent) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.EventType()
	}
	return out
}
