package event

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invoiceme/backend/internal/domain/invoicing"
	"github.com/invoiceme/backend/internal/domain/shared/valueobject"
)

func TestEventSerializer_RoundTripInvoiceEvent(t *testing.T) {
	serializer := NewEventSerializer()
	RegisterAllEvents(serializer)

	item, err := invoicing.NewLineItem("Design", decimal.NewFromInt(3), valueobject.MustNewMoney("33.33", valueobject.EUR))
	require.NoError(t, err)
	invoice, err := invoicing.NewInvoice(invoicing.NewInvoiceParams{
		CustomerID:    uuid.New(),
		InvoiceNumber: "INV-2026-000042",
		IssueDate:     time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		DueDate:       time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		LineItems:     []invoicing.LineItem{item},
	})
	require.NoError(t, err)
	original := invoice.PullDomainEvents()[0]

	payload, err := serializer.Serialize(original)
	require.NoError(t, err)
	decoded, err := serializer.Deserialize(invoicing.EventTypeInvoiceCreated, payload)
	require.NoError(t, err)

	created, ok := decoded.(*invoicing.InvoiceCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, original.EventID(), created.EventID())
	assert.Equal(t, invoice.ID, created.AggregateID())
	assert.Equal(t, "INV-2026-000042", created.InvoiceNumber)
	assert.Equal(t, "99.99 EUR", created.Total.String())
}

func TestEventSerializer_UnknownType(t *testing.T) {
	_, err := NewEventSerializer().Deserialize("Nope", []byte(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown event type")
}

func TestEventSerializer_RegisteredTypes(t *testing.T) {
	serializer := NewEventSerializer()
	RegisterAllEvents(serializer)

	assert.True(t, serializer.IsRegistered(invoicing.EventTypeInvoicePaid))
	assert.Len(t, serializer.RegisteredTypes(), 8)
	assert.IsIncreasing(t, serializer.RegisteredTypes())
}
