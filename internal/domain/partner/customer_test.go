package partner

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invoiceme/backend/internal/domain/shared"
	"github.com/invoiceme/backend/internal/domain/shared/valueobject"
)

func TestNewCustomer(t *testing.T) {
	t.Run("creates customer and emits created event", func(t *testing.T) {
		customer, err := NewCustomer("  Acme Corp ", " Billing@Acme.COM ")

		require.NoError(t, err)
		assert.Equal(t, "Acme Corp", customer.Name)
		assert.Equal(t, "billing@acme.com", customer.Email)
		assert.True(t, customer.BillingAddress.IsEmpty())

		events := customer.PullDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeCustomerCreated, events[0].EventType())
		assert.Equal(t, customer.ID, events[0].AggregateID())
	})

	tests := []struct {
		name  string
		cname string
		email string
	}{
		{"empty name", "", "a@b.co"},
		{"long name", strings.Repeat("n", 201), "a@b.co"},
		{"empty email", "Acme", ""},
		{"invalid email", "Acme", "not-an-email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			customer, err := NewCustomer(tt.cname, tt.email)
			assert.Nil(t, customer)
			assert.True(t, errors.Is(err, shared.ErrValidation))
		})
	}
}

func TestCustomer_Update(t *testing.T) {
	customer, err := NewCustomer("Acme", "a@acme.com")
	require.NoError(t, err)
	customer.PullDomainEvents()

	require.NoError(t, customer.Update("Acme Ltd", "ap@acme.com", "+1 (555) 010-2000"))
	assert.Equal(t, "Acme Ltd", customer.Name)
	assert.Equal(t, "+1 (555) 010-2000", customer.Phone)

	events := customer.PullDomainEvents()
	require.Len(t, events, 1)
	updated := events[0].(*CustomerUpdatedEvent)
	assert.Equal(t, "ap@acme.com", updated.Email)

	err = customer.Update("Acme Ltd", "ap@acme.com", "call me maybe")
	assert.True(t, errors.Is(err, shared.ErrValidation))
	assert.Equal(t, "+1 (555) 010-2000", customer.Phone)
}

func TestCustomer_SetBillingAddress(t *testing.T) {
	customer, err := NewCustomer("Acme", "a@acme.com")
	require.NoError(t, err)
	customer.PullDomainEvents()

	addr, err := valueobject.NewAddress("1 Loop", "Cupertino", valueobject.WithCountry("US"))
	require.NoError(t, err)

	customer.SetBillingAddress(addr)
	customer.SetBillingAddress(addr)

	assert.Equal(t, "Cupertino", customer.BillingAddress.City())
	assert.Len(t, customer.PullDomainEvents(), 1, "unchanged address emits nothing")
}

func TestCustomer_MarkDeleted(t *testing.T) {
	customer, err := NewCustomer("Acme", "a@acme.com")
	require.NoError(t, err)
	customer.PullDomainEvents()

	customer.MarkDeleted()

	events := customer.PullDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventTypeCustomerDeleted, events[0].EventType())
}
