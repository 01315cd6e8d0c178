package invoicing

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invoiceme/backend/internal/domain/shared"
)

func TestNewPayment(t *testing.T) {
	t.Run("truncates date and trims reference", func(t *testing.T) {
		at := time.Date(2026, 4, 2, 15, 30, 0, 0, time.UTC)
		p, err := NewPayment(usd("10"), at, PaymentMethodCash, "  R-9 ")
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, p.ID())
		assert.Equal(t, time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC), p.PaymentDate())
		assert.Equal(t, "R-9", p.Reference())
		assert.Equal(t, PaymentMethodCash, p.Method())
	})

	t.Run("validation", func(t *testing.T) {
		_, err := NewPayment(usd("0"), issueDate, PaymentMethodCash, "")
		assert.True(t, errors.Is(err, shared.ErrValidation))

		_, err = NewPayment(usd("-1"), issueDate, PaymentMethodCash, "")
		assert.True(t, errors.Is(err, shared.ErrValidation))

		_, err = NewPayment(usd("1"), time.Time{}, PaymentMethodCash, "")
		assert.True(t, errors.Is(err, shared.ErrValidation))

		_, err = NewPayment(usd("1"), issueDate, PaymentMethod("BARTER"), "")
		assert.True(t, errors.Is(err, shared.ErrValidation))

		_, err = NewPaymentWithID(uuid.Nil, usd("1"), issueDate, PaymentMethodCash, "")
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})
}

func TestPayment_EqualsByID(t *testing.T) {
	id := uuid.New()
	a, err := NewPaymentWithID(id, usd("1"), issueDate, PaymentMethodCash, "a")
	require.NoError(t, err)
	b, err := NewPaymentWithID(id, usd("2"), dueDate, PaymentMethodCheck, "b")
	require.NoError(t, err)
	c := mustPayment(t, usd("1"))

	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(c))
}

func TestPaymentMethod_IsValid(t *testing.T) {
	for _, m := range []PaymentMethod{
		PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodCreditCard,
		PaymentMethodDebitCard, PaymentMethodCheck, PaymentMethodWireTransfer, PaymentMethodOther,
	} {
		assert.True(t, m.IsValid(), m)
	}
	assert.False(t, PaymentMethod("").IsValid())
}
