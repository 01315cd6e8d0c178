package invoicing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/invoiceme/backend/internal/domain/invoicing"
	"github.com/invoiceme/backend/internal/domain/shared"
)

func newQueryService(repo invoicing.InvoiceRepository, now time.Time) *InvoiceQueryService {
	svc := NewInvoiceQueryService(repo)
	svc.now = func() time.Time { return now }
	return svc
}

func TestInvoiceQueryService_GetInvoice(t *testing.T) {
	invoice := sentInvoice(t)
	repo := new(MockInvoiceRepository)
	repo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)

	view, err := newQueryService(repo, testDueDate.AddDate(0, 0, 1)).GetInvoice(context.Background(), invoice.ID)

	require.NoError(t, err)
	assert.Equal(t, "INV-2026-000001", view.InvoiceNumber)
	assert.Equal(t, "SENT", view.Status)
	assert.Equal(t, "USD", view.Currency)
	assert.Equal(t, "200.00", view.Subtotal.StringFixed())
	assert.Equal(t, "20.00", view.Tax.StringFixed())
	assert.Equal(t, "220.00", view.Total.StringFixed())
	assert.Equal(t, "220.00", view.Balance.StringFixed())
	assert.True(t, view.Overdue)
	require.Len(t, view.LineItems, 1)
	assert.Equal(t, "2", view.LineItems[0].Quantity)
	assert.Empty(t, view.Payments)
}

func TestInvoiceQueryService_GetInvoice_NotFound(t *testing.T) {
	id := uuid.New()
	repo := new(MockInvoiceRepository)
	repo.On("FindByID", mock.Anything, id).Return(nil, shared.NewNotFoundError("invoice", id))

	_, err := NewInvoiceQueryService(repo).GetInvoice(context.Background(), id)

	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestInvoiceQueryService_ListInvoices(t *testing.T) {
	t.Run("applies status filter and defaults", func(t *testing.T) {
		repo := new(MockInvoiceRepository)
		invoices := []*invoicing.Invoice{sentInvoice(t), sentInvoice(t)}
		matchFilter := mock.MatchedBy(func(f invoicing.InvoiceFilter) bool {
			return f.Status != nil && *f.Status == invoicing.InvoiceStatusSent &&
				f.Page == 1 && f.PageSize == 20 && f.OrderBy == "created_at"
		})
		repo.On("FindAll", mock.Anything, matchFilter).Return(invoices, nil)
		repo.On("Count", mock.Anything, matchFilter).Return(int64(42), nil)

		page, err := newQueryService(repo, testIssueDate).ListInvoices(context.Background(), ListInvoicesQuery{Status: "SENT"})

		require.NoError(t, err)
		assert.Len(t, page.Items, 2)
		assert.Equal(t, int64(42), page.Total)
		assert.Equal(t, 3, page.TotalPages)
		assert.False(t, page.Items[0].Overdue)
		repo.AssertExpectations(t)
	})

	t.Run("rejects unknown sort column", func(t *testing.T) {
		repo := new(MockInvoiceRepository)
		_, err := NewInvoiceQueryService(repo).ListInvoices(context.Background(), ListInvoicesQuery{OrderBy: "total; drop table"})

		assert.True(t, errors.Is(err, shared.ErrValidation))
		repo.AssertNotCalled(t, "FindAll", mock.Anything, mock.Anything)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		_, err := NewInvoiceQueryService(new(MockInvoiceRepository)).ListInvoices(context.Background(), ListInvoicesQuery{Status: "VOID"})
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("repository failure", func(t *testing.T) {
		repo := new(MockInvoiceRepository)
		repo.On("FindAll", mock.Anything, mock.Anything).Return(nil, errors.New("connection reset"))

		_, err := NewInvoiceQueryService(repo).ListInvoices(context.Background(), ListInvoicesQuery{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to list invoices")
	})
}
