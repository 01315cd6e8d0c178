package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	invoicingapp "github.com/invoiceme/backend/internal/application/invoicing"
	outboxapp "github.com/invoiceme/backend/internal/application/outbox"
	partnerapp "github.com/invoiceme/backend/internal/application/partner"
	"github.com/invoiceme/backend/internal/domain/shared"
)

type MockCreateInvoice struct{ mock.Mock }

func (m *MockCreateInvoice) Handle(ctx context.Context, cmd invoicingapp.CreateInvoiceCommand) (*invoicingapp.CreateInvoiceResult, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicingapp.CreateInvoiceResult), args.Error(1)
}

type MockUpdateInvoice struct{ mock.Mock }

func (m *MockUpdateInvoice) Handle(ctx context.Context, cmd invoicingapp.UpdateInvoiceCommand) error {
	return m.Called(ctx, cmd).Error(0)
}

type MockSendInvoice struct{ mock.Mock }

func (m *MockSendInvoice) Handle(ctx context.Context, cmd invoicingapp.SendInvoiceCommand) error {
	return m.Called(ctx, cmd).Error(0)
}

type MockRecordPayment struct{ mock.Mock }

func (m *MockRecordPayment) Handle(ctx context.Context, cmd invoicingapp.RecordPaymentCommand) (*invoicingapp.RecordPaymentResult, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicingapp.RecordPaymentResult), args.Error(1)
}

type MockDeleteInvoice struct{ mock.Mock }

func (m *MockDeleteInvoice) Handle(ctx context.Context, cmd invoicingapp.DeleteInvoiceCommand) error {
	return m.Called(ctx, cmd).Error(0)
}

type MockInvoiceQueries struct{ mock.Mock }

func (m *MockInvoiceQueries) GetInvoice(ctx context.Context, id uuid.UUID) (*invoicingapp.InvoiceView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicingapp.InvoiceView), args.Error(1)
}

func (m *MockInvoiceQueries) ListInvoices(ctx context.Context, q invoicingapp.ListInvoicesQuery) (*shared.Paginated[invoicingapp.InvoiceSummary], error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[invoicingapp.InvoiceSummary]), args.Error(1)
}

type MockCustomerService struct{ mock.Mock }

func (m *MockCustomerService) Create(ctx context.Context, req partnerapp.CreateCustomerRequest) (*partnerapp.CustomerResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partnerapp.CustomerResponse), args.Error(1)
}

func (m *MockCustomerService) GetByID(ctx context.Context, customerID uuid.UUID) (*partnerapp.CustomerResponse, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partnerapp.CustomerResponse), args.Error(1)
}

func (m *MockCustomerService) List(ctx context.Context, filter partnerapp.CustomerListFilter) (*shared.Paginated[partnerapp.CustomerResponse], error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[partnerapp.CustomerResponse]), args.Error(1)
}

func (m *MockCustomerService) Update(ctx context.Context, customerID uuid.UUID, req partnerapp.UpdateCustomerRequest) (*partnerapp.CustomerResponse, error) {
	args := m.Called(ctx, customerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partnerapp.CustomerResponse), args.Error(1)
}

func (m *MockCustomerService) Delete(ctx context.Context, customerID uuid.UUID) error {
	return m.Called(ctx, customerID).Error(0)
}

type MockDeadLetters struct{ mock.Mock }

func (m *MockDeadLetters) ListDead(ctx context.Context, page, pageSize int) (*shared.Paginated[outboxapp.EntryView], error) {
	args := m.Called(ctx, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[outboxapp.EntryView]), args.Error(1)
}

func (m *MockDeadLetters) Get(ctx context.Context, id uuid.UUID) (*outboxapp.EntryView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*outboxapp.EntryView), args.Error(1)
}

func (m *MockDeadLetters) Retry(ctx context.Context, id uuid.UUID) (*outboxapp.EntryView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*outboxapp.EntryView), args.Error(1)
}

func (m *MockDeadLetters) RetryAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDeadLetters) Stats(ctx context.Context) (*outboxapp.Stats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*outboxapp.Stats), args.Error(1)
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }
