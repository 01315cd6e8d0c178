package persistence

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/invoiceme/backend/internal/domain/invoicing"
	"github.com/invoiceme/backend/internal/domain/partner"
	"github.com/invoiceme/backend/internal/domain/shared/valueobject"
	"github.com/invoiceme/backend/internal/infrastructure/persistence/models"
)

// setupTestDB opens an in-memory sqlite database with the invoice schema.
// A single connection is required: every new :memory: connection is a fresh database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), GormConfig(zap.NewNop(), gormlogger.Silent))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.CustomerModel{},
		&models.InvoiceModel{},
		&models.InvoiceLineItemModel{},
		&models.InvoicePaymentModel{},
		&models.InvoiceSequenceModel{},
		&models.OutboxEventModel{},
	))
	return db
}

// newMockGormDB wires gorm's postgres dialector to go-sqlmock
func newMockGormDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	// gorm.Open pings the pool once
	mock.ExpectPing()

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), GormConfig(zap.NewNop(), gormlogger.Silent))
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	return gormDB, mock, mockDB
}

var testIssueDate = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func usd(amount string) valueobject.Money {
	return valueobject.MustNewMoney(amount, valueobject.USD)
}

func newLineItem(t *testing.T, description, quantity, price string) invoicing.LineItem {
	t.Helper()
	item, err := invoicing.NewLineItem(description, decimal.RequireFromString(quantity), usd(price))
	require.NoError(t, err)
	return item
}

// newDraftInvoice builds an unsaved invoice totalling 220.00 USD (200.00 + 10% tax)
func newDraftInvoice(t *testing.T, customerID uuid.UUID, number string) *invoicing.Invoice {
	t.Helper()
	inv, err := invoicing.NewInvoice(invoicing.NewInvoiceParams{
		CustomerID:    customerID,
		InvoiceNumber: invoicing.InvoiceNumber(number),
		IssueDate:     testIssueDate,
		DueDate:       testIssueDate.AddDate(0, 0, 30),
		LineItems: []invoicing.LineItem{
			newLineItem(t, "Consulting", "2", "75.00"),
			newLineItem(t, "Hosting", "1", "50.00"),
		},
		TaxRate: decimal.RequireFromString("0.10"),
		Notes:   "net 30",
	})
	require.NoError(t, err)
	inv.PullDomainEvents()
	return inv
}

func newCustomer(t *testing.T, name, email string) *partner.Customer {
	t.Helper()
	c, err := partner.NewCustomer(name, email)
	require.NoError(t, err)
	c.PullDomainEvents()
	return c
}
