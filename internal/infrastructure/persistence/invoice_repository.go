package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/invoiceme/backend/internal/domain/invoicing"
	"github.com/invoiceme/backend/internal/domain/shared"
	"github.com/invoiceme/backend/internal/infrastructure/persistence/models"
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // nil when events go straight to the bus
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// SetOutboxEventSaver makes SaveWithEvents append events to the outbox in the save transaction
func (r *GormInvoiceRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

func (r *GormInvoiceRepository) withChildren(db *gorm.DB) *gorm.DB {
	return db.
		Preload("LineItems", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") })
}

// FindByID loads an invoice with its line items and payments
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoicing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.withChildren(r.db.WithContext(ctx)).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("invoice", id)
		}
		return nil, err
	}
	return model.ToDomain()
}

// Save inserts a never persisted invoice or updates an existing one under an optimistic version check.
// Line items are replaced wholesale; payments are append-only and inserted once by ID.
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *invoicing.Invoice) error {
	return r.SaveWithEvents(ctx, invoice, nil)
}

// SaveWithEvents saves the invoice and, with an outbox configured, its events in one transaction
func (r *GormInvoiceRepository) SaveWithEvents(ctx context.Context, invoice *invoicing.Invoice, events []shared.DomainEvent) error {
	model := models.InvoiceModelFromDomain(invoice)

	var newVersion int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if invoice.GetVersion() == 0 {
			newVersion = 1
			err = r.insert(tx, model)
		} else {
			newVersion = invoice.GetVersion() + 1
			err = r.update(tx, model, newVersion)
		}
		if err != nil {
			return err
		}
		return saveOutboxEvents(ctx, r.outboxSaver, tx, events)
	})
	if err != nil {
		return translateError(err, "invoice number "+invoice.InvoiceNumber().String())
	}

	invoice.SetVersion(newVersion)
	return nil
}

func (r *GormInvoiceRepository) insert(tx *gorm.DB, model *models.InvoiceModel) error {
	model.Version = 1
	// children are written explicitly so the insert order is deterministic
	if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
		return err
	}
	if err := r.insertLineItems(tx, model.LineItems); err != nil {
		return err
	}
	return r.insertPayments(tx, model.Payments)
}

func (r *GormInvoiceRepository) update(tx *gorm.DB, model *models.InvoiceModel, newVersion int) error {
	result := tx.Model(&models.InvoiceModel{}).
		Where("id = ? AND version = ?", model.ID, model.Version).
		Updates(map[string]any{
			"due_date":   model.DueDate,
			"status":     model.Status,
			"tax_rate":   model.TaxRate,
			"notes":      model.Notes,
			"updated_at": model.UpdatedAt,
			"version":    newVersion,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError(shared.CodeConcurrencyConflict,
			"invoice "+model.ID.String()+" was modified by another request")
	}

	if err := tx.Where("invoice_id = ?", model.ID).Delete(&models.InvoiceLineItemModel{}).Error; err != nil {
		return err
	}
	if err := r.insertLineItems(tx, model.LineItems); err != nil {
		return err
	}
	return r.insertPayments(tx, model.Payments)
}

func (r *GormInvoiceRepository) insertLineItems(tx *gorm.DB, items []models.InvoiceLineItemModel) error {
	if len(items) == 0 {
		return nil
	}
	return tx.Create(&items).Error
}

// insertPayments skips payments that are already stored, keeping their original CreatedAt
func (r *GormInvoiceRepository) insertPayments(tx *gorm.DB, payments []models.InvoicePaymentModel) error {
	if len(payments) == 0 {
		return nil
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(&payments).Error
}

// Delete removes an invoice and, through cascading foreign keys, its children
func (r *GormInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// explicit child deletes keep sqlite, which ignores FKs by default, consistent with postgres
		if err := tx.Where("invoice_id = ?", id).Delete(&models.InvoicePaymentModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("invoice_id = ?", id).Delete(&models.InvoiceLineItemModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.InvoiceModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewNotFoundError("invoice", id)
		}
		return nil
	})
}

// FindAll returns one page of invoices matching the filter
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter invoicing.InvoiceFilter) ([]*invoicing.Invoice, error) {
	filter.Filter = filter.Filter.Normalize()

	var invoiceModels []models.InvoiceModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.InvoiceModel{}), filter)
	query = query.
		Order(ValidateSortField(filter.OrderBy, InvoiceSortFields, "created_at") + " " + ValidateSortOrder(filter.OrderDir)).
		Order("id ASC").
		Offset(filter.Offset()).
		Limit(filter.PageSize)

	if err := r.withChildren(query).Find(&invoiceModels).Error; err != nil {
		return nil, err
	}

	invoices := make([]*invoicing.Invoice, 0, len(invoiceModels))
	for i := range invoiceModels {
		inv, err := invoiceModels[i].ToDomain()
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, nil
}

// Count returns the number of invoices matching the filter, ignoring paging
func (r *GormInvoiceRepository) Count(ctx context.Context, filter invoicing.InvoiceFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.InvoiceModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByCustomer counts invoices issued to a customer
func (r *GormInvoiceRepository) CountByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("customer_id = ?", customerID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter invoicing.InvoiceFilter) *gorm.DB {
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("invoice_number LIKE ? OR notes LIKE ?", pattern, pattern)
	}
	return query
}

// Ensure GormInvoiceRepository implements InvoiceRepository
var _ invoicing.InvoiceRepository = (*GormInvoiceRepository)(nil)
