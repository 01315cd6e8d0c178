package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/invoiceme/backend/internal/domain/partner"
	"github.com/invoiceme/backend/internal/domain/shared"
	"github.com/invoiceme/backend/internal/infrastructure/persistence/models"
)

// GormCustomerRepository implements CustomerRepository using GORM
type GormCustomerRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// SetOutboxEventSaver enables transactional outbox writes in SaveWithEvents and DeleteWithEvents
func (r *GormCustomerRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds a customer by its ID
func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("customer", id)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByEmail finds a customer by email, compared case-insensitively
func (r *GormCustomerRepository) FindByEmail(ctx context.Context, email string) (*partner.Customer, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, shared.NewValidationError("email cannot be empty")
	}
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("customer", email)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all customers matching the filter
func (r *GormCustomerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*partner.Customer, error) {
	filter = filter.Normalize()

	var customerModels []models.CustomerModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.CustomerModel{}), filter).
		Order(ValidateSortField(filter.OrderBy, CustomerSortFields, "created_at") + " " + ValidateSortOrder(filter.OrderDir)).
		Order("id ASC").
		Offset(filter.Offset()).
		Limit(filter.PageSize)

	if err := query.Find(&customerModels).Error; err != nil {
		return nil, err
	}

	customers := make([]*partner.Customer, len(customerModels))
	for i := range customerModels {
		customers[i] = customerModels[i].ToDomain()
	}
	return customers, nil
}

// Count counts customers matching the filter
func (r *GormCustomerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.CustomerModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByID checks if a customer exists by ID
func (r *GormCustomerRepository) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.CustomerModel{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ExistsByEmail checks if a customer with the email exists
func (r *GormCustomerRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.CustomerModel{}).
		Where("email = ?", normalizeEmail(email)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save inserts a new customer or updates an existing one with an optimistic version check
func (r *GormCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	return r.SaveWithEvents(ctx, customer, nil)
}

// SaveWithEvents saves the customer and, with an outbox configured, its events in one transaction
func (r *GormCustomerRepository) SaveWithEvents(ctx context.Context, customer *partner.Customer, events []shared.DomainEvent) error {
	model := models.CustomerModelFromDomain(customer)

	var newVersion int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if customer.GetVersion() == 0 {
			newVersion = 1
			model.Version = 1
			if err := tx.Create(model).Error; err != nil {
				return err
			}
			return saveOutboxEvents(ctx, r.outboxSaver, tx, events)
		}

		newVersion = customer.GetVersion() + 1
		result := tx.Model(&models.CustomerModel{}).
			Where("id = ? AND version = ?", model.ID, model.Version).
			Updates(map[string]any{
				"name":        model.Name,
				"email":       model.Email,
				"phone":       model.Phone,
				"street":      model.Street,
				"city":        model.City,
				"postal_code": model.PostalCode,
				"country":     model.Country,
				"updated_at":  model.UpdatedAt,
				"version":     newVersion,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError(shared.CodeConcurrencyConflict,
				"customer "+model.ID.String()+" was modified by another request")
		}
		return saveOutboxEvents(ctx, r.outboxSaver, tx, events)
	})
	if err != nil {
		return translateError(err, "customer email "+customer.Email)
	}

	customer.SetVersion(newVersion)
	return nil
}

// Delete removes a customer
func (r *GormCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.DeleteWithEvents(ctx, id, nil)
}

// DeleteWithEvents removes a customer and, with an outbox configured, records events in the same transaction
func (r *GormCustomerRepository) DeleteWithEvents(ctx context.Context, id uuid.UUID, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.CustomerModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewNotFoundError("customer", id)
		}
		return saveOutboxEvents(ctx, r.outboxSaver, tx, events)
	})
}

func (r *GormCustomerRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR email LIKE ? OR phone LIKE ?", pattern, pattern, pattern)
	}
	return query
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Ensure GormCustomerRepository implements CustomerRepository
var _ partner.CustomerRepository = (*GormCustomerRepository)(nil)
