package partner

import (
	"context"

	"github.com/google/uuid"

	"github.com/invoiceme/backend/internal/domain/partner"
)

// CustomerChecker answers invoice-side existence checks from the customer repository
type CustomerChecker struct {
	repo partner.CustomerRepository
}

// NewCustomerChecker creates a new CustomerChecker
func NewCustomerChecker(repo partner.CustomerRepository) *CustomerChecker {
	return &CustomerChecker{repo: repo}
}

func (c *CustomerChecker) Exists(ctx context.Context, customerID uuid.UUID) (bool, error) {
	return c.repo.ExistsByID(ctx, customerID)
}
