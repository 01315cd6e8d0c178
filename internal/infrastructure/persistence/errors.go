package persistence

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/invoiceme/backend/internal/domain/shared"
)

// translateError maps driver errors onto domain error codes.
// It relies on gorm.Config.TranslateError so unique violations surface as gorm.ErrDuplicatedKey.
func translateError(err error, subject string) error {
	if err == nil {
		return nil
	}
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.NewDomainError(shared.CodeAlreadyExists, subject+" already exists")
	}
	return fmt.Errorf("failed to save %s: %w", subject, err)
}
