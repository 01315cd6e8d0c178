package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/invoiceme/backend/internal/domain/shared"
)

// saveOutboxEvents appends events to the outbox through the open transaction tx.
// Without a saver the events are left to the caller's publisher.
func saveOutboxEvents(ctx context.Context, saver shared.OutboxEventSaver, tx *gorm.DB, events []shared.DomainEvent) error {
	if saver == nil || len(events) == 0 {
		return nil
	}
	if err := saver.SaveEvents(ctx, tx, events...); err != nil {
		return fmt.Errorf("outbox: %w", err)
	}
	return nil
}
