package event

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/invoiceme/backend/internal/domain/shared"
)

// OutboxPublisher appends domain events to the outbox inside the caller's transaction.
// The OutboxProcessor later delivers them to the event bus.
type OutboxPublisher struct {
	serializer *EventSerializer
	maxRetries int
}

// NewOutboxPublisher creates a new outbox publisher
func NewOutboxPublisher(serializer *EventSerializer) *OutboxPublisher {
	return &OutboxPublisher{serializer: serializer}
}

// WithMaxRetries sets the delivery attempts allowed for new entries before
// they are dead-lettered. Values below one keep shared.DefaultMaxRetries.
func (p *OutboxPublisher) WithMaxRetries(n int) *OutboxPublisher {
	p.maxRetries = n
	return p
}

// PublishWithTx stores the events as pending entries using tx, so they commit
// or roll back together with the aggregate written in the same transaction.
func (p *OutboxPublisher) PublishWithTx(ctx context.Context, tx *gorm.DB, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	entries := make([]*shared.OutboxEntry, 0, len(events))
	for _, event := range events {
		payload, err := p.serializer.Serialize(event)
		if err != nil {
			return err
		}
		entry := shared.NewOutboxEntry(event, payload)
		if p.maxRetries > 0 {
			entry.MaxRetries = p.maxRetries
		}
		entries = append(entries, entry)
	}
	return NewGormOutboxRepository(tx).Save(ctx, entries...)
}

// SaveEvents implements shared.OutboxEventSaver; txProvider must be the *gorm.DB transaction
func (p *OutboxPublisher) SaveEvents(ctx context.Context, txProvider any, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	tx, ok := txProvider.(*gorm.DB)
	if !ok {
		return fmt.Errorf("outbox: txProvider must be a *gorm.DB, got %T", txProvider)
	}
	return p.PublishWithTx(ctx, tx, events...)
}

var _ shared.OutboxEventSaver = (*OutboxPublisher)(nil)
