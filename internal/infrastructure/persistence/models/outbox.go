package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/invoiceme/backend/internal/domain/shared"
)

// OutboxEventModel is the persistence model for shared.OutboxEntry.
// It has no version column: entries are claimed with row locks, not optimistic locking.
type OutboxEventModel struct {
	ID            uuid.UUID           `gorm:"type:uuid;primary_key"`
	EventID       uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:idx_outbox_events_event_id"`
	EventType     string              `gorm:"type:varchar(100);not null"`
	AggregateID   uuid.UUID           `gorm:"type:uuid;not null"`
	AggregateType string              `gorm:"type:varchar(100);not null"`
	Payload       []byte              `gorm:"not null"`
	Status        shared.OutboxStatus `gorm:"type:varchar(20);not null;default:PENDING"`
	RetryCount    int                 `gorm:"not null;default:0"`
	MaxRetries    int                 `gorm:"not null;default:5"`
	LastError     string              `gorm:"type:text;not null;default:''"`
	NextRetryAt   *time.Time
	ProcessedAt   *time.Time
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OutboxEventModel) TableName() string {
	return "outbox_events"
}

// ToDomain converts the persistence model to an outbox entry
func (m *OutboxEventModel) ToDomain() *shared.OutboxEntry {
	return &shared.OutboxEntry{
		ID:            m.ID,
		EventID:       m.EventID,
		EventType:     m.EventType,
		AggregateID:   m.AggregateID,
		AggregateType: m.AggregateType,
		Payload:       m.Payload,
		Status:        m.Status,
		RetryCount:    m.RetryCount,
		MaxRetries:    m.MaxRetries,
		LastError:     m.LastError,
		NextRetryAt:   m.NextRetryAt,
		ProcessedAt:   m.ProcessedAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// OutboxEventModelFromDomain creates a persistence model from an outbox entry
func OutboxEventModelFromDomain(e *shared.OutboxEntry) *OutboxEventModel {
	return &OutboxEventModel{
		ID:            e.ID,
		EventID:       e.EventID,
		EventType:     e.EventType,
		AggregateID:   e.AggregateID,
		AggregateType: e.AggregateType,
		Payload:       e.Payload,
		Status:        e.Status,
		RetryCount:    e.RetryCount,
		MaxRetries:    e.MaxRetries,
		LastError:     e.LastError,
		NextRetryAt:   e.NextRetryAt,
		ProcessedAt:   e.ProcessedAt,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

// OutboxEventsToDomain converts a slice of models
func OutboxEventsToDomain(ms []OutboxEventModel) []*shared.OutboxEntry {
	entries := make([]*shared.OutboxEntry, len(ms))
	for i := range ms {
		entries[i] = ms[i].ToDomain()
	}
	return entries
}
