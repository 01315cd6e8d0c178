package shared

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
)

// OutboxStatus is the delivery state of an outbox entry.
//
//	PENDING -> PROCESSING -> SENT
//	               |
//	               v
//	            FAILED -> PROCESSING (after backoff)
//	               |
//	               v
//	             DEAD -> PENDING (manual retry)
type OutboxStatus string

const (
	OutboxStatusPending    OutboxStatus = "PENDING"
	OutboxStatusProcessing OutboxStatus = "PROCESSING"
	OutboxStatusSent       OutboxStatus = "SENT"
	OutboxStatusFailed     OutboxStatus = "FAILED"
	OutboxStatusDead       OutboxStatus = "DEAD"
)

const (
	DefaultMaxRetries  = 5
	DefaultBaseBackoff = time.Second
	// DefaultMaxBackoff caps the delay between two delivery attempts
	DefaultMaxBackoff = 5 * time.Minute
)

// OutboxEntry is a serialized domain event waiting to be delivered to the event bus
type OutboxEntry struct {
	ID            uuid.UUID
	EventID       uuid.UUID
	EventType     string
	AggregateID   uuid.UUID
	AggregateType string
	Payload       []byte
	Status        OutboxStatus
	RetryCount    int
	MaxRetries    int
	LastError     string
	NextRetryAt   *time.Time
	ProcessedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewOutboxEntry wraps a serialized event in a pending outbox entry
func NewOutboxEntry(event DomainEvent, payload []byte) *OutboxEntry {
	now := time.Now()
	return &OutboxEntry{
		ID:            uuid.New(),
		EventID:       event.EventID(),
		EventType:     event.EventType(),
		AggregateID:   event.AggregateID(),
		AggregateType: event.AggregateType(),
		Payload:       payload,
		Status:        OutboxStatusPending,
		MaxRetries:    DefaultMaxRetries,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// RetryBackoff returns the delay before delivery attempt number attempt+1:
// the base backoff doubled per failed attempt, capped at DefaultMaxBackoff.
func RetryBackoff(attempt int) time.Duration {
	if attempt < 1 {
		return DefaultBaseBackoff
	}
	delay := DefaultBaseBackoff
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= DefaultMaxBackoff {
			return DefaultMaxBackoff
		}
	}
	return delay
}

// CanRetry returns true if a failed entry still has attempts left
func (e *OutboxEntry) CanRetry() bool {
	return e.Status == OutboxStatusFailed && e.RetryCount < e.MaxRetries
}

// IsDead returns true if the entry exhausted its attempts
func (e *OutboxEntry) IsDead() bool {
	return e.Status == OutboxStatusDead
}

// MarkProcessing claims a pending or failed entry for delivery
func (e *OutboxEntry) MarkProcessing() error {
	if err := e.requireStatus("claim", OutboxStatusPending, OutboxStatusFailed); err != nil {
		return err
	}
	e.setStatus(OutboxStatusProcessing, time.Now())
	return nil
}

// MarkSent records a successful delivery
func (e *OutboxEntry) MarkSent() {
	now := time.Now()
	e.setStatus(OutboxStatusSent, now)
	e.ProcessedAt = &now
}

// MarkFailed records a delivery failure. Once MaxRetries attempts failed
// the entry is dead; otherwise the next attempt is scheduled after RetryBackoff.
func (e *OutboxEntry) MarkFailed(errMsg string) {
	now := time.Now()
	e.RetryCount++
	e.LastError = errMsg

	if e.RetryCount >= e.MaxRetries {
		e.setStatus(OutboxStatusDead, now)
		e.NextRetryAt = nil
		return
	}
	next := now.Add(RetryBackoff(e.RetryCount))
	e.setStatus(OutboxStatusFailed, now)
	e.NextRetryAt = &next
}

// ResetForRetry puts a dead entry back into the pending queue with a fresh
// retry budget. Any other status fails with INVALID_STATE.
func (e *OutboxEntry) ResetForRetry() error {
	if err := e.requireStatus("retry", OutboxStatusDead); err != nil {
		return err
	}
	e.setStatus(OutboxStatusPending, time.Now())
	e.RetryCount = 0
	e.LastError = ""
	e.NextRetryAt = nil
	return nil
}

func (e *OutboxEntry) requireStatus(action string, allowed ...OutboxStatus) error {
	if slices.Contains(allowed, e.Status) {
		return nil
	}
	return NewInvalidStateError("cannot %s outbox entry %s in status %s", action, e.ID, e.Status)
}

func (e *OutboxEntry) setStatus(status OutboxStatus, at time.Time) {
	e.Status = status
	e.UpdatedAt = at
}

// OutboxRepository persists outbox entries
type OutboxRepository interface {
	Save(ctx context.Context, entries ...*OutboxEntry) error
	FindPending(ctx context.Context, limit int) ([]*OutboxEntry, error)
	FindRetryable(ctx context.Context, before time.Time, limit int) ([]*OutboxEntry, error)
	FindDead(ctx context.Context, page, pageSize int) ([]*OutboxEntry, int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*OutboxEntry, error)
	// MarkProcessing atomically claims entries and returns the ones claimed
	MarkProcessing(ctx context.Context, ids []uuid.UUID) ([]*OutboxEntry, error)
	Update(ctx context.Context, entry *OutboxEntry) error
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
	CountByStatus(ctx context.Context) (map[OutboxStatus]int64, error)
}
