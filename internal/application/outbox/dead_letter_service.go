// Package outbox exposes operator actions on the event outbox: inspecting
// dead letters, requeueing them and reading delivery counters.
package outbox

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/invoiceme/backend/internal/domain/shared"
)

// retryAllPageSize bounds each FindDead call made by RetryAll
const retryAllPageSize = 100

// EntryView is the read model of an outbox entry. The payload is omitted.
type EntryView struct {
	ID            uuid.UUID  `json:"id"`
	EventID       uuid.UUID  `json:"event_id"`
	EventType     string     `json:"event_type"`
	AggregateID   uuid.UUID  `json:"aggregate_id"`
	AggregateType string     `json:"aggregate_type"`
	Status        string     `json:"status"`
	RetryCount    int        `json:"retry_count"`
	MaxRetries    int        `json:"max_retries"`
	LastError     string     `json:"last_error,omitempty"`
	NextRetryAt   *time.Time `json:"next_retry_at,omitempty"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Stats counts entries per delivery status
type Stats struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Sent       int64 `json:"sent"`
	Failed     int64 `json:"failed"`
	Dead       int64 `json:"dead"`
	Total      int64 `json:"total"`
}

// DeadLetterService manages entries the processor gave up on
type DeadLetterService struct {
	repo   shared.OutboxRepository
	logger *zap.Logger
}

// NewDeadLetterService creates a new DeadLetterService
func NewDeadLetterService(repo shared.OutboxRepository, logger *zap.Logger) *DeadLetterService {
	return &DeadLetterService{repo: repo, logger: logger}
}

// ListDead returns one page of dead letters, most recently failed first
func (s *DeadLetterService) ListDead(ctx context.Context, page, pageSize int) (*shared.Paginated[EntryView], error) {
	filter := shared.Filter{Page: page, PageSize: pageSize}.Normalize()

	entries, total, err := s.repo.FindDead(ctx, filter.Page, filter.PageSize)
	if err != nil {
		return nil, err
	}

	views := make([]EntryView, len(entries))
	for i, entry := range entries {
		views[i] = toEntryView(entry)
	}
	result := shared.NewPaginated(views, total, filter.Page, filter.PageSize)
	return &result, nil
}

// Get returns a single entry in any status
func (s *DeadLetterService) Get(ctx context.Context, id uuid.UUID) (*EntryView, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view := toEntryView(entry)
	return &view, nil
}

// Retry puts one dead entry back into the pending queue.
// Entries in any other status are refused with INVALID_STATE.
func (s *DeadLetterService) Retry(ctx context.Context, id uuid.UUID) (*EntryView, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := entry.ResetForRetry(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, err
	}

	s.logger.Info("Dead letter requeued",
		zap.String("outbox_id", id.String()),
		zap.String("event_type", entry.EventType),
	)
	view := toEntryView(entry)
	return &view, nil
}

// RetryAll requeues every dead entry and returns how many were reset.
// Entries that fail to update are logged and skipped.
func (s *DeadLetterService) RetryAll(ctx context.Context) (int64, error) {
	var count int64
	for {
		// requeued entries leave the dead set, so the first page is always the next batch
		entries, _, err := s.repo.FindDead(ctx, 1, retryAllPageSize)
		if err != nil {
			return count, err
		}
		if len(entries) == 0 {
			break
		}

		progressed := false
		for _, entry := range entries {
			if err := entry.ResetForRetry(); err != nil {
				continue
			}
			if err := s.repo.Update(ctx, entry); err != nil {
				s.logger.Error("Failed to requeue dead letter",
					zap.String("outbox_id", entry.ID.String()),
					zap.Error(err),
				)
				continue
			}
			progressed = true
			count++
		}
		if !progressed || len(entries) < retryAllPageSize {
			break
		}
	}

	s.logger.Info("Dead letters requeued", zap.Int64("count", count))
	return count, nil
}

// Stats reports how many entries sit in each status
func (s *DeadLetterService) Stats(ctx context.Context) (*Stats, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, n := range counts {
		total += n
	}
	return &Stats{
		Pending:    counts[shared.OutboxStatusPending],
		Processing: counts[shared.OutboxStatusProcessing],
		Sent:       counts[shared.OutboxStatusSent],
		Failed:     counts[shared.OutboxStatusFailed],
		Dead:       counts[shared.OutboxStatusDead],
		Total:      total,
	}, nil
}

func toEntryView(entry *shared.OutboxEntry) EntryView {
	return EntryView{
		ID:            entry.ID,
		EventID:       entry.EventID,
		EventType:     entry.EventType,
		AggregateID:   entry.AggregateID,
		AggregateType: entry.AggregateType,
		Status:        string(entry.Status),
		RetryCount:    entry.RetryCount,
		MaxRetries:    entry.MaxRetries,
		LastError:     entry.LastError,
		NextRetryAt:   entry.NextRetryAt,
		ProcessedAt:   entry.ProcessedAt,
		CreatedAt:     entry.CreatedAt,
		UpdatedAt:     entry.UpdatedAt,
	}
}
