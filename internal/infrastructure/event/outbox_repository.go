package event

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/invoiceme/backend/internal/domain/shared"
	"github.com/invoiceme/backend/internal/infrastructure/persistence/models"
)

// GormOutboxRepository stores outbox entries in the outbox_events table
type GormOutboxRepository struct {
	db *gorm.DB
}

// NewGormOutboxRepository creates a new GORM-based outbox repository
func NewGormOutboxRepository(db *gorm.DB) *GormOutboxRepository {
	return &GormOutboxRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *GormOutboxRepository) WithTx(tx *gorm.DB) *GormOutboxRepository {
	return &GormOutboxRepository{db: tx}
}

func withStatus(statuses ...shared.OutboxStatus) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if len(statuses) == 1 {
			return db.Where("status = ?", statuses[0])
		}
		return db.Where("status IN ?", statuses)
	}
}

// skipLocked makes concurrent processors claim disjoint rows on PostgreSQL.
// Other dialects (sqlite in tests) have no row locks and get the plain query.
func skipLocked(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() != "postgres" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
}

func (r *GormOutboxRepository) table(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.OutboxEventModel{})
}

func (r *GormOutboxRepository) Save(ctx context.Context, entries ...*shared.OutboxEntry) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([]*models.OutboxEventModel, len(entries))
	for i, e := range entries {
		rows[i] = models.OutboxEventModelFromDomain(e)
	}
	if err := r.db.WithContext(ctx).Create(rows).Error; err != nil {
		return fmt.Errorf("failed to save outbox entries: %w", err)
	}
	return nil
}

func (r *GormOutboxRepository) find(query *gorm.DB) ([]*shared.OutboxEntry, error) {
	var rows []models.OutboxEventModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load outbox entries: %w", err)
	}
	return models.OutboxEventsToDomain(rows), nil
}

// FindPending returns the oldest pending entries first
func (r *GormOutboxRepository) FindPending(ctx context.Context, limit int) ([]*shared.OutboxEntry, error) {
	return r.find(r.table(ctx).
		Scopes(withStatus(shared.OutboxStatusPending)).
		Order("created_at ASC").
		Limit(limit))
}

// FindRetryable returns failed entries whose backoff elapsed before the given time
func (r *GormOutboxRepository) FindRetryable(ctx context.Context, before time.Time, limit int) ([]*shared.OutboxEntry, error) {
	return r.find(r.table(ctx).
		Scopes(withStatus(shared.OutboxStatusFailed)).
		Where("next_retry_at <= ?", before).
		Order("next_retry_at ASC").
		Limit(limit))
}

// MarkProcessing claims the given entries that are still pending or failed
// and returns them in PROCESSING state. Entries already claimed elsewhere
// are left out of the result.
func (r *GormOutboxRepository) MarkProcessing(ctx context.Context, ids []uuid.UUID) ([]*shared.OutboxEntry, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var claimed []*shared.OutboxEntry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []models.OutboxEventModel
		if err := tx.Scopes(withStatus(shared.OutboxStatusPending, shared.OutboxStatusFailed), skipLocked).
			Where("id IN ?", ids).
			Find(&rows).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}

		now := time.Now()
		rowIDs := make([]uuid.UUID, len(rows))
		for i := range rows {
			rowIDs[i] = rows[i].ID
			rows[i].Status = shared.OutboxStatusProcessing
			rows[i].UpdatedAt = now
		}
		if err := tx.Model(&models.OutboxEventModel{}).
			Where("id IN ?", rowIDs).
			Updates(map[string]any{"status": shared.OutboxStatusProcessing, "updated_at": now}).Error; err != nil {
			return err
		}
		claimed = models.OutboxEventsToDomain(rows)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to claim outbox entries: %w", err)
	}
	return claimed, nil
}

// Update writes every field of the entry and bumps updated_at
func (r *GormOutboxRepository) Update(ctx context.Context, entry *shared.OutboxEntry) error {
	entry.UpdatedAt = time.Now()
	if err := r.db.WithContext(ctx).Save(models.OutboxEventModelFromDomain(entry)).Error; err != nil {
		return fmt.Errorf("failed to update outbox entry %s: %w", entry.ID, err)
	}
	return nil
}

// DeleteOlderThan purges delivered entries processed before the cutoff
func (r *GormOutboxRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Scopes(withStatus(shared.OutboxStatusSent)).
		Where("processed_at < ?", before).
		Delete(&models.OutboxEventModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge outbox entries: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// FindDead returns one page of dead entries, most recently failed first, and the total
func (r *GormOutboxRepository) FindDead(ctx context.Context, page, pageSize int) ([]*shared.OutboxEntry, int64, error) {
	dead := r.table(ctx).Scopes(withStatus(shared.OutboxStatusDead))

	var total int64
	if err := dead.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count dead outbox entries: %w", err)
	}

	filter := shared.Filter{Page: page, PageSize: pageSize}.Normalize()
	entries, err := r.find(dead.Session(&gorm.Session{}).
		Order("updated_at DESC").
		Offset(filter.Offset()).
		Limit(filter.PageSize))
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (r *GormOutboxRepository) FindByID(ctx context.Context, id uuid.UUID) (*shared.OutboxEntry, error) {
	var row models.OutboxEventModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("outbox entry", id)
		}
		return nil, fmt.Errorf("failed to load outbox entry %s: %w", id, err)
	}
	return row.ToDomain(), nil
}

// CountByStatus returns the number of entries per status; absent statuses are omitted
func (r *GormOutboxRepository) CountByStatus(ctx context.Context) (map[shared.OutboxStatus]int64, error) {
	var rows []struct {
		Status shared.OutboxStatus
		Count  int64
	}
	if err := r.table(ctx).Select("status, COUNT(*) AS count").Group("status").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count outbox entries: %w", err)
	}

	counts := make(map[shared.OutboxStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

var _ shared.OutboxRepository = (*GormOutboxRepository)(nil)
