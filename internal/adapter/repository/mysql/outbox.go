package mysql

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"loan-origination-backend/internal/apperror"
	"loan-origination-backend/internal/domain/event"
)

// OutboxRepository implements both the in-transaction publisher and the
// dispatcher-side claim/ack operations.
type OutboxRepository struct{ db *gorm.DB }

func NewOutboxRepository(db *gorm.DB) *OutboxRepository { return &OutboxRepository{db: db} }

func (r *OutboxRepository) Publish(ctx context.Context, e *event.OutboxEvent) error {
	return r.db.WithContext(ctx).Create(e).Error
}

// ClaimBatch locks up to limit unprocessed rows whose lock is free or stale,
// stamps the lock, and returns them. Runs inside its own transaction so two
// dispatchers never claim the same row.
func (r *OutboxRepository) ClaimBatch(ctx context.Context, limit int, staleBefore time.Time) ([]*event.OutboxEvent, error) {
	now := time.Now().UTC()
	var claimed []*event.OutboxEvent
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.
			Where("is_processed = ?", false).
			Where("locked_at IS NULL OR locked_at <= ?", staleBefore).
			Order("id ASC").
			Limit(limit).
			Clauses(clause.Locking{Strength: "UPDATE"})
		if err := q.Find(&claimed).Error; err != nil {
			return err
		}
		if len(claimed) == 0 {
			return nil
		}
		ids := make([]uint64, 0, len(claimed))
		for _, e := range claimed {
			e.LockedAt = &now
			e.Attempts++
			ids = append(ids, e.ID)
		}
		return tx.Model(&event.OutboxEvent{}).
			Where("id IN ?", ids).
			Updates(map[string]interface{}{
				"locked_at": now,
				"attempts":  gorm.Expr("attempts + 1"),
			}).Error
	})
	if err != nil {
		return nil, apperror.Infrastructure(err, "claim outbox batch")
	}
	return claimed, nil
}

func (r *OutboxRepository) MarkProcessed(ctx context.Context, eventID string) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&event.OutboxEvent{}).
		Where("event_id = ?", eventID).
		Updates(map[string]interface{}{
			"is_processed": true,
			"processed_at": now,
			"locked_at":    nil,
		}).Error
}

// MarkFailed releases the lock so the row is retried on a later pass.
func (r *OutboxRepository) MarkFailed(ctx context.Context, eventID string) error {
	return r.db.WithContext(ctx).
		Model(&event.OutboxEvent{}).
		Where("event_id = ?", eventID).
		Update("locked_at", nil).Error
}
