package mysql

import (
	"context"

	"gorm.io/gorm"

	"loan-origination-backend/internal/apperror"
	uwDomain "loan-origination-backend/internal/domain/underwriting"
)

type UnderwritingRepository struct{ db *gorm.DB }

func NewUnderwritingRepository(db *gorm.DB) *UnderwritingRepository {
	return &UnderwritingRepository{db: db}
}

func (r *UnderwritingRepository) CreateQueueEntry(ctx context.Context, q *uwDomain.QueueEntry) error {
	return r.db.WithContext(ctx).Create(q).Error
}

func (r *UnderwritingRepository) GetQueueEntryByEntryID(ctx context.Context, entryID string) (*uwDomain.QueueEntry, error) {
	var out uwDomain.QueueEntry
	res := r.db.WithContext(ctx).Where("entry_id = ?", entryID).First(&out)
	if res.Error != nil {
		return nil, translateNotFound(res.Error, "queue entry %s", entryID)
	}
	return &out, nil
}

func (r *UnderwritingRepository) GetOpenQueueEntryByApplicationID(ctx context.Context, applicationID string) (*uwDomain.QueueEntry, error) {
	var out uwDomain.QueueEntry
	res := r.db.WithContext(ctx).
		Where("application_id = ? AND status IN ?", applicationID,
			[]uwDomain.QueueStatus{uwDomain.QueuePending, uwDomain.QueueAssigned, uwDomain.QueueInProgress}).
		Order("id DESC").
		First(&out)
	if res.Error != nil {
		return nil, translateNotFound(res.Error, "open queue entry for application %s", applicationID)
	}
	return &out, nil
}

func (r *UnderwritingRepository) SaveQueueEntry(ctx context.Context, q *uwDomain.QueueEntry) error {
	return r.db.WithContext(ctx).Save(q).Error
}

func (r *UnderwritingRepository) ListQueue(ctx context.Context, f uwDomain.QueueFilters) ([]*uwDomain.QueueEntry, error) {
	q := r.db.WithContext(ctx).Model(&uwDomain.QueueEntry{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Priority != "" {
		q = q.Where("priority = ?", f.Priority)
	}
	if f.AssignedTo != "" {
		q = q.Where("assigned_to = ?", f.AssignedTo)
	}
	var out []*uwDomain.QueueEntry
	if err := q.Order("due_date ASC, id ASC").Find(&out).Error; err != nil {
		return nil, apperror.Infrastructure(err, "list queue")
	}
	return out, nil
}

func (r *UnderwritingRepository) CreateDecision(ctx context.Context, d *uwDomain.Decision) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *UnderwritingRepository) GetActiveDecisionByApplicationID(ctx context.Context, applicationID string) (*uwDomain.Decision, error) {
	var out uwDomain.Decision
	res := r.db.WithContext(ctx).
		Preload("Reasons").
		Where("application_id = ? AND superseded = ?", applicationID, false).
		Order("id DESC").
		First(&out)
	if res.Error != nil {
		return nil, translateNotFound(res.Error, "active decision for application %s", applicationID)
	}
	return &out, nil
}

func (r *UnderwritingRepository) SupersedeDecisions(ctx context.Context, applicationID string) error {
	return r.db.WithContext(ctx).
		Model(&uwDomain.Decision{}).
		Where("application_id = ? AND superseded = ?", applicationID, false).
		Update("superseded", true).Error
}

func (r *UnderwritingRepository) CreateStipulation(ctx context.Context, s *uwDomain.Stipulation) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *UnderwritingRepository) GetStipulationByStipulationID(ctx context.Context, stipulationID string) (*uwDomain.Stipulation, error) {
	var out uwDomain.Stipulation
	res := r.db.WithContext(ctx).Where("stipulation_id = ?", stipulationID).First(&out)
	if res.Error != nil {
		return nil, translateNotFound(res.Error, "stipulation %s", stipulationID)
	}
	return &out, nil
}

func (r *UnderwritingRepository) SaveStipulation(ctx context.Context, s *uwDomain.Stipulation) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *UnderwritingRepository) ListStipulationsByApplicationID(ctx context.Context, applicationID string) ([]*uwDomain.Stipulation, error) {
	var out []*uwDomain.Stipulation
	err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("required_by_date ASC, id ASC").
		Find(&out).Error
	if err != nil {
		return nil, apperror.Infrastructure(err, "list stipulations")
	}
	return out, nil
}
