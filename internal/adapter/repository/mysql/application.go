package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"loan-origination-backend/internal/apperror"
	appDomain "loan-origination-backend/internal/domain/application"
)

type ApplicationRepository struct{ db *gorm.DB }

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) Create(ctx context.Context, a *appDomain.Application) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *ApplicationRepository) GetByApplicationID(ctx context.Context, applicationID string) (*appDomain.Application, error) {
	var out appDomain.Application
	res := r.db.WithContext(ctx).Where("application_id = ?", applicationID).First(&out)
	if res.Error != nil {
		return nil, translateNotFound(res.Error, "application %s", applicationID)
	}
	return &out, nil
}

// getByApplicationIDForUpdate locks the row; used by the unit-of-work to
// serialize writers on one aggregate.
func (r *ApplicationRepository) getByApplicationIDForUpdate(ctx context.Context, applicationID string) (*appDomain.Application, error) {
	var out appDomain.Application
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("application_id = ?", applicationID).
		First(&out)
	if res.Error != nil {
		return nil, translateNotFound(res.Error, "application %s", applicationID)
	}
	return &out, nil
}

// Save persists the aggregate with a compare-and-swap on version. A stale
// version affects zero rows and surfaces as a concurrency conflict.
func (r *ApplicationRepository) Save(ctx context.Context, a *appDomain.Application) error {
	expected := a.Version
	res := r.db.WithContext(ctx).
		Model(&appDomain.Application{}).
		Where("application_id = ? AND version = ?", a.ApplicationID, expected).
		Updates(map[string]interface{}{
			"status":            a.Status,
			"status_updated_at": a.StatusUpdatedAt,
			"submission_date":   a.SubmissionDate,
			"co_borrower_id":    a.CoBorrowerID,
			"version":           expected + 1,
		})
	if res.Error != nil {
		return apperror.Infrastructure(res.Error, "save application %s", a.ApplicationID)
	}
	if res.RowsAffected == 0 {
		return apperror.Conflict("application %s was modified concurrently", a.ApplicationID)
	}
	a.Version = expected + 1
	return nil
}

func (r *ApplicationRepository) List(ctx context.Context, f appDomain.Filters) ([]*appDomain.Application, error) {
	q := r.db.WithContext(ctx).Model(&appDomain.Application{})
	if f.BorrowerID != "" {
		q = q.Where("borrower_id = ?", f.BorrowerID)
	}
	if f.SchoolID != "" {
		q = q.Where("school_id = ?", f.SchoolID)
	}
	statuses := f.Statuses
	if len(statuses) == 0 && f.Category != "" {
		for _, s := range appDomain.AllStatuses {
			if s.Category() == f.Category {
				statuses = append(statuses, s)
			}
		}
	}
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	var out []*appDomain.Application
	if err := q.Order("id DESC").Find(&out).Error; err != nil {
		return nil, apperror.Infrastructure(err, "list applications")
	}
	return out, nil
}

func (r *ApplicationRepository) AppendHistory(ctx context.Context, h *appDomain.StatusHistory) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *ApplicationRepository) ListHistory(ctx context.Context, applicationID string) ([]*appDomain.StatusHistory, error) {
	var out []*appDomain.StatusHistory
	err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("id ASC").
		Find(&out).Error
	if err != nil {
		return nil, apperror.Infrastructure(err, "list status history")
	}
	return out, nil
}

// translateNotFound converts gorm's sentinel into the shared taxonomy at the
// repository edge; anything else is an infrastructure failure.
func translateNotFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound(format+" not found", args...)
	}
	return apperror.Infrastructure(err, format, args...)
}
