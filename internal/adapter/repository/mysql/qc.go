package mysql

import (
	"context"

	"gorm.io/gorm"

	"loan-origination-backend/internal/apperror"
	qcDomain "loan-origination-backend/internal/domain/qc"
	"loan-origination-backend/internal/domain/verification"
)

type QCRepository struct{ db *gorm.DB }

func NewQCRepository(db *gorm.DB) *QCRepository { return &QCRepository{db: db} }

func (r *QCRepository) CreateReview(ctx context.Context, review *qcDomain.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *QCRepository) GetReviewByReviewID(ctx context.Context, reviewID string) (*qcDomain.Review, error) {
	var out qcDomain.Review
	res := r.db.WithContext(ctx).Where("review_id = ?", reviewID).First(&out)
	if res.Error != nil {
		return nil, translateNotFound(res.Error, "qc review %s", reviewID)
	}
	return &out, nil
}

func (r *QCRepository) GetReviewByApplicationID(ctx context.Context, applicationID string) (*qcDomain.Review, error) {
	var out qcDomain.Review
	res := r.db.WithContext(ctx).Where("application_id = ?", applicationID).First(&out)
	if res.Error != nil {
		return nil, translateNotFound(res.Error, "qc review for application %s", applicationID)
	}
	return &out, nil
}

func (r *QCRepository) SaveReview(ctx context.Context, review *qcDomain.Review) error {
	return r.db.WithContext(ctx).Save(review).Error
}

func (r *QCRepository) ListReviews(ctx context.Context, f qcDomain.Filters) ([]*qcDomain.Review, error) {
	q := r.db.WithContext(ctx).Model(&qcDomain.Review{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.ApplicationID != "" {
		q = q.Where("application_id = ?", f.ApplicationID)
	}
	var out []*qcDomain.Review
	if err := q.Order("id DESC").Find(&out).Error; err != nil {
		return nil, apperror.Infrastructure(err, "list qc reviews")
	}
	return out, nil
}

func (r *QCRepository) CreateItem(ctx context.Context, it *verification.Item) error {
	return r.db.WithContext(ctx).Create(it).Error
}

func (r *QCRepository) SaveItem(ctx context.Context, it *verification.Item) error {
	return r.db.WithContext(ctx).Save(it).Error
}

func (r *QCRepository) ListItemsByReviewID(ctx context.Context, reviewID string) ([]*verification.Item, error) {
	var out []*verification.Item
	err := r.db.WithContext(ctx).
		Where("review_id = ?", reviewID).
		Order("id ASC").
		Find(&out).Error
	if err != nil {
		return nil, apperror.Infrastructure(err, "list verification items")
	}
	return out, nil
}
