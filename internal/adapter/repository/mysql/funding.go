package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"loan-origination-backend/internal/apperror"
	fundingDomain "loan-origination-backend/internal/domain/funding"
)

type FundingRepository struct{ db *gorm.DB }

func NewFundingRepository(db *gorm.DB) *FundingRepository { return &FundingRepository{db: db} }

func (r *FundingRepository) CreateRequest(ctx context.Context, req *fundingDomain.Request) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *FundingRepository) GetRequestByRequestID(ctx context.Context, requestID string) (*fundingDomain.Request, error) {
	var out fundingDomain.Request
	res := r.db.WithContext(ctx).Where("request_id = ?", requestID).First(&out)
	if res.Error != nil {
		return nil, translateNotFound(res.Error, "funding request %s", requestID)
	}
	return &out, nil
}

func (r *FundingRepository) SaveRequest(ctx context.Context, req *fundingDomain.Request) error {
	return r.db.WithContext(ctx).Save(req).Error
}

func (r *FundingRepository) ListRequests(ctx context.Context, f fundingDomain.Filters) ([]*fundingDomain.Request, error) {
	q := r.db.WithContext(ctx).Model(&fundingDomain.Request{})
	if f.ApplicationID != "" {
		q = q.Where("application_id = ?", f.ApplicationID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var out []*fundingDomain.Request
	if err := q.Order("id DESC").Find(&out).Error; err != nil {
		return nil, apperror.Infrastructure(err, "list funding requests")
	}
	return out, nil
}

func (r *FundingRepository) CreateDisbursement(ctx context.Context, d *fundingDomain.Disbursement) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *FundingRepository) GetDisbursementByDisbursementID(ctx context.Context, disbursementID string) (*fundingDomain.Disbursement, error) {
	var out fundingDomain.Disbursement
	res := r.db.WithContext(ctx).Where("disbursement_id = ?", disbursementID).First(&out)
	if res.Error != nil {
		return nil, translateNotFound(res.Error, "disbursement %s", disbursementID)
	}
	return &out, nil
}

func (r *FundingRepository) SaveDisbursement(ctx context.Context, d *fundingDomain.Disbursement) error {
	return r.db.WithContext(ctx).Save(d).Error
}

func (r *FundingRepository) ListDisbursementsByRequestID(ctx context.Context, requestID string) ([]*fundingDomain.Disbursement, error) {
	var out []*fundingDomain.Disbursement
	err := r.db.WithContext(ctx).
		Where("funding_request_id = ?", requestID).
		Order("id ASC").
		Find(&out).Error
	if err != nil {
		return nil, apperror.Infrastructure(err, "list disbursements")
	}
	return out, nil
}

// UpsertEnrollmentVerification keeps at most one verification per request,
// refreshed on conflict.
func (r *FundingRepository) UpsertEnrollmentVerification(ctx context.Context, ev *fundingDomain.EnrollmentVerification) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "funding_request_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"confirmed", "start_date", "verified_by", "updated_at"}),
		}).
		Create(ev).Error
}

func (r *FundingRepository) GetEnrollmentVerificationByRequestID(ctx context.Context, requestID string) (*fundingDomain.EnrollmentVerification, error) {
	var out fundingDomain.EnrollmentVerification
	res := r.db.WithContext(ctx).Where("funding_request_id = ?", requestID).First(&out)
	if res.Error != nil {
		return nil, translateNotFound(res.Error, "enrollment verification for request %s", requestID)
	}
	return &out, nil
}
