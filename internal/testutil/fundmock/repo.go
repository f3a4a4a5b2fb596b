package fundmock

import (
	"context"

	domain "loan-origination-backend/internal/domain/funding"
)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateRequestFn         func(ctx context.Context, r *domain.Request) error
	GetRequestByRequestIDFn func(ctx context.Context, requestID string) (*domain.Request, error)
	SaveRequestFn           func(ctx context.Context, r *domain.Request) error
	ListRequestsFn          func(ctx context.Context, f domain.Filters) ([]*domain.Request, error)

	CreateDisbursementFn              func(ctx context.Context, d *domain.Disbursement) error
	GetDisbursementByDisbursementIDFn func(ctx context.Context, disbursementID string) (*domain.Disbursement, error)
	SaveDisbursementFn                func(ctx context.Context, d *domain.Disbursement) error
	ListDisbursementsByRequestIDFn    func(ctx context.Context, requestID string) ([]*domain.Disbursement, error)

	UpsertEnrollmentVerificationFn         func(ctx context.Context, ev *domain.EnrollmentVerification) error
	GetEnrollmentVerificationByRequestIDFn func(ctx context.Context, requestID string) (*domain.EnrollmentVerification, error)
}

func (m *Repo) CreateRequest(ctx context.Context, r *domain.Request) error {
	if m.CreateRequestFn != nil {
		return m.CreateRequestFn(ctx, r)
	}
	return nil
}

func (m *Repo) GetRequestByRequestID(ctx context.Context, requestID string) (*domain.Request, error) {
	if m.GetRequestByRequestIDFn != nil {
		return m.GetRequestByRequestIDFn(ctx, requestID)
	}
	return nil, context.Canceled
}

func (m *Repo) SaveRequest(ctx context.Context, r *domain.Request) error {
	if m.SaveRequestFn != nil {
		return m.SaveRequestFn(ctx, r)
	}
	return nil
}

func (m *Repo) ListRequests(ctx context.Context, f domain.Filters) ([]*domain.Request, error) {
	if m.ListRequestsFn != nil {
		return m.ListRequestsFn(ctx, f)
	}
	return nil, nil
}

func (m *Repo) CreateDisbursement(ctx context.Context, d *domain.Disbursement) error {
	if m.CreateDisbursementFn != nil {
		return m.CreateDisbursementFn(ctx, d)
	}
	return nil
}

func (m *Repo) GetDisbursementByDisbursementID(ctx context.Context, disbursementID string) (*domain.Disbursement, error) {
	if m.GetDisbursementByDisbursementIDFn != nil {
		return m.GetDisbursementByDisbursementIDFn(ctx, disbursementID)
	}
	return nil, context.Canceled
}

func (m *Repo) SaveDisbursement(ctx context.Context, d *domain.Disbursement) error {
	if m.SaveDisbursementFn != nil {
		return m.SaveDisbursementFn(ctx, d)
	}
	return nil
}

func (m *Repo) ListDisbursementsByRequestID(ctx context.Context, requestID string) ([]*domain.Disbursement, error) {
	if m.ListDisbursementsByRequestIDFn != nil {
		return m.ListDisbursementsByRequestIDFn(ctx, requestID)
	}
	return nil, nil
}

func (m *Repo) UpsertEnrollmentVerification(ctx context.Context, ev *domain.EnrollmentVerification) error {
	if m.UpsertEnrollmentVerificationFn != nil {
		return m.UpsertEnrollmentVerificationFn(ctx, ev)
	}
	return nil
}

func (m *Repo) GetEnrollmentVerificationByRequestID(ctx context.Context, requestID string) (*domain.EnrollmentVerification, error) {
	if m.GetEnrollmentVerificationByRequestIDFn != nil {
		return m.GetEnrollmentVerificationByRequestIDFn(ctx, requestID)
	}
	return nil, context.Canceled
}
