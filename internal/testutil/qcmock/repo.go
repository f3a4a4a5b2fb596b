package qcmock

import (
	"context"

	domain "loan-origination-backend/internal/domain/qc"
	"loan-origination-backend/internal/domain/verification"
)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateReviewFn             func(ctx context.Context, r *domain.Review) error
	GetReviewByReviewIDFn      func(ctx context.Context, reviewID string) (*domain.Review, error)
	GetReviewByApplicationIDFn func(ctx context.Context, applicationID string) (*domain.Review, error)
	SaveReviewFn               func(ctx context.Context, r *domain.Review) error
	ListReviewsFn              func(ctx context.Context, f domain.Filters) ([]*domain.Review, error)

	CreateItemFn          func(ctx context.Context, it *verification.Item) error
	SaveItemFn            func(ctx context.Context, it *verification.Item) error
	ListItemsByReviewIDFn func(ctx context.Context, reviewID string) ([]*verification.Item, error)
}

func (m *Repo) CreateReview(ctx context.Context, r *domain.Review) error {
	if m.CreateReviewFn != nil {
		return m.CreateReviewFn(ctx, r)
	}
	return nil
}

func (m *Repo) GetReviewByReviewID(ctx context.Context, reviewID string) (*domain.Review, error) {
	if m.GetReviewByReviewIDFn != nil {
		return m.GetReviewByReviewIDFn(ctx, reviewID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetReviewByApplicationID(ctx context.Context, applicationID string) (*domain.Review, error) {
	if m.GetReviewByApplicationIDFn != nil {
		return m.GetReviewByApplicationIDFn(ctx, applicationID)
	}
	return nil, context.Canceled
}

func (m *Repo) SaveReview(ctx context.Context, r *domain.Review) error {
	if m.SaveReviewFn != nil {
		return m.SaveReviewFn(ctx, r)
	}
	return nil
}

func (m *Repo) ListReviews(ctx context.Context, f domain.Filters) ([]*domain.Review, error) {
	if m.ListReviewsFn != nil {
		return m.ListReviewsFn(ctx, f)
	}
	return nil, nil
}

func (m *Repo) CreateItem(ctx context.Context, it *verification.Item) error {
	if m.CreateItemFn != nil {
		return m.CreateItemFn(ctx, it)
	}
	return nil
}

func (m *Repo) SaveItem(ctx context.Context, it *verification.Item) error {
	if m.SaveItemFn != nil {
		return m.SaveItemFn(ctx, it)
	}
	return nil
}

func (m *Repo) ListItemsByReviewID(ctx context.Context, reviewID string) ([]*verification.Item, error) {
	if m.ListItemsByReviewIDFn != nil {
		return m.ListItemsByReviewIDFn(ctx, reviewID)
	}
	return nil, nil
}
