package qc

import (
	"context"

	"loan-origination-backend/internal/domain/verification"
)

// Filters is the typed query object for QC review listings.
type Filters struct {
	Status        ReviewStatus
	ApplicationID string
}

type Repository interface {
	CreateReview(ctx context.Context, r *Review) error
	GetReviewByReviewID(ctx context.Context, reviewID string) (*Review, error)
	GetReviewByApplicationID(ctx context.Context, applicationID string) (*Review, error)
	SaveReview(ctx context.Context, r *Review) error
	ListReviews(ctx context.Context, f Filters) ([]*Review, error)

	CreateItem(ctx context.Context, it *verification.Item) error
	SaveItem(ctx context.Context, it *verification.Item) error
	ListItemsByReviewID(ctx context.Context, reviewID string) ([]*verification.Item, error)
}
