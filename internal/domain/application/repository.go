package application

import "context"

// Filters is the typed query object for application listings.
type Filters struct {
	BorrowerID string
	SchoolID   string
	Statuses   []Status
	Category   Category
}

type Repository interface {
	Create(ctx context.Context, a *Application) error
	GetByApplicationID(ctx context.Context, applicationID string) (*Application, error)
	// Save persists a mutated aggregate with a compare-and-swap on Version.
	// A stale Version yields a CONCURRENCY_CONFLICT error and writes nothing.
	Save(ctx context.Context, a *Application) error
	List(ctx context.Context, f Filters) ([]*Application, error)

	AppendHistory(ctx context.Context, h *StatusHistory) error
	ListHistory(ctx context.Context, applicationID string) ([]*StatusHistory, error)
}
