package uow

import (
	"context"

	"loan-origination-backend/internal/domain/application"
	"loan-origination-backend/internal/domain/event"
	"loan-origination-backend/internal/domain/funding"
	"loan-origination-backend/internal/domain/qc"
	"loan-origination-backend/internal/domain/underwriting"
)

// Repos bundles every repository bound to one transaction.
type Repos struct {
	Applications application.Repository
	Underwriting underwriting.Repository
	QC           qc.Repository
	Funding      funding.Repository
	Outbox       event.Publisher
}

// UnitOfWork scopes a mutation to a single aggregate transaction. Partial
// failure rolls the whole operation back, outbox rows included.
type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock the application row first, then pass it in
	WithinApplicationTx(ctx context.Context, applicationID string, fn func(r Repos, a *application.Application) error) error
}
