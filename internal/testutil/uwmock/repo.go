package uwmock

import (
	"context"

	domain "loan-origination-backend/internal/domain/underwriting"
)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateQueueEntryFn                 func(ctx context.Context, q *domain.QueueEntry) error
	GetQueueEntryByEntryIDFn           func(ctx context.Context, entryID string) (*domain.QueueEntry, error)
	GetOpenQueueEntryByApplicationIDFn func(ctx context.Context, applicationID string) (*domain.QueueEntry, error)
	SaveQueueEntryFn                   func(ctx context.Context, q *domain.QueueEntry) error
	ListQueueFn                        func(ctx context.Context, f domain.QueueFilters) ([]*domain.QueueEntry, error)

	CreateDecisionFn                   func(ctx context.Context, d *domain.Decision) error
	GetActiveDecisionByApplicationIDFn func(ctx context.Context, applicationID string) (*domain.Decision, error)
	SupersedeDecisionsFn               func(ctx context.Context, applicationID string) error

	CreateStipulationFn               func(ctx context.Context, s *domain.Stipulation) error
	GetStipulationByStipulationIDFn   func(ctx context.Context, stipulationID string) (*domain.Stipulation, error)
	SaveStipulationFn                 func(ctx context.Context, s *domain.Stipulation) error
	ListStipulationsByApplicationIDFn func(ctx context.Context, applicationID string) ([]*domain.Stipulation, error)
}

func (m *Repo) CreateQueueEntry(ctx context.Context, q *domain.QueueEntry) error {
	if m.CreateQueueEntryFn != nil {
		return m.CreateQueueEntryFn(ctx, q)
	}
	return nil
}

func (m *Repo) GetQueueEntryByEntryID(ctx context.Context, entryID string) (*domain.QueueEntry, error) {
	if m.GetQueueEntryByEntryIDFn != nil {
		return m.GetQueueEntryByEntryIDFn(ctx, entryID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetOpenQueueEntryByApplicationID(ctx context.Context, applicationID string) (*domain.QueueEntry, error) {
	if m.GetOpenQueueEntryByApplicationIDFn != nil {
		return m.GetOpenQueueEntryByApplicationIDFn(ctx, applicationID)
	}
	return nil, context.Canceled
}

func (m *Repo) SaveQueueEntry(ctx context.Context, q *domain.QueueEntry) error {
	if m.SaveQueueEntryFn != nil {
		return m.SaveQueueEntryFn(ctx, q)
	}
	return nil
}

func (m *Repo) ListQueue(ctx context.Context, f domain.QueueFilters) ([]*domain.QueueEntry, error) {
	if m.ListQueueFn != nil {
		return m.ListQueueFn(ctx, f)
	}
	return nil, nil
}

func (m *Repo) CreateDecision(ctx context.Context, d *domain.Decision) error {
	if m.CreateDecisionFn != nil {
		return m.CreateDecisionFn(ctx, d)
	}
	return nil
}

func (m *Repo) GetActiveDecisionByApplicationID(ctx context.Context, applicationID string) (*domain.Decision, error) {
	if m.GetActiveDecisionByApplicationIDFn != nil {
		return m.GetActiveDecisionByApplicationIDFn(ctx, applicationID)
	}
	return nil, context.Canceled
}

func (m *Repo) SupersedeDecisions(ctx context.Context, applicationID string) error {
	if m.SupersedeDecisionsFn != nil {
		return m.SupersedeDecisionsFn(ctx, applicationID)
	}
	return nil
}

func (m *Repo) CreateStipulation(ctx context.Context, s *domain.Stipulation) error {
	if m.CreateStipulationFn != nil {
		return m.CreateStipulationFn(ctx, s)
	}
	return nil
}

func (m *Repo) GetStipulationByStipulationID(ctx context.Context, stipulationID string) (*domain.Stipulation, error) {
	if m.GetStipulationByStipulationIDFn != nil {
		return m.GetStipulationByStipulationIDFn(ctx, stipulationID)
	}
	return nil, context.Canceled
}

func (m *Repo) SaveStipulation(ctx context.Context, s *domain.Stipulation) error {
	if m.SaveStipulationFn != nil {
		return m.SaveStipulationFn(ctx, s)
	}
	return nil
}

func (m *Repo) ListStipulationsByApplicationID(ctx context.Context, applicationID string) ([]*domain.Stipulation, error) {
	if m.ListStipulationsByApplicationIDFn != nil {
		return m.ListStipulationsByApplicationIDFn(ctx, applicationID)
	}
	return nil, nil
}
