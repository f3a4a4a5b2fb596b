package appmock

import (
	"context"

	domain "loan-origination-backend/internal/domain/application"
)

// Repo is a function-backed mock that satisfies domain.Repository.
// Only methods you need are included; add more as tests require.
type Repo struct {
	CreateFn             func(ctx context.Context, a *domain.Application) error
	GetByApplicationIDFn func(ctx context.Context, applicationID string) (*domain.Application, error)
	SaveFn               func(ctx context.Context, a *domain.Application) error
	ListFn               func(ctx context.Context, f domain.Filters) ([]*domain.Application, error)
	AppendHistoryFn      func(ctx context.Context, h *domain.StatusHistory) error
	ListHistoryFn        func(ctx context.Context, applicationID string) ([]*domain.StatusHistory, error)
}

func (m *Repo) Create(ctx context.Context, a *domain.Application) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, a)
	}
	return nil
}

func (m *Repo) GetByApplicationID(ctx context.Context, applicationID string) (*domain.Application, error) {
	if m.GetByApplicationIDFn != nil {
		return m.GetByApplicationIDFn(ctx, applicationID)
	}
	return nil, context.Canceled
}

func (m *Repo) Save(ctx context.Context, a *domain.Application) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, a)
	}
	return nil
}

func (m *Repo) List(ctx context.Context, f domain.Filters) ([]*domain.Application, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, f)
	}
	return nil, nil
}

func (m *Repo) AppendHistory(ctx context.Context, h *domain.StatusHistory) error {
	if m.AppendHistoryFn != nil {
		return m.AppendHistoryFn(ctx, h)
	}
	return nil
}

func (m *Repo) ListHistory(ctx context.Context, applicationID string) ([]*domain.StatusHistory, error) {
	if m.ListHistoryFn != nil {
		return m.ListHistoryFn(ctx, applicationID)
	}
	return nil, nil
}
