package underwriting

import "context"

// QueueFilters is the typed query object for the underwriting work queue.
type QueueFilters struct {
	Status     QueueStatus
	Priority   Priority
	AssignedTo string
}

type Repository interface {
	CreateQueueEntry(ctx context.Context, q *QueueEntry) error
	GetQueueEntryByEntryID(ctx context.Context, entryID string) (*QueueEntry, error)
	GetOpenQueueEntryByApplicationID(ctx context.Context, applicationID string) (*QueueEntry, error)
	SaveQueueEntry(ctx context.Context, q *QueueEntry) error
	ListQueue(ctx context.Context, f QueueFilters) ([]*QueueEntry, error)

	CreateDecision(ctx context.Context, d *Decision) error
	// GetActiveDecisionByApplicationID returns the single non-superseded
	// decision, or a not-found error.
	GetActiveDecisionByApplicationID(ctx context.Context, applicationID string) (*Decision, error)
	SupersedeDecisions(ctx context.Context, applicationID string) error

	CreateStipulation(ctx context.Context, s *Stipulation) error
	GetStipulationByStipulationID(ctx context.Context, stipulationID string) (*Stipulation, error)
	SaveStipulation(ctx context.Context, s *Stipulation) error
	ListStipulationsByApplicationID(ctx context.Context, applicationID string) ([]*Stipulation, error)
}
