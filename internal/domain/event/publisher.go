package event

import (
	"context"
	"time"
)

// Publisher stores events for later delivery. The mysql implementation writes
// outbox rows, so publishing inside a unit-of-work is atomic with the
// aggregate change.
type Publisher interface {
	Publish(ctx context.Context, e *OutboxEvent) error
}

// Repository is the dispatcher-side view of the outbox.
type Repository interface {
	Publisher
	// ClaimBatch locks up to limit unprocessed rows whose lock is absent or
	// older than staleBefore, and returns them.
	ClaimBatch(ctx context.Context, limit int, staleBefore time.Time) ([]*OutboxEvent, error)
	MarkProcessed(ctx context.Context, eventID string) error
	MarkFailed(ctx context.Context, eventID string) error
}
