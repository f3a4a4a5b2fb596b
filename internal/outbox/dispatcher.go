// Package outbox delivers stored domain events to downstream consumers.
package outbox

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"loan-origination-backend/internal/domain/event"
)

type envelope struct {
	EventID       string `json:"event_id"`
	ApplicationID string `json:"application_id"`
	EventType     string `json:"event_type"`
	Payload       string `json:"payload"`
}

func (e envelope) marshal() ([]byte, error) { return json.Marshal(e) }

// Dispatcher drains unprocessed outbox rows in batches and hands them to the
// sink. Rows are claimed under a lock with a TTL so a crashed dispatcher's
// claims become reclaimable; delivery is therefore at-least-once.
type Dispatcher struct {
	Repo      event.Repository
	Sink      Sink
	Logger    *zap.Logger
	BatchSize int
	Interval  time.Duration
	LockTTL   time.Duration
}

func NewDispatcher(repo event.Repository, sink Sink, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		Repo:      repo,
		Sink:      sink,
		Logger:    logger,
		BatchSize: 50,
		Interval:  2 * time.Second,
		LockTTL:   30 * time.Second,
	}
}

// Run loops until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if n := d.ProcessOnce(ctx); n > 0 {
			d.Logger.Debug("outbox batch processed", zap.Int("events", n))
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(d.Interval):
		}
	}
}

// ProcessOnce claims and delivers a single batch, returning the number of
// events successfully delivered.
func (d *Dispatcher) ProcessOnce(ctx context.Context) int {
	staleBefore := time.Now().UTC().Add(-d.LockTTL)
	batch, err := d.Repo.ClaimBatch(ctx, d.BatchSize, staleBefore)
	if err != nil {
		d.Logger.Error("outbox claim failed", zap.Error(err))
		return 0
	}
	delivered := 0
	for _, e := range batch {
		if err := d.Sink.Deliver(ctx, e); err != nil {
			d.Logger.Warn("outbox delivery failed",
				zap.String("event_id", e.EventID),
				zap.String("event_type", string(e.EventType)),
				zap.Int("attempts", e.Attempts),
				zap.Error(err))
			if err := d.Repo.MarkFailed(ctx, e.EventID); err != nil {
				d.Logger.Error("outbox mark-failed failed", zap.String("event_id", e.EventID), zap.Error(err))
			}
			continue
		}
		if err := d.Repo.MarkProcessed(ctx, e.EventID); err != nil {
			// Row stays claimed until the lock goes stale, then replays.
			d.Logger.Error("outbox ack failed", zap.String("event_id", e.EventID), zap.Error(err))
			continue
		}
		delivered++
	}
	return delivered
}
