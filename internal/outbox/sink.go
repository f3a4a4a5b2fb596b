package outbox

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"loan-origination-backend/internal/domain/event"
)

// Sink delivers one claimed outbox event. Delivery is at-least-once; sinks
// and their consumers must tolerate replays keyed by
// (application_id, event_type, event_id).
type Sink interface {
	Deliver(ctx context.Context, e *event.OutboxEvent) error
}

// LogSink writes events to the structured log. Default for local/dev.
type LogSink struct{ Logger *zap.Logger }

func NewLogSink(l *zap.Logger) *LogSink { return &LogSink{Logger: l} }

func (s *LogSink) Deliver(_ context.Context, e *event.OutboxEvent) error {
	s.Logger.Info("domain event",
		zap.String("event_id", e.EventID),
		zap.String("application_id", e.ApplicationID),
		zap.String("event_type", string(e.EventType)),
		zap.String("payload", e.Payload),
	)
	return nil
}

// RedisSink publishes events on a pub/sub channel for out-of-process
// consumers (notifications, reporting).
type RedisSink struct {
	rdb     *redis.Client
	channel string
}

func NewRedisSink(rdb *redis.Client, channel string) *RedisSink {
	return &RedisSink{rdb: rdb, channel: channel}
}

func (s *RedisSink) Deliver(ctx context.Context, e *event.OutboxEvent) error {
	msg := envelope{
		EventID:       e.EventID,
		ApplicationID: e.ApplicationID,
		EventType:     string(e.EventType),
		Payload:       e.Payload,
	}
	b, err := msg.marshal()
	if err != nil {
		return err
	}
	return s.rdb.Publish(ctx, s.channel, b).Err()
}
