package outboxmock

import (
	"context"
	"sync"

	"loan-origination-backend/internal/domain/event"
)

// Publisher records every published event for inspection.
type Publisher struct {
	mu     sync.Mutex
	Events []*event.OutboxEvent
	Err    error
}

func (p *Publisher) Publish(_ context.Context, e *event.OutboxEvent) error {
	if p.Err != nil {
		return p.Err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, e)
	return nil
}

// ByType filters recorded events.
func (p *Publisher) ByType(t event.Type) []*event.OutboxEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []*event.OutboxEvent
	for _, e := range p.Events {
		if e.EventType == t {
			out = append(out, e)
		}
	}
	return out
}
