// Package inmem provides an in-memory turn event sink for tests and local
// inspection.
package inmem

import (
	"context"
	"sync"

	"github.com/semanticpay/shopagent/agentloop"
)

// Sink captures turn lifecycle events in memory and exposes deterministic
// snapshots.
type Sink struct {
	mu     sync.RWMutex
	events []agentloop.TurnEvent
}

var _ agentloop.Sink = (*Sink)(nil)

func New() *Sink {
	return &Sink{events: make([]agentloop.TurnEvent, 0)}
}

func (s *Sink) Publish(ctx context.Context, event agentloop.TurnEvent) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, cloneEvent(event))
	return nil
}

// Events returns a snapshot of the captured events in publish order.
func (s *Sink) Events() []agentloop.TurnEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]agentloop.TurnEvent, len(s.events))
	for i := range s.events {
		out[i] = cloneEvent(s.events[i])
	}
	return out
}

// OfType returns the captured events matching one lifecycle type, in order.
func (s *Sink) OfType(eventType agentloop.TurnEventType) []agentloop.TurnEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []agentloop.TurnEvent
	for _, event := range s.events {
		if event.Type == eventType {
			out = append(out, cloneEvent(event))
		}
	}
	return out
}

func cloneEvent(in agentloop.TurnEvent) agentloop.TurnEvent {
	out := in
	if in.Payload != nil {
		payload := *in.Payload
		out.Payload = &payload
	}
	return out
}
