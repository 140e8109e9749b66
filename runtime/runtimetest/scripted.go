// Package runtimetest provides a deterministic agent runtime for loop and
// handler tests.
package runtimetest

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/semanticpay/shopagent/agentloop"
	"github.com/semanticpay/shopagent/session"
)

// Turn configures one scripted turn: either a finite event sequence or an
// error returned from RunTurn.
type Turn struct {
	Events []agentloop.Event
	Err    error
}

// ScriptedRuntime replays a fixed sequence of turns. Each RunTurn consumes the
// next scripted turn; running past the script is an error.
type ScriptedRuntime struct {
	mu    sync.Mutex
	index int
	turns []Turn

	// Messages records the message of every RunTurn call, in order.
	Messages []string
}

func NewScriptedRuntime(turns ...Turn) *ScriptedRuntime {
	cloned := make([]Turn, len(turns))
	copy(cloned, turns)
	return &ScriptedRuntime{
		turns: cloned,
	}
}

var _ agentloop.Runtime = (*ScriptedRuntime)(nil)

func (r *ScriptedRuntime) RunTurn(_ context.Context, _ *session.Session, message string) (agentloop.Stream, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Messages = append(r.Messages, message)
	if r.index >= len(r.turns) {
		return nil, fmt.Errorf("script exhausted at turn %d", r.index+1)
	}
	current := r.turns[r.index]
	r.index++
	if current.Err != nil {
		return nil, current.Err
	}
	return NewStream(current.Events...), nil
}

// Calls reports how many turns have been dispatched so far.
func (r *ScriptedRuntime) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.index
}

// Stream replays a fixed event sequence and then reports io.EOF.
type Stream struct {
	mu     sync.Mutex
	index  int
	events []agentloop.Event
}

func NewStream(events ...agentloop.Event) *Stream {
	cloned := make([]agentloop.Event, len(events))
	copy(cloned, events)
	return &Stream{events: cloned}
}

var _ agentloop.Stream = (*Stream)(nil)

func (s *Stream) Recv(ctx context.Context) (agentloop.Event, error) {
	if err := ctx.Err(); err != nil {
		return agentloop.Event{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index >= len(s.events) {
		return agentloop.Event{}, io.EOF
	}
	event := s.events[s.index]
	s.index++
	return event, nil
}
