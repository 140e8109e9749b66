package agentloop

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/semanticpay/shopagent/session"
)

const (
	defaultMaxAttempts = 3
	defaultBackoff     = 1 * time.Second
)

// Config bounds the loop's empty-turn retry.
type Config struct {
	// MaxAttempts is the total number of turns dispatched before giving up.
	// Zero means the default of 3.
	MaxAttempts int
	// Backoff is the pause between an empty turn and the next attempt.
	// Zero means the default of 1s.
	Backoff time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
	if c.Backoff <= 0 {
		c.Backoff = defaultBackoff
	}
	return c
}

// Loop executes turns against a Runtime and collects their outcomes.
type Loop struct {
	runtime Runtime
	sink    Sink
	cfg     Config
}

// NewLoop builds a Loop. A nil sink disables lifecycle events.
func NewLoop(runtime Runtime, cfg Config, sink Sink) (*Loop, error) {
	if runtime == nil {
		return nil, fmt.Errorf("new loop: nil runtime")
	}
	if sink == nil {
		sink = noopSink{}
	}
	return &Loop{runtime: runtime, sink: sink, cfg: cfg.withDefaults()}, nil
}

// Execute runs one conversational turn for the session. The stream is drained
// in arrival order: text fragments are concatenated into the answer and
// function responses are collected as payloads. A turn that yields neither is
// retried after a backoff, up to the attempt budget; exhausting the budget
// returns an error wrapping ErrEmptyResponse.
//
// Callers must hold the session's turn lock.
func (l *Loop) Execute(ctx context.Context, sess *session.Session, message string) (TurnResult, error) {
	for attempt := 1; attempt <= l.cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return TurnResult{}, err
		}

		_ = l.sink.Publish(ctx, TurnEvent{
			SessionID: sess.ID(),
			Attempt:   attempt,
			Type:      TurnEventStarted,
		})

		result, err := l.runTurn(ctx, sess, message)
		if err != nil {
			_ = l.sink.Publish(ctx, TurnEvent{
				SessionID:   sess.ID(),
				Attempt:     attempt,
				Type:        TurnEventFailed,
				Description: err.Error(),
			})
			return TurnResult{}, err
		}

		if result.Answer != "" || len(result.FunctionPayloads) > 0 {
			_ = l.sink.Publish(ctx, TurnEvent{
				SessionID: sess.ID(),
				Attempt:   attempt,
				Type:      TurnEventCompleted,
			})
			return result, nil
		}

		if attempt == l.cfg.MaxAttempts {
			break
		}

		_ = l.sink.Publish(ctx, TurnEvent{
			SessionID: sess.ID(),
			Attempt:   attempt,
			Type:      TurnEventRetry,
		})
		if err := sleep(ctx, l.cfg.Backoff); err != nil {
			return TurnResult{}, err
		}
	}

	err := fmt.Errorf("%w after %d attempts", ErrEmptyResponse, l.cfg.MaxAttempts)
	_ = l.sink.Publish(ctx, TurnEvent{
		SessionID:   sess.ID(),
		Attempt:     l.cfg.MaxAttempts,
		Type:        TurnEventFailed,
		Description: err.Error(),
	})
	return TurnResult{}, err
}

func (l *Loop) runTurn(ctx context.Context, sess *session.Session, message string) (TurnResult, error) {
	stream, err := l.runtime.RunTurn(ctx, sess, message)
	if err != nil {
		return TurnResult{}, fmt.Errorf("run turn: %w", err)
	}

	var answer strings.Builder
	var payloads []FunctionPayload
	for {
		event, err := stream.Recv(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return TurnResult{}, fmt.Errorf("recv event: %w", err)
		}
		if event.Empty() {
			continue
		}

		answer.WriteString(event.Text)
		for _, response := range event.FunctionResponses {
			if response.Result == nil {
				continue
			}
			payload := FunctionPayload{Name: response.Name, Payload: response.Result}
			payloads = append(payloads, payload)
			_ = l.sink.Publish(ctx, TurnEvent{
				SessionID: sess.ID(),
				Type:      TurnEventPayload,
				Payload:   &payload,
			})
		}
	}

	return TurnResult{Answer: answer.String(), FunctionPayloads: payloads}, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
