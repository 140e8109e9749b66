package agentloop

import "context"

// TurnEventType classifies loop lifecycle events for observability.
type TurnEventType string

const (
	TurnEventStarted   TurnEventType = "turn_started"
	TurnEventPayload   TurnEventType = "function_payload"
	TurnEventRetry     TurnEventType = "turn_retry"
	TurnEventCompleted TurnEventType = "turn_completed"
	TurnEventFailed    TurnEventType = "turn_failed"
)

// TurnEvent is published by the loop as a turn progresses. Adapters map it to
// logs or test captures; publish failures never fail the turn.
type TurnEvent struct {
	SessionID   string           `json:"session_id"`
	Attempt     int              `json:"attempt"`
	Type        TurnEventType    `json:"type"`
	Payload     *FunctionPayload `json:"payload,omitempty"`
	Description string           `json:"description,omitempty"`
}

// Sink receives loop lifecycle events.
type Sink interface {
	Publish(ctx context.Context, event TurnEvent) error
}

type noopSink struct{}

func (noopSink) Publish(context.Context, TurnEvent) error {
	return nil
}
