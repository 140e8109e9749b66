// Package agentloop drives one conversational turn against an opaque agent
// runtime: it dispatches the user's message, drains the runtime's event
// stream in arrival order, and retries empty turns with a bounded backoff.
package agentloop

import (
	"context"

	"github.com/semanticpay/shopagent/session"
)

// FunctionCall describes a tool invocation requested during the turn.
type FunctionCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

// FunctionResponse carries a tool's output back through the event stream.
type FunctionResponse struct {
	Name   string `json:"name"`
	Result any    `json:"result,omitempty"`
}

// Event is one slice of a turn. Any combination of fields may be present;
// an event with no content is skipped, not an error.
type Event struct {
	Author            string             `json:"author,omitempty"`
	Text              string             `json:"text,omitempty"`
	FunctionCalls     []FunctionCall     `json:"function_calls,omitempty"`
	FunctionResponses []FunctionResponse `json:"function_responses,omitempty"`
}

// Empty reports whether the event carries nothing worth collecting.
func (e Event) Empty() bool {
	return e.Text == "" && len(e.FunctionCalls) == 0 && len(e.FunctionResponses) == 0
}

// Stream delivers the finite event sequence of one turn in arrival order.
// Recv returns io.EOF after the final event.
type Stream interface {
	Recv(ctx context.Context) (Event, error)
}

// Runtime is the opaque agent runtime: model, prompts, and tool selection all
// live behind this interface. The loop only consumes the stream.
type Runtime interface {
	RunTurn(ctx context.Context, sess *session.Session, message string) (Stream, error)
}

// FunctionPayload is one tool output collected from the turn, keyed by tool
// name for widget materialization.
type FunctionPayload struct {
	Name    string `json:"name"`
	Payload any    `json:"payload,omitempty"`
}

// TurnResult is the collected outcome of one turn.
type TurnResult struct {
	Answer           string            `json:"answer"`
	FunctionPayloads []FunctionPayload `json:"function_payloads,omitempty"`
}
