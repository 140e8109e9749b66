// Package gemini adapts Google's Gemini API to the agent runtime contract.
// It owns the model conversation: prompting, tool declarations, executing
// requested tool calls through the registry, and replaying the turn as a
// finite event stream.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"google.golang.org/genai"

	"github.com/semanticpay/shopagent/agentloop"
	"github.com/semanticpay/shopagent/session"
	"github.com/semanticpay/shopagent/toolset"
)

const (
	defaultModel        = "gemini-2.5-flash"
	defaultMaxToolSteps = 8
)

// Config configures the Gemini runtime.
type Config struct {
	APIKey string
	// Model defaults to gemini-2.5-flash.
	Model string
	// MaxToolSteps bounds tool round-trips within one turn. Zero means 8.
	MaxToolSteps int
}

// Runtime runs conversational turns against Gemini, executing requested tool
// calls locally through the registry. Conversation history is kept per
// session; callers serialize turns with the session lock, so history access
// for one session never races.
type Runtime struct {
	client       *genai.Client
	registry     *toolset.Registry
	model        string
	maxToolSteps int

	mu        sync.Mutex
	histories map[string][]*genai.Content
}

var _ agentloop.Runtime = (*Runtime)(nil)

func New(ctx context.Context, cfg Config, registry *toolset.Registry) (*Runtime, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("new gemini runtime: api key is required")
	}
	if registry == nil {
		return nil, fmt.Errorf("new gemini runtime: nil registry")
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.MaxToolSteps <= 0 {
		cfg.MaxToolSteps = defaultMaxToolSteps
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("new gemini client: %w", err)
	}

	return &Runtime{
		client:       client,
		registry:     registry,
		model:        cfg.Model,
		maxToolSteps: cfg.MaxToolSteps,
		histories:    map[string][]*genai.Content{},
	}, nil
}

// RunTurn sends the message to Gemini, resolves tool calls until the model
// answers in text or the step budget runs out, and returns the turn's events.
func (r *Runtime) RunTurn(ctx context.Context, sess *session.Session, message string) (agentloop.Stream, error) {
	contents := append(r.history(sess.ID()), genai.NewContentFromText(message, genai.RoleUser))
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Tools:             []*genai.Tool{{FunctionDeclarations: r.declarations()}},
	}

	var events []agentloop.Event
	for step := 0; step < r.maxToolSteps; step++ {
		resp, err := r.client.Models.GenerateContent(ctx, r.model, contents, config)
		if err != nil {
			return nil, fmt.Errorf("generate content: %w", err)
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			break
		}
		modelContent := resp.Candidates[0].Content
		contents = append(contents, modelContent)

		event, calls := eventFromContent(modelContent)
		if !event.Empty() {
			events = append(events, event)
		}
		if len(calls) == 0 {
			break
		}

		responseEvent, responseParts := r.executeCalls(ctx, sess, calls)
		events = append(events, responseEvent)
		contents = append(contents, &genai.Content{Role: genai.RoleUser, Parts: responseParts})
	}

	r.setHistory(sess.ID(), contents)
	return &eventStream{events: events}, nil
}

func (r *Runtime) executeCalls(ctx context.Context, sess *session.Session, calls []*genai.FunctionCall) (agentloop.Event, []*genai.Part) {
	event := agentloop.Event{Author: "tool"}
	parts := make([]*genai.Part, 0, len(calls))
	for _, call := range calls {
		payload, err := r.registry.Execute(ctx, sess, call.Name, call.Args)
		if err != nil {
			// The model sees tool failures and can recover or apologize;
			// they never abort the turn.
			failure := map[string]any{"status": "error", "error": err.Error()}
			event.FunctionResponses = append(event.FunctionResponses, agentloop.FunctionResponse{
				Name:   call.Name,
				Result: failure,
			})
			parts = append(parts, genai.NewPartFromFunctionResponse(call.Name, failure))
			continue
		}
		event.FunctionResponses = append(event.FunctionResponses, agentloop.FunctionResponse{
			Name:   call.Name,
			Result: payload,
		})
		parts = append(parts, genai.NewPartFromFunctionResponse(call.Name, responseMap(payload)))
	}
	return event, parts
}

func (r *Runtime) declarations() []*genai.FunctionDeclaration {
	definitions := r.registry.Definitions()
	out := make([]*genai.FunctionDeclaration, 0, len(definitions))
	for _, definition := range definitions {
		out = append(out, declare(definition))
	}
	return out
}

func (r *Runtime) history(sessionID string) []*genai.Content {
	r.mu.Lock()
	defer r.mu.Unlock()
	history := r.histories[sessionID]
	out := make([]*genai.Content, len(history))
	copy(out, history)
	return out
}

func (r *Runtime) setHistory(sessionID string, contents []*genai.Content) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.histories[sessionID] = contents
}

func eventFromContent(content *genai.Content) (agentloop.Event, []*genai.FunctionCall) {
	event := agentloop.Event{Author: "model"}
	var calls []*genai.FunctionCall
	for _, part := range content.Parts {
		if part == nil {
			continue
		}
		if part.Text != "" {
			event.Text += part.Text
		}
		if part.FunctionCall != nil {
			calls = append(calls, part.FunctionCall)
			event.FunctionCalls = append(event.FunctionCalls, agentloop.FunctionCall{
				Name: part.FunctionCall.Name,
				Args: part.FunctionCall.Args,
			})
		}
	}
	return event, calls
}

func declare(definition toolset.Definition) *genai.FunctionDeclaration {
	declaration := &genai.FunctionDeclaration{
		Name:        definition.Name,
		Description: definition.Description,
	}
	if len(definition.Params) == 0 {
		return declaration
	}

	properties := make(map[string]*genai.Schema, len(definition.Params))
	var required []string
	for _, param := range definition.Params {
		properties[param.Name] = &genai.Schema{
			Type:        schemaType(param.Type),
			Description: param.Description,
		}
		if param.Required {
			required = append(required, param.Name)
		}
	}
	declaration.Parameters = &genai.Schema{
		Type:       genai.TypeObject,
		Properties: properties,
		Required:   required,
	}
	return declaration
}

func schemaType(name string) genai.Type {
	switch name {
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}

// responseMap shapes an arbitrary tool payload into the map the API expects
// for function responses.
func responseMap(payload any) map[string]any {
	if asMap, ok := payload.(map[string]any); ok {
		return asMap
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return map[string]any{"result": fmt.Sprint(payload)}
	}
	var decoded map[string]any
	if err := json.Unmarshal(encoded, &decoded); err == nil {
		return decoded
	}
	return map[string]any{"result": json.RawMessage(encoded)}
}

type eventStream struct {
	mu     sync.Mutex
	index  int
	events []agentloop.Event
}

func (s *eventStream) Recv(ctx context.Context) (agentloop.Event, error) {
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
