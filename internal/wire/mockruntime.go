package wire

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/semanticpay/shopagent/agentloop"
	"github.com/semanticpay/shopagent/runtime/runtimetest"
	"github.com/semanticpay/shopagent/session"
	"github.com/semanticpay/shopagent/toolset"
)

// mockRuntime interprets a small command vocabulary against the real toolset
// so the full stack can run without a model provider:
//
//	search <query>
//	add <product_id> [quantity]
//	remove <product_id>
//	cart | checkout
//	categories
type mockRuntime struct {
	registry *toolset.Registry
}

var _ agentloop.Runtime = (*mockRuntime)(nil)

func newMockRuntime(registry *toolset.Registry) *mockRuntime {
	return &mockRuntime{registry: registry}
}

func (m *mockRuntime) RunTurn(ctx context.Context, sess *session.Session, message string) (agentloop.Stream, error) {
	fields := strings.Fields(strings.TrimSpace(message))
	if len(fields) == 0 {
		return runtimetest.NewStream(), nil
	}

	command := strings.ToLower(fields[0])
	switch {
	case command == "search" && len(fields) > 1:
		query := strings.Join(fields[1:], " ")
		return m.invoke(ctx, sess, toolset.ToolSearchProducts,
			map[string]any{"query": query},
			fmt.Sprintf("Here is what I found for %q.", query))
	case command == "add" && len(fields) > 1:
		args := map[string]any{"product_id": fields[1]}
		if len(fields) > 2 {
			args["quantity"] = parseQuantity(fields[2])
		}
		return m.invoke(ctx, sess, toolset.ToolAddItemToCart, args, "Added to your cart.")
	case command == "remove" && len(fields) > 1:
		return m.invoke(ctx, sess, toolset.ToolRemoveItemFromCart,
			map[string]any{"product_id": fields[1]}, "Removed from your cart.")
	case command == "cart" || command == "checkout":
		return m.invoke(ctx, sess, toolset.ToolCreateStoreCart, nil, "Here is your cart.")
	case command == "categories":
		return m.invoke(ctx, sess, toolset.ToolSearchCategories, nil, "Here are some collections to browse.")
	default:
		return runtimetest.NewStream(agentloop.Event{
			Author: "model",
			Text:   "Try: search <query>, add <product_id>, remove <product_id>, cart, or categories.",
		}), nil
	}
}

func (m *mockRuntime) invoke(ctx context.Context, sess *session.Session, tool string, args map[string]any, reply string) (agentloop.Stream, error) {
	callEvent := agentloop.Event{
		Author:        "model",
		FunctionCalls: []agentloop.FunctionCall{{Name: tool, Args: args}},
	}

	payload, err := m.registry.Execute(ctx, sess, tool, args)
	if err != nil {
		payload = map[string]any{"status": "error", "error": err.Error()}
		reply = "Something went wrong with that request."
	}

	return runtimetest.NewStream(
		callEvent,
		agentloop.Event{
			Author:            "tool",
			FunctionResponses: []agentloop.FunctionResponse{{Name: tool, Result: payload}},
		},
		agentloop.Event{Author: "model", Text: reply},
	), nil
}

func parseQuantity(input string) int {
	quantity, err := strconv.Atoi(input)
	if err != nil || quantity <= 0 {
		return 1
	}
	return quantity
}
