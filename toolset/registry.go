// Package toolset defines the shopping tools the agent runtime may invoke
// during a turn and the registry that executes them against session state.
package toolset

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/semanticpay/shopagent/session"
)

// Tool names. The widget materializer keys its dispatch table on these.
const (
	ToolSearchProducts     = "search_products"
	ToolSearchCategories   = "search_product_categories"
	ToolSetCategories      = "set_search_categories"
	ToolAddItemToCart      = "add_item_to_cart"
	ToolRemoveItemFromCart = "remove_item_from_cart"
	ToolCreateStoreCart    = "create_store_cart"
	ToolGetStoreCart       = "get_store_cart"
)

var (
	ErrToolUnregistered = errors.New("tool is not registered")
	ErrNilHandler       = errors.New("tool handler is nil")
	ErrToolNameEmpty    = errors.New("tool name is empty")
)

// Handler executes one tool call against the calling session. The returned
// payload travels back through the turn's event stream and, for widget-bearing
// tools, into the materializer.
type Handler func(ctx context.Context, sess *session.Session, args map[string]any) (any, error)

// Param describes one tool parameter for runtime function declarations.
type Param struct {
	Name        string
	Type        string
	Description string
	Required    bool
}

// Definition describes a tool to the agent runtime.
type Definition struct {
	Name        string
	Description string
	Params      []Param
}

type entry struct {
	definition Definition
	handler    Handler
}

// Registry stores handlers by tool name and executes tool calls.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
	order   []string
}

func NewRegistry() *Registry {
	return &Registry{entries: map[string]entry{}}
}

// Register adds or replaces a tool.
func (r *Registry) Register(definition Definition, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[definition.Name]; !exists {
		r.order = append(r.order, definition.Name)
	}
	r.entries[definition.Name] = entry{definition: definition, handler: handler}
}

// Definitions returns the registered tool definitions in registration order.
func (r *Registry) Definitions() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Definition, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.entries[name].definition)
	}
	return out
}

// Execute runs a named tool for the session.
func (r *Registry) Execute(ctx context.Context, sess *session.Session, name string, args map[string]any) (any, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if name == "" {
		return nil, ErrToolNameEmpty
	}

	r.mu.RLock()
	found, ok := r.entries[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrToolUnregistered, name)
	}
	if found.handler == nil {
		return nil, fmt.Errorf("%w: %q", ErrNilHandler, name)
	}

	return found.handler(ctx, sess, args)
}
