package widget

import (
	"github.com/semanticpay/shopagent/agentloop"
	"github.com/semanticpay/shopagent/catalog"
	"github.com/semanticpay/shopagent/toolset"
)

// Materializer maps collected tool payloads to widgets through a closed
// dispatch table keyed by tool name. Payloads from tools outside the table
// and nil payloads are skipped; materialization never fails a turn.
type Materializer struct {
	table map[string]func(payload any) []Widget
}

func NewMaterializer() *Materializer {
	return &Materializer{
		table: map[string]func(payload any) []Widget{
			toolset.ToolSearchProducts:   productWidgets,
			toolset.ToolSearchCategories: sectionWidgets,
			toolset.ToolCreateStoreCart:  cartWidgets,
			toolset.ToolGetStoreCart:     cartWidgets,
		},
	}
}

// Materialize walks the payloads in collection order and emits widgets in
// that same order. It is a pure projection: no session or gateway access.
func (m *Materializer) Materialize(payloads []agentloop.FunctionPayload) []Widget {
	var out []Widget
	for _, payload := range payloads {
		materialize, ok := m.table[payload.Name]
		if !ok || payload.Payload == nil {
			continue
		}
		out = append(out, materialize(payload.Payload)...)
	}
	return out
}

func productWidgets(payload any) []Widget {
	snapshots, ok := payload.([]catalog.ProductSnapshot)
	if !ok {
		return nil
	}
	out := make([]Widget, 0, len(snapshots))
	for _, snapshot := range snapshots {
		view := NewProductView(snapshot)
		out = append(out, Widget{Type: TypeProduct, Product: &view})
	}
	return out
}

func sectionWidgets(payload any) []Widget {
	sections, ok := payload.([]catalog.ProductSection)
	if !ok {
		return nil
	}
	out := make([]Widget, 0, len(sections))
	for _, section := range sections {
		view := NewSectionView(section)
		out = append(out, Widget{Type: TypeProductSection, Section: &view})
	}
	return out
}

func cartWidgets(payload any) []Widget {
	cart, ok := payload.(toolset.CartPayload)
	if !ok {
		return nil
	}
	summary := NewCartSummary(cart.Remote, CartLineViews(cart.Entries))
	return []Widget{{Type: TypeCart, Cart: &summary}}
}
