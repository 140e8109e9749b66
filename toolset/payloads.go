package toolset

import (
	"github.com/semanticpay/shopagent/checkout"
	"github.com/semanticpay/shopagent/storefront"
)

// CartPayload pairs the reconciled remote cart with the local lines it was
// built from. The widget materializer projects it into a cart summary.
type CartPayload struct {
	Remote  storefront.RemoteCart              `json:"remote"`
	Entries map[string]checkout.LocalCartEntry `json:"entries"`
}

// StatusPayload reports the outcome of a cart mutation back to the model.
type StatusPayload struct {
	Status    string `json:"status"`
	ProductID string `json:"product_id,omitempty"`
	Quantity  int    `json:"quantity,omitempty"`
	Detail    string `json:"detail,omitempty"`
}
