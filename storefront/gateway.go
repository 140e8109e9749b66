// Package storefront defines the contract between the shopping engine and an
// external commerce provider. Implementations live in subpackages; the engine
// itself only depends on the Gateway interface and the typed request/response
// records here.
package storefront

import (
	"context"

	"github.com/semanticpay/shopagent/catalog"
)

// CartLine is one line item in a cart creation request. MerchandiseID is the
// provider's variant identifier, not the product id.
type CartLine struct {
	MerchandiseID string `json:"merchandiseId"`
	Quantity      int    `json:"quantity"`
}

// BuyerIdentity optionally associates a customer with a cart.
type BuyerIdentity struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// DeliveryAddress is one shipping address option for a cart.
type DeliveryAddress struct {
	Address1    string `json:"address1,omitempty"`
	Address2    string `json:"address2,omitempty"`
	City        string `json:"city,omitempty"`
	CountryCode string `json:"countryCode,omitempty"`
	Zip         string `json:"zip,omitempty"`
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	Selected    bool   `json:"selected,omitempty"`
}

// UserError is a provider-reported validation failure during cart creation.
// User errors abort the operation; they are never swallowed by the Gateway.
type UserError struct {
	Field   []string `json:"field,omitempty"`
	Message string   `json:"message"`
}

// Warning is a provider-reported advisory. Warnings never block a result.
type Warning struct {
	Message string `json:"message"`
}

// RemoteCart is the provider-owned checkout object. It is produced only by a
// Gateway and read-only to the rest of the engine.
type RemoteCart struct {
	ID          string         `json:"id"`
	CheckoutURL string         `json:"checkout_url"`
	Subtotal    catalog.Price  `json:"subtotal"`
	Tax         *catalog.Price `json:"tax,omitempty"`
	Total       catalog.Price  `json:"total"`
}

// SearchProductsRequest matches products against the provider catalog.
// An empty query is the degenerate match-all case.
type SearchProductsRequest struct {
	Query string
	First int
}

// CreateCartRequest creates a provider checkout from line items.
type CreateCartRequest struct {
	Lines    []CartLine
	Buyer    *BuyerIdentity
	Delivery []DeliveryAddress
}

// CreateCartResult carries the new cart together with any provider-reported
// user errors and warnings; the caller decides fatal vs. advisory handling.
type CreateCartResult struct {
	Cart       *RemoteCart
	UserErrors []UserError
	Warnings   []Warning
}

// Gateway is the synchronous request/response surface of the commerce
// provider. All operations block until the provider answers or ctx is done.
//
// Read operations (SearchProducts, GetProduct, GetCart) are idempotent and may
// be retried freely by callers. CreateCart is not retried automatically.
type Gateway interface {
	SearchProducts(ctx context.Context, req SearchProductsRequest) ([]catalog.ProductSnapshot, error)
	GetProduct(ctx context.Context, id string) (catalog.ProductSnapshot, error)
	CreateCart(ctx context.Context, req CreateCartRequest) (CreateCartResult, error)
	GetCart(ctx context.Context, id string) (RemoteCart, error)
}
