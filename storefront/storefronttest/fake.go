// Package storefronttest provides a deterministic in-memory Gateway for tests
// and for running the service without provider credentials.
package storefronttest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/semanticpay/shopagent/catalog"
	"github.com/semanticpay/shopagent/storefront"
)

// Fake is an in-memory Gateway backed by a seeded catalog. Search matches on
// title and description substrings; created carts are retrievable by id.
type Fake struct {
	mu       sync.Mutex
	products []catalog.ProductSnapshot
	carts    map[string]storefront.RemoteCart

	// Calls counts invocations per operation name, for call-count assertions.
	calls map[string]int

	// NextUserErrors, when non-nil, is returned by the next CreateCart call
	// instead of a cart.
	NextUserErrors []storefront.UserError
	// NextErr, when non-nil, is returned by the next gateway call.
	NextErr error
}

var _ storefront.Gateway = (*Fake)(nil)

func New(products ...catalog.ProductSnapshot) *Fake {
	return &Fake{
		products: catalog.CloneSnapshots(products),
		carts:    map[string]storefront.RemoteCart{},
		calls:    map[string]int{},
	}
}

// Seeded returns a Fake preloaded with a small demo catalog.
func Seeded() *Fake {
	return New(
		catalog.ProductSnapshot{
			ID:          "gid://shop/Product/1",
			VariantID:   "gid://shop/ProductVariant/1",
			Title:       "Ocean Blue Tote",
			Description: "A roomy blue tote bag.",
			ImageURL:    "https://cdn.example.com/tote.jpg",
			Price:       catalog.MustPrice("45.99", "USD"),
		},
		catalog.ProductSnapshot{
			ID:          "gid://shop/Product/2",
			VariantID:   "gid://shop/ProductVariant/2",
			Title:       "Navy Backpack",
			Description: "Water-resistant commuter backpack.",
			ImageURL:    "https://cdn.example.com/backpack.jpg",
			Price:       catalog.MustPrice("67.50", "USD"),
		},
		catalog.ProductSnapshot{
			ID:          "gid://shop/Product/3",
			VariantID:   "gid://shop/ProductVariant/3",
			Title:       "Red Wool Hat",
			Description: "A warm red hat for winter.",
			ImageURL:    "https://cdn.example.com/hat.jpg",
			Price:       catalog.MustPrice("19.00", "USD"),
		},
	)
}

// Calls reports how many times the named operation ran.
func (f *Fake) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *Fake) begin(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	if f.NextErr != nil {
		err := f.NextErr
		f.NextErr = nil
		return err
	}
	return nil
}

func (f *Fake) SearchProducts(ctx context.Context, req storefront.SearchProductsRequest) ([]catalog.ProductSnapshot, error) {
	if err := f.begin("search_products"); err != nil {
		return nil, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	needle := strings.ToLower(strings.TrimSpace(req.Query))
	matched := make([]catalog.ProductSnapshot, 0, len(f.products))
	for _, product := range f.products {
		if needle == "" ||
			strings.Contains(strings.ToLower(product.Title), needle) ||
			strings.Contains(strings.ToLower(product.Description), needle) ||
			anyTokenMatches(needle, product) {
			matched = append(matched, product)
		}
		if req.First > 0 && len(matched) == req.First {
			break
		}
	}
	return matched, nil
}

func anyTokenMatches(needle string, product catalog.ProductSnapshot) bool {
	haystack := strings.ToLower(product.Title + " " + product.Description)
	for _, token := range strings.Fields(needle) {
		if strings.Contains(haystack, token) {
			return true
		}
	}
	return false
}

func (f *Fake) GetProduct(ctx context.Context, id string) (catalog.ProductSnapshot, error) {
	if err := f.begin("get_product"); err != nil {
		return catalog.ProductSnapshot{}, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return catalog.ProductSnapshot{}, ctxErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, product := range f.products {
		if product.ID == id {
			return product, nil
		}
	}
	return catalog.ProductSnapshot{}, fmt.Errorf("%w: %s", storefront.ErrProductNotFound, id)
}

func (f *Fake) CreateCart(ctx context.Context, req storefront.CreateCartRequest) (storefront.CreateCartResult, error) {
	if err := f.begin("create_cart"); err != nil {
		return storefront.CreateCartResult{}, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return storefront.CreateCartResult{}, ctxErr
	}
	if len(req.Lines) == 0 {
		return storefront.CreateCartResult{}, fmt.Errorf("%w: cart creation requires at least one line", storefront.ErrInvalidRequest)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.NextUserErrors != nil {
		userErrors := f.NextUserErrors
		f.NextUserErrors = nil
		return storefront.CreateCartResult{UserErrors: userErrors}, nil
	}

	subtotal := decimal.Zero
	currency := "USD"
	for _, line := range req.Lines {
		product, ok := f.productByVariant(line.MerchandiseID)
		if !ok {
			return storefront.CreateCartResult{
				UserErrors: []storefront.UserError{{
					Field:   []string{"lines", "merchandiseId"},
					Message: fmt.Sprintf("merchandise %s does not exist", line.MerchandiseID),
				}},
			}, nil
		}
		subtotal = subtotal.Add(product.Price.Amount.Mul(decimal.NewFromInt(int64(line.Quantity))))
		currency = product.Price.CurrencyCode
	}

	id := "gid://shop/Cart/" + uuid.NewString()
	cart := storefront.RemoteCart{
		ID:          id,
		CheckoutURL: "https://shop.example.com/checkout/" + uuid.NewString(),
		Subtotal:    catalog.Price{Amount: subtotal, CurrencyCode: currency},
		Total:       catalog.Price{Amount: subtotal, CurrencyCode: currency},
	}
	f.carts[id] = cart
	return storefront.CreateCartResult{Cart: &cart}, nil
}

func (f *Fake) productByVariant(variantID string) (catalog.ProductSnapshot, bool) {
	for _, product := range f.products {
		if product.VariantID == variantID {
			return product, true
		}
	}
	return catalog.ProductSnapshot{}, false
}

func (f *Fake) GetCart(ctx context.Context, id string) (storefront.RemoteCart, error) {
	if err := f.begin("get_cart"); err != nil {
		return storefront.RemoteCart{}, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return storefront.RemoteCart{}, ctxErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	cart, ok := f.carts[id]
	if !ok {
		return storefront.RemoteCart{}, fmt.Errorf("%w: %s", storefront.ErrCartNotFound, id)
	}
	return cart, nil
}
