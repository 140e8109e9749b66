package toolset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/semanticpay/shopagent/catalog"
	"github.com/semanticpay/shopagent/checkout"
	"github.com/semanticpay/shopagent/session"
	"github.com/semanticpay/shopagent/storefront"
)

const (
	defaultSearchLimit  = 10
	defaultSectionLimit = 6

	// Scratch key for snapshots surfaced by earlier searches. Adding one of
	// these to the cart reuses the cached snapshot instead of refetching.
	scratchSeenProducts = "seen-products"
)

// Toolset binds the shopping tools to a gateway and the checkout engine.
type Toolset struct {
	gateway      storefront.Gateway
	service      *checkout.Service
	reconciler   *checkout.Reconciler
	searchLimit  int
	sectionLimit int
}

func New(gateway storefront.Gateway, service *checkout.Service, reconciler *checkout.Reconciler) (*Toolset, error) {
	if gateway == nil {
		return nil, fmt.Errorf("new toolset: nil gateway")
	}
	if service == nil {
		return nil, fmt.Errorf("new toolset: nil checkout service")
	}
	if reconciler == nil {
		return nil, fmt.Errorf("new toolset: nil reconciler")
	}
	return &Toolset{
		gateway:      gateway,
		service:      service,
		reconciler:   reconciler,
		searchLimit:  defaultSearchLimit,
		sectionLimit: defaultSectionLimit,
	}, nil
}

// RegisterAll registers every shopping tool on the registry.
func (t *Toolset) RegisterAll(r *Registry) {
	r.Register(Definition{
		Name:        ToolSearchProducts,
		Description: "Search the store catalog for products matching a query.",
		Params: []Param{
			{Name: "query", Type: "string", Description: "Free-text product search query.", Required: true},
			{Name: "first", Type: "integer", Description: "Maximum number of results."},
		},
	}, t.SearchProducts)
	r.Register(Definition{
		Name:        ToolSearchCategories,
		Description: "Expand the session's curated categories into product sections.",
	}, t.SearchCategories)
	r.Register(Definition{
		Name:        ToolSetCategories,
		Description: "Store a curated list of search categories for this session.",
		Params: []Param{
			{Name: "categories", Type: "array", Description: "Categories with title, subtitle, description, and query.", Required: true},
		},
	}, t.SetCategories)
	r.Register(Definition{
		Name:        ToolAddItemToCart,
		Description: "Add a product to the shopper's cart, or increase its quantity.",
		Params: []Param{
			{Name: "product_id", Type: "string", Description: "Product id from a search result.", Required: true},
			{Name: "quantity", Type: "integer", Description: "Units to add, default 1."},
		},
	}, t.AddItem)
	r.Register(Definition{
		Name:        ToolRemoveItemFromCart,
		Description: "Remove a product from the shopper's cart entirely.",
		Params: []Param{
			{Name: "product_id", Type: "string", Description: "Product id to remove.", Required: true},
		},
	}, t.RemoveItem)
	r.Register(Definition{
		Name:        ToolCreateStoreCart,
		Description: "Reconcile the cart with the store and return it with checkout link and totals.",
	}, t.CreateStoreCart)
	r.Register(Definition{
		Name:        ToolGetStoreCart,
		Description: "Re-read the reconciled store cart for up-to-date totals.",
	}, t.GetStoreCart)
}

// SearchProducts queries the catalog and caches the returned snapshots on the
// session so a follow-up add reuses them.
func (t *Toolset) SearchProducts(ctx context.Context, sess *session.Session, args map[string]any) (any, error) {
	query := stringArg(args, "query")
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", storefront.ErrInvalidRequest)
	}
	first := intArg(args, "first", t.searchLimit)

	snapshots, err := t.gateway.SearchProducts(ctx, storefront.SearchProductsRequest{Query: query, First: first})
	if err != nil {
		return nil, err
	}
	rememberProducts(sess, snapshots)
	return snapshots, nil
}

// SearchCategories expands the session's curated categories into product
// sections, querying the gateway for each category concurrently.
func (t *Toolset) SearchCategories(ctx context.Context, sess *session.Session, _ map[string]any) (any, error) {
	categories := sess.SearchCategories()
	if len(categories) == 0 {
		return []catalog.ProductSection{}, nil
	}

	sections := make([]catalog.ProductSection, len(categories))
	g, gctx := errgroup.WithContext(ctx)
	for i, category := range categories {
		g.Go(func() error {
			snapshots, err := t.gateway.SearchProducts(gctx, storefront.SearchProductsRequest{
				Query: category.Query,
				First: t.sectionLimit,
			})
			if err != nil {
				return fmt.Errorf("expand category %q: %w", category.Title, err)
			}
			sections[i] = catalog.ProductSection{
				Title:       category.Title,
				Subtitle:    category.Subtitle,
				Description: category.Description,
				Products:    snapshots,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, section := range sections {
		rememberProducts(sess, section.Products)
	}
	sess.SetProductSections(sections)
	return sections, nil
}

// SetCategories stores a curated category list on the session.
func (t *Toolset) SetCategories(_ context.Context, sess *session.Session, args map[string]any) (any, error) {
	raw, ok := args["categories"]
	if !ok {
		return nil, fmt.Errorf("%w: categories is required", storefront.ErrInvalidRequest)
	}

	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: categories are not encodable: %v", storefront.ErrInvalidRequest, err)
	}
	var categories []catalog.SearchCategory
	if err := json.Unmarshal(encoded, &categories); err != nil {
		return nil, fmt.Errorf("%w: malformed categories: %v", storefront.ErrInvalidRequest, err)
	}
	for _, category := range categories {
		if category.Title == "" || category.Query == "" {
			return nil, fmt.Errorf("%w: every category needs a title and a query", storefront.ErrInvalidRequest)
		}
	}

	sess.SetSearchCategories(categories)
	return StatusPayload{Status: "saved", Detail: fmt.Sprintf("%d categories", len(categories))}, nil
}

// AddItem adds a product to the session's local cart.
func (t *Toolset) AddItem(ctx context.Context, sess *session.Session, args map[string]any) (any, error) {
	productID := stringArg(args, "product_id")
	if productID == "" {
		return nil, fmt.Errorf("%w: product_id is required", storefront.ErrInvalidRequest)
	}
	quantity := intArg(args, "quantity", 1)

	snapshot := recallProduct(sess, productID)
	err := t.service.AddItem(ctx, sess.Checkout(), productID, quantity, snapshot)
	switch {
	case err == nil:
	case errors.Is(err, storefront.ErrProductNotFound):
		return StatusPayload{Status: "not_found", ProductID: productID}, nil
	default:
		return nil, err
	}

	entry, _ := sess.Checkout().Entry(productID)
	return StatusPayload{Status: "added", ProductID: productID, Quantity: entry.Quantity}, nil
}

// RemoveItem removes a product from the session's local cart.
func (t *Toolset) RemoveItem(_ context.Context, sess *session.Session, args map[string]any) (any, error) {
	productID := stringArg(args, "product_id")
	if productID == "" {
		return nil, fmt.Errorf("%w: product_id is required", storefront.ErrInvalidRequest)
	}

	if !t.service.RemoveItem(sess.Checkout(), productID) {
		return StatusPayload{Status: "not_in_cart", ProductID: productID}, nil
	}
	return StatusPayload{Status: "removed", ProductID: productID}, nil
}

// CreateStoreCart reconciles the local cart with the store and returns the
// remote cart with its checkout link and totals.
func (t *Toolset) CreateStoreCart(ctx context.Context, sess *session.Session, _ map[string]any) (any, error) {
	state := sess.Checkout()
	remote, err := t.reconciler.EnsureRemoteCart(ctx, state)
	if err != nil {
		return nil, err
	}
	if remote == nil {
		return StatusPayload{Status: "empty_cart", Detail: "the cart has no items yet"}, nil
	}
	return CartPayload{Remote: *remote, Entries: state.Entries()}, nil
}

// GetStoreCart re-reads the reconciled remote cart for fresh totals. It never
// creates a cart.
func (t *Toolset) GetStoreCart(ctx context.Context, sess *session.Session, _ map[string]any) (any, error) {
	state := sess.Checkout()
	remote, err := t.reconciler.RefreshRemoteCart(ctx, state)
	if err != nil {
		if errors.Is(err, storefront.ErrCartNotFound) {
			return StatusPayload{Status: "no_cart", Detail: "no store cart has been created yet"}, nil
		}
		return nil, err
	}
	return CartPayload{Remote: remote, Entries: state.Entries()}, nil
}

func rememberProducts(sess *session.Session, snapshots []catalog.ProductSnapshot) {
	seen, _ := sess.Scratch(scratchSeenProducts)
	cache, ok := seen.(map[string]catalog.ProductSnapshot)
	if !ok {
		cache = map[string]catalog.ProductSnapshot{}
	}
	for _, snapshot := range snapshots {
		cache[snapshot.ID] = snapshot
	}
	sess.PutScratch(scratchSeenProducts, cache)
}

func recallProduct(sess *session.Session, productID string) *catalog.ProductSnapshot {
	seen, _ := sess.Scratch(scratchSeenProducts)
	cache, ok := seen.(map[string]catalog.ProductSnapshot)
	if !ok {
		return nil
	}
	snapshot, ok := cache[productID]
	if !ok {
		return nil
	}
	return &snapshot
}

func stringArg(args map[string]any, key string) string {
	value, _ := args[key].(string)
	return value
}

func intArg(args map[string]any, key string, fallback int) int {
	switch value := args[key].(type) {
	case int:
		return value
	case int64:
		return int(value)
	case float64:
		return int(value)
	case json.Number:
		if n, err := value.Int64(); err == nil {
			return int(n)
		}
	}
	return fallback
}
