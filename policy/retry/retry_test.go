package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/semanticpay/shopagent/catalog"
	"github.com/semanticpay/shopagent/storefront"
)

// flakyGateway fails each operation a configured number of times before
// succeeding.
type flakyGateway struct {
	failures int
	calls    map[string]int
	err      error
}

func newFlakyGateway(failures int, err error) *flakyGateway {
	return &flakyGateway{
		failures: failures,
		calls:    map[string]int{},
		err:      err,
	}
}

func (g *flakyGateway) attempt(op string) error {
	g.calls[op]++
	if g.calls[op] <= g.failures {
		return g.err
	}
	return nil
}

func (g *flakyGateway) SearchProducts(_ context.Context, _ storefront.SearchProductsRequest) ([]catalog.ProductSnapshot, error) {
	if err := g.attempt("search_products"); err != nil {
		return nil, err
	}
	return []catalog.ProductSnapshot{{ID: "gid://shop/Product/1"}}, nil
}

func (g *flakyGateway) GetProduct(_ context.Context, id string) (catalog.ProductSnapshot, error) {
	if err := g.attempt("get_product"); err != nil {
		return catalog.ProductSnapshot{}, err
	}
	return catalog.ProductSnapshot{ID: id}, nil
}

func (g *flakyGateway) CreateCart(_ context.Context, _ storefront.CreateCartRequest) (storefront.CreateCartResult, error) {
	if err := g.attempt("create_cart"); err != nil {
		return storefront.CreateCartResult{}, err
	}
	return storefront.CreateCartResult{Cart: &storefront.RemoteCart{ID: "gid://shop/Cart/1"}}, nil
}

func (g *flakyGateway) GetCart(_ context.Context, id string) (storefront.RemoteCart, error) {
	if err := g.attempt("get_cart"); err != nil {
		return storefront.RemoteCart{}, err
	}
	return storefront.RemoteCart{ID: id}, nil
}

func TestWrapGateway_ReadsFailTwiceThenSucceed(t *testing.T) {
	t.Parallel()

	gateway := newFlakyGateway(2, storefront.NewUpstreamError("search_products", errors.New("transient")))
	wrapped := WrapGateway(gateway, Config{MaxAttempts: 3})

	results, err := wrapped.SearchProducts(context.Background(), storefront.SearchProductsRequest{Query: "tote"})
	if err != nil {
		t.Fatalf("search returned error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("unexpected results: %+v", results)
	}
	if gateway.calls["search_products"] != 3 {
		t.Fatalf("unexpected attempts: %d", gateway.calls["search_products"])
	}
}

func TestWrapGateway_AlwaysFailReturnsLastError(t *testing.T) {
	t.Parallel()

	lastErr := storefront.NewUpstreamError("get_cart", errors.New("still down"))
	gateway := newFlakyGateway(10, lastErr)
	wrapped := WrapGateway(gateway, Config{MaxAttempts: 4})

	_, err := wrapped.GetCart(context.Background(), "gid://shop/Cart/1")
	if !errors.Is(err, lastErr) {
		t.Fatalf("expected last error %v, got %v", lastErr, err)
	}
	if gateway.calls["get_cart"] != 4 {
		t.Fatalf("unexpected attempts: %d", gateway.calls["get_cart"])
	}
}

func TestWrapGateway_CreateCartIsNeverRetried(t *testing.T) {
	t.Parallel()

	gateway := newFlakyGateway(1, storefront.NewUpstreamError("create_cart", errors.New("timeout")))
	wrapped := WrapGateway(gateway, Config{MaxAttempts: 5})

	_, err := wrapped.CreateCart(context.Background(), storefront.CreateCartRequest{
		Lines: []storefront.CartLine{{MerchandiseID: "gid://shop/ProductVariant/1", Quantity: 1}},
	})
	if err == nil {
		t.Fatal("expected error from first create attempt")
	}
	if gateway.calls["create_cart"] != 1 {
		t.Fatalf("create cart must run exactly once, got %d", gateway.calls["create_cart"])
	}
}

func TestWrapGateway_DomainErrorsAreNotRetried(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
	}{
		{name: "product_not_found", err: fmt.Errorf("%w: x", storefront.ErrProductNotFound)},
		{name: "cart_not_found", err: fmt.Errorf("%w: x", storefront.ErrCartNotFound)},
		{name: "invalid_request", err: fmt.Errorf("%w: x", storefront.ErrInvalidRequest)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			gateway := newFlakyGateway(10, tc.err)
			wrapped := WrapGateway(gateway, Config{MaxAttempts: 5})

			_, err := wrapped.GetProduct(context.Background(), "gid://shop/Product/404")
			if !errors.Is(err, tc.err) {
				t.Fatalf("expected %v, got %v", tc.err, err)
			}
			if gateway.calls["get_product"] != 1 {
				t.Fatalf("unexpected attempts: %d", gateway.calls["get_product"])
			}
		})
	}
}

func TestWrapGateway_ShouldRetryOverridesDefault(t *testing.T) {
	t.Parallel()

	gateway := newFlakyGateway(10, errors.New("retryable by default"))
	wrapped := WrapGateway(gateway, Config{
		MaxAttempts: 5,
		ShouldRetry: func(error) bool { return false },
	})

	if _, err := wrapped.SearchProducts(context.Background(), storefront.SearchProductsRequest{Query: "hat"}); err == nil {
		t.Fatal("expected error")
	}
	if gateway.calls["search_products"] != 1 {
		t.Fatalf("unexpected attempts: %d", gateway.calls["search_products"])
	}
}

func TestWrapGateway_ContextDoneStopsWithoutAttempt(t *testing.T) {
	t.Parallel()

	gateway := newFlakyGateway(0, nil)
	wrapped := WrapGateway(gateway, Config{MaxAttempts: 5})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := wrapped.GetProduct(ctx, "gid://shop/Product/1"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if gateway.calls["get_product"] != 0 {
		t.Fatalf("unexpected attempts: %d", gateway.calls["get_product"])
	}
}
