package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/semanticpay/shopagent/catalog"
	"github.com/semanticpay/shopagent/storefront"
	"github.com/semanticpay/shopagent/storefront/storefronttest"
)

func newServiceForTest(t *testing.T) (*Service, *storefronttest.Fake) {
	t.Helper()
	gateway := storefronttest.Seeded()
	service, err := NewService(gateway)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return service, gateway
}

func TestAddItem_TwiceSumsQuantityWithOneFetch(t *testing.T) {
	t.Parallel()

	service, gateway := newServiceForTest(t)
	state := NewState()

	if err := service.AddItem(context.Background(), state, "gid://shop/Product/1", 1, nil); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if err := service.AddItem(context.Background(), state, "gid://shop/Product/1", 2, nil); err != nil {
		t.Fatalf("second add: %v", err)
	}

	entry, ok := state.Entry("gid://shop/Product/1")
	if !ok {
		t.Fatal("expected entry after adds")
	}
	if entry.Quantity != 3 {
		t.Fatalf("unexpected quantity: %d", entry.Quantity)
	}
	if got := gateway.Calls("get_product"); got != 1 {
		t.Fatalf("expected one snapshot fetch, got %d", got)
	}
	if !state.RemoteStale() {
		t.Fatal("expected stale flag after mutation")
	}
}

func TestAddItem_SuppliedSnapshotSkipsFetch(t *testing.T) {
	t.Parallel()

	service, gateway := newServiceForTest(t)
	state := NewState()

	snapshot := catalog.ProductSnapshot{
		ID:        "gid://shop/Product/2",
		VariantID: "gid://shop/ProductVariant/2",
		Title:     "Navy Backpack",
		Price:     catalog.MustPrice("67.50", "USD"),
	}
	if err := service.AddItem(context.Background(), state, snapshot.ID, 1, &snapshot); err != nil {
		t.Fatalf("add with snapshot: %v", err)
	}
	if got := gateway.Calls("get_product"); got != 0 {
		t.Fatalf("expected no fetch, got %d", got)
	}
	entry, _ := state.Entry(snapshot.ID)
	if entry.Product.Title != "Navy Backpack" {
		t.Fatalf("unexpected cached snapshot: %+v", entry.Product)
	}
}

func TestAddItem_InvalidQuantity(t *testing.T) {
	t.Parallel()

	service, _ := newServiceForTest(t)
	state := NewState()

	for _, quantity := range []int{0, -1} {
		err := service.AddItem(context.Background(), state, "gid://shop/Product/1", quantity, nil)
		if !errors.Is(err, ErrInvalidQuantity) {
			t.Fatalf("quantity %d: expected ErrInvalidQuantity, got %v", quantity, err)
		}
	}
	if !state.Empty() {
		t.Fatal("invalid adds must not create entries")
	}
	if state.RemoteStale() {
		t.Fatal("invalid adds must not mark the remote stale")
	}
}

func TestAddItem_FailedLookupLeavesCartUntouched(t *testing.T) {
	t.Parallel()

	service, _ := newServiceForTest(t)
	state := NewState()

	err := service.AddItem(context.Background(), state, "gid://shop/Product/404", 1, nil)
	if !errors.Is(err, storefront.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
	if !state.Empty() {
		t.Fatal("failed lookup must not create a placeholder entry")
	}
	if state.RemoteStale() {
		t.Fatal("failed lookup must not mark the remote stale")
	}
}

func TestRemoveItem_AbsentIsNoOp(t *testing.T) {
	t.Parallel()

	service, _ := newServiceForTest(t)
	state := NewState()

	if service.RemoveItem(state, "gid://shop/Product/9") {
		t.Fatal("removing an absent product should report false")
	}
	if state.RemoteStale() {
		t.Fatal("no-op removal must not mark the remote stale")
	}
}

func TestRemoveItem_DeletesEntry(t *testing.T) {
	t.Parallel()

	service, _ := newServiceForTest(t)
	state := NewState()

	if err := service.AddItem(context.Background(), state, "gid://shop/Product/3", 2, nil); err != nil {
		t.Fatalf("add: %v", err)
	}
	if !service.RemoveItem(state, "gid://shop/Product/3") {
		t.Fatal("expected removal to report true")
	}
	if _, ok := state.Entry("gid://shop/Product/3"); ok {
		t.Fatal("entry should be gone after removal")
	}
}
