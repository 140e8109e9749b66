package checkout

import (
	"context"
	"fmt"

	"github.com/semanticpay/shopagent/storefront"
)

// Reconciler syncs the provider cart to the local intent cart. It is the
// single authoritative write path to State.remote.
type Reconciler struct {
	gateway storefront.Gateway
}

func NewReconciler(gateway storefront.Gateway) (*Reconciler, error) {
	if gateway == nil {
		return nil, fmt.Errorf("new reconciler: nil gateway")
	}
	return &Reconciler{gateway: gateway}, nil
}

// EnsureRemoteCart returns a remote cart matching the current local cart.
//
// An empty local cart yields (nil, nil) without any Gateway call: an empty
// intent must never open a provider checkout session. A fresh remote cart is
// returned unchanged. Otherwise a new cart is created from the local entries;
// on provider user errors the previous remote cart stays in place, the
// staleness flag stays set, and a PartialFailureError is returned.
func (r *Reconciler) EnsureRemoteCart(ctx context.Context, state *State) (*storefront.RemoteCart, error) {
	if state.Empty() {
		return nil, nil
	}
	if state.remote != nil && !state.remoteStale {
		cart := *state.remote
		return &cart, nil
	}

	lines := make([]storefront.CartLine, 0, len(state.local))
	for _, entry := range state.local {
		lines = append(lines, storefront.CartLine{
			MerchandiseID: entry.Product.VariantID,
			Quantity:      entry.Quantity,
		})
	}

	result, err := r.gateway.CreateCart(ctx, storefront.CreateCartRequest{Lines: lines})
	if err != nil {
		return nil, err
	}
	if len(result.UserErrors) > 0 {
		return nil, &PartialFailureError{UserErrors: result.UserErrors}
	}
	if result.Cart == nil {
		return nil, storefront.NewUpstreamError("create_cart", fmt.Errorf("provider returned neither cart nor user errors"))
	}

	cart := *result.Cart
	state.remote = &cart
	state.remoteStale = false
	returned := cart
	return &returned, nil
}

// RefreshRemoteCart re-reads the reconciled remote cart from the provider for
// up-to-date totals. It never assigns State.remote; EnsureRemoteCart remains
// the only write path. Returns storefront.ErrCartNotFound when no cart has
// been reconciled yet or the provider cart expired.
func (r *Reconciler) RefreshRemoteCart(ctx context.Context, state *State) (storefront.RemoteCart, error) {
	if state.remote == nil {
		return storefront.RemoteCart{}, fmt.Errorf("%w: no reconciled cart for this session", storefront.ErrCartNotFound)
	}
	return r.gateway.GetCart(ctx, state.remote.ID)
}
