package checkout

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/semanticpay/shopagent/catalog"
	"github.com/semanticpay/shopagent/storefront"
)

// Service performs local cart mutations. Snapshot lookups for unknown products
// go through the Gateway at most once per entry; concurrent lookups for the
// same product id across sessions are collapsed with singleflight.
type Service struct {
	gateway storefront.Gateway
	lookups singleflight.Group
}

func NewService(gateway storefront.Gateway) (*Service, error) {
	if gateway == nil {
		return nil, fmt.Errorf("new checkout service: nil gateway")
	}
	return &Service{gateway: gateway}, nil
}

// AddItem increments the quantity for a product, inserting a new entry when
// absent. An existing entry keeps its cached snapshot; a new entry uses the
// supplied snapshot or fetches one from the Gateway. A failed lookup leaves
// the cart untouched: no partial or placeholder entries.
func (s *Service) AddItem(ctx context.Context, state *State, productID string, quantity int, snapshot *catalog.ProductSnapshot) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: got %d for product %s", ErrInvalidQuantity, quantity, productID)
	}

	if entry, ok := state.local[productID]; ok {
		entry.Quantity += quantity
		state.local[productID] = entry
		state.markStale()
		return nil
	}

	var product catalog.ProductSnapshot
	if snapshot != nil {
		product = *snapshot
	} else {
		fetched, err, _ := s.lookups.Do(productID, func() (any, error) {
			return s.gateway.GetProduct(ctx, productID)
		})
		if err != nil {
			return err
		}
		product = fetched.(catalog.ProductSnapshot)
	}

	state.local[productID] = LocalCartEntry{Product: product, Quantity: quantity}
	state.markStale()
	return nil
}

// RemoveItem deletes the entry for a product id. Removing an absent id is a
// no-op and reports false without touching the staleness flag.
func (s *Service) RemoveItem(state *State, productID string) bool {
	if _, ok := state.local[productID]; !ok {
		return false
	}
	delete(state.local, productID)
	state.markStale()
	return true
}
