// Package checkout owns the intent cart built from conversational actions and
// its reconciliation against the provider-owned remote cart.
package checkout

import (
	"github.com/semanticpay/shopagent/catalog"
	"github.com/semanticpay/shopagent/storefront"
)

// LocalCartEntry pairs a cached product snapshot with the intended quantity.
// Quantity is always >= 1; an entry at zero is deleted, never stored.
type LocalCartEntry struct {
	Product  catalog.ProductSnapshot `json:"product"`
	Quantity int                     `json:"quantity"`
}

// State tracks the local intent cart, the last reconciled remote cart, and
// whether the remote has drifted behind local mutations.
//
// Fields are unexported so the only write path to the remote cart is
// Reconciler.EnsureRemoteCart and the only local mutations are the Service
// operations in this package.
type State struct {
	local       map[string]LocalCartEntry
	remote      *storefront.RemoteCart
	remoteStale bool
}

func NewState() *State {
	return &State{local: map[string]LocalCartEntry{}}
}

// Empty reports whether the local cart has no entries.
func (s *State) Empty() bool {
	return len(s.local) == 0
}

// Len returns the number of distinct products in the local cart.
func (s *State) Len() int {
	return len(s.local)
}

// Entry returns the local entry for a product id.
func (s *State) Entry(productID string) (LocalCartEntry, bool) {
	entry, ok := s.local[productID]
	return entry, ok
}

// Entries returns a copy of the local cart entries keyed by product id.
func (s *State) Entries() map[string]LocalCartEntry {
	out := make(map[string]LocalCartEntry, len(s.local))
	for id, entry := range s.local {
		out[id] = entry
	}
	return out
}

// Remote returns the last reconciled remote cart, if any. The returned value
// is a copy; the state's remote cart cannot be mutated through it.
func (s *State) Remote() (storefront.RemoteCart, bool) {
	if s.remote == nil {
		return storefront.RemoteCart{}, false
	}
	return *s.remote, true
}

// RemoteStale reports whether the local cart has mutated since the last
// successful reconciliation.
func (s *State) RemoteStale() bool {
	return s.remoteStale
}

// markStale records a local mutation. Cleared only by a successful
// reconciliation that used the current local snapshot.
func (s *State) markStale() {
	s.remoteStale = true
}
