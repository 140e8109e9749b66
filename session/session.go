// Package session tracks per-user conversation state for the lifetime of the
// process. Sessions are created on first contact and never implicitly
// destroyed.
package session

import (
	"sync"

	"github.com/semanticpay/shopagent/catalog"
	"github.com/semanticpay/shopagent/checkout"
)

// Session owns one user's checkout state plus conversational scratch state.
// A session's turns must be serialized: callers hold Lock for the duration of
// a turn so concurrent requests for the same user cannot interleave cart
// mutations with reconciliation.
type Session struct {
	id     string
	userID string

	mu       sync.Mutex
	checkout *checkout.State
	scratch  map[string]any
}

const (
	scratchSearchCategories = "search-categories"
	scratchProductSections  = "product-sections"
)

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// UserID returns the user the session was created for.
func (s *Session) UserID() string { return s.userID }

// Lock serializes turns for this session. Sessions for different users are
// independent; only same-session turns contend here.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the turn lock.
func (s *Session) Unlock() { s.mu.Unlock() }

// Checkout returns the session's checkout state. Callers must hold Lock.
func (s *Session) Checkout() *checkout.State { return s.checkout }

// PutScratch stores an arbitrary conversational value. Callers must hold Lock.
func (s *Session) PutScratch(key string, value any) {
	s.scratch[key] = value
}

// Scratch returns a stored conversational value. Callers must hold Lock.
func (s *Session) Scratch(key string) (any, bool) {
	value, ok := s.scratch[key]
	return value, ok
}

// SetSearchCategories stores the curated category list for this session.
func (s *Session) SetSearchCategories(categories []catalog.SearchCategory) {
	cloned := make([]catalog.SearchCategory, len(categories))
	copy(cloned, categories)
	s.scratch[scratchSearchCategories] = cloned
}

// SearchCategories returns the curated category list, if set.
func (s *Session) SearchCategories() []catalog.SearchCategory {
	categories, ok := s.scratch[scratchSearchCategories].([]catalog.SearchCategory)
	if !ok {
		return nil
	}
	out := make([]catalog.SearchCategory, len(categories))
	copy(out, categories)
	return out
}

// SetProductSections caches the last expanded category sections.
func (s *Session) SetProductSections(sections []catalog.ProductSection) {
	cloned := make([]catalog.ProductSection, len(sections))
	copy(cloned, sections)
	s.scratch[scratchProductSections] = cloned
}

// ProductSections returns the last expanded category sections, if any.
func (s *Session) ProductSections() []catalog.ProductSection {
	sections, ok := s.scratch[scratchProductSections].([]catalog.ProductSection)
	if !ok {
		return nil
	}
	out := make([]catalog.ProductSection, len(sections))
	copy(out, sections)
	return out
}
