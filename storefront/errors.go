package storefront

import (
	"errors"
	"fmt"
)

var (
	// ErrProductNotFound is returned by GetProduct for an unknown product id.
	ErrProductNotFound = errors.New("product not found")
	// ErrCartNotFound is returned by GetCart for an unknown or expired cart id.
	ErrCartNotFound = errors.New("cart not found")
	// ErrInvalidRequest is returned for malformed requests before any
	// provider call is made.
	ErrInvalidRequest = errors.New("invalid storefront request")
)

// UpstreamError wraps a network, timeout, or provider-level failure so callers
// can distinguish infrastructure faults from domain errors.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("storefront %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NewUpstreamError tags err with the failing gateway operation.
func NewUpstreamError(op string, err error) *UpstreamError {
	return &UpstreamError{Op: op, Err: err}
}

// IsUpstream reports whether err is (or wraps) an UpstreamError.
func IsUpstream(err error) bool {
	var upstream *UpstreamError
	return errors.As(err, &upstream)
}
