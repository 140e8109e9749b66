// Package retry wraps a storefront gateway with deterministic, error-only
// retries for read operations. CreateCart is never retried: a timed-out
// create may have committed on the provider side, and replaying it would
// open duplicate checkout sessions.
package retry

import (
	"context"
	"errors"

	"github.com/semanticpay/shopagent/catalog"
	"github.com/semanticpay/shopagent/storefront"
)

// Config controls retry behavior for wrapped gateway reads.
type Config struct {
	MaxAttempts int
	ShouldRetry func(error) bool
}

// WrapGateway wraps a gateway with read retries.
func WrapGateway(gateway storefront.Gateway, cfg Config) storefront.Gateway {
	if gateway == nil {
		return nil
	}
	return &gatewayWrapper{
		next: gateway,
		cfg:  cfg,
	}
}

type gatewayWrapper struct {
	next storefront.Gateway
	cfg  Config
}

var _ storefront.Gateway = (*gatewayWrapper)(nil)

func (w *gatewayWrapper) SearchProducts(ctx context.Context, req storefront.SearchProductsRequest) ([]catalog.ProductSnapshot, error) {
	return retry(ctx, w.cfg, func() ([]catalog.ProductSnapshot, error) {
		return w.next.SearchProducts(ctx, req)
	})
}

func (w *gatewayWrapper) GetProduct(ctx context.Context, id string) (catalog.ProductSnapshot, error) {
	return retry(ctx, w.cfg, func() (catalog.ProductSnapshot, error) {
		return w.next.GetProduct(ctx, id)
	})
}

// CreateCart passes through unretried.
func (w *gatewayWrapper) CreateCart(ctx context.Context, req storefront.CreateCartRequest) (storefront.CreateCartResult, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return storefront.CreateCartResult{}, ctxErr
	}
	return w.next.CreateCart(ctx, req)
}

func (w *gatewayWrapper) GetCart(ctx context.Context, id string) (storefront.RemoteCart, error) {
	return retry(ctx, w.cfg, func() (storefront.RemoteCart, error) {
		return w.next.GetCart(ctx, id)
	})
}

func retry[T any](ctx context.Context, cfg Config, op func() (T, error)) (T, error) {
	var zero T
	if ctxErr := ctx.Err(); ctxErr != nil {
		return zero, ctxErr
	}

	attempts := normalizedAttempts(cfg.MaxAttempts)
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := op()
		if err == nil {
			return result, nil
		}
		lastErr = err
		if attempt == attempts || !shouldRetry(ctx, cfg, err) {
			break
		}
	}
	return zero, lastErr
}

func normalizedAttempts(maxAttempts int) int {
	if maxAttempts < 1 {
		return 1
	}
	return maxAttempts
}

func shouldRetry(ctx context.Context, cfg Config, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if cfg.ShouldRetry == nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return false
		}
		// Definitive domain answers are not transient faults.
		if errors.Is(err, storefront.ErrProductNotFound) ||
			errors.Is(err, storefront.ErrCartNotFound) ||
			errors.Is(err, storefront.ErrInvalidRequest) {
			return false
		}
		return true
	}
	return cfg.ShouldRetry(err)
}
