// Package wire composes the storefront gateway, checkout engine, toolset,
// and agent runtime into the server's runtime dependencies.
package wire

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/semanticpay/shopagent/agentloop"
	"github.com/semanticpay/shopagent/checkout"
	"github.com/semanticpay/shopagent/internal/config"
	"github.com/semanticpay/shopagent/policy/retry"
	"github.com/semanticpay/shopagent/runtime/gemini"
	"github.com/semanticpay/shopagent/session"
	"github.com/semanticpay/shopagent/storefront"
	"github.com/semanticpay/shopagent/storefront/shopify"
	"github.com/semanticpay/shopagent/storefront/storefronttest"
	"github.com/semanticpay/shopagent/toolset"
	"github.com/semanticpay/shopagent/widget"
)

// Runtime contains the composed runtime dependencies for the server.
type Runtime struct {
	Sessions     *session.Manager
	Loop         *agentloop.Loop
	Materializer *widget.Materializer
	Gateway      storefront.Gateway
}

func New(cfg config.Config) (*Runtime, error) {
	return NewWithLogger(cfg, slog.Default())
}

func NewWithLogger(cfg config.Config, logger *slog.Logger) (*Runtime, error) {
	gateway, err := newGateway(cfg)
	if err != nil {
		return nil, err
	}
	gateway = retry.WrapGateway(gateway, retry.Config{MaxAttempts: cfg.GatewayRetries})

	service, err := checkout.NewService(gateway)
	if err != nil {
		return nil, fmt.Errorf("wire checkout service: %w", err)
	}
	reconciler, err := checkout.NewReconciler(gateway)
	if err != nil {
		return nil, fmt.Errorf("wire reconciler: %w", err)
	}

	tools, err := toolset.New(gateway, service, reconciler)
	if err != nil {
		return nil, fmt.Errorf("wire toolset: %w", err)
	}
	registry := toolset.NewRegistry()
	tools.RegisterAll(registry)

	runtime, err := newRuntime(cfg, registry)
	if err != nil {
		return nil, err
	}

	loop, err := agentloop.NewLoop(runtime, agentloop.Config{
		MaxAttempts: cfg.MaxTurnAttempts,
		Backoff:     cfg.TurnBackoff,
	}, newTurnEventLogSink(logger, cfg.LogFormat))
	if err != nil {
		return nil, fmt.Errorf("wire loop: %w", err)
	}

	return &Runtime{
		Sessions:     session.NewManager(),
		Loop:         loop,
		Materializer: widget.NewMaterializer(),
		Gateway:      gateway,
	}, nil
}

func newGateway(cfg config.Config) (storefront.Gateway, error) {
	switch cfg.StorefrontMode {
	case config.StorefrontModeShopify:
		client, err := shopify.New(shopify.Config{
			StoreURL:    cfg.ShopifyStoreURL,
			AccessToken: cfg.ShopifyAccessToken,
			Timeout:     cfg.ShopifyTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("wire shopify gateway: %w", err)
		}
		return client, nil
	case config.StorefrontModeFake:
		return storefronttest.Seeded(), nil
	default:
		return nil, fmt.Errorf("wire gateway: unsupported storefront mode %q", cfg.StorefrontMode)
	}
}

func newRuntime(cfg config.Config, registry *toolset.Registry) (agentloop.Runtime, error) {
	switch cfg.RuntimeMode {
	case config.RuntimeModeGemini:
		runtime, err := gemini.New(context.Background(), gemini.Config{
			APIKey: cfg.GeminiAPIKey,
			Model:  cfg.GeminiModel,
		}, registry)
		if err != nil {
			return nil, fmt.Errorf("wire gemini runtime: %w", err)
		}
		return runtime, nil
	case config.RuntimeModeMock:
		return newMockRuntime(registry), nil
	default:
		return nil, fmt.Errorf("wire runtime: unsupported runtime mode %q", cfg.RuntimeMode)
	}
}
