package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultHTTPAddr        = "127.0.0.1:8080"
	defaultShutdownTimeout = 5 * time.Second
	defaultLogFormat       = LogFormatText
	defaultLogLevel        = slog.LevelInfo
	defaultRuntimeMode     = RuntimeModeMock
	defaultGeminiModel     = "gemini-2.5-flash"
	defaultStorefrontMode  = StorefrontModeFake
	defaultShopifyTimeout  = 15 * time.Second
	defaultMaxTurnAttempts = 3
	defaultTurnBackoff     = 1 * time.Second
	defaultGatewayRetries  = 2
)

type RuntimeMode string

const (
	RuntimeModeMock   RuntimeMode = "mock"
	RuntimeModeGemini RuntimeMode = "gemini"
)

type StorefrontMode string

const (
	StorefrontModeFake    StorefrontMode = "fake"
	StorefrontModeShopify StorefrontMode = "shopify"
)

type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// Config controls HTTP boot, runtime selection, and storefront wiring.
type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration
	LogFormat       LogFormat
	LogLevel        slog.Level

	RuntimeMode  RuntimeMode
	GeminiAPIKey string
	GeminiModel  string

	StorefrontMode     StorefrontMode
	ShopifyStoreURL    string
	ShopifyAccessToken string
	ShopifyTimeout     time.Duration

	MaxTurnAttempts int
	TurnBackoff     time.Duration
	GatewayRetries  int
}

// Load reads runtime configuration from environment variables.
func Load() (Config, error) {
	cfg := Default()

	if addr := os.Getenv("SHOPAGENT_HTTP_ADDR"); addr != "" {
		cfg.HTTPAddr = addr
	}

	if timeout := strings.TrimSpace(os.Getenv("SHOPAGENT_SHUTDOWN_TIMEOUT")); timeout != "" {
		parsed, err := parsePositiveDuration("SHOPAGENT_SHUTDOWN_TIMEOUT", timeout)
		if err != nil {
			return Config{}, err
		}
		cfg.ShutdownTimeout = parsed
	}
	if level := strings.TrimSpace(os.Getenv("SHOPAGENT_LOG_LEVEL")); level != "" {
		parsed, err := parseLogLevel(level)
		if err != nil {
			return Config{}, err
		}
		cfg.LogLevel = parsed
	}
	if format := strings.TrimSpace(os.Getenv("SHOPAGENT_LOG_FORMAT")); format != "" {
		parsed, err := parseLogFormat(format)
		if err != nil {
			return Config{}, err
		}
		cfg.LogFormat = parsed
	}

	if mode := strings.TrimSpace(os.Getenv("SHOPAGENT_RUNTIME_MODE")); mode != "" {
		cfg.RuntimeMode = RuntimeMode(mode)
	}
	if key := strings.TrimSpace(os.Getenv("SHOPAGENT_GEMINI_API_KEY")); key != "" {
		cfg.GeminiAPIKey = key
	}
	if model := strings.TrimSpace(os.Getenv("SHOPAGENT_GEMINI_MODEL")); model != "" {
		cfg.GeminiModel = model
	}

	if mode := strings.TrimSpace(os.Getenv("SHOPAGENT_STOREFRONT_MODE")); mode != "" {
		cfg.StorefrontMode = StorefrontMode(mode)
	}
	if storeURL := strings.TrimSpace(os.Getenv("SHOPAGENT_SHOPIFY_STORE_URL")); storeURL != "" {
		cfg.ShopifyStoreURL = storeURL
	}
	if token := strings.TrimSpace(os.Getenv("SHOPAGENT_SHOPIFY_ACCESS_TOKEN")); token != "" {
		cfg.ShopifyAccessToken = token
	}
	if timeout := strings.TrimSpace(os.Getenv("SHOPAGENT_SHOPIFY_TIMEOUT")); timeout != "" {
		parsed, err := parsePositiveDuration("SHOPAGENT_SHOPIFY_TIMEOUT", timeout)
		if err != nil {
			return Config{}, err
		}
		cfg.ShopifyTimeout = parsed
	}

	if attempts := strings.TrimSpace(os.Getenv("SHOPAGENT_MAX_TURN_ATTEMPTS")); attempts != "" {
		parsed, err := parsePositiveInt("SHOPAGENT_MAX_TURN_ATTEMPTS", attempts)
		if err != nil {
			return Config{}, err
		}
		cfg.MaxTurnAttempts = parsed
	}
	if backoff := strings.TrimSpace(os.Getenv("SHOPAGENT_TURN_BACKOFF")); backoff != "" {
		parsed, err := parsePositiveDuration("SHOPAGENT_TURN_BACKOFF", backoff)
		if err != nil {
			return Config{}, err
		}
		cfg.TurnBackoff = parsed
	}
	if retries := strings.TrimSpace(os.Getenv("SHOPAGENT_GATEWAY_RETRIES")); retries != "" {
		parsed, err := parsePositiveInt("SHOPAGENT_GATEWAY_RETRIES", retries)
		if err != nil {
			return Config{}, err
		}
		cfg.GatewayRetries = parsed
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func Default() Config {
	return Config{
		HTTPAddr:        defaultHTTPAddr,
		ShutdownTimeout: defaultShutdownTimeout,
		LogFormat:       defaultLogFormat,
		LogLevel:        defaultLogLevel,
		RuntimeMode:     defaultRuntimeMode,
		GeminiModel:     defaultGeminiModel,
		StorefrontMode:  defaultStorefrontMode,
		ShopifyTimeout:  defaultShopifyTimeout,
		MaxTurnAttempts: defaultMaxTurnAttempts,
		TurnBackoff:     defaultTurnBackoff,
		GatewayRetries:  defaultGatewayRetries,
	}
}

func (c Config) Validate() error {
	switch c.RuntimeMode {
	case RuntimeModeMock:
	case RuntimeModeGemini:
		if strings.TrimSpace(c.GeminiAPIKey) == "" {
			return errors.New("validate config: gemini mode requires SHOPAGENT_GEMINI_API_KEY")
		}
		if strings.TrimSpace(c.GeminiModel) == "" {
			return errors.New("validate config: gemini mode requires SHOPAGENT_GEMINI_MODEL")
		}
	default:
		return fmt.Errorf(
			"validate config: unsupported SHOPAGENT_RUNTIME_MODE %q (allowed: %q, %q)",
			c.RuntimeMode,
			RuntimeModeMock,
			RuntimeModeGemini,
		)
	}

	switch c.StorefrontMode {
	case StorefrontModeFake:
	case StorefrontModeShopify:
		if strings.TrimSpace(c.ShopifyStoreURL) == "" {
			return errors.New("validate config: shopify mode requires SHOPAGENT_SHOPIFY_STORE_URL")
		}
		if strings.TrimSpace(c.ShopifyAccessToken) == "" {
			return errors.New("validate config: shopify mode requires SHOPAGENT_SHOPIFY_ACCESS_TOKEN")
		}
		if c.ShopifyTimeout <= 0 {
			return errors.New("validate config: shopify mode requires SHOPAGENT_SHOPIFY_TIMEOUT > 0")
		}
	default:
		return fmt.Errorf(
			"validate config: unsupported SHOPAGENT_STOREFRONT_MODE %q (allowed: %q, %q)",
			c.StorefrontMode,
			StorefrontModeFake,
			StorefrontModeShopify,
		)
	}

	if c.MaxTurnAttempts <= 0 {
		return errors.New("validate config: SHOPAGENT_MAX_TURN_ATTEMPTS must be > 0")
	}
	if c.TurnBackoff <= 0 {
		return errors.New("validate config: SHOPAGENT_TURN_BACKOFF must be > 0")
	}
	if c.GatewayRetries <= 0 {
		return errors.New("validate config: SHOPAGENT_GATEWAY_RETRIES must be > 0")
	}

	switch c.LogLevel {
	case slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError:
	default:
		return fmt.Errorf(
			"validate config: unsupported SHOPAGENT_LOG_LEVEL %q (allowed: %q, %q, %q, %q)",
			c.LogLevel.String(),
			slog.LevelDebug.String(),
			slog.LevelInfo.String(),
			slog.LevelWarn.String(),
			slog.LevelError.String(),
		)
	}

	switch c.LogFormat {
	case LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf(
			"validate config: unsupported SHOPAGENT_LOG_FORMAT %q (allowed: %q, %q)",
			c.LogFormat,
			LogFormatText,
			LogFormatJSON,
		)
	}

	return nil
}

func parsePositiveDuration(name, input string) (time.Duration, error) {
	parsed, err := time.ParseDuration(input)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("parse %s: value must be > 0", name)
	}
	return parsed, nil
}

func parsePositiveInt(name, input string) (int, error) {
	parsed, err := strconv.Atoi(input)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("parse %s: value must be > 0", name)
	}
	return parsed, nil
}

func parseLogLevel(input string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf(
			"parse SHOPAGENT_LOG_LEVEL: unsupported value %q (allowed: %q, %q, %q, %q)",
			input,
			slog.LevelDebug.String(),
			slog.LevelInfo.String(),
			slog.LevelWarn.String(),
			slog.LevelError.String(),
		)
	}
}

func parseLogFormat(input string) (LogFormat, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case string(LogFormatText):
		return LogFormatText, nil
	case string(LogFormatJSON):
		return LogFormatJSON, nil
	default:
		return "", fmt.Errorf(
			"parse SHOPAGENT_LOG_FORMAT: unsupported value %q (allowed: %q, %q)",
			input,
			LogFormatText,
			LogFormatJSON,
		)
	}
}
