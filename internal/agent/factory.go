package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/myrontuttle/storytime/internal/config"
	"github.com/myrontuttle/storytime/internal/core"
	"github.com/myrontuttle/storytime/internal/storage"
)

func commonOptions(cfg *config.Config, baseURL, model string, logger *slog.Logger) []Option {
	opts := []Option{
		WithAPIConfig(baseURL, model),
		WithRetry(cfg.Limits.RetryPolicy()),
		WithRateLimit(cfg.Limits.RateLimit.RequestsPerMinute, cfg.Limits.RateLimit.BurstSize),
	}
	if logger != nil {
		opts = append(opts, WithLogger(logger))
	}
	return opts
}

// NewTextGenerator builds the configured text provider. When cache is not
// nil and a cache TTL is configured, responses are cached in it.
func NewTextGenerator(ctx context.Context, cfg *config.Config, cache storage.Storage, logger *slog.Logger) (TextGenerator, error) {
	opts := commonOptions(cfg, cfg.Text.BaseURL, cfg.Text.Model, logger)
	opts = append(opts, WithTimeout(cfg.Text.Timeout))

	var gen TextGenerator
	switch cfg.Text.Provider {
	case APITypeOpenAI, APITypeAnthropic:
		gen = NewClient(cfg.Text.Provider, cfg.Text.APIKey, opts...)
	case providerGemini:
		g, err := NewGeminiClient(ctx, cfg.Text.APIKey, opts...)
		if err != nil {
			return nil, err
		}
		gen = g
	case "mock":
		gen = NewMockClient()
	default:
		return nil, fmt.Errorf("text provider %q: %w", cfg.Text.Provider, core.ErrUnknownProvider)
	}

	if cache != nil && cfg.Text.CacheTTL > 0 {
		return WithCache(gen, NewResponseCache(cache, cfg.Text.CacheTTL)), nil
	}
	return gen, nil
}

// NewImageGenerator builds the configured image provider.
func NewImageGenerator(cfg *config.Config, logger *slog.Logger) (ImageGenerator, error) {
	switch cfg.Image.Provider {
	case APITypeOpenAI:
		opts := commonOptions(cfg, cfg.Image.BaseURL, cfg.Image.Model, logger)
		opts = append(opts, WithTimeout(cfg.Image.Timeout))
		return NewImageClient(cfg.Image.APIKey, cfg.Image.Size, opts...), nil
	case providerPollinations:
		return NewPollinations(cfg.Image.BaseURL, cfg.Image.Model, cfg.Image.Size), nil
	case "mock":
		return NewMockClient(), nil
	default:
		return nil, fmt.Errorf("image provider %q: %w", cfg.Image.Provider, core.ErrUnknownProvider)
	}
}
