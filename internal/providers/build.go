// Package providers turns provider configuration into a ready llm.Generator.
package providers

import (
	"context"
	"fmt"

	"github.com/Trigerxx3/cyber/internal/gemini"
	"github.com/Trigerxx3/cyber/internal/llm"
	"github.com/Trigerxx3/cyber/internal/openaicompat"

	"go.uber.org/zap"
)

const defaultRequestsPerMinute = 8

// New constructs one provider from its config.
func New(ctx context.Context, cfg llm.ProviderConfig, logger *zap.Logger) (llm.Generator, error) {
	switch cfg.Type {
	case llm.ProviderGemini:
		client, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:     cfg.APIKey,
			ModelName:  cfg.ModelName,
			MaxRetries: cfg.MaxRetries,
			RetryDelay: cfg.RetryDelay,
		}, logger)
		if err != nil {
			return nil, err
		}
		return client, nil
	case llm.ProviderOpenAI, llm.ProviderGroq, llm.ProviderOpenRouter:
		client, err := openaicompat.NewClient(openaicompat.Config{
			Provider:   cfg.Type,
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			ModelName:  cfg.ModelName,
			MaxRetries: cfg.MaxRetries,
			RetryDelay: cfg.RetryDelay,
		}, logger)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown provider type %q", cfg.Type)
	}
}

// Build wraps every configured provider in a rate limiter and chains them.
// Providers that fail to initialize are skipped; Build fails only when none remain.
func Build(ctx context.Context, configs []llm.ProviderConfig, maxFailures int, logger *zap.Logger) (*llm.MultiProviderClient, error) {
	generators := make([]llm.Generator, 0, len(configs))

	for i, providerCfg := range configs {
		provider, err := New(ctx, providerCfg, logger)
		if err != nil {
			logger.Error("Failed to create provider",
				zap.String("type", string(providerCfg.Type)),
				zap.Int("index", i),
				zap.Error(err))
			continue
		}

		rateLimit := providerCfg.RequestsPerMinute
		if rateLimit == 0 {
			rateLimit = defaultRequestsPerMinute
		}

		generators = append(generators, llm.NewRateLimitedProvider(provider, rateLimit, logger))

		logger.Info("Provider initialized",
			zap.String("type", string(providerCfg.Type)),
			zap.String("model", providerCfg.ModelName),
			zap.Int("rate_limit", rateLimit),
			zap.Int("index", i))
	}

	if len(generators) == 0 {
		return nil, fmt.Errorf("no providers could be initialized")
	}

	return llm.NewMultiProviderClient(generators, maxFailures, logger)
}
