// internal/annotate/factory.go
package annotate

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/navscribe/internal/config"
)

// NewGenerator creates the Generator for the configured provider. ProviderNone yields
// a nil Generator.
func NewGenerator(ctx context.Context, cfg config.AnnotationConfig, logger *zap.Logger) (Generator, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		gen, err := NewGeminiGenerator(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return gen, nil
	case config.ProviderNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown or unsupported description provider configured: '%s'. Supported: [%s %s]",
			cfg.Provider, config.ProviderGemini, config.ProviderNone)
	}
}

// NewFromConfig builds a ready Adapter. A generator that can't be created (a missing
// API key, usually) is logged and the adapter runs in fallback-only mode, matching
// how a failing generator is treated at call time.
func NewFromConfig(ctx context.Context, cfg config.AnnotationConfig, logger *zap.Logger) *Adapter {
	gen, err := NewGenerator(ctx, cfg, logger)
	if err != nil {
		logger.Warn("Description generator unavailable; descriptions will use the fallback text.", zap.Error(err))
		gen = nil
	}
	return NewAdapter(gen, logger, WithTimeout(cfg.Timeout), WithRateLimit(cfg.RateLimit))
}
