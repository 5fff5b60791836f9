package advisor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dinerozz/focus-session-backend/config"
)

// NewFromConfig wires the configured provider. Without an API key the advisor
// runs in fallback-only mode.
func NewFromConfig(ctx context.Context, cfg config.AdvisorConfig, logger *slog.Logger) (*Advisor, error) {
	if cfg.APIKey == "" {
		logger.Warn("advisor API key not set, coaching messages will use fallbacks")
		return NewAdvisor(nil, cfg.Timeout, logger), nil
	}

	switch cfg.Provider {
	case "openai":
		return NewAdvisor(NewOpenAIGenerator(cfg.APIKey, cfg.BaseURL, cfg.Model), cfg.Timeout, logger), nil
	case "gemini", "":
		generator, err := NewGeminiGenerator(ctx, cfg.APIKey, cfg.BaseURL, cfg.Model)
		if err != nil {
			return nil, err
		}
		return NewAdvisor(generator, cfg.Timeout, logger), nil
	default:
		return nil, fmt.Errorf("unsupported advisor provider: %s (supported: gemini, openai)", cfg.Provider)
	}
}
