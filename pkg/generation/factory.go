package generation

import (
	"fmt"

	"go.uber.org/zap"
)

// NewClient creates the provider selected by cfg.Provider. An empty
// provider defaults to OpenAI so that OpenAI-compatible local endpoints
// keep working with just a BaseURL override.
func NewClient(cfg *Config, logger *zap.Logger) (Client, error) {
	switch cfg.Provider {
	case "", "openai":
		return NewOpenAIClient(cfg, logger)
	case "anthropic":
		return NewAnthropicClient(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown generation provider %q", cfg.Provider)
	}
}
