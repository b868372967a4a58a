package llm

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Jmatos87/queryflow/pkg/config"
)

// NewGenerator creates the configured generation client.
func NewGenerator(cfg *config.Config, logger *zap.Logger) (Generator, error) {
	clientCfg := &Config{
		BaseURL:   cfg.LLM.BaseURL,
		Model:     cfg.LLM.Model,
		APIKey:    cfg.LLM.APIKey,
		MaxTokens: cfg.LLM.MaxTokens,
		MaxRows:   cfg.Query.MaxResultRows,
	}

	switch cfg.LLM.Provider {
	case "", "openai":
		return NewClient(clientCfg, logger)
	case "anthropic":
		return NewAnthropicClient(clientCfg, logger)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLM.Provider)
	}
}
