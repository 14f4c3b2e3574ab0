package agent

import (
	"context"
	"fmt"
	"strings"

	"folio/internal/config"
)

// NewChatModel builds the provider named by cfg.Agent.Provider.
func NewChatModel(ctx context.Context, cfg *config.Config) (ChatModel, error) {
	a := cfg.Agent
	switch strings.ToLower(a.Provider) {
	case "openai":
		m, err := NewOpenAIModel(OpenAIOptions{
			APIKey:      a.APIKey,
			BaseURL:     a.BaseURL,
			Model:       a.Model,
			Temperature: a.Temperature,
			MaxTokens:   a.MaxTokens,
		})
		if err != nil {
			return nil, err
		}
		return m, nil
	case "gemini":
		m, err := NewGeminiModel(ctx, GeminiOptions{
			APIKey:      a.GeminiAPIKey,
			Model:       a.Model,
			Temperature: a.Temperature,
			MaxTokens:   a.MaxTokens,
		})
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown agent provider: %s (supported: openai, gemini)", a.Provider)
	}
}

// ProviderPricing returns the per-model pricing for the configured provider.
func ProviderPricing(cfg *config.Config, model ChatModel) map[string]config.PricingInfo {
	if p, ok := cfg.Pricing[strings.ToLower(cfg.Agent.Provider)]; ok {
		return p
	}
	return cfg.Pricing[model.Name()]
}
