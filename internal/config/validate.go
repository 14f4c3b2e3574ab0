package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate checks the settings every command depends on.
// Agent settings are checked separately by ValidateAgent since only the
// gateway needs them.
func (c *Config) Validate() error {
	// Portfolio API
	if c.Portfolio.APIURL == "" {
		return errors.New("portfolio.api_url is required")
	}
	if u, err := url.Parse(c.Portfolio.APIURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("portfolio.api_url %q is not an absolute URL", c.Portfolio.APIURL)
	}
	if c.Portfolio.Timeout <= 0 {
		return errors.New("portfolio.timeout must be positive")
	}
	if c.Portfolio.RequestsPerSecond < 0 {
		return errors.New("portfolio.requests_per_second must not be negative")
	}
	if c.Portfolio.CacheTTL < 0 {
		return errors.New("portfolio.cache_ttl must not be negative")
	}

	// Tool server
	if c.MCP.Mode != "read" && c.MCP.Mode != "manage" {
		return fmt.Errorf("mcp.mode must be 'read' or 'manage', got %q", c.MCP.Mode)
	}
	if c.MCP.Port <= 0 || c.MCP.Port > 65535 {
		return fmt.Errorf("mcp.port (%d) is out of range", c.MCP.Port)
	}

	// Gateway
	if c.Gateway.Port <= 0 || c.Gateway.Port > 65535 {
		return fmt.Errorf("gateway.port (%d) is out of range", c.Gateway.Port)
	}
	if c.Gateway.ChunkSize <= 0 {
		return errors.New("gateway.chunk_size must be positive")
	}
	if c.Gateway.ChunkDelay < 0 {
		return errors.New("gateway.chunk_delay must not be negative")
	}

	// Pricing config (optional, but if present, must be valid)
	for provider, models := range c.Pricing {
		for model, price := range models {
			if price.InputPerToken < 0 || price.OutputPerToken < 0 {
				return fmt.Errorf("pricing for provider '%s', model '%s' has negative token cost", provider, model)
			}
		}
	}
	return nil
}

// ValidateAgent checks the language model settings used by the gateway.
func (c *Config) ValidateAgent() error {
	switch c.Agent.Provider {
	case "openai":
		// local OpenAI-compatible servers accept any key
		if c.Agent.APIKey == "" && c.Agent.BaseURL == "" {
			return errors.New("agent.api_key is required when agent.base_url is not set")
		}
	case "gemini":
		if c.Agent.GeminiAPIKey == "" {
			return errors.New("agent.gemini_api_key is required when agent.provider is 'gemini'")
		}
	default:
		return fmt.Errorf("agent.provider must be 'openai' or 'gemini', got %q", c.Agent.Provider)
	}
	if c.Agent.Model == "" {
		return errors.New("agent.model is required")
	}
	if c.Agent.MaxToolRounds <= 0 {
		return errors.New("agent.max_tool_rounds must be a positive integer")
	}
	if c.Agent.Temperature < 0 || c.Agent.Temperature > 2 {
		return fmt.Errorf("agent.temperature (%.2f) must be between 0 and 2", c.Agent.Temperature)
	}
	return nil
}
