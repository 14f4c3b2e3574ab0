package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// PricingInfo holds cost details per token for a specific model.
type PricingInfo struct {
	InputPerToken  float64 `mapstructure:"input_per_token"`
	OutputPerToken float64 `mapstructure:"output_per_token"`
}

type Config struct {
	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"` // "text" or "json"
	} `mapstructure:"log"`

	Portfolio struct {
		APIURL            string        `mapstructure:"api_url"`
		Timeout           time.Duration `mapstructure:"timeout"`
		RequestsPerSecond float64       `mapstructure:"requests_per_second"`
		Burst             int           `mapstructure:"burst"`
		CacheTTL          time.Duration `mapstructure:"cache_ttl"` // 0 disables the snapshot cache
		OwnerName         string        `mapstructure:"owner_name"`
	} `mapstructure:"portfolio"`

	MCP struct {
		Name string `mapstructure:"name"`
		Host string `mapstructure:"host"`
		Port int    `mapstructure:"port"`
		Path string `mapstructure:"path"`
		Mode string `mapstructure:"mode"` // "read" or "manage"
	} `mapstructure:"mcp"`

	Gateway struct {
		Host        string        `mapstructure:"host"`
		Port        int           `mapstructure:"port"`
		ChunkSize   int           `mapstructure:"chunk_size"`
		ChunkDelay  time.Duration `mapstructure:"chunk_delay"`
		CORSOrigins []string      `mapstructure:"cors_origins"`
	} `mapstructure:"gateway"`

	Agent struct {
		Provider      string  `mapstructure:"provider"` // "openai" or "gemini"
		BaseURL       string  `mapstructure:"base_url"` // OpenRouter, LM Studio, ...
		APIKey        string  `mapstructure:"api_key"`
		GeminiAPIKey  string  `mapstructure:"gemini_api_key"`
		Model         string  `mapstructure:"model"`
		Temperature   float32 `mapstructure:"temperature"`
		MaxTokens     int     `mapstructure:"max_tokens"`
		MaxToolRounds int     `mapstructure:"max_tool_rounds"`
		ToolsURL      string  `mapstructure:"tools_url"` // MCP endpoint; empty disables remote tools
		Instructions  string  `mapstructure:"instructions"`
		WebTool       bool    `mapstructure:"web_tool"`
		UserAgent     string  `mapstructure:"user_agent"`
	} `mapstructure:"agent"`

	// Pricing: map[provider][model] = struct{input_per_token, output_per_token}
	Pricing map[string]map[string]PricingInfo `mapstructure:"pricing"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("portfolio.api_url", "http://localhost:3017/api")
	v.SetDefault("portfolio.timeout", 30*time.Second)
	v.SetDefault("portfolio.requests_per_second", 10.0)
	v.SetDefault("portfolio.burst", 5)
	v.SetDefault("portfolio.cache_ttl", 30*time.Second)
	v.SetDefault("portfolio.owner_name", "Hugo")

	v.SetDefault("mcp.name", "")
	v.SetDefault("mcp.host", "0.0.0.0")
	v.SetDefault("mcp.port", 8017)
	v.SetDefault("mcp.path", "/mcp")
	v.SetDefault("mcp.mode", "read")

	v.SetDefault("gateway.host", "0.0.0.0")
	v.SetDefault("gateway.port", 8025)
	v.SetDefault("gateway.chunk_size", 10)
	v.SetDefault("gateway.chunk_delay", 50*time.Millisecond)
	v.SetDefault("gateway.cors_origins", []string{"*"})

	v.SetDefault("agent.provider", "openai")
	v.SetDefault("agent.model", "gpt-4o-mini")
	v.SetDefault("agent.temperature", 0.7)
	v.SetDefault("agent.max_tokens", 1024)
	v.SetDefault("agent.max_tool_rounds", 6)
	v.SetDefault("agent.tools_url", "http://localhost:8017/mcp")
	v.SetDefault("agent.web_tool", true)
	v.SetDefault("agent.user_agent", "folio-agent/1.0")
}

// LoadConfig reads config.yaml from the working directory or ~/.config/folio
// and overlays FOLIO_* environment variables.
func LoadConfig() (*Config, error) {
	return load(viper.New(), "")
}

// LoadConfigFile is LoadConfig with an explicit file path.
func LoadConfigFile(path string) (*Config, error) {
	return load(viper.New(), path)
}

func load(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/folio")
	}

	v.SetEnvPrefix("FOLIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unprefixed names used by the existing deployment.
	v.BindEnv("portfolio.api_url", "FOLIO_PORTFOLIO_API_URL", "PORTFOLIO_API_URL")
	v.BindEnv("mcp.name", "FOLIO_MCP_NAME", "MCP_SERVER_NAME")
	v.BindEnv("mcp.host", "FOLIO_MCP_HOST", "MCP_SERVER_HOST")
	v.BindEnv("mcp.port", "FOLIO_MCP_PORT", "MCP_SERVER_PORT")
	v.BindEnv("agent.api_key", "FOLIO_AGENT_API_KEY", "OPENROUTER_API_KEY", "OPENAI_API_KEY")
	v.BindEnv("agent.gemini_api_key", "FOLIO_AGENT_GEMINI_API_KEY", "GEMINI_API_KEY")

	if err := v.ReadInConfig(); err != nil {
		// It's okay if the config file doesn't exist, defaults and env vars still apply
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &config, nil
}
