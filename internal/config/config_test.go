package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigFile_Defaults(t *testing.T) {
	cfg, err := LoadConfigFile(writeConfig(t, "log:\n  level: debug\n"))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "http://localhost:3017/api", cfg.Portfolio.APIURL)
	assert.Equal(t, 30*time.Second, cfg.Portfolio.Timeout)
	assert.Equal(t, 8017, cfg.MCP.Port)
	assert.Equal(t, "/mcp", cfg.MCP.Path)
	assert.Equal(t, 8025, cfg.Gateway.Port)
	assert.Equal(t, 10, cfg.Gateway.ChunkSize)
	assert.Equal(t, 50*time.Millisecond, cfg.Gateway.ChunkDelay)
	assert.InDelta(t, 0.7, cfg.Agent.Temperature, 0.0001)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigFile_Values(t *testing.T) {
	path := writeConfig(t, `
portfolio:
  api_url: https://example.com/api
  timeout: 5s
  cache_ttl: 0s
mcp:
  mode: manage
gateway:
  chunk_size: 4
pricing:
  openai:
    gpt-4o-mini:
      input_per_token: 0.00000015
      output_per_token: 0.0000006
`)
	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/api", cfg.Portfolio.APIURL)
	assert.Equal(t, 5*time.Second, cfg.Portfolio.Timeout)
	assert.Equal(t, time.Duration(0), cfg.Portfolio.CacheTTL)
	assert.Equal(t, "manage", cfg.MCP.Mode)
	assert.Equal(t, 4, cfg.Gateway.ChunkSize)
	assert.InDelta(t, 0.0000006, cfg.Pricing["openai"]["gpt-4o-mini"].OutputPerToken, 1e-12)
}

func TestLoadConfigFile_Env(t *testing.T) {
	t.Setenv("PORTFOLIO_API_URL", "http://portfolio:3017/api")
	t.Setenv("MCP_SERVER_PORT", "9000")
	t.Setenv("FOLIO_GATEWAY_PORT", "9100")
	t.Setenv("GEMINI_API_KEY", "g-key")

	cfg, err := LoadConfigFile(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, "http://portfolio:3017/api", cfg.Portfolio.APIURL)
	assert.Equal(t, 9000, cfg.MCP.Port)
	assert.Equal(t, 9100, cfg.Gateway.Port)
	assert.Equal(t, "g-key", cfg.Agent.GeminiAPIKey)
}

func TestLoadConfigFile_Missing(t *testing.T) {
	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := LoadConfigFile(writeConfig(t, "{}\n"))
	require.NoError(t, err)
	return cfg
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"empty api url", func(c *Config) { c.Portfolio.APIURL = "" }, "portfolio.api_url is required"},
		{"relative api url", func(c *Config) { c.Portfolio.APIURL = "/api" }, "not an absolute URL"},
		{"zero timeout", func(c *Config) { c.Portfolio.Timeout = 0 }, "portfolio.timeout"},
		{"bad mode", func(c *Config) { c.MCP.Mode = "write" }, "mcp.mode"},
		{"bad port", func(c *Config) { c.Gateway.Port = 70000 }, "gateway.port"},
		{"zero chunk", func(c *Config) { c.Gateway.ChunkSize = 0 }, "gateway.chunk_size"},
		{"negative price", func(c *Config) {
			c.Pricing = map[string]map[string]PricingInfo{"openai": {"m": {InputPerToken: -1}}}
		}, "negative token cost"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig(t)
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidateAgent(t *testing.T) {
	cfg := validConfig(t)
	cfg.Agent.APIKey = ""
	cfg.Agent.BaseURL = ""
	assert.ErrorContains(t, cfg.ValidateAgent(), "agent.api_key")

	cfg.Agent.BaseURL = "http://localhost:1234/v1"
	assert.NoError(t, cfg.ValidateAgent())

	cfg.Agent.Provider = "gemini"
	assert.ErrorContains(t, cfg.ValidateAgent(), "agent.gemini_api_key")
	cfg.Agent.GeminiAPIKey = "k"
	assert.NoError(t, cfg.ValidateAgent())

	cfg.Agent.Provider = "anthropic"
	assert.ErrorContains(t, cfg.ValidateAgent(), "agent.provider")
}

func TestLoadPromptContent_AbsolutePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.txt")
	require.NoError(t, os.WriteFile(path, []byte("be helpful"), 0o600))

	content, err := LoadPromptContent(path, "agent.txt")
	require.NoError(t, err)
	assert.Equal(t, "be helpful", content)
}

func TestLoadPromptContent_DefaultLocation(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	dir := filepath.Join(home, defaultPromptDir)
	require.NoError(t, os.MkdirAll(dir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "agent.txt"), []byte("hi"), 0o600))

	content, err := LoadPromptContent("", "agent.txt")
	require.NoError(t, err)
	assert.Equal(t, "hi", content)

	_, err = LoadPromptContent("missing.txt", "agent.txt")
	assert.ErrorContains(t, err, "prompt file not found")
}
