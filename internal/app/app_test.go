package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"folio/internal/agent"
	"folio/internal/config"
	"folio/internal/models"
	mock_store "folio/internal/store/mocks"
	"folio/internal/tools"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadConfigFile("")
	require.NoError(t, err)
	cfg.Portfolio.OwnerName = "Hugo"
	cfg.Agent.ToolsURL = ""
	cfg.Agent.WebTool = false
	return cfg
}

func TestNewApp_WithInjectedStore(t *testing.T) {
	m := new(mock_store.ProjectStore)
	m.On("Close").Return(nil).Once()

	a, err := NewApp(testConfig(t), m)
	require.NoError(t, err)
	assert.NotNil(t, a.Catalog)
	assert.NotNil(t, a.Manager)
	assert.Nil(t, a.Agent)

	require.NoError(t, a.Close())
	m.AssertExpectations(t)
}

func TestNewApp_PortfolioClient(t *testing.T) {
	cfg := testConfig(t)
	cfg.Portfolio.APIURL = "http://127.0.0.1:1/api"

	a, err := NewApp(cfg, nil)
	require.NoError(t, err)
	assert.NotNil(t, a.Store)
	assert.NoError(t, a.Close())
}

func TestToolServer_Modes(t *testing.T) {
	a, err := NewApp(testConfig(t), new(mock_store.ProjectStore))
	require.NoError(t, err)

	read, err := a.ToolServer(tools.ModeRead)
	require.NoError(t, err)
	assert.Equal(t, tools.ModeRead, read.Mode)

	manage, err := a.ToolServer(tools.ModeManage)
	require.NoError(t, err)
	assert.Equal(t, tools.ModeManage, manage.Mode)

	_, err = a.ToolServer("admin")
	assert.Error(t, err)
}

func TestInitAgent_InvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Agent.APIKey = ""
	cfg.Agent.BaseURL = ""

	a, err := NewApp(cfg, new(mock_store.ProjectStore))
	require.NoError(t, err)
	assert.Error(t, a.InitAgent(context.Background()))
	assert.Nil(t, a.Agent)
}

// End to end: the agent reaches the catalog through a real streamable HTTP
// tool server and a fake OpenAI endpoint.
func TestInitAgent_EndToEnd(t *testing.T) {
	m := new(mock_store.ProjectStore)
	m.On("AllProjects", mock.Anything).Return([]models.Project{{Category: "ai"}, {Category: "web"}}, nil)
	m.On("Close").Return(nil)

	cfg := testConfig(t)
	a, err := NewApp(cfg, m)
	require.NoError(t, err)

	mcpSrv, err := a.ToolServer(tools.ModeRead)
	require.NoError(t, err)
	toolsHTTP := httptest.NewServer(mcpSrv.Handler("/mcp"))
	defer toolsHTTP.Close()

	round := 0
	llm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		msg := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant}
		if round == 0 {
			assert.Len(t, req.Tools, 14)
			msg.ToolCalls = []openai.ToolCall{{ID: "c1", Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{Name: "get_all_categories", Arguments: "{}"}}}
		} else {
			last := req.Messages[len(req.Messages)-1]
			assert.Equal(t, openai.ChatMessageRoleTool, last.Role)
			msg.Content = "Categories: " + last.Content
		}
		round++
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{{Message: msg}},
			Usage:   openai.Usage{PromptTokens: 10, CompletionTokens: 2},
		})
	}))
	defer llm.Close()

	cfg.Agent.BaseURL = llm.URL
	cfg.Agent.ToolsURL = toolsHTTP.URL + "/mcp"

	require.NoError(t, a.InitAgent(context.Background()))
	require.NotNil(t, a.Agent)
	defer a.Close()

	out, err := a.Agent.Run(context.Background(), []agent.Message{{Role: agent.RoleUser, Content: "Which categories?"}})
	require.NoError(t, err)
	assert.Contains(t, out, "Categories: ")
	assert.Contains(t, out, `"ai"`)

	sum, err := a.CostTracker.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Calls)
}

func TestInitAgent_ToolServerDown(t *testing.T) {
	cfg := testConfig(t)
	cfg.Agent.BaseURL = "http://127.0.0.1:1/v1"
	cfg.Agent.ToolsURL = "http://127.0.0.1:1/mcp"
	cfg.Agent.WebTool = true

	a, err := NewApp(cfg, new(mock_store.ProjectStore))
	require.NoError(t, err)
	require.NoError(t, a.InitAgent(context.Background()))
	assert.Equal(t, []string{agent.WebToolName}, a.Agent.ToolNames())
}

func TestServe_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, "test server", "127.0.0.1:0", http.NotFoundHandler())
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
