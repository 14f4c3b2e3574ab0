package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIModel_Complete(t *testing.T) {
	var got openai.ChatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		resp := openai.ChatCompletionResponse{
			ID:     "chatcmpl-1",
			Object: "chat.completion",
			Model:  "gpt-4o-mini",
			Choices: []openai.ChatCompletionChoice{{
				Message: openai.ChatCompletionMessage{
					Role: openai.ChatMessageRoleAssistant,
					ToolCalls: []openai.ToolCall{{
						ID:       "call_1",
						Type:     openai.ToolTypeFunction,
						Function: openai.FunctionCall{Name: "get_projects_by_year", Arguments: `{"year":2023}`},
					}},
				},
				FinishReason: openai.FinishReasonToolCalls,
			}},
			Usage: openai.Usage{PromptTokens: 42, CompletionTokens: 7, TotalTokens: 49},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	m, err := NewOpenAIModel(OpenAIOptions{APIKey: "test-key", BaseURL: server.URL, Model: "gpt-4o-mini", Temperature: 0.7, MaxTokens: 256})
	require.NoError(t, err)

	comp, err := m.Complete(context.Background(), CompletionRequest{
		System: "system prompt",
		Messages: []Message{
			{Role: RoleUser, Content: "What did you build in 2023?"},
			{Role: RoleAssistant, ToolCalls: []ToolCall{{ID: "old", Name: "get_all_categories", Arguments: "{}"}}},
			{Role: RoleTool, Content: `["ai"]`, ToolCallID: "old", Name: "get_all_categories"},
		},
		Tools: []ToolSpec{{Name: "get_projects_by_year", Description: "by year", Parameters: map[string]any{"type": "object"}}},
	})
	require.NoError(t, err)

	require.Len(t, got.Messages, 4)
	assert.Equal(t, openai.ChatMessageRoleSystem, got.Messages[0].Role)
	assert.Equal(t, "system prompt", got.Messages[0].Content)
	assert.Equal(t, "old", got.Messages[2].ToolCalls[0].ID)
	assert.Equal(t, openai.ChatMessageRoleTool, got.Messages[3].Role)
	assert.Equal(t, "old", got.Messages[3].ToolCallID)
	require.Len(t, got.Tools, 1)
	assert.Equal(t, "get_projects_by_year", got.Tools[0].Function.Name)
	assert.Equal(t, 256, got.MaxTokens)

	assert.Equal(t, Usage{InputTokens: 42, OutputTokens: 7}, comp.Usage)
	require.Len(t, comp.Message.ToolCalls, 1)
	assert.Equal(t, ToolCall{ID: "call_1", Name: "get_projects_by_year", Arguments: `{"year":2023}`}, comp.Message.ToolCalls[0])
}

func TestOpenAIModel_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	m, err := NewOpenAIModel(OpenAIOptions{APIKey: "k", BaseURL: server.URL, Model: "gpt-4o-mini"})
	require.NoError(t, err)

	_, err = m.Complete(context.Background(), CompletionRequest{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad key")
}

func TestNewOpenAIModel_Validation(t *testing.T) {
	_, err := NewOpenAIModel(OpenAIOptions{Model: "gpt-4o-mini"})
	assert.Error(t, err)
	_, err = NewOpenAIModel(OpenAIOptions{APIKey: "k"})
	assert.Error(t, err)

	// local servers need no key
	m, err := NewOpenAIModel(OpenAIOptions{BaseURL: "http://localhost:1234/v1", Model: "local"})
	require.NoError(t, err)
	assert.Equal(t, "openai", m.Name())
	assert.Equal(t, "local", m.ModelName())
}
