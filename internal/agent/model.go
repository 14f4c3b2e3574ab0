// Package agent runs the portfolio assistant: a chat model that answers with
// the help of MCP portfolio tools and a web page reader.
package agent

import "context"

// Role of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a model's request to run a tool. Arguments is raw JSON.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// Message is one turn of the conversation. Tool messages carry the result of
// the call named by ToolCallID.
type Message struct {
	Role       Role
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
	Name       string
}

// ToolSpec describes a callable tool. Parameters is a JSON schema object.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// Usage is the token count of one completion.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// CompletionRequest is a full conversation to complete.
type CompletionRequest struct {
	System   string
	Messages []Message
	Tools    []ToolSpec
}

// Completion is the model's reply. A reply with ToolCalls expects the
// results before it continues.
type Completion struct {
	Message Message
	Usage   Usage
}

// ChatModel is a tool-calling chat completion provider.
type ChatModel interface {
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
	Name() string      // provider name, e.g. "openai"
	ModelName() string // model identifier
}

// ToolSource provides tools to the agent.
type ToolSource interface {
	Tools() []ToolSpec
	Call(ctx context.Context, name string, args map[string]any) (string, error)
}
