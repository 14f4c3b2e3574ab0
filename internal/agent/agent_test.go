package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"folio/internal/config"
	"folio/internal/costtracker"
	"folio/internal/models"
)

// scriptedModel replies with the queued completions in order and keeps
// every request it saw.
type scriptedModel struct {
	replies  []*Completion
	err      error
	requests []CompletionRequest
	closed   bool
}

func (m *scriptedModel) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	if len(m.replies) == 0 {
		return &Completion{Message: Message{Role: RoleAssistant, Content: "out of script"}}, nil
	}
	next := m.replies[0]
	m.replies = m.replies[1:]
	return next, nil
}

func (m *scriptedModel) Name() string      { return "fake" }
func (m *scriptedModel) ModelName() string { return "fake-1" }
func (m *scriptedModel) Close() error      { m.closed = true; return nil }

type mockSource struct {
	mock.Mock
	specs []ToolSpec
}

func (s *mockSource) Tools() []ToolSpec { return s.specs }

func (s *mockSource) Call(ctx context.Context, name string, args map[string]any) (string, error) {
	ret := s.Called(ctx, name, args)
	return ret.String(0), ret.Error(1)
}

func (s *mockSource) Close() error { return s.Called().Error(0) }

func answer(text string) *Completion {
	return &Completion{Message: Message{Role: RoleAssistant, Content: text}, Usage: Usage{InputTokens: 100, OutputTokens: 20}}
}

func toolCall(id, name, args string) *Completion {
	return &Completion{
		Message: Message{Role: RoleAssistant, ToolCalls: []ToolCall{{ID: id, Name: name, Arguments: args}}},
		Usage:   Usage{InputTokens: 50, OutputTokens: 10},
	}
}

func portfolioSource() *mockSource {
	return &mockSource{specs: []ToolSpec{
		{Name: "get_all_categories", Parameters: map[string]any{"type": "object", "properties": map[string]any{}}},
		{Name: "get_project_by_id", Parameters: map[string]any{"type": "object"}},
	}}
}

func TestRun_NoMessages(t *testing.T) {
	a, err := New(&scriptedModel{}, nil, Options{})
	require.NoError(t, err)

	_, err = a.Run(context.Background(), nil)
	assert.ErrorIs(t, err, models.ErrNoMessages)
}

func TestNew_RequiresModel(t *testing.T) {
	_, err := New(nil, nil, Options{})
	assert.Error(t, err)
}

func TestRun_DirectAnswer(t *testing.T) {
	model := &scriptedModel{replies: []*Completion{answer("I have built AI and graphics projects.")}}
	a, err := New(model, []ToolSource{portfolioSource()}, Options{Instructions: "be brief"})
	require.NoError(t, err)

	out, err := a.Run(context.Background(), []Message{{Role: RoleUser, Content: "What do you do?"}})
	require.NoError(t, err)
	assert.Equal(t, "I have built AI and graphics projects.", out)

	require.Len(t, model.requests, 1)
	assert.Equal(t, "be brief", model.requests[0].System)
	assert.Len(t, model.requests[0].Tools, 2)
}

func TestRun_ToolLoop(t *testing.T) {
	src := portfolioSource()
	src.On("Call", mock.Anything, "get_all_categories", map[string]any{}).Return(`["ai","web"]`, nil).Once()

	model := &scriptedModel{replies: []*Completion{
		toolCall("call_1", "get_all_categories", "{}"),
		answer("I work on ai and web projects."),
	}}
	a, err := New(model, []ToolSource{src}, Options{})
	require.NoError(t, err)

	out, err := a.Run(context.Background(), []Message{{Role: RoleUser, Content: "Which categories?"}})
	require.NoError(t, err)
	assert.Equal(t, "I work on ai and web projects.", out)

	require.Len(t, model.requests, 2)
	second := model.requests[1].Messages
	require.Len(t, second, 3)
	assert.Equal(t, RoleAssistant, second[1].Role)
	assert.Equal(t, Message{Role: RoleTool, Content: `["ai","web"]`, ToolCallID: "call_1", Name: "get_all_categories"}, second[2])
	src.AssertExpectations(t)
}

func TestRun_ToolFailuresReachTheModel(t *testing.T) {
	src := portfolioSource()
	src.On("Call", mock.Anything, "get_project_by_id", map[string]any{"project_id": "x"}).
		Return("", errors.New("connection refused")).Once()

	model := &scriptedModel{replies: []*Completion{
		{Message: Message{Role: RoleAssistant, ToolCalls: []ToolCall{
			{ID: "a", Name: "get_project_by_id", Arguments: `{"project_id":"x"}`},
			{ID: "b", Name: "get_secret", Arguments: `{}`},
			{ID: "c", Name: "get_all_categories", Arguments: `{not json`},
		}}},
		answer("Sorry, the portfolio is unavailable."),
	}}
	a, err := New(model, []ToolSource{src}, Options{})
	require.NoError(t, err)

	_, err = a.Run(context.Background(), []Message{{Role: RoleUser, Content: "Tell me about x"}})
	require.NoError(t, err)

	results := model.requests[1].Messages[2:]
	require.Len(t, results, 3)
	assert.Equal(t, "Error: connection refused", results[0].Content)
	assert.Contains(t, results[1].Content, "tool not found")
	assert.Contains(t, results[2].Content, "invalid arguments for get_all_categories")
	src.AssertExpectations(t)
}

func TestRun_RoundBudget(t *testing.T) {
	src := portfolioSource()
	src.On("Call", mock.Anything, "get_all_categories", mock.Anything).Return(`[]`, nil)

	model := &scriptedModel{replies: []*Completion{
		toolCall("1", "get_all_categories", "{}"),
		toolCall("2", "get_all_categories", "{}"),
		answer("done"),
	}}
	a, err := New(model, []ToolSource{src}, Options{MaxToolRounds: 2})
	require.NoError(t, err)

	out, err := a.Run(context.Background(), []Message{{Role: RoleUser, Content: "loop"}})
	require.NoError(t, err)
	assert.Equal(t, "done", out)

	require.Len(t, model.requests, 3)
	assert.NotEmpty(t, model.requests[1].Tools)
	assert.Empty(t, model.requests[2].Tools)
}

func TestRun_ModelError(t *testing.T) {
	a, err := New(&scriptedModel{err: errors.New("rate limited")}, nil, Options{})
	require.NoError(t, err)

	_, err = a.Run(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	assert.EqualError(t, err, "rate limited")
}

func TestRun_RecordsCost(t *testing.T) {
	src := portfolioSource()
	src.On("Call", mock.Anything, mock.Anything, mock.Anything).Return(`[]`, nil)
	tracker := costtracker.New()

	model := &scriptedModel{replies: []*Completion{toolCall("1", "get_all_categories", "{}"), answer("ok")}}
	a, err := New(model, []ToolSource{src}, Options{
		Tracker: tracker,
		Pricing: map[string]config.PricingInfo{"fake-1": {InputPerToken: 0.001, OutputPerToken: 0.002}},
	})
	require.NoError(t, err)

	_, err = a.Run(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	require.NoError(t, err)

	sum, err := tracker.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Calls)
	assert.Equal(t, 150, sum.InputTokens)
	assert.Equal(t, 30, sum.OutputTokens)
	assert.InDelta(t, 0.21, sum.TotalUSD, 1e-9)
	assert.InDelta(t, 0.21, sum.ByModel["fake-1"], 1e-9)
}

func TestNew_DuplicateToolsKeepFirst(t *testing.T) {
	first := portfolioSource()
	second := &mockSource{specs: []ToolSpec{{Name: "get_all_categories"}, {Name: WebToolName}}}

	a, err := New(&scriptedModel{}, []ToolSource{first, second}, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"get_all_categories", "get_project_by_id", WebToolName}, a.ToolNames())
	assert.Same(t, first, a.index["get_all_categories"])
}

func TestClose(t *testing.T) {
	src := portfolioSource()
	src.On("Close").Return(nil).Once()
	model := &scriptedModel{}

	a, err := New(model, []ToolSource{src}, Options{})
	require.NoError(t, err)
	require.NoError(t, a.Close())
	assert.True(t, model.closed)
	src.AssertExpectations(t)
}

func TestDefaultInstructions(t *testing.T) {
	text := DefaultInstructions("Hugo")
	assert.Contains(t, text, "You are Hugo's AI assistant")
	assert.NotContains(t, text, "{{owner}}")
	assert.Contains(t, DefaultInstructions(""), "the portfolio owner")
}
