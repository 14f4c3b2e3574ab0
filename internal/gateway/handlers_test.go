package gateway

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"folio/internal/agent"
	"folio/internal/costtracker"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	// generative-ai-go starts the opencensus stats worker at init
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

type mockAnswerer struct {
	mock.Mock
}

func (m *mockAnswerer) Run(ctx context.Context, history []agent.Message) (string, error) {
	ret := m.Called(ctx, history)
	return ret.String(0), ret.Error(1)
}

func post(t *testing.T, h *Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)
	return rec
}

// parseEvents reads every "data: " line of an SSE body.
func parseEvents(t *testing.T, body string) []Event {
	t.Helper()
	var events []Event
	sc := bufio.NewScanner(strings.NewReader(body))
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		require.True(t, strings.HasPrefix(line, "data: "), "unexpected line %q", line)
		var e Event
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &e))
		events = append(events, e)
	}
	return events
}

func eventTypes(events []Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Type
	}
	return out
}

func TestChat_StreamsAnswer(t *testing.T) {
	a := new(mockAnswerer)
	a.On("Run", mock.Anything, []agent.Message{
		{Role: agent.RoleUser, Content: "Hi"},
		{Role: agent.RoleAssistant, Content: "Hello!"},
		{Role: agent.RoleUser, Content: "What do you build?"},
	}).Return("I build real-time graphics.", nil).Once()

	h := NewHandler(a, nil, Options{ChunkSize: 10})
	rec := post(t, h, "/", `{"thread_id":"t1","run_id":"r1","messages":[
		{"role":"user","content":"Hi"},
		{"role":"assistant","content":"Hello!"},
		{"role":"system","content":"ignored"},
		{"role":"user","content":"What do you build?"}],"tools":[]}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	events := parseEvents(t, rec.Body.String())
	assert.Equal(t, []string{
		EventRunStarted, EventTextMessageStart,
		EventTextMessageContent, EventTextMessageContent, EventTextMessageContent,
		EventTextMessageEnd, EventRunFinished,
	}, eventTypes(events))

	msgID := events[1].MessageID
	assert.NotEmpty(t, msgID)
	assert.Equal(t, "assistant", events[1].Role)

	var text strings.Builder
	for _, e := range events {
		assert.Equal(t, "t1", e.ThreadID)
		assert.Equal(t, "r1", e.RunID)
		if e.Type == EventTextMessageContent {
			assert.Equal(t, msgID, e.MessageID)
			assert.LessOrEqual(t, len([]rune(e.Delta)), 10)
			text.WriteString(e.Delta)
		}
	}
	assert.Equal(t, "I build real-time graphics.", text.String())
	assert.Equal(t, msgID, events[5].MessageID)
	a.AssertExpectations(t)
}

func TestChat_AgentPath(t *testing.T) {
	a := new(mockAnswerer)
	a.On("Run", mock.Anything, mock.Anything).Return("ok", nil).Once()

	rec := post(t, NewHandler(a, nil, Options{}), "/agent/", `{"threadId":"t2","runId":"r2","messages":["plain question"]}`)
	events := parseEvents(t, rec.Body.String())
	require.NotEmpty(t, events)
	assert.Equal(t, "t2", events[0].ThreadID)
	assert.Equal(t, "r2", events[0].RunID)
	assert.Equal(t, EventRunFinished, events[len(events)-1].Type)

	history := a.Calls[0].Arguments.Get(1).([]agent.Message)
	assert.Equal(t, []agent.Message{{Role: agent.RoleUser, Content: "plain question"}}, history)
}

func TestChat_NoMessages(t *testing.T) {
	a := new(mockAnswerer)
	rec := post(t, NewHandler(a, nil, Options{}), "/", `{"thread_id":"t","run_id":"r","messages":[]}`)

	events := parseEvents(t, rec.Body.String())
	assert.Equal(t, []string{EventRunStarted, EventRunError}, eventTypes(events))
	assert.Equal(t, "No messages provided", events[1].Message)
	assert.Equal(t, "t", events[1].ThreadID)
	a.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
}

func TestChat_OnlySystemMessageIsAnswered(t *testing.T) {
	a := new(mockAnswerer)
	a.On("Run", mock.Anything, []agent.Message{{Role: agent.RoleUser, Content: "Summarise the portfolio"}}).Return("ok", nil).Once()

	rec := post(t, NewHandler(a, nil, Options{}), "/", `{"messages":[{"role":"system","content":"Summarise the portfolio"}]}`)
	events := parseEvents(t, rec.Body.String())
	assert.Equal(t, EventRunFinished, events[len(events)-1].Type)
	a.AssertExpectations(t)
}

func TestChat_AgentError(t *testing.T) {
	a := new(mockAnswerer)
	a.On("Run", mock.Anything, mock.Anything).Return("", errors.New("model unavailable")).Once()

	rec := post(t, NewHandler(a, nil, Options{}), "/", `{"thread_id":"t","run_id":"r","messages":[{"role":"user","content":"hi"}]}`)
	events := parseEvents(t, rec.Body.String())
	assert.Equal(t, []string{EventRunStarted, EventTextMessageStart, EventRunError}, eventTypes(events))
	assert.Equal(t, "model unavailable", events[2].Message)
}

func TestChat_AgentNotReady(t *testing.T) {
	rec := post(t, NewHandler(nil, nil, Options{}), "/", `{"messages":[{"role":"user","content":"hi"}]}`)
	events := parseEvents(t, rec.Body.String())
	require.Len(t, events, 2)
	assert.Equal(t, EventRunError, events[1].Type)
	assert.Equal(t, "agent is not ready", events[1].Message)
	// missing ids are generated
	assert.NotEmpty(t, events[0].ThreadID)
	assert.NotEmpty(t, events[0].RunID)
}

func TestChat_InvalidBody(t *testing.T) {
	rec := post(t, NewHandler(new(mockAnswerer), nil, Options{}), "/", `{"messages":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "bad_request", body.Error.Code)
}

func TestChat_ClientGoneStopsStreaming(t *testing.T) {
	a := new(mockAnswerer)
	a.On("Run", mock.Anything, mock.Anything).Return(strings.Repeat("x", 100), nil).Once()
	h := NewHandler(a, nil, Options{ChunkSize: 10, ChunkDelay: 50 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"messages":["hi"]}`)).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)

	events := parseEvents(t, rec.Body.String())
	types := eventTypes(events)
	assert.Equal(t, EventRunError, types[len(types)-1])
	assert.NotContains(t, types, EventRunFinished)
}

func TestHealth(t *testing.T) {
	for name, tc := range map[string]struct {
		answerer Answerer
		ready    bool
	}{
		"ready":     {answerer: new(mockAnswerer), ready: true},
		"not ready": {answerer: nil, ready: false},
	} {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewHandler(tc.answerer, nil, Options{}).Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, http.StatusOK, rec.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, map[string]any{"status": "healthy", "agent_ready": tc.ready}, body)
		})
	}
}

func TestUsage(t *testing.T) {
	tracker := costtracker.New()
	require.NoError(t, tracker.RecordCost(context.Background(), costtracker.CostEvent{Model: "gpt-4o-mini", InputTokens: 10, OutputTokens: 5, AmountUSD: 0.5}))

	rec := httptest.NewRecorder()
	NewHandler(nil, tracker, Options{}).Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/usage", nil))
	assert.JSONEq(t, `{"calls":1,"input_tokens":10,"output_tokens":5,"total_usd":0.5,"by_model":{"gpt-4o-mini":0.5}}`, rec.Body.String())
}

func TestCORS_Preflight(t *testing.T) {
	h := NewHandler(nil, nil, Options{CORSOrigins: []string{"https://portfolio.example.com"}})

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://portfolio.example.com")
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://portfolio.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://elsewhere.example.com")
	rec = httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestChunks(t *testing.T) {
	assert.Equal(t, []string{"abc", "def", "g"}, chunks("abcdefg", 3))
	assert.Equal(t, []string{"héllo wörl", "d"}, chunks("héllo wörld", 10))
	assert.Empty(t, chunks("", 10))
}
