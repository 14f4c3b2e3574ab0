package costtracker

import (
	"context"
	"sync"

	"folio/internal/config"
)

// CostEvent represents a single language model call and its cost.
type CostEvent struct {
	Operation    string // e.g., "chat", "tool_round"
	Provider     string
	Model        string
	InputTokens  int
	OutputTokens int
	AmountUSD    float64
	Details      map[string]interface{}
}

// Summary is the running total reported by the gateway's usage endpoint.
type Summary struct {
	Calls        int                `json:"calls"`
	InputTokens  int                `json:"input_tokens"`
	OutputTokens int                `json:"output_tokens"`
	TotalUSD     float64            `json:"total_usd"`
	ByModel      map[string]float64 `json:"by_model"`
}

// CostTracker provides methods to record and report costs.
type CostTracker interface {
	RecordCost(ctx context.Context, event CostEvent) error
	TotalCost(ctx context.Context) (float64, error)
	Summary(ctx context.Context) (Summary, error)
}

// Price computes the cost of a call from per-token pricing.
// ok is false when the model has no pricing entry.
func Price(pricing map[string]config.PricingInfo, model string, inputTokens, outputTokens int) (float64, bool) {
	p, ok := pricing[model]
	if !ok {
		return 0, false
	}
	return float64(inputTokens)*p.InputPerToken + float64(outputTokens)*p.OutputPerToken, true
}

// New returns an in-memory tracker for the lifetime of the process.
func New() CostTracker {
	return &memoryCostTracker{byModel: make(map[string]float64)}
}

type memoryCostTracker struct {
	mu      sync.Mutex
	summary Summary
	byModel map[string]float64
}

func (m *memoryCostTracker) RecordCost(ctx context.Context, event CostEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summary.Calls++
	m.summary.InputTokens += event.InputTokens
	m.summary.OutputTokens += event.OutputTokens
	m.summary.TotalUSD += event.AmountUSD
	m.byModel[event.Model] += event.AmountUSD
	return nil
}

func (m *memoryCostTracker) TotalCost(ctx context.Context) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.summary.TotalUSD, nil
}

func (m *memoryCostTracker) Summary(ctx context.Context) (Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.summary
	out.ByModel = make(map[string]float64, len(m.byModel))
	for k, v := range m.byModel {
		out.ByModel[k] = v
	}
	return out, nil
}

// Noop discards every event.
func Noop() CostTracker { return noopCostTracker{} }

type noopCostTracker struct{}

func (noopCostTracker) RecordCost(ctx context.Context, event CostEvent) error { return nil }
func (noopCostTracker) TotalCost(ctx context.Context) (float64, error)        { return 0, nil }
func (noopCostTracker) Summary(ctx context.Context) (Summary, error) {
	return Summary{ByModel: map[string]float64{}}, nil
}
