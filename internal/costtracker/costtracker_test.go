package costtracker

import (
	"context"
	"sync"
	"testing"

	"folio/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrice(t *testing.T) {
	pricing := map[string]config.PricingInfo{
		"gpt-test": {InputPerToken: 0.001, OutputPerToken: 0.002},
	}

	cost, ok := Price(pricing, "gpt-test", 100, 50)
	require.True(t, ok)
	assert.InDelta(t, 0.2, cost, 1e-9)

	_, ok = Price(pricing, "unknown", 1, 1)
	assert.False(t, ok)
	_, ok = Price(nil, "gpt-test", 1, 1)
	assert.False(t, ok)
}

func TestMemoryCostTracker(t *testing.T) {
	ctx := context.Background()
	tracker := New()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = tracker.RecordCost(ctx, CostEvent{Operation: "chat", Model: "m1", InputTokens: 10, OutputTokens: 5, AmountUSD: 0.5})
		}()
	}
	wg.Wait()
	require.NoError(t, tracker.RecordCost(ctx, CostEvent{Model: "m2", AmountUSD: 1}))

	total, err := tracker.TotalCost(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 6.0, total, 1e-9)

	summary, err := tracker.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 11, summary.Calls)
	assert.Equal(t, 100, summary.InputTokens)
	assert.Equal(t, 50, summary.OutputTokens)
	assert.InDelta(t, 5.0, summary.ByModel["m1"], 1e-9)
	assert.InDelta(t, 1.0, summary.ByModel["m2"], 1e-9)

	// returned map is a copy
	summary.ByModel["m1"] = 0
	again, _ := tracker.Summary(ctx)
	assert.InDelta(t, 5.0, again.ByModel["m1"], 1e-9)
}

func TestNoop(t *testing.T) {
	tracker := Noop()
	require.NoError(t, tracker.RecordCost(context.Background(), CostEvent{AmountUSD: 3}))
	total, err := tracker.TotalCost(context.Background())
	require.NoError(t, err)
	assert.Zero(t, total)
}
