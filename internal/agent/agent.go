package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"

	"folio/internal/config"
	"folio/internal/costtracker"
	"folio/internal/models"
)

const defaultMaxToolRounds = 6

// Options tunes an Agent. Zero values fall back to defaults.
type Options struct {
	Instructions  string
	MaxToolRounds int
	Tracker       costtracker.CostTracker
	Pricing       map[string]config.PricingInfo // per model
}

// Agent answers a conversation, calling tools until the model produces a
// final answer or the round budget runs out.
type Agent struct {
	model        ChatModel
	sources      []ToolSource
	specs        []ToolSpec
	index        map[string]ToolSource
	instructions string
	maxRounds    int
	tracker      costtracker.CostTracker
	pricing      map[string]config.PricingInfo
}

func New(model ChatModel, sources []ToolSource, opts Options) (*Agent, error) {
	if model == nil {
		return nil, errors.New("agent: chat model is required")
	}
	a := &Agent{
		model:        model,
		sources:      sources,
		index:        make(map[string]ToolSource),
		instructions: opts.Instructions,
		maxRounds:    opts.MaxToolRounds,
		tracker:      opts.Tracker,
		pricing:      opts.Pricing,
	}
	if a.instructions == "" {
		a.instructions = DefaultInstructions("")
	}
	if a.maxRounds <= 0 {
		a.maxRounds = defaultMaxToolRounds
	}
	if a.tracker == nil {
		a.tracker = costtracker.Noop()
	}
	for _, src := range sources {
		for _, spec := range src.Tools() {
			if _, dup := a.index[spec.Name]; dup {
				log.Warnf("Tool %s is provided twice; keeping the first", spec.Name)
				continue
			}
			a.index[spec.Name] = src
			a.specs = append(a.specs, spec)
		}
	}
	log.Infof("Agent ready with %s/%s and %d tools", model.Name(), model.ModelName(), len(a.specs))
	return a, nil
}

// ToolNames lists the tools the model may call.
func (a *Agent) ToolNames() []string {
	names := make([]string, 0, len(a.specs))
	for _, s := range a.specs {
		names = append(names, s.Name)
	}
	return names
}

// Run answers the last message of history. history must hold at least one
// message.
func (a *Agent) Run(ctx context.Context, history []Message) (string, error) {
	if len(history) == 0 {
		return "", models.ErrNoMessages
	}
	msgs := append([]Message(nil), history...)

	for round := 0; ; round++ {
		req := CompletionRequest{System: a.instructions, Messages: msgs}
		// the last round withholds tools so the model has to answer
		if round < a.maxRounds {
			req.Tools = a.specs
		}
		comp, err := a.model.Complete(ctx, req)
		if err != nil {
			return "", err
		}
		a.record(ctx, comp.Usage, round)

		if len(comp.Message.ToolCalls) == 0 || round >= a.maxRounds {
			return comp.Message.Content, nil
		}

		msgs = append(msgs, comp.Message)
		for _, call := range comp.Message.ToolCalls {
			msgs = append(msgs, Message{
				Role:       RoleTool,
				Content:    a.callTool(ctx, call),
				ToolCallID: call.ID,
				Name:       call.Name,
			})
		}
	}
}

// callTool returns the tool output, or an error description the model can
// act on.
func (a *Agent) callTool(ctx context.Context, call ToolCall) string {
	logger := log.WithField("tool", call.Name)
	src, ok := a.index[call.Name]
	if !ok {
		logger.Warn("Model called an unknown tool")
		return fmt.Sprintf("Error: %v: %s", models.ErrToolNotFound, call.Name)
	}
	args := map[string]any{}
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			logger.Warnf("Invalid tool arguments: %v", err)
			return fmt.Sprintf("Error: invalid arguments for %s: %v", call.Name, err)
		}
	}
	out, err := src.Call(ctx, call.Name, args)
	if err != nil {
		logger.Warnf("Tool call failed: %v", err)
		return fmt.Sprintf("Error: %v", err)
	}
	logger.Debugf("Tool returned %d bytes", len(out))
	return out
}

func (a *Agent) record(ctx context.Context, u Usage, round int) {
	if u.InputTokens == 0 && u.OutputTokens == 0 {
		return
	}
	cost, ok := costtracker.Price(a.pricing, a.model.ModelName(), u.InputTokens, u.OutputTokens)
	if !ok {
		log.Debugf("Pricing info not found for model '%s'. Recording tokens only.", a.model.ModelName())
	}
	event := costtracker.CostEvent{
		Operation:    "chat",
		Provider:     a.model.Name(),
		Model:        a.model.ModelName(),
		InputTokens:  u.InputTokens,
		OutputTokens: u.OutputTokens,
		AmountUSD:    cost,
		Details:      map[string]interface{}{"round": round},
	}
	if err := a.tracker.RecordCost(ctx, event); err != nil {
		log.Errorf("Failed to record chat usage: %v", err)
	}
}

// Close closes every tool source and the model that holds resources.
func (a *Agent) Close() error {
	var errs []error
	for _, src := range a.sources {
		if c, ok := src.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	if c, ok := a.model.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
