package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"
)

// OpenAIModel talks to any OpenAI compatible chat completion endpoint
// (OpenAI, OpenRouter, LM Studio).
type OpenAIModel struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

// OpenAIOptions configures NewOpenAIModel. An empty BaseURL uses api.openai.com.
type OpenAIOptions struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
}

func NewOpenAIModel(opts OpenAIOptions) (*OpenAIModel, error) {
	if opts.Model == "" {
		return nil, errors.New("openai: model is required")
	}
	if opts.APIKey == "" && opts.BaseURL == "" {
		return nil, errors.New("openai: api key is required")
	}
	apiKey := opts.APIKey
	if apiKey == "" {
		// local servers ignore the key but the header must be set
		apiKey = "none"
	}
	cfg := openai.DefaultConfig(apiKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	log.Infof("OpenAI chat model initialized with model %s", opts.Model)
	return &OpenAIModel{
		client:      openai.NewClientWithConfig(cfg),
		model:       opts.Model,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
	}, nil
}

func (m *OpenAIModel) Name() string      { return "openai" }
func (m *OpenAIModel) ModelName() string { return m.model }

func (m *OpenAIModel) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	chatReq := openai.ChatCompletionRequest{
		Model:       m.model,
		Messages:    toOpenAIMessages(req.System, req.Messages),
		Temperature: m.temperature,
		MaxTokens:   m.maxTokens,
	}
	for _, t := range req.Tools {
		chatReq.Tools = append(chatReq.Tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}

	resp, err := m.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error generating chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("OpenAI API returned no choices")
	}

	choice := resp.Choices[0].Message
	out := &Completion{
		Message: Message{Role: RoleAssistant, Content: choice.Content},
		Usage:   Usage{InputTokens: resp.Usage.PromptTokens, OutputTokens: resp.Usage.CompletionTokens},
	}
	for _, tc := range choice.ToolCalls {
		out.Message.ToolCalls = append(out.Message.ToolCalls, ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return out, nil
}

func toOpenAIMessages(system string, msgs []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(msgs)+1)
	if system != "" {
		out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: system})
	}
	for _, msg := range msgs {
		switch msg.Role {
		case RoleAssistant:
			am := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: msg.Content}
			for _, tc := range msg.ToolCalls {
				am.ToolCalls = append(am.ToolCalls, openai.ToolCall{
					ID:       tc.ID,
					Type:     openai.ToolTypeFunction,
					Function: openai.FunctionCall{Name: tc.Name, Arguments: tc.Arguments},
				})
			}
			out = append(out, am)
		case RoleTool:
			out = append(out, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    msg.Content,
				ToolCallID: msg.ToolCallID,
				Name:       msg.Name,
			})
		default:
			out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: msg.Content})
		}
	}
	return out
}

var _ ChatModel = (*OpenAIModel)(nil)
