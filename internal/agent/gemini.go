package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// GeminiModel is a ChatModel backed by the Gemini API.
type GeminiModel struct {
	client      *genai.Client
	model       string
	temperature float32
	maxTokens   int
}

// GeminiOptions configures NewGeminiModel.
type GeminiOptions struct {
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int
}

func NewGeminiModel(ctx context.Context, opts GeminiOptions) (*GeminiModel, error) {
	if opts.APIKey == "" {
		return nil, errors.New("gemini: api key is required")
	}
	if opts.Model == "" {
		return nil, errors.New("gemini: model is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(opts.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	log.Infof("Gemini chat model initialized with model %s", opts.Model)
	return &GeminiModel{client: client, model: opts.Model, temperature: opts.Temperature, maxTokens: opts.MaxTokens}, nil
}

func (m *GeminiModel) Name() string      { return "gemini" }
func (m *GeminiModel) ModelName() string { return m.model }

// Close releases the underlying client.
func (m *GeminiModel) Close() error {
	return m.client.Close()
}

func (m *GeminiModel) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	if len(req.Messages) == 0 {
		return nil, errors.New("gemini: no messages to complete")
	}
	gm := m.client.GenerativeModel(m.model)
	gm.SetTemperature(m.temperature)
	if m.maxTokens > 0 {
		gm.SetMaxOutputTokens(int32(m.maxTokens))
	}
	if req.System != "" {
		gm.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}
	if len(req.Tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, 0, len(req.Tools))
		for _, t := range req.Tools {
			decls = append(decls, &genai.FunctionDeclaration{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  parametersSchema(t.Parameters),
			})
		}
		gm.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}

	contents := toGeminiContents(req.Messages)
	last := contents[len(contents)-1]
	cs := gm.StartChat()
	cs.History = contents[:len(contents)-1]

	resp, err := cs.SendMessage(ctx, last.Parts...)
	if err != nil {
		return nil, fmt.Errorf("Gemini API error generating chat completion: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, errors.New("Gemini API returned no candidates")
	}

	out := &Completion{Message: Message{Role: RoleAssistant}}
	for _, part := range resp.Candidates[0].Content.Parts {
		switch p := part.(type) {
		case genai.Text:
			out.Message.Content += string(p)
		case genai.FunctionCall:
			args, err := json.Marshal(p.Args)
			if err != nil {
				return nil, fmt.Errorf("encode %s arguments: %w", p.Name, err)
			}
			out.Message.ToolCalls = append(out.Message.ToolCalls, ToolCall{
				ID:        "call_" + uuid.NewString(),
				Name:      p.Name,
				Arguments: string(args),
			})
		}
	}
	if u := resp.UsageMetadata; u != nil {
		out.Usage = Usage{InputTokens: int(u.PromptTokenCount), OutputTokens: int(u.CandidatesTokenCount)}
	}
	return out, nil
}

// toGeminiContents maps the conversation onto user and model turns.
// Consecutive tool results are folded into one function response turn.
func toGeminiContents(msgs []Message) []*genai.Content {
	var out []*genai.Content
	prevTool := false
	for _, msg := range msgs {
		isTool := msg.Role == RoleTool
		switch msg.Role {
		case RoleAssistant:
			c := &genai.Content{Role: "model"}
			if msg.Content != "" {
				c.Parts = append(c.Parts, genai.Text(msg.Content))
			}
			for _, tc := range msg.ToolCalls {
				var args map[string]any
				_ = json.Unmarshal([]byte(tc.Arguments), &args)
				c.Parts = append(c.Parts, genai.FunctionCall{Name: tc.Name, Args: args})
			}
			if len(c.Parts) == 0 {
				c.Parts = append(c.Parts, genai.Text(""))
			}
			out = append(out, c)
		case RoleTool:
			part := genai.FunctionResponse{Name: msg.Name, Response: map[string]any{"content": msg.Content}}
			if prevTool {
				last := out[len(out)-1]
				last.Parts = append(last.Parts, part)
			} else {
				// function responses travel in a user turn
				out = append(out, &genai.Content{Role: "user", Parts: []genai.Part{part}})
			}
		default:
			out = append(out, &genai.Content{Role: "user", Parts: []genai.Part{genai.Text(msg.Content)}})
		}
		prevTool = isTool
	}
	return out
}

// parametersSchema converts a JSON schema object. Gemini rejects objects
// without properties, so those become nil.
func parametersSchema(params map[string]any) *genai.Schema {
	if params == nil {
		return nil
	}
	if props, _ := params["properties"].(map[string]any); len(props) == 0 {
		return nil
	}
	return toSchema(params)
}

func toSchema(m map[string]any) *genai.Schema {
	s := &genai.Schema{}
	switch m["type"] {
	case "object":
		s.Type = genai.TypeObject
	case "array":
		s.Type = genai.TypeArray
	case "integer":
		s.Type = genai.TypeInteger
	case "number":
		s.Type = genai.TypeNumber
	case "boolean":
		s.Type = genai.TypeBoolean
	default:
		s.Type = genai.TypeString
	}
	s.Description, _ = m["description"].(string)
	s.Enum = stringList(m["enum"])
	s.Required = stringList(m["required"])
	if props, ok := m["properties"].(map[string]any); ok {
		s.Properties = make(map[string]*genai.Schema, len(props))
		for name, raw := range props {
			if pm, ok := raw.(map[string]any); ok {
				s.Properties[name] = toSchema(pm)
			}
		}
	}
	if items, ok := m["items"].(map[string]any); ok {
		s.Items = toSchema(items)
	}
	if s.Type == genai.TypeArray && s.Items == nil {
		s.Items = &genai.Schema{Type: genai.TypeString}
	}
	return s
}

func stringList(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

var _ ChatModel = (*GeminiModel)(nil)
