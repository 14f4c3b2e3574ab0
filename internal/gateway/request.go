package gateway

import (
	"fmt"

	"github.com/google/uuid"

	"folio/internal/agent"
)

// RunAgentInput is the body of a chat request. Messages are usually
// {role, content} objects; bare strings are read as user messages.
// The camelCase ids are accepted as sent by the AG-UI JavaScript client.
type RunAgentInput struct {
	ThreadID      string `json:"thread_id"`
	RunID         string `json:"run_id"`
	ThreadIDCamel string `json:"threadId"`
	RunIDCamel    string `json:"runId"`
	Messages      []any  `json:"messages"`
	Tools         []any  `json:"tools"`
}

// ids returns the thread and run ids, generating any that are missing.
func (in *RunAgentInput) ids() (string, string) {
	thread, run := in.ThreadID, in.RunID
	if thread == "" {
		thread = in.ThreadIDCamel
	}
	if run == "" {
		run = in.RunIDCamel
	}
	if thread == "" {
		thread = uuid.NewString()
	}
	if run == "" {
		run = uuid.NewString()
	}
	return thread, run
}

// history converts the request messages into the agent conversation.
// Roles other than user and assistant are dropped.
// Other roles are dropped; when nothing else remains the last message with
// text is answered as the user's.
func (in *RunAgentInput) history() []agent.Message {
	out := make([]agent.Message, 0, len(in.Messages))
	var last string
	for _, raw := range in.Messages {
		switch m := raw.(type) {
		case map[string]any:
			role, _ := m["role"].(string)
			if role == "" {
				role = string(agent.RoleUser)
			}
			content := contentText(m["content"])
			if content != "" {
				last = content
			}
			switch agent.Role(role) {
			case agent.RoleUser, agent.RoleAssistant:
				out = append(out, agent.Message{Role: agent.Role(role), Content: content})
			}
		case nil:
		default:
			out = append(out, agent.Message{Role: agent.RoleUser, Content: contentText(m)})
		}
	}
	if len(out) == 0 && last != "" {
		out = append(out, agent.Message{Role: agent.RoleUser, Content: last})
	}
	return out
}

func contentText(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	default:
		return fmt.Sprint(c)
	}
}
