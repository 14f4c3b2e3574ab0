package gateway

import (
	"encoding/json"
	"fmt"
	"io"
)

// AG-UI event types.
const (
	EventRunStarted         = "run_started"
	EventRunFinished        = "run_finished"
	EventRunError           = "run_error"
	EventTextMessageStart   = "text_message_start"
	EventTextMessageContent = "text_message_content"
	EventTextMessageEnd     = "text_message_end"
)

// Event is one AG-UI event. Unused fields stay out of the JSON.
type Event struct {
	Type      string `json:"type"`
	ThreadID  string `json:"thread_id"`
	RunID     string `json:"run_id"`
	MessageID string `json:"message_id,omitempty"`
	Role      string `json:"role,omitempty"`
	Delta     string `json:"delta,omitempty"`
	Message   string `json:"message,omitempty"`
}

// writeEvent writes e as a server-sent event: "data: <json>\n\n".
func writeEvent(w io.Writer, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", e.Type, err)
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", payload)
	return err
}

// chunks splits s into pieces of at most n characters.
func chunks(s string, n int) []string {
	r := []rune(s)
	if n <= 0 {
		n = len(r)
	}
	out := make([]string, 0, len(r)/max(n, 1)+1)
	for i := 0; i < len(r); i += n {
		end := min(i+n, len(r))
		out = append(out, string(r[i:end]))
	}
	return out
}
