// Package gateway serves the chat agent to browser clients over the AG-UI
// server-sent events protocol.
package gateway

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"folio/internal/agent"
	"folio/internal/costtracker"
)

// noMessages is the run_error text for an empty conversation.
const noMessages = "No messages provided"

var errAgentNotReady = errors.New("agent is not ready")

// Answerer produces the reply to a conversation.
type Answerer interface {
	Run(ctx context.Context, history []agent.Message) (string, error)
}

// Options configures the handler.
type Options struct {
	ChunkSize   int
	ChunkDelay  time.Duration
	CORSOrigins []string
}

type Handler struct {
	agent   Answerer
	tracker costtracker.CostTracker
	opts    Options
}

// NewHandler returns the gateway handler. A nil answerer reports
// agent_ready false and fails every run.
func NewHandler(a Answerer, tracker costtracker.CostTracker, opts Options) *Handler {
	if tracker == nil {
		tracker = costtracker.Noop()
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 10
	}
	return &Handler{agent: a, tracker: tracker, opts: opts}
}

// Router wires the gateway routes.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(), cors(h.opts.CORSOrigins))

	r.POST("/", h.Chat)
	// same endpoint behind a path-routing tunnel
	r.POST("/agent/", h.Chat)
	r.GET("/health", h.Health)
	r.GET("/usage", h.Usage)
	return r
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "agent_ready": h.agent != nil})
}

func (h *Handler) Usage(c *gin.Context) {
	sum, err := h.tracker.Summary(c.Request.Context())
	if err != nil {
		Internal(c, "failed to read usage: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, sum)
}

// Chat streams one agent run as AG-UI events. Once the stream has started
// every failure is reported as a run_error event.
func (h *Handler) Chat(c *gin.Context) {
	var in RunAgentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	thread, run := in.ids()
	logger := log.WithFields(log.Fields{"thread_id": thread, "run_id": run})

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	s := &stream{c: c, thread: thread, run: run}
	if err := h.run(c.Request.Context(), s, in.history()); err != nil {
		logger.Warnf("Chat run failed: %v", err)
		s.send(Event{Type: EventRunError, Message: err.Error()})
		return
	}
	logger.Debug("Chat run finished")
}

func (h *Handler) run(ctx context.Context, s *stream, history []agent.Message) error {
	if err := s.send(Event{Type: EventRunStarted}); err != nil {
		return err
	}
	if len(history) == 0 {
		return errors.New(noMessages)
	}
	if h.agent == nil {
		return errAgentNotReady
	}

	msgID := uuid.NewString()
	if err := s.send(Event{Type: EventTextMessageStart, MessageID: msgID, Role: string(agent.RoleAssistant)}); err != nil {
		return err
	}
	answer, err := h.agent.Run(ctx, history)
	if err != nil {
		return err
	}

	for i, chunk := range chunks(answer, h.opts.ChunkSize) {
		if i > 0 && h.opts.ChunkDelay > 0 {
			if err := sleep(ctx, h.opts.ChunkDelay); err != nil {
				return err
			}
		}
		if err := s.send(Event{Type: EventTextMessageContent, MessageID: msgID, Delta: chunk}); err != nil {
			return err
		}
	}

	if err := s.send(Event{Type: EventTextMessageEnd, MessageID: msgID}); err != nil {
		return err
	}
	return s.send(Event{Type: EventRunFinished})
}

// stream writes events for one run and flushes each one.
type stream struct {
	c      *gin.Context
	thread string
	run    string
}

func (s *stream) send(e Event) error {
	e.ThreadID, e.RunID = s.thread, s.run
	if err := writeEvent(s.c.Writer, e); err != nil {
		return err
	}
	s.c.Writer.Flush()
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
