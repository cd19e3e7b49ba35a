package handler

import (
	"io"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/sana-bookkeeping/internal/api_gateway/middleware"
	"github.com/sana-bookkeeping/internal/assistant"
)

// AssistantHandler streams chat replies over server-sent events
type AssistantHandler struct {
	assistant *assistant.Assistant
	logger    *slog.Logger
}

// NewAssistantHandler creates a new assistant handler
func NewAssistantHandler(logger *slog.Logger, a *assistant.Assistant) *AssistantHandler {
	return &AssistantHandler{
		assistant: a,
		logger:    logger,
	}
}

// Chat streams the assistant's reply to the posted message as SSE events.
// Each model chunk becomes one "message" event; a failed stream emits a
// single "error" event before the connection is closed.
func (h *AssistantHandler) Chat(c *gin.Context) {
	if _, ok := middleware.GetUserID(c); !ok {
		RespondUnauthorized(c, "Missing or invalid X-User-ID header")
		return
	}

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request: "+err.Error())
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	chunks := h.assistant.Stream(c.Request.Context(), req.Message)

	c.Stream(func(w io.Writer) bool {
		chunk, ok := <-chunks
		if !ok {
			return false
		}
		if chunk.Err != nil {
			h.logger.Error("Assistant stream aborted", "error", chunk.Err)
			c.SSEvent("error", "assistant is unavailable")
			return false
		}
		c.SSEvent("message", chunk.Text)
		return true
	})
}
