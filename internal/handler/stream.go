package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"standfinder/internal/model"

	"github.com/gin-gonic/gin"
)

// StandsEvent is the payload of every "stands" SSE event
type StandsEvent struct {
	Stands []model.Stand `json:"stands"`
	Total  int           `json:"total"`
}

// Stream handles GET /api/v1/sessions/:id/stream - SSE push of the
// published stands
func (h *StandHandler) Stream(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Streaming not supported"})
		return
	}

	// Set SSE headers
	c.Header("Content-Type", "text/event-stream; charset=utf-8")
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	updates, cancel := h.sessions.Watch(sess)
	defer cancel()

	if h.metrics != nil {
		h.metrics.Subscribers.Inc()
		defer h.metrics.Subscribers.Dec()
	}

	sendSSE(c, "ready", map[string]any{"session_id": sess.ID})
	flusher.Flush()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case stands, ok := <-updates:
			if !ok {
				sendSSE(c, "done", nil)
				flusher.Flush()
				return
			}
			if stands == nil {
				stands = []model.Stand{}
			}
			sendSSE(c, "stands", StandsEvent{Stands: stands, Total: len(stands)})
			flusher.Flush()
		}
	}
}

// sendSSE sends a Server-Sent Event
func sendSSE(c *gin.Context, event string, data any) {
	if data != nil {
		jsonData, err := json.Marshal(data)
		if err != nil {
			fmt.Fprintf(c.Writer, "event: error\ndata: {\"error\": \"JSON marshal failed\"}\n\n")
			return
		}
		fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event, string(jsonData))
	} else {
		fmt.Fprintf(c.Writer, "event: %s\ndata: {}\n\n", event)
	}
}
