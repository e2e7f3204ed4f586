package handler

import (
	"errors"
	"net/http"
	"time"

	"standfinder/internal/model"
	"standfinder/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateSession handles POST /api/v1/sessions
func (h *StandHandler) CreateSession(c *gin.Context) {
	sess, err := h.sessions.Create()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, model.SessionResponse{ID: sess.ID})
}

// DeleteSession handles DELETE /api/v1/sessions/:id
func (h *StandHandler) DeleteSession(c *gin.Context) {
	if err := h.sessions.Delete(c.Param("id")); err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// GetStands handles GET /api/v1/sessions/:id/stands
func (h *StandHandler) GetStands(c *gin.Context) {
	start := time.Now()
	sess, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, standsResponse(sess.Store, start))
}
