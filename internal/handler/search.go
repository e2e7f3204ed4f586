package handler

import (
	"errors"
	"iter"
	"net/http"
	"strconv"
	"strings"
	"time"

	"standfinder/internal/metrics"
	"standfinder/internal/model"
	"standfinder/internal/service"
	"standfinder/internal/utils"

	"github.com/gin-gonic/gin"
)

// StandHandler handles stand browsing HTTP requests
type StandHandler struct {
	sessions *service.SessionManager
	metrics  *metrics.Metrics
}

// NewStandHandler creates a new stand handler. m may be nil.
func NewStandHandler(sessions *service.SessionManager, m *metrics.Metrics) *StandHandler {
	return &StandHandler{sessions: sessions, metrics: m}
}

// Locations handles GET /api/v1/locations?q=
func (h *StandHandler) Locations(c *gin.Context) {
	values := suggest(h.sessions.Locations(), c.Query("q"))
	c.JSON(http.StatusOK, model.SuggestionsResponse{Values: values, Total: len(values)})
}

// Cities handles GET /api/v1/cities?q=
func (h *StandHandler) Cities(c *gin.Context) {
	values := suggest(h.sessions.Cities(), c.Query("q"))
	c.JSON(http.StatusOK, model.SuggestionsResponse{Values: values, Total: len(values)})
}

// suggest narrows the distinct values to those matching what the user typed
func suggest(values iter.Seq[string], query string) []string {
	out := []string{}
	for v := range values {
		if utils.FuzzyMatch(query, v) {
			out = append(out, v)
		}
	}
	return out
}

// Search handles POST /api/v1/sessions/:id/search
func (h *StandHandler) Search(c *gin.Context) {
	start := time.Now()
	sess, ok := h.session(c)
	if !ok {
		return
	}

	var req model.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	store := sess.Store
	switch strings.ToLower(strings.TrimSpace(req.By)) {
	case "suburb":
		store.SearchBySuburb(req.Value)
	case "city":
		store.SearchByCity(req.Value)
	case "type":
		t, err := model.ParseStandType(req.Value)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		store.SearchByType(t)
	case "community":
		cm, err := model.ParseCommunity(req.Value)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		store.SearchByCommunity(cm)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid search field. Must be one of: suburb, city, type, community"})
		return
	}

	c.JSON(http.StatusOK, standsResponse(store, start))
}

// Sort handles POST /api/v1/sessions/:id/sort
func (h *StandHandler) Sort(c *gin.Context) {
	start := time.Now()
	sess, ok := h.session(c)
	if !ok {
		return
	}

	var req model.SortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	field, err := model.ParseSortField(req.Field)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess.Store.SortBy(field)

	c.JSON(http.StatusOK, standsResponse(sess.Store, start))
}

// Filter handles POST /api/v1/sessions/:id/filters
func (h *StandHandler) Filter(c *gin.Context) {
	start := time.Now()
	sess, ok := h.session(c)
	if !ok {
		return
	}

	var req model.FilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	store := sess.Store
	switch strings.ToLower(strings.TrimSpace(req.Kind)) {
	case string(model.FilterCommunity):
		cm, err := model.ParseCommunity(req.Value)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		store.FilterByCommunity(cm)
	case string(model.FilterSold):
		sold, err := strconv.ParseBool(strings.TrimSpace(req.Value))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sale status: " + req.Value})
			return
		}
		store.FilterBySaleStatus(sold)
	case string(model.FilterType):
		t, err := model.ParseStandType(req.Value)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		store.FilterByType(t)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filter. Must be one of: community, sold, type"})
		return
	}

	c.JSON(http.StatusOK, standsResponse(store, start))
}

// ResetFilters handles DELETE /api/v1/sessions/:id/filters
func (h *StandHandler) ResetFilters(c *gin.Context) {
	start := time.Now()
	sess, ok := h.session(c)
	if !ok {
		return
	}
	sess.Store.ResetFilters()
	c.JSON(http.StatusOK, standsResponse(sess.Store, start))
}

// session resolves the :id path parameter, writing the error response when
// the session does not exist
func (h *StandHandler) session(c *gin.Context) (*service.Session, bool) {
	sess, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return nil, false
	}
	return sess, true
}

func standsResponse(store *service.ListingStore, start time.Time) model.StandsResponse {
	return model.StandsResponse{
		View:    store.View(),
		Filters: store.Filters(),
		Took:    time.Since(start).Milliseconds(),
	}
}
