package handler

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"standfinder/internal/metrics"
	"standfinder/internal/model"
	"standfinder/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testStands() []model.Stand {
	return []model.Stand{
		{ID: 1, Suburb: "Borrowdale", City: "Harare", Price: 90000, Size: 2000, StandType: model.StandTypeResidential, Community: model.CommunityLowDensity},
		{ID: 2, Suburb: "Avondale", City: "Harare", Price: 45000, Size: 800, IsSold: true, StandType: model.StandTypeResidential, Community: model.CommunityMediumDensity},
		{ID: 3, Suburb: "Avondale", City: "Harare", Price: 30000, Size: 700, StandType: model.StandTypeCommercial, Community: model.CommunityMediumDensity},
		{ID: 4, Suburb: "Belmont", City: "Bulawayo", Price: 35000, Size: 5000, StandType: model.StandTypeIndustrial, Community: model.CommunityNone},
		{ID: 5, Suburb: "Hillside", City: "Bulawayo", Price: 58000, Size: 1200, IsSold: true, StandType: model.StandTypeResidential, Community: model.CommunityLowDensity},
	}
}

type testServer struct {
	router   *gin.Engine
	sessions *service.SessionManager
	registry *prometheus.Registry
}

func newTestServer(t *testing.T, ui fstest.MapFS) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	sessions := service.NewSessionManager(testStands(), service.StoreOptions{
		Logger:      logger,
		OnOperation: m.ObserveOperation,
	}, time.Hour)
	t.Cleanup(sessions.CloseAll)

	opts := RouterOptions{
		Logger:   logger,
		Metrics:  m,
		Gatherer: reg,
		Build:    BuildInfo{Version: "test", BuildTime: "now", GitCommit: "abc"},
	}
	if ui != nil {
		opts.UI = ui
	}
	return &testServer{
		router:   NewRouter(NewStandHandler(sessions, m), opts),
		sessions: sessions,
		registry: reg,
	}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) createSession(t *testing.T) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp model.SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ID)
	return resp.ID
}

func decodeStands(t *testing.T, w *httptest.ResponseRecorder) model.StandsResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp model.StandsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func standIDs(stands []model.Stand) []int64 {
	out := make([]int64, len(stands))
	for i, s := range stands {
		out[i] = s.ID
	}
	return out
}

func TestSessionFlow(t *testing.T) {
	srv := newTestServer(t, nil)
	id := srv.createSession(t)
	base := "/api/v1/sessions/" + id

	resp := decodeStands(t, srv.do(t, http.MethodGet, base+"/stands", nil))
	assert.Equal(t, model.ViewIdle, resp.Kind)
	assert.Equal(t, 0, resp.Total)
	assert.Equal(t, model.DefaultFilterState(), resp.Filters)

	resp = decodeStands(t, srv.do(t, http.MethodPost, base+"/search", model.SearchRequest{By: "suburb", Value: "Avon"}))
	assert.Equal(t, model.ViewUnfiltered, resp.Kind)
	assert.Equal(t, []int64{2, 3}, standIDs(resp.Stands))

	resp = decodeStands(t, srv.do(t, http.MethodPost, base+"/sort", model.SortRequest{Field: "price"}))
	assert.Equal(t, model.ViewSorted, resp.Kind)
	assert.Equal(t, model.SortByPrice, resp.SortBy)
	assert.Equal(t, []int64{3, 2}, standIDs(resp.Stands))

	resp = decodeStands(t, srv.do(t, http.MethodPost, base+"/filters", model.FilterRequest{Kind: "sold", Value: "true"}))
	assert.Equal(t, model.ViewFiltered, resp.Kind)
	assert.Equal(t, model.FilterSold, resp.Filter)
	assert.Equal(t, []int64{2}, standIDs(resp.Stands))
	require.NotNil(t, resp.Filters.IsSold)
	assert.True(t, *resp.Filters.IsSold)

	resp = decodeStands(t, srv.do(t, http.MethodDelete, base+"/filters", nil))
	assert.Equal(t, model.ViewUnfiltered, resp.Kind)
	assert.Equal(t, []int64{2, 3}, standIDs(resp.Stands))

	resp = decodeStands(t, srv.do(t, http.MethodPost, base+"/search", model.SearchRequest{By: "city", Value: "Bulawayo"}))
	assert.Equal(t, []int64{4, 5}, standIDs(resp.Stands))

	resp = decodeStands(t, srv.do(t, http.MethodPost, base+"/search", model.SearchRequest{By: "type", Value: "residential"}))
	assert.Equal(t, []int64{1, 2, 5}, standIDs(resp.Stands))

	resp = decodeStands(t, srv.do(t, http.MethodPost, base+"/search", model.SearchRequest{By: "community", Value: "medium"}))
	assert.Equal(t, []int64{2, 3}, standIDs(resp.Stands))

	w := srv.do(t, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = srv.do(t, http.MethodGet, base+"/stands", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFilterReplacesPrevious(t *testing.T) {
	srv := newTestServer(t, nil)
	base := "/api/v1/sessions/" + srv.createSession(t)

	decodeStands(t, srv.do(t, http.MethodPost, base+"/search", model.SearchRequest{By: "suburb", Value: ""}))
	decodeStands(t, srv.do(t, http.MethodPost, base+"/filters", model.FilterRequest{Kind: "community", Value: "low-density"}))

	resp := decodeStands(t, srv.do(t, http.MethodPost, base+"/filters", model.FilterRequest{Kind: "type", Value: "commercial"}))
	assert.Equal(t, []int64{3}, standIDs(resp.Stands))
	assert.Equal(t, model.CommunityLowDensity, resp.Filters.Community)
	assert.Equal(t, model.StandTypeCommercial, resp.Filters.StandType)
}

func TestBadRequests(t *testing.T) {
	srv := newTestServer(t, nil)
	base := "/api/v1/sessions/" + srv.createSession(t)

	tests := []struct {
		name string
		path string
		body any
		want int
	}{
		{"missing body", base + "/search", nil, http.StatusBadRequest},
		{"unknown search field", base + "/search", model.SearchRequest{By: "price", Value: "1"}, http.StatusBadRequest},
		{"unknown stand type", base + "/search", model.SearchRequest{By: "type", Value: "castle"}, http.StatusBadRequest},
		{"unknown community", base + "/search", model.SearchRequest{By: "community", Value: "gated"}, http.StatusBadRequest},
		{"unknown sort field", base + "/sort", model.SortRequest{Field: "age"}, http.StatusBadRequest},
		{"unknown filter", base + "/filters", model.FilterRequest{Kind: "price", Value: "1"}, http.StatusBadRequest},
		{"bad sale status", base + "/filters", model.FilterRequest{Kind: "sold", Value: "maybe"}, http.StatusBadRequest},
		{"unknown session", "/api/v1/sessions/nope/search", model.SearchRequest{By: "suburb"}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := srv.do(t, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.want, w.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}

	// Rejected requests leave the store idle
	resp := decodeStands(t, srv.do(t, http.MethodGet, base+"/stands", nil))
	assert.Equal(t, model.ViewIdle, resp.Kind)
}

func TestSuggestions(t *testing.T) {
	srv := newTestServer(t, nil)

	w := srv.do(t, http.MethodGet, "/api/v1/locations", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var locations model.SuggestionsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &locations))
	assert.Equal(t, []string{"Borrowdale", "Avondale", "Belmont", "Hillside"}, locations.Values)
	assert.Equal(t, 4, locations.Total)

	w = srv.do(t, http.MethodGet, "/api/v1/cities", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cities model.SuggestionsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cities))
	assert.Equal(t, []string{"Harare", "Bulawayo"}, cities.Values)

	w = srv.do(t, http.MethodGet, "/api/v1/locations?q=avon", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &locations))
	assert.Equal(t, []string{"Avondale"}, locations.Values)

	w = srv.do(t, http.MethodGet, "/api/v1/cities?q=paris", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cities))
	assert.Empty(t, cities.Values)
	assert.Equal(t, 0, cities.Total)
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.createSession(t)

	w := srv.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var health map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, 1.0, health["sessions"])
	assert.Equal(t, "test", health["version"])
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	w = srv.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `standfinder_http_requests_total{method="POST",route="/api/v1/sessions",status="201"} 1`)
}

func TestRequestIDIsReused(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/version", nil)
	req.Header.Set(RequestIDHeader, "trace-123")
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "trace-123", w.Header().Get(RequestIDHeader))
}

func TestNoRoute(t *testing.T) {
	t.Run("api path", func(t *testing.T) {
		srv := newTestServer(t, nil)
		w := srv.do(t, http.MethodGet, "/api/v1/unknown", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "API endpoint not found")
	})

	t.Run("ui files", func(t *testing.T) {
		srv := newTestServer(t, fstest.MapFS{
			"index.html": {Data: []byte("<html>stands</html>")},
			"app.js":     {Data: []byte("console.log(1)")},
		})

		w := srv.do(t, http.MethodGet, "/app.js", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/javascript; charset=utf-8", w.Header().Get("Content-Type"))

		// Unknown client routes fall back to index.html
		w = srv.do(t, http.MethodGet, "/stands/42", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "<html>stands</html>", w.Body.String())
	})
}

type sseEvent struct {
	name string
	data string
}

func readEvent(t *testing.T, r *bufio.Reader) sseEvent {
	t.Helper()
	var ev sseEvent
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event: "):
			ev.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			ev.data = strings.TrimPrefix(line, "data: ")
		case line == "" && ev.name != "":
			return ev
		}
	}
}

func TestStream(t *testing.T) {
	srv := newTestServer(t, nil)
	ts := httptest.NewServer(srv.router)
	defer ts.Close()

	id := srv.createSession(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/v1/sessions/"+id+"/stream", nil)
	require.NoError(t, err)
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")
	reader := bufio.NewReader(resp.Body)

	ev := readEvent(t, reader)
	assert.Equal(t, "ready", ev.name)

	// A new subscriber receives the current value right away
	ev = readEvent(t, reader)
	require.Equal(t, "stands", ev.name)
	var payload StandsEvent
	require.NoError(t, json.Unmarshal([]byte(ev.data), &payload))
	assert.Equal(t, 0, payload.Total)
	assert.NotNil(t, payload.Stands)

	w := srv.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/search", model.SearchRequest{By: "city", Value: "Bulawayo"})
	require.Equal(t, http.StatusOK, w.Code)

	ev = readEvent(t, reader)
	require.Equal(t, "stands", ev.name)
	require.NoError(t, json.Unmarshal([]byte(ev.data), &payload))
	assert.Equal(t, []int64{4, 5}, standIDs(payload.Stands))

	// Deleting the session ends the stream
	w = srv.do(t, http.MethodDelete, "/api/v1/sessions/"+id, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	ev = readEvent(t, reader)
	assert.Equal(t, "done", ev.name)
}
