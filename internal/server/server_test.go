package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/sentio/internal/app"
	"github.com/ternarybob/sentio/internal/common"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	config := common.NewDefaultConfig()
	config.Storage.Badger.Path = filepath.Join(dir, "badger")
	config.Storage.SQLite.Path = filepath.Join(dir, "articles.db")
	config.Learned.Provider = "none"

	application, err := app.New(config, arbor.NewLogger())
	require.NoError(t, err)
	t.Cleanup(func() { application.Close() })
	return New(application)
}

func TestRoutes(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		method string
		path   string
		body   string
		status int
	}{
		{http.MethodPost, "/api/analyze", `{"text":"great results"}`, http.StatusOK},
		{http.MethodGet, "/api/aggregate?range=30d", "", http.StatusOK},
		{http.MethodGet, "/api/aggregate?range=1y", "", http.StatusBadRequest},
		{http.MethodGet, "/api/alerts", "", http.StatusOK},
		{http.MethodPost, "/api/alerts/nope/dismiss", "", http.StatusNotFound},
		{http.MethodGet, "/api/watchlist", "", http.StatusOK},
		{http.MethodGet, "/api/jobs", "", http.StatusOK},
		{http.MethodPost, "/api/jobs/nope/trigger", "", http.StatusNotFound},
		{http.MethodGet, "/api/status", "", http.StatusOK},
		{http.MethodGet, "/metrics", "", http.StatusOK},
		{http.MethodOptions, "/api/analyze", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			s.Handler().ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestAnalyzeEmptyText(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"text":""}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 0.0, body["final_score"])
	assert.Equal(t, 0.0, body["confidence"])
	assert.Equal(t, "neutral", body["category"])
}

func TestMetricsExposeEngineCollectors(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"text":"terrible losses"}`))
	req.Header.Set("Content-Type", "application/json")
	s.Handler().ServeHTTP(httptest.NewRecorder(), req)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "sentio_analyze_duration_seconds")
}
