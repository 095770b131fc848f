package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"call-center-simulator/pkg/config"
	"call-center-simulator/pkg/handlers"
	"call-center-simulator/pkg/metrics"
	"call-center-simulator/pkg/models"
	"call-center-simulator/pkg/simulation"
)

type echoResponder struct{}

func (echoResponder) GetResponse(ctx context.Context, history []models.ChatMessage) string {
	return "echo: " + history[len(history)-1].Content
}

func setupRouter(t *testing.T, apiToken string) *mux.Router {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	reg := prometheus.NewRegistry()
	registry := simulation.NewRegistry(echoResponder{}, logger, metrics.NewMetrics(reg))
	handler := handlers.NewHandler(registry, logger, "test-pod")

	cfg := &config.Config{Port: "0", APIToken: apiToken, LLMTimeoutMS: 30000}
	return NewRouter(cfg, handler, reg, logger)
}

func do(t *testing.T, router http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRouter_SimulationFlow(t *testing.T) {
	router := setupRouter(t, "")

	rec := do(t, router, http.MethodPost, "/api/simulate/start", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var started map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &started))
	id := started["simulation_id"]
	require.NotEmpty(t, id)

	rec = do(t, router, http.MethodPost, "/api/simulate/message",
		`{"simulation_id":"`+id+`","message":"hello there"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "echo: hello there")

	rec = do(t, router, http.MethodGet, "/api/simulate/"+id, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var details models.SimulationDetails
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &details))
	assert.Equal(t, 2, details.MessageCount)

	rec = do(t, router, http.MethodGet, "/api/simulations", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), id)

	rec = do(t, router, http.MethodPost, "/api/simulate/end", `{"simulation_id":"`+id+`"}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/calls/statistics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, float64(1), stats["total_calls"])
	assert.Equal(t, float64(0), stats["active_calls"])
	assert.Equal(t, float64(2), stats["total_messages"])
}

func TestRouter_Agents(t *testing.T) {
	router := setupRouter(t, "")

	rec := do(t, router, http.MethodGet, "/api/agents", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string][]models.Agent
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body["agents"], 3)
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	router := setupRouter(t, "")

	rec := do(t, router, http.MethodDelete, "/health", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/simulate/end", "", nil)
	assert.NotEqual(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodPost, "/metrics", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRouter_Metrics(t *testing.T) {
	router := setupRouter(t, "")
	do(t, router, http.MethodPost, "/api/simulate/start", "", nil)

	rec := do(t, router, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "simulations_started_total 1")
	assert.Contains(t, rec.Body.String(), "active_simulations 1")
}

func TestRouter_CallsRequireBearerWhenConfigured(t *testing.T) {
	router := setupRouter(t, "secret")

	rec := do(t, router, http.MethodGet, "/api/calls/statistics", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), ErrMissingBearer.Error())

	rec = do(t, router, http.MethodGet, "/api/calls/statistics", "", map[string]string{"Authorization": "Bearer wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/calls/statistics", "", map[string]string{"Authorization": "Bearer secret"})
	assert.Equal(t, http.StatusOK, rec.Code)

	// Simulation routes stay open.
	rec = do(t, router, http.MethodPost, "/api/simulate/start", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWriteUnauthorized_EncodesJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	writeUnauthorized(rec, errors.New(`token "abc" rejected`))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, `token "abc" rejected`, body["error"])
}

func TestExtractBearer(t *testing.T) {
	cases := []struct {
		header string
		token  string
		err    error
	}{
		{"", "", ErrMissingBearer},
		{"Basic abc", "", ErrInvalidToken},
		{"Bearer   ", "", ErrInvalidToken},
		{"Bearer abc", "abc", nil},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		token, err := extractBearer(req)
		assert.Equal(t, tc.token, token, tc.header)
		assert.Equal(t, tc.err, err, tc.header)
	}
}

func TestNewHTTPServer_WriteTimeoutCoversModelCall(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	reg := prometheus.NewRegistry()
	registry := simulation.NewRegistry(echoResponder{}, logger, metrics.NewMetrics(reg))
	handler := handlers.NewHandler(registry, logger, "test-pod")

	srv := NewHTTPServer(&config.Config{Port: "8000", LLMTimeoutMS: 30000}, handler, reg, logger)
	assert.Equal(t, ":8000", srv.Addr)
	assert.Greater(t, srv.WriteTimeout, 30*time.Second)

	srv = NewHTTPServer(&config.Config{Port: "8000"}, handler, reg, logger)
	assert.Equal(t, minWriteTimeout, srv.WriteTimeout)
}
