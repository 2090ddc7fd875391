package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/flight-watcher/internal/mocks"
	"github.com/jsamuelsen/flight-watcher/internal/ports"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewBuildInfo(t *testing.T) {
	bi := NewBuildInfo("1.0.0", "abc123", "2025-11-30T10:00:00Z")

	assert.Equal(t, "1.0.0", bi.Version)
	assert.Equal(t, "abc123", bi.Commit)
	assert.Equal(t, "2025-11-30T10:00:00Z", bi.BuildTime)
	assert.Equal(t, runtime.Version(), bi.GoVersion)
}

func TestNewHealthHandler_DefaultGatherer(t *testing.T) {
	handler := NewHealthHandler(mocks.NewMockHealthRegistry(t), BuildInfo{}, nil)

	require.NotNil(t, handler)
	assert.Equal(t, prometheus.DefaultGatherer, handler.gatherer)
}

func TestHealthHandler_Liveness(t *testing.T) {
	handler := NewHealthHandler(mocks.NewMockHealthRegistry(t), BuildInfo{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/-/live", nil)

	handler.Liveness(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp livenessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestHealthHandler_Readiness(t *testing.T) {
	tests := []struct {
		name           string
		result         *ports.HealthResult
		expectedStatus int
		expectedBody   []string
	}{
		{
			name: "all checks healthy",
			result: &ports.HealthResult{
				Status: ports.HealthStatusHealthy,
				Checks: map[string]*ports.CheckResult{
					"serpapi":  {Status: ports.HealthStatusHealthy},
					"sendgrid": {Status: ports.HealthStatusHealthy},
				},
			},
			expectedStatus: http.StatusOK,
			expectedBody:   []string{`"status":"healthy"`, "serpapi", "sendgrid"},
		},
		{
			name: "mail credentials rejected",
			result: &ports.HealthResult{
				Status: ports.HealthStatusUnhealthy,
				Checks: map[string]*ports.CheckResult{
					"serpapi": {Status: ports.HealthStatusHealthy},
					"sendgrid": {
						Status:  ports.HealthStatusUnhealthy,
						Message: "credentials rejected (status 401)",
					},
				},
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   []string{`"status":"unhealthy"`, "credentials rejected"},
		},
		{
			name: "no checks registered",
			result: &ports.HealthResult{
				Status: ports.HealthStatusHealthy,
				Checks: map[string]*ports.CheckResult{},
			},
			expectedStatus: http.StatusOK,
			expectedBody:   []string{`"status":"healthy"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := mocks.NewMockHealthRegistry(t)
			registry.EXPECT().CheckAll(mock.Anything).Return(tt.result)

			handler := NewHealthHandler(registry, BuildInfo{}, nil)

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/-/ready", nil)

			handler.Readiness(c)

			assert.Equal(t, tt.expectedStatus, w.Code)
			for _, s := range tt.expectedBody {
				assert.Contains(t, w.Body.String(), s)
			}
		})
	}
}

func TestHealthHandler_BuildInfoHandler(t *testing.T) {
	buildInfo := BuildInfo{
		Version:   "1.2.3",
		Commit:    "def456",
		BuildTime: "2025-12-01T12:00:00Z",
		GoVersion: "go1.25.0",
	}

	handler := NewHealthHandler(mocks.NewMockHealthRegistry(t), buildInfo, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/-/build", nil)

	handler.BuildInfoHandler(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp BuildInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, buildInfo, resp)
}

func TestHealthHandler_MetricsHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	promauto.With(reg).NewCounter(prometheus.CounterOpts{
		Name: "flightwatch_test_total",
		Help: "test counter",
	}).Inc()

	handler := NewHealthHandler(mocks.NewMockHealthRegistry(t), BuildInfo{}, reg)

	w := httptest.NewRecorder()
	handler.MetricsHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/-/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, w.Body.String(), "flightwatch_test_total 1")
}

func TestHealthHandler_RegisterHealthRoutesOnEngine(t *testing.T) {
	handler := NewHealthHandler(mocks.NewMockHealthRegistry(t), BuildInfo{}, prometheus.NewRegistry())

	router := gin.New()
	handler.RegisterHealthRoutesOnEngine(router)

	routeMap := make(map[string]bool)
	for _, r := range router.Routes() {
		routeMap[r.Method+" "+r.Path] = true
	}

	for _, expected := range []string{"GET /-/live", "GET /-/ready", "GET /-/build", "GET /-/metrics"} {
		assert.True(t, routeMap[expected], "missing route: %s", expected)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/-/live", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRunning(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	Running(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, RunningMessage, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
}
