package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pageza/anong-ulam/backend/internal/api"
	"github.com/pageza/anong-ulam/backend/internal/metrics"
	"github.com/pageza/anong-ulam/backend/internal/middleware"
	"github.com/pageza/anong-ulam/backend/internal/mocks"
	"github.com/pageza/anong-ulam/backend/internal/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func generateRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/generate-recipe", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "http://localhost:5173")
	return req
}

func TestSetupRouterServesHealthAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	gen := new(mocks.MockRecipeGenerator)
	r := SetupRouter(api.NewRecipeHandler(gen, m, nil), Options{
		AllowedOrigins: []string{"http://localhost:5173"},
		Metrics:        m,
		MetricsHandler: metrics.Handler(reg),
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, generateRequest(`{"ingredients":" "}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `anong_ulam_generations_total{outcome="validation_error"} 1`)
}

func TestSetupRouterWithoutMetricsHandler(t *testing.T) {
	r := SetupRouter(api.NewRecipeHandler(new(mocks.MockRecipeGenerator), nil, nil), Options{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSetupRouterRateLimitsGeneration(t *testing.T) {
	gen := new(mocks.MockRecipeGenerator)
	gen.On("GenerateRecipe", mock.Anything, "itlog", types.Mood("")).Return(&types.Recipe{DishName: "Scrambled Egg"}, nil)

	limiter := middleware.NewMemoryRateLimiter(middleware.RateLimitConfig{Window: time.Minute, Limit: 1})
	r := SetupRouter(api.NewRecipeHandler(gen, nil, nil), Options{
		Limiter:   limiter,
		RateLimit: 1,
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, generateRequest(`{"ingredients":"itlog"}`))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, generateRequest(`{"ingredients":"itlog"}`))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error":"`+middleware.MsgRateLimited+`"}`, w.Body.String())

	// health is outside the limited group
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	gen.AssertNumberOfCalls(t, "GenerateRecipe", 1)
}

func TestSetupRouterLogsRecoveredPanics(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := SetupRouter(api.NewRecipeHandler(new(mocks.MockRecipeGenerator), nil, nil), Options{Logger: zap.New(core)})
	r.GET("/boom", func(c *gin.Context) { panic("kitchen on fire") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"`+api.MsgGenerationFailed+`"}`, w.Body.String())
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())

	access := logs.FilterMessage("request").All()
	require.Len(t, access, 1)
	assert.Equal(t, zap.ErrorLevel, access[0].Level)
	assert.EqualValues(t, http.StatusInternalServerError, access[0].ContextMap()["status"])
	assert.Equal(t, "/boom", access[0].ContextMap()["path"])
}
