package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/anong-ulam/backend/internal/api"
	"github.com/pageza/anong-ulam/backend/internal/metrics"
	"github.com/pageza/anong-ulam/backend/internal/middleware"
)

// Options carries the optional pieces of the router.
type Options struct {
	AllowedOrigins []string
	RateLimit      int
	Metrics        *metrics.Metrics
	MetricsHandler http.Handler
	Logger         *zap.Logger

	// Limiter is nil when rate limiting is disabled.
	Limiter middleware.Limiter
}

// SetupRouter configures the application routes
func SetupRouter(recipeHandler *api.RecipeHandler, opts Options) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	// RequestLogger wraps Recovery so recovered panics are logged as 500s.
	router.Use(
		middleware.RequestLogger(logger),
		middleware.Recovery(logger, api.MsgGenerationFailed),
		middleware.CORS(opts.AllowedOrigins),
	)

	router.GET("/health", api.HealthCheck)
	if opts.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(opts.MetricsHandler))
	}

	apiGroup := router.Group("/api")
	if opts.Limiter != nil {
		apiGroup.Use(middleware.RateLimit(opts.Limiter, opts.RateLimit, opts.Metrics, logger))
	}
	recipeHandler.RegisterRoutes(apiGroup)

	return router
}
