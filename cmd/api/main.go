package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/pageza/anong-ulam/backend/config"
	"github.com/pageza/anong-ulam/backend/internal/api"
	"github.com/pageza/anong-ulam/backend/internal/database"
	"github.com/pageza/anong-ulam/backend/internal/logger"
	"github.com/pageza/anong-ulam/backend/internal/metrics"
	"github.com/pageza/anong-ulam/backend/internal/middleware"
	"github.com/pageza/anong-ulam/backend/internal/router"
	"github.com/pageza/anong-ulam/backend/internal/server"
	"github.com/pageza/anong-ulam/backend/internal/service"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to load .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Development: cfg.Environment != config.Production,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	if err := run(cfg, zapLogger); err != nil {
		zapLogger.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, zapLogger *zap.Logger) error {
	gin.SetMode(cfg.Environment.GinMode())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	gemini, err := service.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return err
	}
	defer gemini.Close()

	generator := service.NewRecipeGenerator(gemini, cfg.GenerationTimeout, m, zapLogger)

	opts := router.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimit:      cfg.RateLimitRequests,
		Metrics:        m,
		MetricsHandler: metrics.Handler(reg),
		Logger:         zapLogger,
	}
	if cfg.RateLimitEnabled {
		limiter, closeLimiter, err := newLimiter(ctx, cfg, zapLogger)
		if err != nil {
			return err
		}
		defer closeLimiter()
		opts.Limiter = limiter
	}

	handler := router.SetupRouter(api.NewRecipeHandler(generator, m, zapLogger), opts)

	zapLogger.Info("starting recipe service",
		zap.String("environment", string(cfg.Environment)),
		zap.String("model", cfg.GeminiModel),
		zap.Bool("rate_limit", cfg.RateLimitEnabled),
	)
	return server.New(cfg.Addr(), handler, zapLogger).Start(ctx)
}

func newLimiter(ctx context.Context, cfg *config.Config, zapLogger *zap.Logger) (middleware.Limiter, func(), error) {
	limitCfg := middleware.RateLimitConfig{
		Window:    cfg.RateLimitWindow,
		Limit:     cfg.RateLimitRequests,
		KeyPrefix: "anong-ulam:ratelimit",
	}
	if cfg.RedisURL == "" {
		zapLogger.Info("using in-memory rate limiter")
		return middleware.NewMemoryRateLimiter(limitCfg), func() {}, nil
	}

	client, err := database.NewRedisClient(ctx, cfg.RedisURL, zapLogger)
	if err != nil {
		return nil, nil, err
	}
	return middleware.NewRateLimiter(client, limitCfg), func() { client.Close() }, nil
}
