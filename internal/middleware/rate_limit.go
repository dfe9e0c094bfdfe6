package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pageza/anong-ulam/backend/internal/metrics"
	"github.com/pageza/anong-ulam/backend/internal/types"
)

// MsgRateLimited is returned with 429 responses.
const MsgRateLimited = "Dahan-dahan lang anak, pagod na si Mama. Balik ka mamaya."

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Window is the time window for rate limiting
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// Key prefix for Redis keys
	KeyPrefix string
}

// Limiter decides whether a request identified by key may proceed.
type Limiter interface {
	IsAllowed(ctx context.Context, key string) (allowed bool, remaining int, reset time.Time, err error)
}

// RateLimiter is a fixed-window limiter shared through Redis
type RateLimiter struct {
	redis  *redis.Client
	config RateLimitConfig
}

// NewRateLimiter creates a new Redis-backed rate limiter instance
func NewRateLimiter(redisClient *redis.Client, config RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		redis:  redisClient,
		config: config,
	}
}

// IsAllowed checks if a request from the given client is allowed
func (rl *RateLimiter) IsAllowed(ctx context.Context, key string) (bool, int, time.Time, error) {
	windowStart := time.Now().Truncate(rl.config.Window)
	redisKey := fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, key, windowStart.Unix())

	pipe := rl.redis.Pipeline()
	incrCmd := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rl.config.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, time.Time{}, err
	}

	count := int(incrCmd.Val())
	remaining := rl.config.Limit - count
	if remaining < 0 {
		remaining = 0
	}

	return count <= rl.config.Limit, remaining, windowStart.Add(rl.config.Window), nil
}

// MemoryRateLimiter is a per-process limiter, used when no Redis is
// configured. Each key holds a bucket of config.Limit requests that refills
// one request per config.Window, so no window ever admits more than Limit.
type MemoryRateLimiter struct {
	config RateLimitConfig

	mu       sync.Mutex
	limiters map[string]*visitor
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const memoryLimiterSweepSize = 10000

// NewMemoryRateLimiter creates an in-process limiter allowing config.Limit
// requests per config.Window per key.
func NewMemoryRateLimiter(config RateLimitConfig) *MemoryRateLimiter {
	return &MemoryRateLimiter{
		config:   config,
		limiters: make(map[string]*visitor),
	}
}

// IsAllowed consumes one request for key if available. reset is when the
// key's full budget is back.
func (rl *MemoryRateLimiter) IsAllowed(_ context.Context, key string) (bool, int, time.Time, error) {
	now := time.Now()
	refill := rl.config.Window * time.Duration(rl.config.Limit)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if len(rl.limiters) >= memoryLimiterSweepSize {
		for k, v := range rl.limiters {
			if now.Sub(v.lastSeen) > refill {
				delete(rl.limiters, k)
			}
		}
	}

	v, ok := rl.limiters[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Every(rl.config.Window), rl.config.Limit)}
		rl.limiters[key] = v
	}
	v.lastSeen = now

	allowed := v.limiter.AllowN(now, 1)
	tokens := v.limiter.TokensAt(now)
	remaining := int(tokens)
	if remaining < 0 {
		remaining = 0
	}
	missing := float64(rl.config.Limit) - tokens
	reset := now.Add(time.Duration(missing * float64(rl.config.Window)))
	return allowed, remaining, reset, nil
}

// RateLimit returns a Gin middleware that limits requests per client IP.
// A failing limiter lets the request through.
func RateLimit(l Limiter, limit int, m *metrics.Metrics, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, remaining, resetTime, err := l.IsAllowed(c.Request.Context(), c.ClientIP())
		if err != nil {
			logger.Warn("rate limit check failed", zap.Error(err))
			c.Header("X-RateLimit-Error", "rate limit check failed")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			m.RecordOutcome(metrics.OutcomeRateLimited)
			if retry := int(time.Until(resetTime).Seconds()); retry > 0 {
				c.Header("Retry-After", strconv.Itoa(retry))
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, types.ErrorResponse{Error: MsgRateLimited})
			return
		}

		c.Next()
	}
}
