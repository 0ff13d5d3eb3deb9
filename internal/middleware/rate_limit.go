package middleware

import (
	"context"
	"net/http"
	"time"

	"cryptovol/internal/util"
	"cryptovol/pkg/redis"

	"github.com/gin-gonic/gin"
)

// RateLimiter middleware limits requests per client IP over a fixed window
type RateLimiter struct {
	redis  *redis.Client
	limit  int
	window time.Duration
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(redisClient *redis.Client, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		redis:  redisClient,
		limit:  limit,
		window: window,
	}
}

// Limit returns a middleware that limits requests
func (rl *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := redis.RateLimitKey(c.ClientIP())

		allowed, err := rl.checkRateLimit(c.Request.Context(), key)
		if err != nil {
			// Fail open: a limiter backend error must not block traffic
			c.Next()
			return
		}

		if !allowed {
			util.AbortWithCustomError(c, http.StatusTooManyRequests,
				util.ErrCodeRateLimit, "Rate limit exceeded. Please try again later.")
			return
		}

		c.Next()
	}
}

// checkRateLimit checks if request is within rate limit
func (rl *RateLimiter) checkRateLimit(ctx context.Context, key string) (bool, error) {
	count, err := rl.redis.Incr(ctx, key)
	if err != nil {
		return false, err
	}

	// Set expiration on first request
	if count == 1 {
		if err := rl.redis.Expire(ctx, key, rl.window); err != nil {
			return false, err
		}
	}

	return count <= int64(rl.limit), nil
}

// RateLimit creates a rate limiting middleware with a one-minute window
func RateLimit(redisClient *redis.Client, limit int) gin.HandlerFunc {
	return NewRateLimiter(redisClient, limit, time.Minute).Limit()
}
