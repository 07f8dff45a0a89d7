package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/castpass/castpass/internal/infrastructure/ratelimit"
	"github.com/castpass/castpass/internal/shared/logger"
	"github.com/castpass/castpass/internal/shared/utils"
)

// RateLimiter limits requests per client IP using a shared limiter, so the
// limit holds across instances when the limiter is Redis-backed.
type RateLimiter struct {
	limiter ratelimit.RateLimiter
	config  ratelimit.RateLimitConfig
	scope   string
	logger  logger.Interface
}

// NewRateLimiter keys every counter by scope and client IP, so separate
// routes keep separate budgets.
func NewRateLimiter(limiter ratelimit.RateLimiter, scope string, config ratelimit.RateLimitConfig, logger logger.Interface) *RateLimiter {
	return &RateLimiter{
		limiter: limiter,
		config:  config,
		scope:   scope,
		logger:  logger,
	}
}

// Limit returns a Gin middleware that enforces the rate limit per client IP.
func (rl *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := rl.scope + ":ip:" + c.ClientIP()

		allowed, err := rl.limiter.Allow(c.Request.Context(), key, rl.config)
		if err != nil {
			// Fail open: a limiter outage must not block verification.
			rl.logger.Warnw("rate limiter unavailable", "error", err, "key", key)
			c.Next()
			return
		}

		if !allowed {
			utils.ErrorResponse(c, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}
