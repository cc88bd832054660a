package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/f2fpay/internal/infrastructure/ratelimit"
	"github.com/orris-inc/f2fpay/internal/shared/logger"
	"github.com/orris-inc/f2fpay/internal/shared/utils"
)

// ChargeRateLimiter throttles charge requests per client IP. Shared Redis
// windows keep the limit correct across instances.
type ChargeRateLimiter struct {
	limiter ratelimit.RateLimiter
	config  ratelimit.RateLimitConfig
	logger  logger.Interface
}

func NewChargeRateLimiter(limiter ratelimit.RateLimiter, config ratelimit.RateLimitConfig, logger logger.Interface) *ChargeRateLimiter {
	return &ChargeRateLimiter{
		limiter: limiter,
		config:  config,
		logger:  logger,
	}
}

// Limit returns a Gin middleware that enforces the configured windows.
func (rl *ChargeRateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.config.Enabled() {
			c.Next()
			return
		}

		key := "charge:" + c.ClientIP()
		allowed, err := rl.limiter.Allow(c.Request.Context(), key, rl.config)
		if err != nil {
			// Redis unavailable: let the charge through
			rl.logger.Warnw("rate limit check failed", "error", err, "client_ip", c.ClientIP())
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
