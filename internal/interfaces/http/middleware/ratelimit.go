package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shadowiq/shadowiq/internal/infrastructure/ratelimit"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
	"github.com/shadowiq/shadowiq/internal/shared/utils"
)

// RateLimiter throttles a route per client IP using the configured backend
// (redis when enabled, otherwise in-process token buckets).
type RateLimiter struct {
	limiter ratelimit.RateLimiter
	logger  logger.Interface
}

func NewRateLimiter(limiter ratelimit.RateLimiter, logger logger.Interface) *RateLimiter {
	return &RateLimiter{
		limiter: limiter,
		logger:  logger,
	}
}

// Limit returns a middleware enforcing cfg under the given bucket name.
// Backend failures let the request through.
func (rl *RateLimiter) Limit(bucket string, cfg ratelimit.RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.IsZero() {
			c.Next()
			return
		}

		key := bucket + ":" + c.ClientIP()
		allowed, err := rl.limiter.Allow(c.Request.Context(), key, cfg)
		if err != nil {
			rl.logger.Warnw("rate limiter unavailable, allowing request", "bucket", bucket, "error", err)
			c.Next()
			return
		}

		if !allowed {
			rl.logger.Warnw("rate limit exceeded", "bucket", bucket, "client_ip", c.ClientIP())
			utils.ErrorResponse(c, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}
