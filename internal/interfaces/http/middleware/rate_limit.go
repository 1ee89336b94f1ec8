package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/aewis/internal/domain/service"
	"github.com/turtacn/aewis/pkg/constants"
	"github.com/turtacn/aewis/pkg/errors"
	"github.com/turtacn/aewis/pkg/logger"
)

// RateLimitMiddleware limits requests per client IP.
// A non-positive limit disables it. Limiter errors fail open.
func RateLimitMiddleware(rateLimiter service.RateLimitService, limit int, metrics service.Metrics, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rateLimiter == nil || limit <= 0 {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		ip := c.ClientIP()
		allowed, remaining, _, err := rateLimiter.Allow(ctx, service.RateLimitDimensionIP, ip)
		if err != nil {
			log.Error(ctx, "rate limiter failed", err)
			c.Next() // Fail open
			return
		}

		c.Header(constants.HeaderRateLimitLimit, strconv.Itoa(limit))
		c.Header(constants.HeaderRateLimitRemaining, strconv.Itoa(remaining))

		if !allowed {
			if metrics != nil {
				metrics.RecordRateLimitHit("", string(service.RateLimitDimensionIP))
			}
			log.Warn(ctx, "rate limit exceeded", logger.String("client_ip", ip), logger.Int("limit", limit))
			appErr := errors.ErrRateLimitExceeded("ip:"+ip, limit)
			c.AbortWithStatusJSON(appErr.HTTPStatus(), errors.ToErrorResponse(appErr))
			return
		}

		c.Next()
	}
}
