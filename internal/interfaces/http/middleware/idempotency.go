package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/turtacn/aewis/internal/config"
	"github.com/turtacn/aewis/pkg/constants"
	"github.com/turtacn/aewis/pkg/errors"
	"github.com/turtacn/aewis/pkg/logger"
)

const maxIdempotencyKeyLen = 128

// IdempotencyMiddleware returns a Gin middleware that rejects replays of a write request.
// Clients send an `Idempotency-Key` header; the first request carrying a key claims it in Redis with SETNX,
// and any later request with the same key is answered with 409 Conflict until the TTL expires.
// A request that fails with a 5xx releases its key so the client can retry.
// Requests without the header pass through untouched. Redis errors fail open.
// IdempotencyMiddleware 返回一个拒绝重复写请求的 Gin 中间件。
// 客户端发送 `Idempotency-Key` 请求头；首个请求通过 Redis SETNX 占用该键，
// 在 TTL 过期前携带相同键的后续请求返回 409 Conflict。
// 以 5xx 失败的请求会释放其键，以便客户端重试。
// 未携带该请求头的请求直接放行。Redis 出错时放行。
func IdempotencyMiddleware(redisClient redis.UniversalClient, cfg *config.IdempotencyConfig, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisClient == nil || cfg == nil || !cfg.Enabled {
			c.Next()
			return
		}

		idemKey := strings.TrimSpace(c.GetHeader(constants.HeaderIdempotencyKey))
		if idemKey == "" {
			c.Next()
			return
		}
		if len(idemKey) > maxIdempotencyKeyLen {
			appErr := errors.ErrInvalidRequest("Idempotency-Key must be at most 128 characters")
			c.AbortWithStatusJSON(appErr.HTTPStatus(), errors.ToErrorResponse(appErr))
			return
		}

		ctx := c.Request.Context()
		key := constants.IdempotencyKeyPrefix + c.FullPath() + ":" + idemKey
		isNew, err := redisClient.SetNX(ctx, key, c.ClientIP(), cfg.TTL).Result()
		if err != nil {
			log.Error(ctx, "Redis check for idempotency key failed", err, logger.String("idempotency_key", idemKey))
			c.Next() // fail open
			return
		}

		if !isNew {
			log.Warn(ctx, "Duplicate request rejected", logger.String("idempotency_key", idemKey))
			appErr := errors.ErrDuplicateRequest(idemKey)
			c.AbortWithStatusJSON(appErr.HTTPStatus(), errors.ToErrorResponse(appErr))
			return
		}

		c.Next()

		if c.Writer.Status() >= 500 {
			// Detached from the request context, which may already be cancelled.
			if err := redisClient.Del(context.WithoutCancel(ctx), key).Err(); err != nil {
				log.Warn(ctx, "Failed to release idempotency key", logger.String("idempotency_key", idemKey), logger.Err(err))
			}
		}
	}
}
