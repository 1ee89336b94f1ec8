package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/aewis/internal/domain/service"
	"github.com/turtacn/aewis/pkg/constants"
	"github.com/turtacn/aewis/pkg/errors"
	"github.com/turtacn/aewis/pkg/logger"
)

const (
	defaultLimit  = 10
	defaultWindow = time.Minute
)

var _ service.RateLimitService = (*RedisRateLimiter)(nil)

// RedisRateLimiter implements a distributed fixed-window limiter on Redis.
type RedisRateLimiter struct {
	client       redis.UniversalClient
	logger       logger.Logger
	config       *RateLimiterConfig
	localBuckets *LocalRateLimiter // Fallback for Redis failures
}

// RateLimiterConfig holds rate limiter configuration.
type RateLimiterConfig struct {
	// Limit is the number of requests allowed per window
	Limit int
	// Window is the fixed window length
	Window time.Duration
	// EnableLocalFallback serves from an in-process bucket when Redis fails
	EnableLocalFallback bool
	// KeyPrefix is the Redis key prefix
	KeyPrefix string
}

// DefaultRateLimiterConfig returns default rate limiter configuration.
func DefaultRateLimiterConfig() *RateLimiterConfig {
	return &RateLimiterConfig{
		Limit:               defaultLimit,
		Window:              defaultWindow,
		EnableLocalFallback: true,
		KeyPrefix:           constants.RateLimitKeyPrefix,
	}
}

// Lua script for an atomic fixed window: the first hit in a window sets its expiry.
const fixedWindowLuaScript = `
local key = KEYS[1]
local window_ms = tonumber(ARGV[1])

local count = redis.call('INCR', key)
if count == 1 then
    redis.call('PEXPIRE', key, window_ms)
end

local ttl = redis.call('PTTL', key)
if ttl < 0 then
    redis.call('PEXPIRE', key, window_ms)
    ttl = window_ms
end

return {count, ttl}
`

var fixedWindowScript = redis.NewScript(fixedWindowLuaScript)

// NewRedisRateLimiter creates a new Redis-based rate limiter.
//
// Parameters:
//   - client: Redis client
//   - config: Rate limiter configuration
//   - log: Logger instance
//
// Returns:
//   - *RedisRateLimiter: Initialized rate limiter
//   - error: Initialization error if any
func NewRedisRateLimiter(client redis.UniversalClient, config *RateLimiterConfig, log logger.Logger) (*RedisRateLimiter, error) {
	if client == nil {
		return nil, errors.ErrInvalidRequest("redis client is required")
	}
	if config == nil {
		config = DefaultRateLimiterConfig()
	}
	if config.Limit <= 0 {
		config.Limit = defaultLimit
	}
	if config.Window <= 0 {
		config.Window = defaultWindow
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = constants.RateLimitKeyPrefix
	}

	rl := &RedisRateLimiter{
		client: client,
		logger: log.WithComponent("RedisRateLimiter"),
		config: config,
	}
	if config.EnableLocalFallback {
		rl.localBuckets = NewLocalRateLimiter(config.Limit, config.Window)
	}

	rl.logger.Info(context.Background(), "Redis rate limiter initialized",
		logger.Int("limit", config.Limit),
		logger.Duration("window", config.Window),
		logger.Bool("local_fallback", config.EnableLocalFallback),
	)
	return rl, nil
}

// Allow counts one request against the key's current window.
func (rl *RedisRateLimiter) Allow(ctx context.Context, dimension service.RateLimitDimension, key string) (bool, int, time.Time, error) {
	redisKey := rl.buildKey(dimension, key)
	now := time.Now()

	res, err := fixedWindowScript.Run(ctx, rl.client, []string{redisKey}, rl.config.Window.Milliseconds()).Int64Slice()
	if err != nil || len(res) < 2 {
		if err == nil {
			err = fmt.Errorf("invalid Lua script result")
		}
		if rl.localBuckets != nil {
			rl.logger.Warn(ctx, "Rate limit store unavailable, using local bucket",
				logger.String("key", redisKey),
				logger.Err(err),
			)
			return rl.localBuckets.Allow(ctx, dimension, key)
		}
		return false, 0, time.Time{}, errors.WrapError(err, errors.CodeUnavailable, "rate limit check failed")
	}

	count, ttlMs := int(res[0]), res[1]
	remaining := rl.config.Limit - count
	if remaining < 0 {
		remaining = 0
	}
	return count <= rl.config.Limit, remaining, now.Add(time.Duration(ttlMs) * time.Millisecond), nil
}

// ResetLimit clears the current window for a key.
func (rl *RedisRateLimiter) ResetLimit(ctx context.Context, dimension service.RateLimitDimension, key string) error {
	redisKey := rl.buildKey(dimension, key)
	if err := rl.client.Del(ctx, redisKey).Err(); err != nil {
		return errors.WrapError(err, errors.CodeUnavailable, "rate limit reset failed")
	}
	rl.logger.Debug(ctx, "Rate limit reset", logger.String("key", redisKey))
	return nil
}

// Limit returns the configured requests per window.
func (rl *RedisRateLimiter) Limit() int {
	return rl.config.Limit
}

// buildKey builds a Redis key for rate limiting.
func (rl *RedisRateLimiter) buildKey(dimension service.RateLimitDimension, key string) string {
	return fmt.Sprintf("%s%s:%s", rl.config.KeyPrefix, dimension, key)
}
