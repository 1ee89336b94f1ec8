// Package ratelimit provides rate limiting implementations.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/turtacn/aewis/internal/domain/service"
)

// TokenBucket implements the token bucket algorithm for rate limiting.
// It provides thread-safe rate limiting with automatic token refill.
type TokenBucket struct {
	mu         sync.Mutex
	capacity   float64   // Maximum number of tokens
	tokens     float64   // Current number of tokens
	rate       float64   // Tokens added per second
	lastRefill time.Time // Last time tokens were refilled
	now        func() time.Time
}

// TokenBucketConfig holds configuration for creating a token bucket.
type TokenBucketConfig struct {
	// Capacity is the maximum number of tokens the bucket can hold
	Capacity float64
	// Rate is the number of tokens added per second
	Rate float64
}

// NewTokenBucket creates a new, full token bucket.
//
// Parameters:
//   - capacity: Maximum number of tokens the bucket can hold
//   - rate: Number of tokens added per second
//
// Returns:
//   - *TokenBucket: Initialized token bucket
func NewTokenBucket(capacity, rate float64) *TokenBucket {
	return newTokenBucket(capacity, rate, time.Now)
}

func newTokenBucket(capacity, rate float64, now func() time.Time) *TokenBucket {
	if capacity <= 0 {
		capacity = float64(defaultLimit)
	}
	if rate <= 0 {
		rate = capacity / defaultWindow.Seconds()
	}
	return &TokenBucket{
		capacity:   capacity,
		tokens:     capacity,
		rate:       rate,
		lastRefill: now(),
		now:        now,
	}
}

// Allow attempts to consume one token from the bucket.
func (tb *TokenBucket) Allow() bool {
	return tb.AllowN(1.0)
}

// AllowN attempts to consume n tokens from the bucket.
func (tb *TokenBucket) AllowN(n float64) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	if tb.tokens >= n {
		tb.tokens -= n
		return true
	}
	return false
}

// refill adds tokens based on elapsed time. Must be called with lock held.
func (tb *TokenBucket) refill() {
	now := tb.now()
	tb.tokens += now.Sub(tb.lastRefill).Seconds() * tb.rate
	if tb.tokens > tb.capacity {
		tb.tokens = tb.capacity
	}
	tb.lastRefill = now
}

// Available returns the current number of tokens available.
func (tb *TokenBucket) Available() float64 {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	return tb.tokens
}

// TimeUntilAvailable returns the duration until n tokens will be available.
func (tb *TokenBucket) TimeUntilAvailable(n float64) time.Duration {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	if tb.tokens >= n {
		return 0
	}
	return time.Duration((n - tb.tokens) / tb.rate * float64(time.Second))
}

// TokenBucketPool manages one token bucket per key.
type TokenBucketPool struct {
	mu      sync.Mutex
	buckets map[string]*tokenBucketEntry
	config  TokenBucketConfig
	now     func() time.Time
}

type tokenBucketEntry struct {
	bucket   *TokenBucket
	lastUsed time.Time
}

// NewTokenBucketPool creates a new token bucket pool.
func NewTokenBucketPool(config TokenBucketConfig) *TokenBucketPool {
	return &TokenBucketPool{
		buckets: make(map[string]*tokenBucketEntry),
		config:  config,
		now:     time.Now,
	}
}

// GetOrCreate gets an existing bucket or creates a new one.
func (p *TokenBucketPool) GetOrCreate(key string) *TokenBucket {
	p.mu.Lock()
	defer p.mu.Unlock()

	if entry, exists := p.buckets[key]; exists {
		entry.lastUsed = p.now()
		return entry.bucket
	}
	bucket := newTokenBucket(p.config.Capacity, p.config.Rate, p.now)
	p.buckets[key] = &tokenBucketEntry{bucket: bucket, lastUsed: p.now()}
	return bucket
}

// Remove removes a bucket from the pool.
func (p *TokenBucketPool) Remove(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.buckets, key)
}

// Cleanup removes buckets that haven't been used for maxIdle and returns how many were removed.
func (p *TokenBucketPool) Cleanup(maxIdle time.Duration) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	removed := 0
	for key, entry := range p.buckets {
		if now.Sub(entry.lastUsed) > maxIdle {
			delete(p.buckets, key)
			removed++
		}
	}
	return removed
}

// Size returns the number of buckets in the pool.
func (p *TokenBucketPool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.buckets)
}

// Clear removes all buckets from the pool.
func (p *TokenBucketPool) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.buckets = make(map[string]*tokenBucketEntry)
}

// LocalRateLimiter is the in-process RateLimitService used when Redis is disabled.
// Limits are per replica.
type LocalRateLimiter struct {
	pool *TokenBucketPool
}

var _ service.RateLimitService = (*LocalRateLimiter)(nil)

// NewLocalRateLimiter allows limit requests per window per key, refilling continuously.
func NewLocalRateLimiter(limit int, window time.Duration) *LocalRateLimiter {
	if limit <= 0 {
		limit = defaultLimit
	}
	if window <= 0 {
		window = defaultWindow
	}
	return &LocalRateLimiter{pool: NewTokenBucketPool(TokenBucketConfig{
		Capacity: float64(limit),
		Rate:     float64(limit) / window.Seconds(),
	})}
}

// Allow implements service.RateLimitService.
func (l *LocalRateLimiter) Allow(_ context.Context, dimension service.RateLimitDimension, key string) (bool, int, time.Time, error) {
	bucket := l.pool.GetOrCreate(string(dimension) + ":" + key)
	allowed := bucket.Allow()
	resetAt := l.pool.now().Add(bucket.TimeUntilAvailable(1))
	return allowed, int(bucket.Available()), resetAt, nil
}

// Cleanup drops buckets idle for longer than maxIdle.
func (l *LocalRateLimiter) Cleanup(maxIdle time.Duration) int {
	return l.pool.Cleanup(maxIdle)
}

//Personal.AI order the ending
