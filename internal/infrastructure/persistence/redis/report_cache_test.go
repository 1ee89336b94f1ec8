package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/aewis/internal/config"
	"github.com/turtacn/aewis/internal/domain/models"
	"github.com/turtacn/aewis/pkg/constants"
	"github.com/turtacn/aewis/pkg/errors"
	"github.com/turtacn/aewis/pkg/logger"
)

func setupCache(t *testing.T) (*ReportCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewReportCache(client, time.Minute, 10*time.Second, nil, logger.NewNoopLogger()), mr
}

func sampleReport() *models.AggregateReport {
	return &models.AggregateReport{
		Counts: models.RiskCounts{High: 1, Medium: 0, Low: 1},
		KPIs:   models.KPISet{HealthScore: 50, RiskTrend: constants.DefaultRiskTrend, SuccessRate: 50},
		Heatmap: []models.HeatmapRow{
			{StudentID: "S1", Subject: "Math", RiskLevel: constants.RiskLevelHigh, XPScore: 120, Score: 12},
		},
		CrisisSubjects: []string{"Math"},
	}
}

func TestReportCache_MissThenHit(t *testing.T) {
	ctx := context.Background()
	cache, mr := setupCache(t)

	_, err := cache.Get(ctx, "c1", 1)
	assert.True(t, errors.IsNotFound(err))

	require.NoError(t, cache.Set(ctx, "c1", 1, sampleReport()))
	assert.True(t, mr.Exists(constants.ReportCacheKeyPrefix+"c1"))

	got, err := cache.Get(ctx, "c1", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Counts.High)
	assert.Equal(t, []string{"Math"}, got.CrisisSubjects)
}

func TestReportCache_RedisTierRefillsLocal(t *testing.T) {
	ctx := context.Background()
	cache, _ := setupCache(t)
	require.NoError(t, cache.Set(ctx, "c1", 1, sampleReport()))

	// A fresh replica only sees the Redis copy.
	cache.InvalidateLocal("c1")
	got, err := cache.Get(ctx, "c1", 1)
	require.NoError(t, err)
	require.Len(t, got.Heatmap, 1)
	assert.Equal(t, "S1", got.Heatmap[0].StudentID)
	assert.Equal(t, 12.0, got.Heatmap[0].Score)
}

func TestReportCache_Invalidate(t *testing.T) {
	ctx := context.Background()
	cache, mr := setupCache(t)
	require.NoError(t, cache.Set(ctx, "c1", 1, sampleReport()))
	require.NoError(t, cache.Set(ctx, "c2", 1, sampleReport()))

	require.NoError(t, cache.Invalidate(ctx, "c1"))
	assert.False(t, mr.Exists(constants.ReportCacheKeyPrefix+"c1"))

	_, err := cache.Get(ctx, "c1", 1)
	assert.ErrorIs(t, err, errors.ErrCacheMiss)

	_, err = cache.Get(ctx, "c2", 1)
	assert.NoError(t, err)
}

func TestReportCache_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	cache, mr := setupCache(t)
	require.NoError(t, cache.Set(ctx, "c1", 1, sampleReport()))

	mr.FastForward(2 * time.Minute)
	cache.InvalidateLocal("c1")

	_, err := cache.Get(ctx, "c1", 1)
	assert.True(t, errors.IsNotFound(err))
}

func TestReportCache_CorruptEntryIsDropped(t *testing.T) {
	ctx := context.Background()
	cache, mr := setupCache(t)
	require.NoError(t, mr.Set(constants.ReportCacheKeyPrefix+"c1", "{not json"))

	_, err := cache.Get(ctx, "c1", 1)
	assert.True(t, errors.IsNotFound(err))
	assert.False(t, mr.Exists(constants.ReportCacheKeyPrefix+"c1"))
}

func TestReportCache_LocalOnly(t *testing.T) {
	ctx := context.Background()
	cache := NewReportCache(nil, time.Minute, 0, nil, logger.NewNoopLogger())

	_, err := cache.Get(ctx, "c1", 1)
	assert.True(t, errors.IsNotFound(err))

	require.NoError(t, cache.Set(ctx, "c1", 1, sampleReport()))
	_, err = cache.Get(ctx, "c1", 1)
	require.NoError(t, err)

	require.NoError(t, cache.Invalidate(ctx, "c1"))
	_, err = cache.Get(ctx, "c1", 1)
	assert.True(t, errors.IsNotFound(err))
}

func TestReportCache_GenerationMismatch(t *testing.T) {
	ctx := context.Background()
	cache, mr := setupCache(t)
	key := constants.ReportCacheKeyPrefix + "c1"

	// Built from generation 1, then the collection moved to generation 2.
	require.NoError(t, cache.Set(ctx, "c1", 1, sampleReport()))

	_, err := cache.Get(ctx, "c1", 2)
	assert.ErrorIs(t, err, errors.ErrCacheMiss)
	assert.False(t, mr.Exists(key), "older entry is dropped from redis")

	// A reader still holding generation 1 must not see a newer entry, nor evict it.
	require.NoError(t, cache.Set(ctx, "c1", 3, sampleReport()))
	_, err = cache.Get(ctx, "c1", 1)
	assert.ErrorIs(t, err, errors.ErrCacheMiss)
	cache.InvalidateLocal("c1")
	_, err = cache.Get(ctx, "c1", 1)
	assert.ErrorIs(t, err, errors.ErrCacheMiss)
	assert.True(t, mr.Exists(key))

	got, err := cache.Get(ctx, "c1", 3)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Counts.High)
}

func TestReportCache_GenerationMismatchLocalOnly(t *testing.T) {
	ctx := context.Background()
	cache := NewReportCache(nil, time.Minute, 0, nil, logger.NewNoopLogger())

	require.NoError(t, cache.Set(ctx, "c1", 4, sampleReport()))
	_, err := cache.Get(ctx, "c1", 5)
	assert.ErrorIs(t, err, errors.ErrCacheMiss)

	// The stale entry is gone even for a reader that asks for it again.
	_, err = cache.Get(ctx, "c1", 4)
	assert.ErrorIs(t, err, errors.ErrCacheMiss)
}

func TestRedisConnection_HealthCheck(t *testing.T) {
	mr := miniredis.RunT(t)
	conn := NewRedisConnectionFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), logger.NewNoopLogger())

	health, err := conn.HealthCheck(context.Background())
	require.NoError(t, err)
	assert.Equal(t, true, health["connected"])
	require.NoError(t, conn.Close())

	_, err = conn.HealthCheck(context.Background())
	assert.Error(t, err)
}

func TestRedisConnection_ConnectFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	conn := NewRedisConnection(&config.RedisConfig{Addresses: []string{addr}, DialTimeout: 200 * time.Millisecond}, logger.NewNoopLogger())
	err := conn.Connect(context.Background())
	require.Error(t, err)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Contains(t, appErr.Error(), "Failed to connect to cache")
	assert.Nil(t, conn.GetClient())

	err = NewRedisConnection(&config.RedisConfig{}, logger.NewNoopLogger()).Connect(context.Background())
	assert.ErrorContains(t, err, "redis addresses not configured")
}
