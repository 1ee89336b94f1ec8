package redis

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"github.com/turtacn/aewis/internal/domain/models"
	"github.com/turtacn/aewis/internal/domain/service"
	"github.com/turtacn/aewis/pkg/constants"
	"github.com/turtacn/aewis/pkg/errors"
	"github.com/turtacn/aewis/pkg/logger"
)

// Cache tiers reported to Metrics.RecordCacheAccess.
const (
	TierLocal = "local"
	TierRedis = "redis"
)

var _ service.ReportCache = (*ReportCache)(nil)

// ReportCache keeps aggregate reports in a process-local cache backed by Redis.
// Either tier may be absent; with neither, every Get is a miss.
type ReportCache struct {
	local    *gocache.Cache
	client   redis.UniversalClient
	ttl      time.Duration
	localTTL time.Duration
	metrics  service.Metrics
	logger   logger.Logger
}

// NewReportCache creates a two-tier report cache. client may be nil.
func NewReportCache(client redis.UniversalClient, ttl, localTTL time.Duration, metrics service.Metrics, log logger.Logger) *ReportCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if localTTL <= 0 || localTTL > ttl {
		localTTL = ttl
	}
	if metrics == nil {
		metrics = service.NoopMetrics{}
	}
	return &ReportCache{
		local:    gocache.New(localTTL, 2*localTTL),
		client:   client,
		ttl:      ttl,
		localTTL: localTTL,
		metrics:  metrics,
		logger:   log.WithComponent("ReportCache"),
	}
}

func reportKey(collegeID string) string {
	return constants.ReportCacheKeyPrefix + collegeID
}

// cachedReport pins a report to the collection generation it was built from.
type cachedReport struct {
	Generation int64                   `json:"generation"`
	Report     *models.AggregateReport `json:"report"`
}

// Get returns the report cached for generation, or errors.ErrCacheMiss.
// Entries from an older generation are dropped.
func (c *ReportCache) Get(ctx context.Context, collegeID string, generation int64) (*models.AggregateReport, error) {
	key := reportKey(collegeID)
	if v, ok := c.local.Get(key); ok {
		entry := v.(*cachedReport)
		if entry.Generation == generation {
			c.metrics.RecordCacheAccess(TierLocal, true)
			return entry.Report, nil
		}
		if entry.Generation < generation {
			c.local.Delete(key)
		}
	}
	c.metrics.RecordCacheAccess(TierLocal, false)

	if c.client == nil {
		return nil, errors.ErrCacheMiss
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if stderrors.Is(err, redis.Nil) {
			c.metrics.RecordCacheAccess(TierRedis, false)
			return nil, errors.ErrCacheMiss
		}
		return nil, errors.WrapError(err, errors.CodeUnavailable, "report cache read failed")
	}

	var entry cachedReport
	if err := json.Unmarshal(raw, &entry); err != nil || entry.Report == nil {
		c.logger.Warn(ctx, "Dropping undecodable cached report", logger.String("college_id", collegeID), logger.Err(err))
		_ = c.client.Del(ctx, key).Err()
		return nil, errors.ErrCacheMiss
	}
	if entry.Generation != generation {
		c.metrics.RecordCacheAccess(TierRedis, false)
		if entry.Generation < generation {
			_ = c.client.Del(ctx, key).Err()
		}
		return nil, errors.ErrCacheMiss
	}
	c.metrics.RecordCacheAccess(TierRedis, true)
	c.local.Set(key, &entry, c.localTTL)
	return entry.Report, nil
}

// Set stores the report in both tiers under generation. A slow writer may
// replace a newer entry with an older one; Get then reports a miss.
func (c *ReportCache) Set(ctx context.Context, collegeID string, generation int64, report *models.AggregateReport) error {
	if report == nil {
		return nil
	}
	key := reportKey(collegeID)
	entry := &cachedReport{Generation: generation, Report: report}
	c.local.Set(key, entry, c.localTTL)
	if c.client == nil {
		return nil
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		return errors.WrapError(err, errors.CodeInternal, "report encode failed")
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return errors.WrapError(err, errors.CodeUnavailable, "report cache write failed")
	}
	return nil
}

// Invalidate removes the report from both tiers.
func (c *ReportCache) Invalidate(ctx context.Context, collegeID string) error {
	key := reportKey(collegeID)
	c.local.Delete(key)
	if c.client == nil {
		return nil
	}
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return errors.WrapError(err, errors.CodeUnavailable, "report cache invalidation failed")
	}
	return nil
}

// InvalidateLocal drops only the process-local copy. Used when another
// replica announces a change.
func (c *ReportCache) InvalidateLocal(collegeID string) {
	c.local.Delete(reportKey(collegeID))
}
