package service

import (
	"context"
	"time"

	"github.com/turtacn/aewis/internal/domain/models"
)

//go:generate mockery --name ReportCache --output mocks --outpkg mocks
// ReportCache stores computed AggregateReports per college.
// ReportCache 按学院缓存计算得到的聚合报告。
type ReportCache interface {
	// Get returns the report cached for the given collection generation, or
	// errors.ErrCacheMiss. An entry written for another generation is a miss.
	// Get 返回指定数据集版本的缓存报告；版本不一致视为未命中。
	Get(ctx context.Context, collegeID string, generation int64) (*models.AggregateReport, error)
	// Set stores a report built from the given generation until the TTL elapses.
	// Set 缓存基于指定版本构建的报告，直到 TTL 过期。
	Set(ctx context.Context, collegeID string, generation int64, report *models.AggregateReport) error
	// Invalidate drops the cached report for a college from every tier.
	// Invalidate 从所有缓存层删除学院的报告。
	Invalidate(ctx context.Context, collegeID string) error
}

// OperationTracer runs fn inside a named span so storage writes show up in traces.
// OperationTracer 在命名 Span 中执行 fn。
type OperationTracer interface {
	Trace(ctx context.Context, operation string, fn func(context.Context) error) error
}

// TraceOrRun runs fn inside a span when tracer is set, and directly otherwise.
func TraceOrRun(ctx context.Context, tracer OperationTracer, operation string, fn func(context.Context) error) error {
	if tracer == nil {
		return fn(ctx)
	}
	return tracer.Trace(ctx, operation, fn)
}

//go:generate mockery --name EventPublisher --output mocks --outpkg mocks
// EventPublisher announces changes to a tenant collection.
// EventPublisher 发布租户数据集变更事件。
type EventPublisher interface {
	Publish(ctx context.Context, event models.DomainEvent) error
	Close() error
}

// RateLimitDimension defines the logical scope of a rate limit.
// RateLimitDimension 定义了速率限制的逻辑范围。
type RateLimitDimension string

const (
	RateLimitDimensionCollege RateLimitDimension = "college" // Per-college limit / 每个学院的限制
	RateLimitDimensionIP      RateLimitDimension = "ip"      // Per-IP limit / 每个 IP 的限制
)

//go:generate mockery --name RateLimitService --output mocks --outpkg mocks
// RateLimitService defines the interface for rate limiting operations.
// RateLimitService 定义了速率限制操作的接口。
type RateLimitService interface {
	// Allow checks if a request is allowed for the given dimension and key.
	// It returns whether the request is allowed, the number of remaining requests, and the time when the window resets.
	// Allow 检查在给定维度和键下是否允许请求。
	// 它返回是否允许请求、剩余请求数以及窗口重置的时间。
	Allow(ctx context.Context, dimension RateLimitDimension, key string) (allowed bool, remaining int, resetAt time.Time, err error)
}
