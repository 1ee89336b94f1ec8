package service

import "time"

// Metrics defines the interface for collecting business metrics.
// This abstraction allows the application layer to remain independent of the specific monitoring implementation (e.g., Prometheus).
// Metrics 定义了收集业务指标的接口。
// 这种抽象使应用层能够独立于具体的监控实现（例如 Prometheus）。
type Metrics interface {
	// RecordUpload records the outcome and size of a CSV upload.
	// RecordUpload 记录 CSV 上传的结果和行数。
	RecordUpload(collegeID string, success bool, rows int, duration time.Duration)

	// RecordVerdicts records how many rows landed in each risk level.
	// RecordVerdicts 记录各风险等级的行数。
	RecordVerdicts(high, medium, low int)

	// RecordIntervention records the outcome of an intervention request.
	// RecordIntervention 记录干预请求的结果。
	RecordIntervention(collegeID string, result string, entries int)

	// RecordReport records whether a report was served from cache or computed.
	// RecordReport 记录报告来自缓存还是重新计算。
	RecordReport(source string)

	// RecordRateLimitHit records an event when a rate limit is triggered.
	// RecordRateLimitHit 记录触发速率限制的事件。
	RecordRateLimitHit(collegeID, scope string)

	// RecordCacheAccess records a cache hit or miss.
	// RecordCacheAccess 记录缓存命中或未命中。
	RecordCacheAccess(tier string, hit bool)

	// RecordDBQuery records the duration of a database query.
	// RecordDBQuery 记录数据库查询的持续时间。
	RecordDBQuery(operation string, duration time.Duration)

	// UpdateDBConnections updates the gauge for the current number of database connections.
	// UpdateDBConnections 更新当前数据库连接数的仪表盘。
	UpdateDBConnections(active, idle int)
}

// Report sources for Metrics.RecordReport.
const (
	ReportSourceCache    = "cache"
	ReportSourceComputed = "computed"
)

// NoopMetrics discards everything. Used by the CLI and in tests.
type NoopMetrics struct{}

func (NoopMetrics) RecordUpload(string, bool, int, time.Duration) {}
func (NoopMetrics) RecordVerdicts(int, int, int)                  {}
func (NoopMetrics) RecordIntervention(string, string, int)        {}
func (NoopMetrics) RecordReport(string)                           {}
func (NoopMetrics) RecordRateLimitHit(string, string)             {}
func (NoopMetrics) RecordCacheAccess(string, bool)                {}
func (NoopMetrics) RecordDBQuery(string, time.Duration)           {}
func (NoopMetrics) UpdateDBConnections(int, int)                  {}
