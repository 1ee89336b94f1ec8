// Package monitoring provides adapters to connect the domain's metrics interface with a concrete implementation like Prometheus.
package monitoring

import (
	"time"

	"github.com/turtacn/aewis/internal/domain/service"
)

// MetricsAdapter implements the domain's service.Metrics interface, sending metrics to a Prometheus backend.
// MetricsAdapter 实现了域的 service.Metrics 接口，将指标发送到 Prometheus 后端。
type MetricsAdapter struct {
	metrics *Metrics
}

var _ service.Metrics = (*MetricsAdapter)(nil)

// NewMetricsAdapter wraps a concrete Prometheus Metrics object.
// College ids are not used as labels.
// NewMetricsAdapter 包装具体的 Prometheus Metrics 对象。
func NewMetricsAdapter(metrics *Metrics) service.Metrics {
	return &MetricsAdapter{metrics: metrics}
}

// RecordUpload delegates the call to the underlying Prometheus Metrics object.
// RecordUpload 将调用委托给底层的 Prometheus Metrics 对象。
func (a *MetricsAdapter) RecordUpload(_ string, success bool, rows int, duration time.Duration) {
	a.metrics.RecordUpload(success, rows, duration)
}

// RecordVerdicts delegates the call to the underlying Prometheus Metrics object.
// RecordVerdicts 将调用委托给底层的 Prometheus Metrics 对象。
func (a *MetricsAdapter) RecordVerdicts(high, medium, low int) {
	a.metrics.RecordVerdicts(high, medium, low)
}

// RecordIntervention delegates the call to the underlying Prometheus Metrics object.
// RecordIntervention 将调用委托给底层的 Prometheus Metrics 对象。
func (a *MetricsAdapter) RecordIntervention(_, result string, entries int) {
	a.metrics.RecordIntervention(result, entries)
}

// RecordReport delegates the call to the underlying Prometheus Metrics object.
// RecordReport 将调用委托给底层的 Prometheus Metrics 对象。
func (a *MetricsAdapter) RecordReport(source string) {
	a.metrics.RecordReport(source)
}

// RecordRateLimitHit delegates the call to the underlying Prometheus Metrics object.
// RecordRateLimitHit 将调用委托给底层的 Prometheus Metrics 对象。
func (a *MetricsAdapter) RecordRateLimitHit(_ string, scope string) {
	a.metrics.RecordRateLimitHit(scope)
}

// RecordCacheAccess delegates the call to the underlying Prometheus Metrics object.
// RecordCacheAccess 将调用委托给底层的 Prometheus Metrics 对象。
func (a *MetricsAdapter) RecordCacheAccess(tier string, hit bool) {
	a.metrics.RecordCacheAccess(tier, hit)
}

// RecordDBQuery delegates the call to the underlying Prometheus Metrics object.
// RecordDBQuery 将调用委托给底层的 Prometheus Metrics 对象。
func (a *MetricsAdapter) RecordDBQuery(operation string, duration time.Duration) {
	a.metrics.RecordDBQuery(operation, duration)
}

// UpdateDBConnections delegates the call to the underlying Prometheus Metrics object.
// UpdateDBConnections 将调用委托给底层的 Prometheus Metrics 对象。
func (a *MetricsAdapter) UpdateDBConnections(active, idle int) {
	a.metrics.UpdateDBConnections(active, idle)
}
