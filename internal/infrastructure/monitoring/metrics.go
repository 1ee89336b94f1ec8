package monitoring

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics manages the Prometheus metrics.
type Metrics struct {
	UploadRequests      *prometheus.CounterVec
	UploadRows          prometheus.Histogram
	UploadLatency       *prometheus.HistogramVec
	Verdicts            *prometheus.CounterVec
	Interventions       *prometheus.CounterVec
	InterventionEntries prometheus.Counter
	Reports             *prometheus.CounterVec
	RateLimitHits       *prometheus.CounterVec
	CacheAccess         *prometheus.CounterVec
	DBQueryDuration     *prometheus.HistogramVec
	DBConnections       *prometheus.GaugeVec
	HTTPActiveRequests  *prometheus.GaugeVec
	HTTPRequests        *prometheus.CounterVec
	HTTPDuration        *prometheus.HistogramVec
	HTTPErrors          *prometheus.CounterVec
}

// NewMetrics creates and registers the Prometheus metrics on the default registry.
func NewMetrics() *Metrics {
	return NewMetricsWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsWithRegistry creates the metrics on reg. Tests pass a fresh registry.
func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		UploadRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aewis_uploads_total",
				Help: "Total number of CSV uploads.",
			},
			[]string{"result"},
		),
		UploadRows: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "aewis_upload_rows",
				Help:    "Number of observation rows per upload.",
				Buckets: prometheus.ExponentialBuckets(10, 4, 7),
			},
		),
		UploadLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aewis_upload_latency_seconds",
				Help:    "Latency of CSV uploads.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		),
		Verdicts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aewis_risk_verdicts_total",
				Help: "Observations classified, by risk level.",
			},
			[]string{"level"},
		),
		Interventions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aewis_interventions_total",
				Help: "Total number of intervention requests.",
			},
			[]string{"result"},
		),
		InterventionEntries: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "aewis_intervention_entries_total",
				Help: "Total number of intervention ledger entries written.",
			},
		),
		Reports: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aewis_report_requests_total",
				Help: "Aggregate reports served, by source.",
			},
			[]string{"source"},
		),
		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aewis_rate_limit_hits_total",
				Help: "Total number of rate limit hits.",
			},
			[]string{"scope"},
		),
		CacheAccess: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aewis_cache_access_total",
				Help: "Report cache lookups, by tier and result.",
			},
			[]string{"tier", "hit"},
		),
		DBQueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aewis_db_query_duration_seconds",
				Help:    "Latency of database operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		DBConnections: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "aewis_db_connections",
				Help: "Database pool connections, by state.",
			},
			[]string{"state"},
		),
		HTTPActiveRequests: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "aewis_http_active_requests",
				Help: "In-flight HTTP requests.",
			},
			[]string{"path", "method"},
		),
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aewis_http_requests_total",
				Help: "HTTP requests served.",
			},
			[]string{"path", "method", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aewis_http_request_duration_seconds",
				Help:    "HTTP request latency.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method", "status"},
		),
		HTTPErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aewis_http_request_errors_total",
				Help: "HTTP responses with status >= 400.",
			},
			[]string{"path", "method", "status"},
		),
	}
}

func resultLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// RecordUpload records metrics for one upload.
func (m *Metrics) RecordUpload(success bool, rows int, duration time.Duration) {
	result := resultLabel(success)
	m.UploadRequests.WithLabelValues(result).Inc()
	m.UploadLatency.WithLabelValues(result).Observe(duration.Seconds())
	if success {
		m.UploadRows.Observe(float64(rows))
	}
}

// RecordVerdicts adds an upload's per-level counts.
func (m *Metrics) RecordVerdicts(high, medium, low int) {
	m.Verdicts.WithLabelValues("HIGH").Add(float64(high))
	m.Verdicts.WithLabelValues("MEDIUM").Add(float64(medium))
	m.Verdicts.WithLabelValues("LOW").Add(float64(low))
}

// RecordIntervention records one intervention request.
func (m *Metrics) RecordIntervention(result string, entries int) {
	m.Interventions.WithLabelValues(result).Inc()
	m.InterventionEntries.Add(float64(entries))
}

// RecordReport records where an aggregate report came from.
func (m *Metrics) RecordReport(source string) {
	m.Reports.WithLabelValues(source).Inc()
}

// RecordRateLimitHit records a rate limit hit.
func (m *Metrics) RecordRateLimitHit(scope string) {
	m.RateLimitHits.WithLabelValues(scope).Inc()
}

// RecordCacheAccess records a cache lookup.
func (m *Metrics) RecordCacheAccess(tier string, hit bool) {
	m.CacheAccess.WithLabelValues(tier, strconv.FormatBool(hit)).Inc()
}

// RecordDBQuery records the latency of one database operation.
func (m *Metrics) RecordDBQuery(operation string, duration time.Duration) {
	m.DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateDBConnections sets the pool gauges.
func (m *Metrics) UpdateDBConnections(active, idle int) {
	m.DBConnections.WithLabelValues("active").Set(float64(active))
	m.DBConnections.WithLabelValues("idle").Set(float64(idle))
}

func (m *Metrics) ActiveRequestsInc(path, method string) {
	m.HTTPActiveRequests.WithLabelValues(path, method).Inc()
}

func (m *Metrics) ActiveRequestsDec(path, method string) {
	m.HTTPActiveRequests.WithLabelValues(path, method).Dec()
}

func (m *Metrics) ObserveRequestDuration(path, method string, status int, seconds float64) {
	code := strconv.Itoa(status)
	m.HTTPRequests.WithLabelValues(path, method, code).Inc()
	m.HTTPDuration.WithLabelValues(path, method, code).Observe(seconds)
}

func (m *Metrics) IncRequestErrors(path, method string, status int) {
	m.HTTPErrors.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
}

//Personal.AI order the ending
