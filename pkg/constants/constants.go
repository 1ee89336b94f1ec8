// Package constants defines system-wide constants for the AEWIS risk service.
// This package provides type-safe constant definitions used across all modules.
package constants

import "time"

// ================================================================================
// Risk Level Constants
// ================================================================================

// RiskLevel is the categorical academic-risk signal derived from one observation.
type RiskLevel string

const (
	// RiskLevelHigh means two or more risk factors triggered
	RiskLevelHigh RiskLevel = "HIGH"

	// RiskLevelMedium means exactly one risk factor triggered
	RiskLevelMedium RiskLevel = "MEDIUM"

	// RiskLevelLow means no risk factor triggered
	RiskLevelLow RiskLevel = "LOW"
)

// Severity orders risk levels from most to least severe (HIGH=3, LOW=1).
func (l RiskLevel) Severity() int {
	switch l {
	case RiskLevelHigh:
		return 3
	case RiskLevelMedium:
		return 2
	case RiskLevelLow:
		return 1
	default:
		return 0
	}
}

// IsValid reports whether l is one of the three known levels.
func (l RiskLevel) IsValid() bool {
	return l.Severity() > 0
}

// AllRiskLevels lists the levels in reporting order.
var AllRiskLevels = []RiskLevel{RiskLevelHigh, RiskLevelMedium, RiskLevelLow}

// ================================================================================
// Risk Factor Constants
// ================================================================================

const (
	// FactorAttendance is emitted when attendance is below AttendanceThreshold
	FactorAttendance = "Attendance"

	// FactorDecline is emitted when the quiz1→quiz3 drop exceeds DeclineThreshold
	FactorDecline = "Decline"

	// FactorAverage is emitted when the quiz average is below AverageThreshold
	FactorAverage = "Average"

	// ReasonOK is the reason sentinel when no factor triggered
	ReasonOK = "OK"

	// ReasonSeparator joins factor tokens in evaluation order
	ReasonSeparator = "+"
)

const (
	// AttendanceThreshold is the attendance percentage below which a row is at risk
	AttendanceThreshold = 75.0

	// DeclineThreshold is the decline percentage above which a row is at risk
	DeclineThreshold = 15.0

	// AverageThreshold is the quiz average below which a row is at risk
	AverageThreshold = 40.0

	// CrisisHighShare is the HIGH share a subject must strictly exceed to be a crisis
	CrisisHighShare = 0.30
)

// ================================================================================
// Aggregation Limits
// ================================================================================

const (
	// DeclineTrendCap bounds the number of decline samples in a report
	DeclineTrendCap = 50

	// HeatmapRowCap bounds the number of heatmap rows in a report
	HeatmapRowCap = 200

	// TopRiskCap bounds the number of HIGH rows echoed back by an upload
	TopRiskCap = 20

	// TeacherRosterLimit bounds the roster returned for a teacher
	TeacherRosterLimit = 100

	// InterventionListDefault is the default ledger page size
	InterventionListDefault = 100

	// InterventionListMax is the largest ledger page a caller may request
	InterventionListMax = 500
)

const (
	// DefaultRiskTrend is the dashboard risk-trend placeholder
	DefaultRiskTrend = -12.5

	// DefaultSuccessBonus is added to the post-intervention success rate
	DefaultSuccessBonus = 3.5

	// InterventionBaseXP is the flat XP awarded per matched record
	InterventionBaseXP = 50
)

// ================================================================================
// Gamification Constants
// ================================================================================

const (
	// XPPerLevel is the XP span of a single level
	XPPerLevel = 50

	// MinLevel is the lowest reachable level
	MinLevel = 1

	// MaxLevel is the highest reachable level
	MaxLevel = 20
)

// ================================================================================
// Tenant Constants
// ================================================================================

const (
	// DemoCollegeAlias is the short id accepted from the demo dashboard
	DemoCollegeAlias = "demo"

	// DemoCollegeSuffix is appended to DemoCollegeAlias during normalization
	DemoCollegeSuffix = "_001"

	// DefaultCollegeID is the canonical demo tenant
	DefaultCollegeID = DemoCollegeAlias + DemoCollegeSuffix

	// DefaultInterventionAction is used when a request carries no action
	DefaultInterventionAction = "intervene"

	// ServiceName identifies the service in health payloads and traces
	ServiceName = "aewis-backend"
)

// ================================================================================
// Domain Event Types
// ================================================================================

// EventType identifies a published domain event.
type EventType string

const (
	// EventObservationsReplaced is published after a tenant collection is replaced
	EventObservationsReplaced EventType = "observations.replaced"

	// EventInterventionRecorded is published after ledger entries are appended
	EventInterventionRecorded EventType = "intervention.recorded"
)

// ================================================================================
// Cache Constants
// ================================================================================

const (
	// ReportCacheKeyPrefix namespaces aggregate reports in Redis
	ReportCacheKeyPrefix = "aewis:report:"

	// RateLimitKeyPrefix namespaces rate limit windows in Redis
	RateLimitKeyPrefix = "aewis:rl:"

	// IdempotencyKeyPrefix namespaces idempotency keys in Redis
	IdempotencyKeyPrefix = "aewis:idem:"

	// DefaultReportCacheTTL is the Redis lifetime of a cached report
	DefaultReportCacheTTL = 10 * time.Minute

	// DefaultLocalCacheTTL is the in-process lifetime of a cached report
	DefaultLocalCacheTTL = 30 * time.Second
)

// ================================================================================
// Log Level Constants
// ================================================================================

// LogLevel represents the severity level of log messages
type LogLevel int

const (
	// LogLevelDebug for detailed debugging information
	LogLevelDebug LogLevel = iota

	// LogLevelInfo for general informational messages
	LogLevelInfo

	// LogLevelWarn for warning messages
	LogLevelWarn

	// LogLevelError for error messages
	LogLevelError

	// LogLevelFatal for fatal errors that cause shutdown
	LogLevelFatal
)

// ParseLogLevel maps a textual level to a LogLevel, defaulting to Info.
func ParseLogLevel(s string) LogLevel {
	switch s {
	case "debug", "DEBUG":
		return LogLevelDebug
	case "warn", "WARN", "warning":
		return LogLevelWarn
	case "error", "ERROR":
		return LogLevelError
	case "fatal", "FATAL":
		return LogLevelFatal
	default:
		return LogLevelInfo
	}
}

// ================================================================================
// Context Keys
// ================================================================================

// ContextKey is the type for request-scoped context values
type ContextKey string

const (
	// ContextKeyRequestID carries the request correlation id
	ContextKeyRequestID ContextKey = "request_id"

	// ContextKeyCollegeID carries the canonical tenant id
	ContextKeyCollegeID ContextKey = "college_id"

	// ContextKeyTraceID carries the trace id when no span is present
	ContextKeyTraceID ContextKey = "trace_id"
)

// ================================================================================
// HTTP Header Constants
// ================================================================================

const (
	// HeaderRequestID is the request correlation header
	HeaderRequestID = "X-Request-ID"

	// HeaderIdempotencyKey deduplicates retried intervention submissions
	HeaderIdempotencyKey = "Idempotency-Key"

	// HeaderRateLimitLimit reports the window capacity
	HeaderRateLimitLimit = "X-RateLimit-Limit"

	// HeaderRateLimitRemaining reports the remaining window budget
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
)

//Personal.AI order the ending
