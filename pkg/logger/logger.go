// Package logger provides structured logging for the AEWIS risk service.
// It defines the Logger contract used across layers, a dependency-free JSON
// implementation for bootstrapping and tools, and trace correlation through OpenTelemetry.
package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/turtacn/aewis/pkg/constants"
)

// ================================================================================
// Logger Interface
// ================================================================================

// Logger defines the interface for structured logging
type Logger interface {
	// Debug logs a debug message
	Debug(ctx context.Context, message string, fields ...Field)

	// Info logs an informational message
	Info(ctx context.Context, message string, fields ...Field)

	// Warn logs a warning message
	Warn(ctx context.Context, message string, fields ...Field)

	// Error logs an error message
	Error(ctx context.Context, message string, err error, fields ...Field)

	// Fatal logs a fatal message and exits the application
	Fatal(ctx context.Context, message string, err error, fields ...Field)

	// WithFields creates a new logger with additional fields
	WithFields(fields ...Field) Logger

	// WithComponent creates a new logger for a specific component
	WithComponent(component string) Logger

	// SetLevel sets the logging level
	SetLevel(level constants.LogLevel)

	// GetLevel returns the current logging level
	GetLevel() constants.LogLevel
}

// ================================================================================
// Field Type for Structured Logging
// ================================================================================

// Field represents a key-value pair for structured logging
type Field struct {
	Key   string
	Value interface{}
}

// F is a shorthand constructor for Field
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

func String(key string, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// Err creates an error field. A nil error yields a nil value.
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Duration creates a duration field rendered as a Go duration string
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

// Time creates a time field rendered as RFC3339
func Time(key string, value time.Time) Field {
	return Field{Key: key, Value: value.Format(time.RFC3339)}
}

func Strings(key string, value []string) Field {
	return Field{Key: key, Value: value}
}

func Any(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// ================================================================================
// JSON Logger Implementation
// ================================================================================

type jsonLogger struct {
	mu         *sync.Mutex
	level      *constants.LogLevel
	output     io.Writer
	component  string
	baseFields []Field
}

// LogEntry represents a structured log entry
type LogEntry struct {
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Component string                 `json:"component,omitempty"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	TraceID   string                 `json:"trace_id,omitempty"`
	SpanID    string                 `json:"span_id,omitempty"`
	Caller    string                 `json:"caller,omitempty"`
}

// NewLogger creates a JSON Logger writing to output (stdout when nil).
func NewLogger(level constants.LogLevel, output io.Writer) Logger {
	if output == nil {
		output = os.Stdout
	}
	lvl := level
	return &jsonLogger{
		mu:     &sync.Mutex{},
		level:  &lvl,
		output: output,
	}
}

// NewDefaultLogger creates a logger with default settings (stdout, Info level)
func NewDefaultLogger() Logger {
	return NewLogger(constants.LogLevelInfo, os.Stdout)
}

func (l *jsonLogger) enabled(level constants.LogLevel) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return level >= *l.level
}

func (l *jsonLogger) Debug(ctx context.Context, message string, fields ...Field) {
	if l.enabled(constants.LogLevelDebug) {
		l.write(ctx, constants.LogLevelDebug, message, fields)
	}
}

func (l *jsonLogger) Info(ctx context.Context, message string, fields ...Field) {
	if l.enabled(constants.LogLevelInfo) {
		l.write(ctx, constants.LogLevelInfo, message, fields)
	}
}

func (l *jsonLogger) Warn(ctx context.Context, message string, fields ...Field) {
	if l.enabled(constants.LogLevelWarn) {
		l.write(ctx, constants.LogLevelWarn, message, fields)
	}
}

func (l *jsonLogger) Error(ctx context.Context, message string, err error, fields ...Field) {
	if !l.enabled(constants.LogLevelError) {
		return
	}
	if err != nil {
		fields = append(fields, Err(err))
	}
	l.write(ctx, constants.LogLevelError, message, fields)
}

// Fatal logs regardless of level and exits.
func (l *jsonLogger) Fatal(ctx context.Context, message string, err error, fields ...Field) {
	if err != nil {
		fields = append(fields, Err(err))
	}
	l.write(ctx, constants.LogLevelFatal, message, fields)
	os.Exit(1)
}

func (l *jsonLogger) WithFields(fields ...Field) Logger {
	base := make([]Field, 0, len(l.baseFields)+len(fields))
	base = append(base, l.baseFields...)
	base = append(base, fields...)
	return &jsonLogger{mu: l.mu, level: l.level, output: l.output, component: l.component, baseFields: base}
}

func (l *jsonLogger) WithComponent(component string) Logger {
	return &jsonLogger{mu: l.mu, level: l.level, output: l.output, component: component, baseFields: l.baseFields}
}

// SetLevel changes the level for this logger and every logger derived from it.
func (l *jsonLogger) SetLevel(level constants.LogLevel) {
	l.mu.Lock()
	*l.level = level
	l.mu.Unlock()
}

func (l *jsonLogger) GetLevel() constants.LogLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return *l.level
}

func (l *jsonLogger) write(ctx context.Context, level constants.LogLevel, message string, fields []Field) {
	entry := LogEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Level:     LevelName(level),
		Component: l.component,
		Message:   message,
		Fields:    make(map[string]interface{}, len(l.baseFields)+len(fields)),
	}

	if ctx != nil {
		if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
			entry.TraceID = sc.TraceID().String()
			entry.SpanID = sc.SpanID().String()
		}
		for k, v := range ContextFields(ctx) {
			entry.Fields[k] = v
		}
	}

	if level >= constants.LogLevelError {
		entry.Caller = caller(3)
	}

	for _, f := range l.baseFields {
		entry.Fields[f.Key] = Sanitize(f.Key, f.Value)
	}
	for _, f := range fields {
		entry.Fields[f.Key] = Sanitize(f.Key, f.Value)
	}

	data, err := json.Marshal(entry)
	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		fmt.Fprintf(l.output, "[%s] %s: %s (marshal error: %v)\n", entry.Timestamp, entry.Level, message, err)
		return
	}
	fmt.Fprintln(l.output, string(data))
}

// ================================================================================
// Utility Functions
// ================================================================================

// LevelName converts a log level to its string representation
func LevelName(level constants.LogLevel) string {
	switch level {
	case constants.LogLevelDebug:
		return "DEBUG"
	case constants.LogLevelInfo:
		return "INFO"
	case constants.LogLevelWarn:
		return "WARN"
	case constants.LogLevelError:
		return "ERROR"
	case constants.LogLevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ContextFields extracts request-scoped values that every log line should carry.
func ContextFields(ctx context.Context) map[string]interface{} {
	out := make(map[string]interface{}, 2)
	if v, ok := ctx.Value(constants.ContextKeyRequestID).(string); ok && v != "" {
		out["request_id"] = v
	}
	if v, ok := ctx.Value(constants.ContextKeyCollegeID).(string); ok && v != "" {
		out["college_id"] = v
	}
	return out
}

func caller(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "unknown"
	}
	if idx := strings.LastIndex(file, "/"); idx >= 0 {
		file = file[idx+1:]
	}
	return fmt.Sprintf("%s:%d", file, line)
}

var sensitiveKeys = []string{"password", "secret", "token", "api_key", "authorization", "dsn"}

// Sanitize masks values whose key looks like a credential.
func Sanitize(key string, value interface{}) interface{} {
	lower := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(lower, s) {
			if str, ok := value.(string); ok && len(str) > 8 {
				return str[:4] + "***" + str[len(str)-4:]
			}
			return "***REDACTED***"
		}
	}
	return value
}

// ================================================================================
// Performance Logging
// ================================================================================

// PerformanceLogger tracks operation performance
type PerformanceLogger struct {
	logger    Logger
	threshold time.Duration
}

// NewPerformanceLogger creates a performance logger that warns above threshold.
func NewPerformanceLogger(logger Logger, threshold time.Duration) *PerformanceLogger {
	if threshold <= 0 {
		threshold = time.Second
	}
	return &PerformanceLogger{logger: logger.WithComponent("performance"), threshold: threshold}
}

// StartOperation returns a function that logs the elapsed time when called.
func (p *PerformanceLogger) StartOperation(ctx context.Context, operation string) func(...Field) {
	start := time.Now()
	return func(fields ...Field) {
		elapsed := time.Since(start)
		all := append([]Field{
			String("operation", operation),
			Int64("duration_ms", elapsed.Milliseconds()),
		}, fields...)
		if elapsed > p.threshold {
			p.logger.Warn(ctx, "Slow operation detected", all...)
			return
		}
		p.logger.Debug(ctx, "Operation completed", all...)
	}
}

// ================================================================================
// Global Logger Instance
// ================================================================================

var (
	globalMu     sync.RWMutex
	globalLogger = NewDefaultLogger()
)

// SetGlobalLogger sets the global logger instance
func SetGlobalLogger(l Logger) {
	globalMu.Lock()
	globalLogger = l
	globalMu.Unlock()
}

// GetGlobalLogger returns the global logger instance
func GetGlobalLogger() Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

//Personal.AI order the ending
