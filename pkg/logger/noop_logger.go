package logger

import (
	"context"

	"github.com/turtacn/aewis/pkg/constants"
)

type noopLogger struct{}

// NewNoopLogger creates a logger that discards everything. Used in tests.
func NewNoopLogger() Logger {
	return noopLogger{}
}

func (noopLogger) Debug(context.Context, string, ...Field)        {}
func (noopLogger) Info(context.Context, string, ...Field)         {}
func (noopLogger) Warn(context.Context, string, ...Field)         {}
func (noopLogger) Error(context.Context, string, error, ...Field) {}
func (noopLogger) Fatal(context.Context, string, error, ...Field) {}
func (l noopLogger) WithFields(...Field) Logger                   { return l }
func (l noopLogger) WithComponent(string) Logger                  { return l }
func (noopLogger) SetLevel(constants.LogLevel)                    {}
func (noopLogger) GetLevel() constants.LogLevel                   { return constants.LogLevelFatal }
