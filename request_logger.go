package client

import (
	"fmt"
	"log/slog"
)

// RequestLogger is the interface used by [Client] for logging HTTP requests
// and errors. It matches resty's logger, so the same implementation also
// receives the transport's own warnings. Supply an implementation via
// [WithRequestLogger].
type RequestLogger interface {
	Errorf(format string, v ...any)
	Warnf(format string, v ...any)
	Debugf(format string, v ...any)
}

// NoopLogger is a [RequestLogger] that silently discards all log messages.
// It is the default logger used when no logger is provided to [New].
type NoopLogger struct{}

func (l *NoopLogger) Errorf(_ string, _ ...any) {}
func (l *NoopLogger) Warnf(_ string, _ ...any)  {}
func (l *NoopLogger) Debugf(_ string, _ ...any) {}

// SlogLogger forwards log messages to a [slog.Logger].
type SlogLogger struct {
	Logger *slog.Logger
}

// NewSlogLogger returns a [RequestLogger] writing to logger, or to
// slog.Default() when logger is nil.
func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogLogger{Logger: logger.With("component", "api_client")}
}

func (l *SlogLogger) Errorf(format string, v ...any) {
	l.Logger.Error(fmt.Sprintf(format, v...))
}

func (l *SlogLogger) Warnf(format string, v ...any) {
	l.Logger.Warn(fmt.Sprintf(format, v...))
}

func (l *SlogLogger) Debugf(format string, v ...any) {
	l.Logger.Debug(fmt.Sprintf(format, v...))
}
