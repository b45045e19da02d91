package log

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// LogLevel represents logging severity
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
	// LogLevelNone disables all logging
	LogLevelNone
)

var levelNames = map[LogLevel]string{
	LogLevelDebug: "DEBUG",
	LogLevelInfo:  "INFO",
	LogLevelWarn:  "WARN",
	LogLevelError: "ERROR",
	LogLevelNone:  "NONE",
}

func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", l)
}

// ParseLevel converts a log.level setting such as "debug" or "WARN".
// "none", "off" and "disable" all map to LogLevelNone.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LogLevelDebug, nil
	case "", "info":
		return LogLevelInfo, nil
	case "warn", "warning":
		return LogLevelWarn, nil
	case "error":
		return LogLevelError, nil
	case "none", "off", "disable":
		return LogLevelNone, nil
	}
	return LogLevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Logger is the leveled logging interface used across pitchgraph.
type Logger interface {
	Debug(format string, v ...any)
	Info(format string, v ...any)
	Warn(format string, v ...any)
	Error(format string, v ...any)
}

// NoOpLogger discards everything.
type NoOpLogger struct{}

func (l *NoOpLogger) Debug(format string, v ...any) {}
func (l *NoOpLogger) Info(format string, v ...any)  {}
func (l *NoOpLogger) Warn(format string, v ...any)  {}
func (l *NoOpLogger) Error(format string, v ...any) {}

// Named returns a Logger that tags every line of base with component, e.g.
// "[http] GET /view 200". Nesting concatenates the tags.
func Named(base Logger, component string) Logger {
	if base == nil {
		base = GetDefaultLogger()
	}
	if component == "" {
		return base
	}
	return &namedLogger{base: base, tag: "[" + component + "] "}
}

type namedLogger struct {
	base Logger
	tag  string
}

func (n *namedLogger) Debug(format string, v ...any) { n.base.Debug(n.tag+format, v...) }
func (n *namedLogger) Info(format string, v ...any)  { n.base.Info(n.tag+format, v...) }
func (n *namedLogger) Warn(format string, v ...any)  { n.base.Warn(n.tag+format, v...) }
func (n *namedLogger) Error(format string, v ...any) { n.base.Error(n.tag+format, v...) }

type holder struct{ Logger }

var defaultLogger atomic.Pointer[holder]

func init() {
	defaultLogger.Store(&holder{New(LogLevelInfo)})
}

// SetDefaultLogger replaces the package-level logger. Nil silences it.
func SetDefaultLogger(logger Logger) {
	if logger == nil {
		logger = &NoOpLogger{}
	}
	defaultLogger.Store(&holder{logger})
}

// GetDefaultLogger returns the current package-level logger.
func GetDefaultLogger() Logger {
	return defaultLogger.Load().Logger
}

// SetLogLevel replaces the package-level logger with a golog logger at level.
func SetLogLevel(level LogLevel) {
	SetDefaultLogger(New(level))
}

func Debug(format string, v ...any) { GetDefaultLogger().Debug(format, v...) }
func Info(format string, v ...any)  { GetDefaultLogger().Info(format, v...) }
func Warn(format string, v ...any)  { GetDefaultLogger().Warn(format, v...) }
func Error(format string, v ...any) { GetDefaultLogger().Error(format, v...) }
