package common

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Severity represents log message severity levels
type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "DEBUG"
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseSeverity accepts debug, info, warning (or warn) and error, in any case.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return SeverityDebug, nil
	case "info":
		return SeverityInfo, nil
	case "warning", "warn":
		return SeverityWarning, nil
	case "error":
		return SeverityError, nil
	}
	return SeverityWarning, fmt.Errorf("unknown log level %q", s)
}

// Fields are structured key/value pairs attached to a log record.
type Fields map[string]interface{}

// Logger interface defines the logging contract for the simulator
type Logger interface {
	// Log logs a message with the specified severity
	Log(severity Severity, msg string)

	// Logf logs a formatted message with the specified severity
	Logf(severity Severity, format string, args ...interface{})

	// Error logs an error
	Error(err error)

	// Debug logs a debug message
	Debug(msg string)

	// Info logs an info message
	Info(msg string)

	// Warning logs a warning message
	Warning(msg string)

	// WithFields returns a logger that attaches fields to every record
	WithFields(fields Fields) Logger

	// Enabled reports whether records of the given severity are emitted
	Enabled(severity Severity) bool
}

// LogrusLogger implements Logger on top of logrus.
type LogrusLogger struct {
	entry    *logrus.Entry
	minLevel Severity
}

// NewLogrusLogger creates a logger writing to stderr
func NewLogrusLogger(minLevel Severity) *LogrusLogger {
	return NewLogrusLoggerWithWriter(os.Stderr, minLevel)
}

// NewLogrusLoggerWithWriter creates a logger with a custom writer
func NewLogrusLoggerWithWriter(w io.Writer, minLevel Severity) *LogrusLogger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(toLogrusLevel(minLevel))
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		DisableColors:    true,
	})
	return &LogrusLogger{
		entry:    logrus.NewEntry(l),
		minLevel: minLevel,
	}
}

func toLogrusLevel(s Severity) logrus.Level {
	switch s {
	case SeverityDebug:
		return logrus.DebugLevel
	case SeverityInfo:
		return logrus.InfoLevel
	case SeverityWarning:
		return logrus.WarnLevel
	default:
		return logrus.ErrorLevel
	}
}

// Log logs a message with the specified severity
func (l *LogrusLogger) Log(severity Severity, msg string) {
	if severity < l.minLevel {
		return
	}
	l.entry.Log(toLogrusLevel(severity), msg)
}

// Logf logs a formatted message with the specified severity
func (l *LogrusLogger) Logf(severity Severity, format string, args ...interface{}) {
	if severity < l.minLevel {
		return
	}
	l.Log(severity, fmt.Sprintf(format, args...))
}

// Error logs an error
func (l *LogrusLogger) Error(err error) {
	if err != nil {
		l.Log(SeverityError, err.Error())
	}
}

// Debug logs a debug message
func (l *LogrusLogger) Debug(msg string) {
	l.Log(SeverityDebug, msg)
}

// Info logs an info message
func (l *LogrusLogger) Info(msg string) {
	l.Log(SeverityInfo, msg)
}

// Warning logs a warning message
func (l *LogrusLogger) Warning(msg string) {
	l.Log(SeverityWarning, msg)
}

// WithFields returns a child logger carrying fields
func (l *LogrusLogger) WithFields(fields Fields) Logger {
	return &LogrusLogger{
		entry:    l.entry.WithFields(logrus.Fields(fields)),
		minLevel: l.minLevel,
	}
}

// Enabled reports whether severity passes the minimum level
func (l *LogrusLogger) Enabled(severity Severity) bool {
	return severity >= l.minLevel
}

// NoOpLogger is a logger that doesn't log anything
type NoOpLogger struct{}

// NewNoOpLogger creates a new no-op logger
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

// Log does nothing
func (l *NoOpLogger) Log(severity Severity, msg string) {}

// Logf does nothing
func (l *NoOpLogger) Logf(severity Severity, format string, args ...interface{}) {}

// Error does nothing
func (l *NoOpLogger) Error(err error) {}

// Debug does nothing
func (l *NoOpLogger) Debug(msg string) {}

// Info does nothing
func (l *NoOpLogger) Info(msg string) {}

// Warning does nothing
func (l *NoOpLogger) Warning(msg string) {}

// WithFields returns the same no-op logger
func (l *NoOpLogger) WithFields(fields Fields) Logger { return l }

// Enabled is always false
func (l *NoOpLogger) Enabled(severity Severity) bool { return false }
