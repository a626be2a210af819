// Package logging provides the structured logger used throughout the
// client: leveled, component-scoped, and backed by zap rather than a
// hand-rolled formatter.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents the severity of a log entry.
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case DebugLevel:
		return zapcore.DebugLevel
	case InfoLevel:
		return zapcore.InfoLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// ParseLogLevel parses a string into a LogLevel.
func ParseLogLevel(level string) (LogLevel, error) {
	switch strings.ToLower(level) {
	case "debug":
		return DebugLevel, nil
	case "info":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	default:
		return InfoLevel, fmt.Errorf("invalid log level: %s", level)
	}
}

// LogFormat selects the on-wire encoding of log lines.
type LogFormat int

const (
	TextFormat LogFormat = iota
	JSONFormat
)

// Config holds logger configuration.
type Config struct {
	Level     LogLevel
	Format    LogFormat
	Output    io.Writer
	Component string
}

// DefaultConfig returns a default logger configuration: info level, text
// format, stderr output.
func DefaultConfig() *Config {
	return &Config{
		Level:  InfoLevel,
		Format: TextFormat,
		Output: os.Stderr,
	}
}

// Logger is the structured, component-scoped logger every pipeline stage
// and the solver catalog logs through.
type Logger struct {
	z         *zap.SugaredLogger
	component string
}

// NewLogger creates a new logger with the given configuration.
func NewLogger(config *Config) *Logger {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Output == nil {
		config.Output = os.Stderr
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.TimeKey = "timestamp"

	var encoder zapcore.Encoder
	if config.Format == JSONFormat {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	} else {
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(config.Output), config.Level.zapLevel())
	base := zap.New(core)

	l := &Logger{z: base.Sugar(), component: config.Component}
	if config.Component != "" {
		l.z = l.z.With("component", config.Component)
	}
	return l
}

// WithComponent returns a new logger scoped to the given component name,
// inheriting this logger's level, format, and output.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{z: l.z.With("component", component), component: component}
}

// With returns a new logger with additional structured key/value pairs
// attached to every subsequent entry.
func (l *Logger) With(fields map[string]interface{}) *Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &Logger{z: l.z.With(args...), component: l.component}
}

func toArgs(fields []map[string]interface{}) []interface{} {
	if len(fields) == 0 || len(fields[0]) == 0 {
		return nil
	}
	args := make([]interface{}, 0, len(fields[0])*2)
	for k, v := range fields[0] {
		args = append(args, k, v)
	}
	return args
}

// Debug logs a debug message with optional structured fields.
func (l *Logger) Debug(message string, fields ...map[string]interface{}) {
	l.z.Debugw(message, toArgs(fields)...)
}

// Info logs an info message with optional structured fields.
func (l *Logger) Info(message string, fields ...map[string]interface{}) {
	l.z.Infow(message, toArgs(fields)...)
}

// Warn logs a warning message with optional structured fields.
func (l *Logger) Warn(message string, fields ...map[string]interface{}) {
	l.z.Warnw(message, toArgs(fields)...)
}

// Error logs an error message with optional structured fields.
func (l *Logger) Error(message string, fields ...map[string]interface{}) {
	l.z.Errorw(message, toArgs(fields)...)
}

// Sync flushes any buffered log entries. Callers should invoke it once
// during shutdown.
func (l *Logger) Sync() error {
	return l.z.Sync()
}

var defaultLogger = NewLogger(DefaultConfig())

// Default returns the package-level default logger.
func Default() *Logger {
	return defaultLogger
}

// SetDefault replaces the package-level default logger.
func SetDefault(l *Logger) {
	defaultLogger = l
}
