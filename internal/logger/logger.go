// Package logger provides structured logging for gigmerge.
//
// The logger supports multiple log levels (DEBUG, INFO, WARN, ERROR) and writes
// structured JSON by default, or human-readable console lines when configured.
// Records are emitted through zerolog; callers only ever see the small
// Fields-based API below.
//
// Example usage:
//
//	logger.Info("Unknown venue", logger.Fields{
//	    "venue_id": "jacques_cabaret",
//	    "source":   "scrape:do617",
//	})
//
//	logger.Error("Failed to save catalog", logger.Fields{
//	    "path": path,
//	}, err)
package logger

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Level represents log severity
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Output formats.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Fields represents structured log fields
type Fields map[string]interface{}

// Config selects the minimum level and output format.
type Config struct {
	Level  string
	Format string
	Output io.Writer
}

// Logger provides structured logging
type Logger struct {
	minLevel Level
	zl       zerolog.Logger
}

var defaultLogger atomic.Pointer[Logger]

func init() {
	defaultLogger.Store(New(LevelInfo, os.Stderr))
}

// New creates a JSON logger with the specified minimum log level and output destination.
// Messages below the minimum level will be discarded.
func New(level Level, output io.Writer) *Logger {
	return newLogger(level, output, FormatJSON)
}

// NewWithConfig builds a logger from configuration values. Unknown levels
// and formats are reported as errors.
func NewWithConfig(cfg Config) (*Logger, error) {
	level := LevelInfo
	if cfg.Level != "" {
		parsed, err := ParseLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		level = parsed
	}

	format := strings.ToLower(cfg.Format)
	switch format {
	case "":
		format = FormatJSON
	case FormatJSON, FormatConsole:
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	return newLogger(level, output, format), nil
}

func newLogger(level Level, output io.Writer, format string) *Logger {
	if format == FormatConsole {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: "15:04:05"}
	}
	zl := zerolog.New(output).Level(toZerolog(level)).With().Timestamp().Logger()
	return &Logger{minLevel: level, zl: zl}
}

// ParseLevel accepts level names in any case, including "warning".
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug, nil
	case "INFO":
		return LevelInfo, nil
	case "WARN", "WARNING":
		return LevelWarn, nil
	case "ERROR":
		return LevelError, nil
	}
	return "", fmt.Errorf("unknown log level %q", s)
}

func toZerolog(level Level) zerolog.Level {
	switch level {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// SetDefault sets the default package-level logger used by the convenience functions
// (Debug, Info, Warn, Error). This allows centralizing logger configuration.
func SetDefault(logger *Logger) {
	if logger != nil {
		defaultLogger.Store(logger)
	}
}

// Default returns the package-level logger.
func Default() *Logger {
	return defaultLogger.Load()
}

// log writes a structured log entry
func (l *Logger) log(level Level, message string, fields Fields, err error) {
	if !l.shouldLog(level) {
		return
	}

	var e *zerolog.Event
	switch level {
	case LevelDebug:
		e = l.zl.Debug()
	case LevelWarn:
		e = l.zl.Warn()
	case LevelError:
		e = l.zl.Error()
	default:
		e = l.zl.Info()
	}

	// Sorted keys keep console output stable between runs.
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch v := fields[k].(type) {
		case time.Duration:
			e = e.Str(k, v.String())
		default:
			e = e.Interface(k, v)
		}
	}

	if err != nil {
		e = e.Err(err)
	}
	e.Msg(message)
}

// shouldLog determines if a message should be logged based on level
func (l *Logger) shouldLog(level Level) bool {
	levels := map[Level]int{
		LevelDebug: 0,
		LevelInfo:  1,
		LevelWarn:  2,
		LevelError: 3,
	}
	return levels[level] >= levels[l.minLevel]
}

// Debug logs a debug message with optional structured fields.
// Debug messages are typically used for detailed diagnostic information.
func (l *Logger) Debug(message string, fields Fields) {
	l.log(LevelDebug, message, fields, nil)
}

// Info logs an informational message with optional structured fields.
func (l *Logger) Info(message string, fields Fields) {
	l.log(LevelInfo, message, fields, nil)
}

// Warn logs a warning message with optional structured fields.
// Warning messages indicate potential issues that don't prevent operation.
func (l *Logger) Warn(message string, fields Fields) {
	l.log(LevelWarn, message, fields, nil)
}

// Error logs an error message with optional structured fields and an error object.
func (l *Logger) Error(message string, fields Fields, err error) {
	l.log(LevelError, message, fields, err)
}

// Package-level convenience functions using default logger

// Debug logs a debug message with the default logger
func Debug(message string, fields Fields) {
	Default().Debug(message, fields)
}

// Info logs an info message with the default logger
func Info(message string, fields Fields) {
	Default().Info(message, fields)
}

// Warn logs a warning message with the default logger
func Warn(message string, fields Fields) {
	Default().Warn(message, fields)
}

// Error logs an error message with the default logger
func Error(message string, fields Fields, err error) {
	Default().Error(message, fields, err)
}
