// Package logging adapts log/slog to the petstore.Logger interface. Console
// output goes through tint; JSON output suits CI log collectors.
package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Static errors for err113 compliance.
var (
	ErrUnknownLevel  = errors.New("unknown log level")
	ErrUnknownFormat = errors.New("unknown log format")
)

// Options configures a Logger.
type Options struct {
	// Level: debug, info, warn or error (default info).
	Level string
	// Format: console (default) or json.
	Format string
	// NoColor disables ANSI colors in console output.
	NoColor bool
}

// Logger implements petstore.Logger on top of slog.
type Logger struct {
	slog *slog.Logger
}

// New creates a logger writing to w.
func New(w io.Writer, opts Options) (*Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	var handler slog.Handler

	switch strings.ToLower(opts.Format) {
	case "", FormatConsole:
		handler = tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
			NoColor:    opts.NoColor,
		})
	case FormatJSON:
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, opts.Format)
	}

	return &Logger{slog: slog.New(handler)}, nil
}

// FromSlog wraps an existing slog logger.
func FromSlog(logger *slog.Logger) *Logger {
	return &Logger{slog: logger}
}

// ParseLevel parses a level name; empty means info.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownLevel, name)
	}
}

// Slog returns the underlying slog logger.
func (l *Logger) Slog() *slog.Logger {
	return l.slog
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, fields map[string]interface{}) {
	l.slog.Debug(msg, attrs(fields)...)
}

// Info logs at info level.
func (l *Logger) Info(msg string, fields map[string]interface{}) {
	l.slog.Info(msg, attrs(fields)...)
}

// Warn logs at warn level.
func (l *Logger) Warn(msg string, fields map[string]interface{}) {
	l.slog.Warn(msg, attrs(fields)...)
}

// Error logs at error level. Error values are rendered by tint in red.
func (l *Logger) Error(msg string, fields map[string]interface{}) {
	l.slog.Error(msg, attrs(fields)...)
}

// attrs converts fields to slog arguments in key order.
func attrs(fields map[string]interface{}) []any {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	args := make([]any, 0, len(keys))

	for _, key := range keys {
		if err, ok := fields[key].(error); ok {
			args = append(args, tint.Err(err))
			continue
		}

		args = append(args, slog.Any(key, fields[key]))
	}

	return args
}
