// Package log provides the structured logging facade for the riskfold
// pipeline. The interface is slog-shaped (message plus alternating key/value
// fields) and is backed by zerolog, so callers never import the logging
// backend directly.
package log

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Logger is the minimal structured logging interface used by all packages.
type Logger interface {
	// Debug logs detailed diagnostic information, typically disabled
	// outside development.
	Debug(msg string, fields ...any)
	// Info logs general operational information.
	Info(msg string, fields ...any)
	// Warn logs a potentially problematic condition that does not stop
	// the pipeline.
	Warn(msg string, fields ...any)
	// Error logs an error condition. If the first field is an error it is
	// attached as the structured "error" attribute.
	Error(msg string, fields ...any)
	// With returns a Logger that includes the given fields on every record.
	With(fields ...any) Logger
}

var (
	mu     sync.RWMutex
	root   zerolog.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	minLvl                = zerolog.InfoLevel
)

// Setup configures the global logger output. Level is one of debug, info,
// warn, error; format is "json" or "console".
func Setup(level, format string, w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	if w == nil {
		w = os.Stderr
	}
	if strings.EqualFold(format, "console") {
		w = zerolog.ConsoleWriter{Out: w}
	}
	minLvl = parseLevel(level)
	root = zerolog.New(w).Level(minLvl).With().Timestamp().Logger()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// GetLogger returns the process-wide logger.
func GetLogger() Logger {
	mu.RLock()
	defer mu.RUnlock()
	return &zerologLogger{zl: root}
}

// GetLoggerWithName returns a logger tagged with a component name, e.g.
// "boosting.trainer" or "pipeline".
func GetLoggerWithName(name string) Logger {
	mu.RLock()
	defer mu.RUnlock()
	return &zerologLogger{zl: root.With().Str("component", name).Logger()}
}

type zerologLogger struct {
	zl zerolog.Logger
}

func (l *zerologLogger) Debug(msg string, fields ...any) { l.emit(l.zl.Debug(), msg, fields) }
func (l *zerologLogger) Info(msg string, fields ...any)  { l.emit(l.zl.Info(), msg, fields) }
func (l *zerologLogger) Warn(msg string, fields ...any)  { l.emit(l.zl.Warn(), msg, fields) }

func (l *zerologLogger) Error(msg string, fields ...any) {
	ev := l.zl.Error()
	if len(fields) > 0 {
		if err, ok := fields[0].(error); ok {
			ev = ev.Err(err)
			fields = fields[1:]
		}
	}
	l.emit(ev, msg, fields)
}

func (l *zerologLogger) With(fields ...any) Logger {
	ctx := l.zl.With()
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		ctx = ctx.Interface(key, fields[i+1])
	}
	return &zerologLogger{zl: ctx.Logger()}
}

func (l *zerologLogger) emit(ev *zerolog.Event, msg string, fields []any) {
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		ev = ev.Interface(key, fields[i+1])
	}
	ev.Msg(msg)
}
