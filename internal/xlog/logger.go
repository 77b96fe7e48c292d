// Package xlog wraps github.com/rs/zerolog with a small nil-safe API that
// mirrors the shape the rest of flowkit expects: a Logger that can be
// derived via With(fields) and that never panics when left unset, so every
// core component can accept a *Logger without forcing callers to construct
// one.
package xlog

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Options configures a Logger at construction time.
type Options struct {
	Level  string
	Writer io.Writer
	Pretty bool
}

// Logger is a thin, nil-safe wrapper around a zerolog.Logger.
type Logger struct {
	z zerolog.Logger
}

// New creates a Logger from Options. A zero Options value produces an
// info-level JSON logger writing to stderr.
func New(opts Options) *Logger {
	writer := opts.Writer
	if writer == nil {
		writer = os.Stderr
	}
	if opts.Pretty {
		writer = zerolog.ConsoleWriter{Out: writer, TimeFormat: "15:04:05"}
	}

	level := parseLevel(opts.Level)
	z := zerolog.New(writer).Level(level).With().Timestamp().Logger()
	return &Logger{z: z}
}

// Noop returns a Logger whose output is discarded, used as the default when
// a caller does not supply one.
func Noop() *Logger {
	return &Logger{z: zerolog.New(io.Discard)}
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "":
		return zerolog.InfoLevel
	default:
		return zerolog.InfoLevel
	}
}

// With returns a derived Logger that always includes the supplied fields.
func (l *Logger) With(fields map[string]any) *Logger {
	if l == nil {
		return nil
	}
	ctx := l.z.With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	return &Logger{z: ctx.Logger()}
}

// Debug logs at debug level. No-op on a nil Logger.
func (l *Logger) Debug(msg string, fields map[string]any) {
	l.log(zerolog.DebugLevel, msg, fields, nil)
}

// Info logs at info level. No-op on a nil Logger.
func (l *Logger) Info(msg string, fields map[string]any) {
	l.log(zerolog.InfoLevel, msg, fields, nil)
}

// Warn logs at warn level. No-op on a nil Logger.
func (l *Logger) Warn(msg string, fields map[string]any) {
	l.log(zerolog.WarnLevel, msg, fields, nil)
}

// Error logs at error level, attaching err under the "error" field. No-op on a nil Logger.
func (l *Logger) Error(err error, msg string, fields map[string]any) {
	l.log(zerolog.ErrorLevel, msg, fields, err)
}

func (l *Logger) log(level zerolog.Level, msg string, fields map[string]any, err error) {
	if l == nil {
		return
	}
	evt := l.z.WithLevel(level)
	if err != nil {
		evt = evt.Err(err)
	}
	for k, v := range fields {
		evt = evt.Interface(k, v)
	}
	evt.Msg(msg)
}
