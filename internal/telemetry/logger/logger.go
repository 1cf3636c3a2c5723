// Package logger provides structured logging for authclient.
package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the application logger interface.
//
// Arguments after the message are alternating key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
	WithContext(ctx context.Context) Logger
}

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string
	// Format is the output format (json, console).
	Format string
	// Output is the output writer (defaults to os.Stderr).
	Output io.Writer
	// AddSource adds caller information to log entries.
	AddSource bool
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  "warn",
		Format: "console",
		Output: os.Stderr,
	}
}

// zeroLogger adapts zerolog.Logger to Logger.
type zeroLogger struct {
	zl  zerolog.Logger
	ctx context.Context
}

// New creates a new logger with the given configuration.
func New(cfg Config) (Logger, error) {
	SetLevel(cfg.Level)

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	switch strings.ToLower(cfg.Format) {
	case "console", "text":
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	zctx := zerolog.New(out).With().Timestamp()
	if cfg.AddSource {
		zctx = zctx.Caller()
	}

	return &zeroLogger{
		zl:  zctx.Logger(),
		ctx: context.Background(),
	}, nil
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return &zeroLogger{zl: zerolog.Nop(), ctx: context.Background()}
}

// SetLevel dynamically sets the global log level.
func SetLevel(level string) {
	zerolog.SetGlobalLevel(parseLevel(level))
}

// GetLevel returns the current log level as a string.
func GetLevel() string {
	switch zerolog.GlobalLevel() {
	case zerolog.DebugLevel, zerolog.TraceLevel:
		return "debug"
	case zerolog.WarnLevel:
		return "warn"
	case zerolog.ErrorLevel:
		return "error"
	default:
		return "info"
	}
}

func (l *zeroLogger) Debug(msg string, args ...any) {
	emit(l.zl.Debug().Ctx(l.ctx), msg, args)
}

func (l *zeroLogger) Info(msg string, args ...any) {
	emit(l.zl.Info().Ctx(l.ctx), msg, args)
}

func (l *zeroLogger) Warn(msg string, args ...any) {
	emit(l.zl.Warn().Ctx(l.ctx), msg, args)
}

func (l *zeroLogger) Error(msg string, args ...any) {
	emit(l.zl.Error().Ctx(l.ctx), msg, args)
}

func (l *zeroLogger) With(args ...any) Logger {
	zctx := l.zl.With()
	eachPair(args, func(key string, value any) {
		if err, ok := value.(error); ok {
			zctx = zctx.AnErr(key, err)
			return
		}
		zctx = zctx.Interface(key, value)
	})
	return &zeroLogger{zl: zctx.Logger(), ctx: l.ctx}
}

func (l *zeroLogger) WithContext(ctx context.Context) Logger {
	return &zeroLogger{zl: l.zl, ctx: ctx}
}

// emit attaches args to ev and writes it. ev is nil when the level is
// disabled.
func emit(ev *zerolog.Event, msg string, args []any) {
	if ev == nil {
		return
	}
	eachPair(args, func(key string, value any) {
		switch v := value.(type) {
		case error:
			ev.AnErr(key, v)
		case string:
			ev.Str(key, v)
		case time.Duration:
			ev.Dur(key, v)
		case fmt.Stringer:
			ev.Stringer(key, v)
		default:
			ev.Interface(key, v)
		}
	})
	ev.Msg(msg)
}

// eachPair walks key/value pairs, redacting sensitive values. A trailing
// key without a value is logged under "!BADKEY" like slog does.
func eachPair(args []any, fn func(key string, value any)) {
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok || i+1 >= len(args) {
			fn("!BADKEY", args[i])
			if !ok {
				i--
			}
			continue
		}
		fn(key, redact(key, args[i+1]))
	}
}

// parseLevel converts a string level to zerolog.Level.
func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Global logger instance for convenience methods.
var defaultLogger atomic.Pointer[zeroLogger]

func init() {
	l, _ := New(DefaultConfig())
	defaultLogger.Store(l.(*zeroLogger))
}

// SetDefault sets the default global logger.
func SetDefault(l Logger) {
	if zl, ok := l.(*zeroLogger); ok {
		defaultLogger.Store(zl)
	}
}

// Default returns the default global logger.
func Default() Logger {
	return defaultLogger.Load()
}

// Debug logs at debug level using the default logger.
func Debug(msg string, args ...any) {
	defaultLogger.Load().Debug(msg, args...)
}

// Info logs at info level using the default logger.
func Info(msg string, args ...any) {
	defaultLogger.Load().Info(msg, args...)
}

// Warn logs at warn level using the default logger.
func Warn(msg string, args ...any) {
	defaultLogger.Load().Warn(msg, args...)
}

// Error logs at error level using the default logger.
func Error(msg string, args ...any) {
	defaultLogger.Load().Error(msg, args...)
}
