// nolint: sloglint
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/pool-portal/common/errs"
)

// DefaultLevel is the minimum reporting level unless debug is enabled.
const DefaultLevel = slog.LevelInfo

// Config is the logger configuration.
type Config struct {
	// Output is the log format: `text` (default) or `json`.
	Output string `mapstructure:"output"`

	// Debug enables debug records, source locations and error stack traces.
	Debug bool `mapstructure:"debug"`

	// Writer overrides the output destination (default: os.Stdout).
	Writer io.Writer `mapstructure:"-"`
}

var (
	lvl = new(slog.LevelVar)

	replaceAttr = attrReplacerChain(levelAttrReplacer, secretAttrReplacer)

	// top-level logger, replaced by Init
	logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level:       lvl,
		ReplaceAttr: replaceAttr,
	}))
)

func init() {
	lvl.Set(DefaultLevel)
	slog.SetDefault(logger)
}

// Init replaces the top-level and slog default loggers.
func Init(cfg Config) error {
	out := cfg.Writer
	if out == nil {
		out = os.Stdout
	}

	var middlewares []middleware
	level := DefaultLevel
	if cfg.Debug {
		level = slog.LevelDebug
		middlewares = append(middlewares, middlewareErrorStackTrace())
	}
	options := &slog.HandlerOptions{
		AddSource:   cfg.Debug,
		Level:       lvl,
		ReplaceAttr: replaceAttr,
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.Output) {
	case "json":
		handler = slog.NewJSONHandler(out, options)
	case "text", "":
		handler = slog.NewTextHandler(out, options)
	default:
		return errors.Wrapf(errs.Unsupported, "logger output %q", cfg.Output)
	}

	lvl.Set(level)
	logger = slog.New(newChainHandlers(handler, middlewares...))
	slog.SetDefault(logger)
	return nil
}

// With returns the top-level logger with the given attributes.
func With(args ...any) *slog.Logger {
	return logger.With(args...)
}

// Debug logs at [LevelDebug].
func Debug(msg string, args ...any) {
	log(context.Background(), logger, slog.LevelDebug, msg, args...)
}

// Info logs at [LevelInfo].
func Info(msg string, args ...any) {
	log(context.Background(), logger, slog.LevelInfo, msg, args...)
}

// Error logs at [LevelError].
func Error(msg string, args ...any) {
	log(context.Background(), logger, slog.LevelError, msg, args...)
}

// Panic logs at [LevelPanic] and then panics.
func Panic(msg string, args ...any) {
	log(context.Background(), logger, LevelPanic, msg, args...)
	panic(msg)
}

// Fatal logs at [LevelFatal] followed by a call to [os.Exit](1).
func Fatal(msg string, args ...any) {
	log(context.Background(), logger, LevelFatal, msg, args...)
	os.Exit(1)
}

// LogAttrs logs attrs at level from the logger in ctx.
func LogAttrs(ctx context.Context, level slog.Level, msg string, attrs ...slog.Attr) {
	l := FromContext(ctx)
	if ctx == nil {
		ctx = context.Background()
	}
	if !l.Enabled(ctx, level) {
		return
	}
	r := newRecord(level, msg, 1)
	r.AddAttrs(attrs...)
	_ = l.Handler().Handle(ctx, r)
}

func attrReplacerChain(replacers ...func([]string, slog.Attr) slog.Attr) func([]string, slog.Attr) slog.Attr {
	return func(groups []string, attr slog.Attr) slog.Attr {
		for _, replacer := range replacers {
			attr = replacer(groups, attr)
		}
		return attr
	}
}

// log must be called directly by an exported logging function so that the
// record reports that function's caller.
func log(ctx context.Context, l *slog.Logger, level slog.Level, msg string, args ...any) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !l.Enabled(ctx, level) {
		return
	}
	r := newRecord(level, msg, 2)
	r.Add(args...)
	_ = l.Handler().Handle(ctx, r)
}

// newRecord takes the source location depth frames above its caller.
func newRecord(level slog.Level, msg string, depth int) slog.Record {
	var pcs [1]uintptr
	// skip [runtime.Callers], newRecord and its caller
	runtime.Callers(depth+2, pcs[:])
	return slog.NewRecord(time.Now(), level, msg, pcs[0])
}
