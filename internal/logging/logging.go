package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/natefinch/lumberjack.v2"
)

type ctxKey int

const loggerContextKey ctxKey = iota

type Options struct {
	Level string
	// File is the rotating log file; empty disables the file sink.
	File       string
	MaxSizeMB  int
	MaxBackups int
	// Console mirrors records to stderr.
	Console bool
}

// New builds a JSON logger and the closer of its file sink.
func New(opts Options) (*slog.Logger, io.Closer) {
	var writers []io.Writer
	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    orDefault(opts.MaxSizeMB, 5),
			MaxBackups: orDefault(opts.MaxBackups, 3),
			LocalTime:  false,
			Compress:   true,
		}
		writers = append(writers, lj)
		closer = lj
	}
	if opts.Console || len(writers) == 0 {
		writers = append(writers, os.Stderr)
	}
	handler := slog.NewJSONHandler(io.MultiWriter(writers...), &slog.HandlerOptions{
		Level: ParseLevel(opts.Level),
	})
	return slog.New(handler), closer
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

func FromContext(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(loggerContextKey).(*slog.Logger)
	if ok {
		return logger
	}
	return slog.Default()
}

// Operation tags the context logger with a fresh operation id and the operation name.
func Operation(ctx context.Context, base *slog.Logger, name string, attrs ...slog.Attr) (context.Context, *slog.Logger) {
	logger, ok := ctx.Value(loggerContextKey).(*slog.Logger)
	if !ok {
		logger = base
	}
	if logger == nil {
		logger = slog.Default()
	}
	args := make([]any, 0, len(attrs)+2)
	args = append(args, slog.String("op", name), slog.String("op_id", uuid.NewString()))
	for _, a := range attrs {
		args = append(args, a)
	}
	logger = logger.With(args...)
	return WithLogger(ctx, logger), logger
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
