package mcp

import (
	"context"
	"log/slog"

	"github.com/w-h-a/forumsearch/server"
)

type loggerKey struct{}

func WithLogger(logger *slog.Logger) server.Option {
	return func(o *server.Options) {
		o.Context = context.WithValue(o.Context, loggerKey{}, logger)
	}
}

// LoggerFrom returns the configured logger or slog.Default.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}
