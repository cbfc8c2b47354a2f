// Package logging carries a request-scoped slog logger through contexts.
package logging

import (
	"context"
	"log/slog"
	"os"
)

type loggerKey struct{}

// Used when no request logger was attached, e.g. in background work.
var fallbackLogger = slog.New(slog.NewJSONHandler(os.Stdout, nil)).With(slog.String("logger", "fallback"))

// FromContext returns the request logger stored in ctx, or a JSON stdout
// logger tagged "logger":"fallback".
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return fallbackLogger
}

// AddToContext stores logger in ctx.
func AddToContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// WithAttrs returns a context whose logger also emits attrs.
func WithAttrs(ctx context.Context, attrs ...slog.Attr) context.Context {
	if len(attrs) == 0 {
		return ctx
	}
	args := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		args = append(args, attr)
	}
	return AddToContext(ctx, FromContext(ctx).With(args...))
}
