package courier

import (
	"context"
	"log/slog"
)

type loggerKey struct{}

// ContextWithLogger attaches a logger to the context; handlers can retrieve it later.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if logger == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// LoggerFromContext returns the request-scoped logger, or slog.Default() as
// it is at call time.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && logger != nil {
			return logger
		}
	}
	return slog.Default()
}

// ContextWithAttrs narrows the request logger with args for the rest of the
// request.
func ContextWithAttrs(ctx context.Context, args ...any) context.Context {
	return ContextWithLogger(ctx, LoggerFromContext(ctx).With(args...))
}
