package slogx

import (
	"context"
	"log/slog"
)

type loggerKey struct{}

// WithContext stores logger in ctx.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the logger stored in ctx, or slog.Default.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return slog.Default()
}

// WithAttrs derives a context whose logger carries attrs.
func WithAttrs(ctx context.Context, attrs ...slog.Attr) context.Context {
	args := make([]any, len(attrs))
	for i, a := range attrs {
		args[i] = a
	}
	return WithContext(ctx, FromContext(ctx).With(args...))
}

// WithUser tags the context logger with the authenticated user.
func WithUser(ctx context.Context, userID string) context.Context {
	return WithAttrs(ctx, slog.String("user_id", userID))
}

// WithTeam tags the context logger with the team a request targets.
func WithTeam(ctx context.Context, teamID string) context.Context {
	return WithAttrs(ctx, slog.String("team_id", teamID))
}
