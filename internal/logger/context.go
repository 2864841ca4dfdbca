package logger

import (
	"context"
	"log/slog"
	"time"
)

type contextKey string

const stackContextKey contextKey = "stack"

// WithStack stores the name of the stack an operation works on.
func WithStack(ctx context.Context, stack string) context.Context {
	return context.WithValue(ctx, stackContextKey, stack)
}

// GetStack extracts the stack name from the context.
func GetStack(ctx context.Context) string {
	if stack, ok := ctx.Value(stackContextKey).(string); ok {
		return stack
	}

	return ""
}

// DeriveLogger returns base enriched with the stack name carried by ctx, if any.
func DeriveLogger(ctx context.Context, base *slog.Logger) *slog.Logger {
	if base == nil {
		base = slog.Default()
	}

	if stack := GetStack(ctx); stack != "" {
		return base.With("stack", stack)
	}

	return base
}

// GetDeadlineInfo returns logging attributes for context deadline information.
// Returns the absolute deadline time and remaining duration if set, or "none" if no deadline.
func GetDeadlineInfo(ctx context.Context) []any {
	deadline, ok := ctx.Deadline()
	if !ok {
		return []any{"deadline", "none", "deadline_remaining", "none"}
	}

	remaining := time.Until(deadline)
	return []any{
		"deadline", deadline.Format(time.RFC3339),
		"deadline_remaining", remaining.String(),
	}
}
