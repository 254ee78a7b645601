package internal

import (
	"context"
	"time"
)

type ctxKey string

// ContextUserKey carries the authenticated user's id. The auth middleware
// stashes it so handlers can attribute privilege changes in their logs.
const ContextUserKey ctxKey = "userID"

// UserIDFromContext returns the acting user's id, or "" on an
// unauthenticated context.
func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if userID, ok := ctx.Value(ContextUserKey).(string); ok {
		return userID
	}
	return ""
}

func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ContextUserKey, userID)
}

// WithTimeout bounds a blocking call, falling back to 5 seconds when the
// caller passes a non-positive duration.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
