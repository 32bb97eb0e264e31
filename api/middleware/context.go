package middleware

import "context"

type contextKey string

const (
	ctxAdmin    contextKey = "admin_username"
	ctxAccessID contextKey = "access_id"
)

// AdminFromContext returns the authenticated admin username, if any.
func AdminFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAdmin).(string); ok {
		return v
	}
	return ""
}

// AccessIDFromContext returns the session id carried by the admin token.
func AccessIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAccessID).(string); ok {
		return v
	}
	return ""
}

// WithAdmin injects the admin identity into the context.
func WithAdmin(ctx context.Context, username, accessID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxAdmin, username)
	return context.WithValue(ctx, ctxAccessID, accessID)
}
