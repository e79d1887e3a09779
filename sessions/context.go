package sessions

import "context"

type contextKey string

const sessionIDKey contextKey = "session_id"

// WithID returns a context carrying the session id for the current request
func WithID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// IDFromContext returns the session id carried by ctx, if any
func IDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDKey).(string)
	return id, ok && id != ""
}
