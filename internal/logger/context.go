package logger

import "context"

type contextKey string

const RequestIDKey contextKey = "request_id"

// WithRequestID attaches a request id to the context so downstream
// components (router, audit) can correlate their log lines.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
