package logger

import "context"

type contextKey string

const (
	traceIDKey   contextKey = FieldTraceID
	spanIDKey    contextKey = FieldSpanID
	requestIDKey contextKey = FieldRequestID
)

// ContextWithRequestID returns ctx carrying a request id picked up by WithContext.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// ContextWithTrace returns ctx carrying trace and span ids picked up by WithContext.
func ContextWithTrace(ctx context.Context, traceID, spanID string) context.Context {
	ctx = context.WithValue(ctx, traceIDKey, traceID)
	return context.WithValue(ctx, spanIDKey, spanID)
}

// RequestIDFromContext returns the request id stored on ctx, if any.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func contextFields(ctx context.Context) map[string]string {
	fields := make(map[string]string, 3)
	for _, key := range []contextKey{traceIDKey, spanIDKey, requestIDKey} {
		if v, ok := ctx.Value(key).(string); ok && v != "" {
			fields[string(key)] = v
		}
	}
	return fields
}
