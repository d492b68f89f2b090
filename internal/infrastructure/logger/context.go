package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ctxKey int

const (
	loggerKey ctxKey = iota
	requestIDKey
	userIDKey
)

// WithContext attaches logger to ctx
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the attached logger, or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// WithRequestID records the request id and tags logger with it
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) context.Context {
	return withTagged(ctx, logger, requestIDKey, "request_id", requestID)
}

// WithUserID records the authenticated user and tags logger with it
func WithUserID(ctx context.Context, logger *zap.Logger, userID string) context.Context {
	return withTagged(ctx, logger, userIDKey, "user_id", userID)
}

func withTagged(ctx context.Context, logger *zap.Logger, key ctxKey, field, value string) context.Context {
	ctx = context.WithValue(ctx, key, value)
	return WithContext(ctx, logger.With(zap.String(field, value)))
}

func GetRequestID(ctx context.Context) string { return stringValue(ctx, requestIDKey) }
func GetUserID(ctx context.Context) string    { return stringValue(ctx, userIDKey) }

func stringValue(ctx context.Context, key ctxKey) string {
	s, _ := ctx.Value(key).(string)
	return s
}

// L is the request logger for ctx, tagged with the active trace
//
//	logger.L(ctx).Info("leaf stored", zap.String("leaf_id", id))
func L(ctx context.Context) *zap.Logger {
	return WithTraceContext(ctx, FromContext(ctx))
}

// WithTraceContext tags logger with trace_id and span_id when ctx carries a
// valid span
func WithTraceContext(ctx context.Context, logger *zap.Logger) *zap.Logger {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return logger
	}
	return logger.With(
		zap.Stringer("trace_id", sc.TraceID()),
		zap.Stringer("span_id", sc.SpanID()),
	)
}
