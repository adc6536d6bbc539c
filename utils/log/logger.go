package log

import (
	"context"
	"os"

	"go.uber.org/zap"
)

type ctxKey string

// RequestIDKey carries the inbound request id through the context.
const RequestIDKey ctxKey = "request_id"

var logger *zap.Logger

func init() {
	if os.Getenv("DEBUG") == "true" {
		logger, _ = zap.NewDevelopment()
	} else {
		logger, _ = zap.NewProduction()
	}
}

// WithRequestID returns a copy of ctx carrying id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

func WithCtx(ctx context.Context) *zap.Logger {
	fields := []zap.Field{}

	if v, ok := ctx.Value(RequestIDKey).(string); ok && v != "" {
		fields = append(fields, zap.String("request_id", v))
	}

	return logger.With(fields...)
}

func With(fields ...zap.Field) *zap.Logger {
	return logger.With(fields...)
}

// L returns the process logger.
func L() *zap.Logger {
	return logger
}

// Sync flushes buffered entries, call before exit.
func Sync() {
	_ = logger.Sync()
}
