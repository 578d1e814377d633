// Package logger provides zap construction and request scoped log fields.
package logger

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// New creates a *zap.Logger. Development loggers are human-readable and log
// at debug level; production loggers emit JSON at info level.
func New(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

type ctxkey string

var requestIDCtxKey ctxkey = "request_id_context_key"

// RequestIDHeader is the header used to propagate request IDs to clients.
const RequestIDHeader = "X-Request-Id"

// WithRequestID stores id in ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDCtxKey, id)
}

// RequestID retrieves the request ID stored in ctx.
func RequestID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDCtxKey).(string)
	return id, ok
}

// ContextFields returns the zap fields describing ctx.
func ContextFields(ctx context.Context) []zap.Field {
	id, ok := RequestID(ctx)
	if !ok {
		return nil
	}
	return []zap.Field{zap.String("request-id", id)}
}

// RequestIDMiddleware assigns every request a new request ID.
func RequestIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := uuid.New().String()
			w.Header().Set(RequestIDHeader, id)

			next.ServeHTTP(w, r.WithContext(WithRequestID(r.Context(), id)))
		})
	}
}
