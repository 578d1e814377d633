package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContextFields(t *testing.T) {
	require.Empty(t, ContextFields(context.Background()))

	ctx := WithRequestID(context.Background(), "abc")
	fields := ContextFields(ctx)
	require.Len(t, fields, 1)
	require.Equal(t, "request-id", fields[0].Key)
	require.Equal(t, "abc", fields[0].String)
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = RequestID(r.Context())
	})

	rr := httptest.NewRecorder()
	RequestIDMiddleware()(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotEmpty(t, seen)
	require.Equal(t, seen, rr.Header().Get(RequestIDHeader))
}
