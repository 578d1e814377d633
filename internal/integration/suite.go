// Package integration provides helpers for tests exercising the GraphQL API
// end-to-end against live Postgres and Redis instances.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	ihttp "github.com/tjper/suihei/internal/http"
	iredis "github.com/tjper/suihei/internal/redis"
	"github.com/tjper/suihei/internal/session"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func InitSuite(
	ctx context.Context,
	t *testing.T,
	options ...Option,
) *Suite {
	t.Helper()

	s := &Suite{
		Logger: zap.NewNop(),
		Redis:  iredis.InitSuite(ctx, t).Redis,
	}

	for _, option := range options {
		option(s)
	}

	return s
}

type Option func(*Suite)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Suite) { s.Logger = logger }
}

type Suite struct {
	Logger *zap.Logger
	Redis  *redis.Client
}

// Response is a decoded GraphQL response.
type Response struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message    string                 `json:"message"`
		Extensions map[string]interface{} `json:"extensions"`
	} `json:"errors"`

	Cookies []*http.Cookie `json:"-"`
}

// Query posts a GraphQL request to handler. When sess is passed, the request
// carries its session cookie.
func (s Suite) Query(
	ctx context.Context,
	t *testing.T,
	handler http.Handler,
	query string,
	variables map[string]interface{},
	sess ...*session.Session,
) *Response {
	t.Helper()

	buf := new(bytes.Buffer)
	err := json.NewEncoder(buf).Encode(map[string]interface{}{
		"query":     query,
		"variables": variables,
	})
	require.Nil(t, err)

	req := httptest.NewRequest(http.MethodPost, "/query", buf)
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(ctx)

	if l := len(sess); l == 1 {
		req.AddCookie(ihttp.Cookie(sess[0].ID, ihttp.CookieOptions{}))
	} else if l > 1 {
		t.Fatalf("Suite.Query only accepts zero or one session")
	}

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	result := rr.Result()
	defer result.Body.Close()

	resp := new(Response)
	err = json.NewDecoder(result.Body).Decode(resp)
	require.Nil(t, err)
	resp.Cookies = result.Cookies()

	return resp
}

// Decode unmarshals the response data into dst and requires the response to
// be free of errors.
func (r Response) Decode(t *testing.T, dst interface{}) {
	t.Helper()

	require.Empty(t, r.Errors)
	require.Nil(t, json.Unmarshal(r.Data, dst))
}

// Code returns the code extension of the response's first error.
func (r Response) Code() string {
	if len(r.Errors) == 0 {
		return ""
	}
	code, _ := r.Errors[0].Extensions["code"].(string)
	return code
}
