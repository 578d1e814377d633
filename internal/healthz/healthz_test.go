package healthz

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewHTTP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()

	check := NewHTTP()
	check.ServeHTTP(rr, req)

	resp := rr.Result()
	defer resp.Body.Close()

	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestHealthy(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()

	check := NewHTTP()
	check.Healthy()
	check.ServeHTTP(rr, req)

	resp := rr.Result()
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSick(t *testing.T) {
	check := NewHTTP()

	// Test that check is initially "healthy".
	{
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rr := httptest.NewRecorder()

		check.Healthy()
		check.ServeHTTP(rr, req)

		resp := rr.Result()
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	// Test that check is now "sick".
	{
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rr := httptest.NewRecorder()

		check.Sick()
		check.ServeHTTP(rr, req)

		resp := rr.Result()
		defer resp.Body.Close()

		require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	}
}

func TestChecks(t *testing.T) {
	ok := Check{Name: "db", Fn: func(context.Context) error { return nil }}
	down := Check{Name: "redis", Fn: func(context.Context) error { return errors.New("down") }}

	tests := map[string]struct {
		checks []Check
		status int
		body   string
	}{
		"all pass":  {checks: []Check{ok}, status: http.StatusOK},
		"one fails": {checks: []Check{ok, down}, status: http.StatusServiceUnavailable, body: "redis: unavailable\n"},
		"no checks": {checks: nil, status: http.StatusOK},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			check := NewHTTP(test.checks...)
			check.Healthy()

			rr := httptest.NewRecorder()
			check.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			resp := rr.Result()
			defer resp.Body.Close()

			require.Equal(t, test.status, resp.StatusCode)
			b, err := io.ReadAll(resp.Body)
			require.Nil(t, err)
			require.Equal(t, test.body, string(b))
		})
	}
}
