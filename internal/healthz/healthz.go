// Package healthz provides and API enabling the support of service health
// checks. This is typically used when running in Kubernetes environment to
// manage and signal health status.
package healthz

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Check is a named dependency probe. Fn returns an error when the dependency
// is unavailable.
type Check struct {
	Name string
	Fn   func(context.Context) error
}

// NewHTTP creates an HTTP instance. Each check runs on every health check
// request.
func NewHTTP(checks ...Check) *HTTP {
	return &HTTP{
		mutex:   new(sync.RWMutex),
		healthy: false,
		checks:  checks,
		timeout: 2 * time.Second,
	}
}

// HTTP provides an HTTP handler to correctly handle HTTP-based health checks.
type HTTP struct {
	mutex *sync.RWMutex
	// healthy indicates if the HTTP health check should report healthy to
	// clients.
	healthy bool

	checks  []Check
	timeout time.Duration
}

// ServeHTTP implements the http.Handler interface.
func (h *HTTP) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.IsHealthy() {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	for _, check := range h.checks {
		if err := check.Fn(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, "%s: unavailable\n", check.Name)
			return
		}
	}

	w.WriteHeader(http.StatusOK)
}

// IsHealthy indicates if the HTTP instance is indicating it is healthy during
// health checks. See Healthy() and Sick() to mutate the health of the HTTP
// instance.
func (h *HTTP) IsHealthy() bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return h.healthy
}

// Healthy mutates the HTTP instance to communicate a status of "healthy" during
// health checks.
func (h *HTTP) Healthy() {
	h.mutex.Lock()
	h.healthy = true
	h.mutex.Unlock()
}

// Sick mutates the HTTP instance to communicate a status of "sick" during
// health checks.
func (h *HTTP) Sick() {
	h.mutex.Lock()
	h.healthy = false
	h.mutex.Unlock()
}
