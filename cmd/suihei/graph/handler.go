package graph

import (
	"encoding/json"
	"net/http"
	"time"

	ihttp "github.com/tjper/suihei/internal/http"
	"github.com/tjper/suihei/internal/logger"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Handler executes GraphQL operations received over HTTP.
type Handler struct {
	logger  *zap.Logger
	schema  *graphql.Schema
	metrics *metrics
}

// NewHandler creates a Handler instance. Operation metrics are registered
// with reg.
func NewHandler(logger *zap.Logger, schema *graphql.Schema, reg prometheus.Registerer) *Handler {
	return &Handler{
		logger:  logger,
		schema:  schema,
		metrics: newMetrics(reg),
	}
}

type params struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var p params
	switch r.Method {
	case http.MethodPost:
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
	case http.MethodGet:
		values := r.URL.Query()
		p.Query = values.Get("query")
		p.OperationName = values.Get("operationName")
		if variables := values.Get("variables"); variables != "" {
			if err := json.Unmarshal([]byte(variables), &p.Variables); err != nil {
				http.Error(w, "invalid variables", http.StatusBadRequest)
				return
			}
		}
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	start := time.Now()
	resp := h.schema.Exec(ctx, p.Query, p.OperationName, p.Variables)
	elapsed := time.Since(start)

	result := resultOK
	if len(resp.Errors) > 0 {
		result = resultError
	}
	h.metrics.operations.WithLabelValues(result).Inc()
	h.metrics.duration.Observe(elapsed.Seconds())

	fields := append(
		logger.ContextFields(ctx),
		zap.String("operation", p.OperationName),
		zap.Duration("duration", elapsed),
		zap.Int("errors", len(resp.Errors)),
	)
	h.logger.Info("operation complete", fields...)

	b, err := json.Marshal(resp)
	if err != nil {
		ihttp.ErrInternal(h.logger, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(b); err != nil {
		h.logger.Error("write response", zap.Error(err))
	}
}
