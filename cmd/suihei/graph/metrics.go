package graph

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultOK    = "ok"
	resultError = "error"
)

type metrics struct {
	operations *prometheus.CounterVec
	duration   prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)

	return &metrics{
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "suihei",
			Subsystem: "graphql",
			Name:      "operations_total",
			Help:      "Number of executed GraphQL operations by result.",
		}, []string{"result"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "suihei",
			Subsystem: "graphql",
			Name:      "operation_duration_seconds",
			Help:      "Time spent executing GraphQL operations.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}
