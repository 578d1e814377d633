package router

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	reasonQueueFull = "queue_full"
	reasonDNE       = "dne"
	reasonFetch     = "fetch_error"
	reasonFiltered  = "filtered"
)

type metrics struct {
	subscriptions prometheus.Gauge
	dispatched    *prometheus.CounterVec
	delivered     *prometheus.CounterVec
	dropped       *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)

	return &metrics{
		subscriptions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "suihei",
			Subsystem: "router",
			Name:      "subscriptions",
			Help:      "Number of attached subscriptions.",
		}),
		dispatched: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "suihei",
			Subsystem: "router",
			Name:      "events_dispatched_total",
			Help:      "Number of change events dispatched, by record kind.",
		}, []string{"kind"}),
		delivered: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "suihei",
			Subsystem: "router",
			Name:      "records_delivered_total",
			Help:      "Number of records pushed to subscribers, by record kind.",
		}, []string{"kind"}),
		dropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "suihei",
			Subsystem: "router",
			Name:      "events_dropped_total",
			Help:      "Number of change events not delivered to a subscriber, by reason.",
		}, []string{"reason"}),
	}
}
