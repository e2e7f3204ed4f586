// Package metrics exposes Prometheus collectors for the listing service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors the service updates
type Metrics struct {
	Operations  *prometheus.CounterVec
	Subscribers prometheus.Gauge
	Requests    *prometheus.CounterVec

	reg prometheus.Registerer
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "standfinder_store_operations_total",
				Help: "Total number of listing store operations",
			},
			[]string{"op"},
		),
		Subscribers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "standfinder_stream_subscribers",
				Help: "Number of open stand stream connections",
			},
		),
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "standfinder_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		reg: reg,
	}
	reg.MustRegister(m.Operations, m.Subscribers, m.Requests)
	return m
}

// ObserveOperation counts one store operation
func (m *Metrics) ObserveOperation(op string) {
	m.Operations.WithLabelValues(op).Inc()
}

// WatchSessions registers a gauge that reports fn on every scrape
func (m *Metrics) WatchSessions(fn func() int) {
	m.reg.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "standfinder_sessions",
			Help: "Number of open UI sessions",
		},
		func() float64 { return float64(fn()) },
	))
}
