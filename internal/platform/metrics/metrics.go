// Package metrics exposes the Prometheus collectors the router and the WS
// hub update, adapted from the teacher's pkg/metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics groups the collectors registered against the default registry.
type Metrics struct {
	TradesTotal           *prometheus.CounterVec
	RouterOpDuration      *prometheus.HistogramVec
	RouterOpsTotal        *prometheus.CounterVec
	WSOverflowTotal       *prometheus.CounterVec
	WSActiveConnections   prometheus.Gauge
	QuarantinedSymbols    prometheus.Gauge
}

// New creates and registers the collectors. Registering twice in the same
// process (e.g. across tests) is tolerated by swallowing AlreadyRegistered
// errors, matching how the teacher's metrics.New is invoked once per
// service binary but exercised repeatedly in tests.
func New(namespace string) *Metrics {
	m := &Metrics{
		TradesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "trades_total", Help: "Total executed trades.",
		}, []string{"symbol", "engine"}),
		RouterOpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "router_op_duration_seconds", Help: "Router operation latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		RouterOpsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "router_ops_total", Help: "Router operations by outcome.",
		}, []string{"op", "outcome"}),
		WSOverflowTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "ws_overflow_total", Help: "Dropped WS messages due to a saturated client queue.",
		}, []string{"channel"}),
		WSActiveConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "ws_active_connections", Help: "Currently connected WS clients.",
		}),
		QuarantinedSymbols: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "quarantined_symbols", Help: "Symbols currently quarantined after an invariant violation.",
		}),
	}
	for _, c := range []prometheus.Collector{
		m.TradesTotal, m.RouterOpDuration, m.RouterOpsTotal,
		m.WSOverflowTotal, m.WSActiveConnections, m.QuarantinedSymbols,
	} {
		_ = prometheus.Register(c)
	}
	return m
}
