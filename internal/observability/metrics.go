// v0
// internal/observability/metrics.go
// Package observability exposes the exporter's Prometheus surface: the grid
// collector that reads the snapshot plus the exporter's own self-metrics.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/your-org/electricity-exporter/internal/grid"
)

type Metrics struct {
	cycleDuration prometheus.Histogram
	cyclesTotal   prometheus.Counter
	fetchErrors   *prometheus.CounterVec
	rateStale     prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "exporter_cycle_duration_seconds",
			Help:    "Histogram of full update cycle durations.",
			Buckets: prometheus.DefBuckets,
		}),
		cyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "exporter_cycles_total",
			Help: "Total update cycles executed.",
		}),
		fetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "exporter_fetch_errors_total",
			Help: "Total failed upstream fetches by metric kind.",
		}, []string{"kind"}),
		rateStale: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "exporter_rate_stale",
			Help: "1 when the current cycle reused a cached exchange rate.",
		}),
	}
	reg.MustRegister(m.cycleDuration, m.cyclesTotal, m.fetchErrors, m.rateStale)
	return m
}

func (m *Metrics) CycleCompleted(d time.Duration, staleRate bool) {
	if m == nil {
		return
	}
	m.cycleDuration.Observe(d.Seconds())
	m.cyclesTotal.Inc()
	if staleRate {
		m.rateStale.Set(1)
	} else {
		m.rateStale.Set(0)
	}
}

func (m *Metrics) FetchError(kind grid.MetricKind) {
	if m == nil {
		return
	}
	m.fetchErrors.WithLabelValues(string(kind)).Inc()
}
