// Package metrics exposes Prometheus instrumentation for planning runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run outcome label values
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
	OutcomeCancelled = "cancelled"
	OutcomeRejected  = "rejected"
)

// Metrics holds the planning engine's instruments
type Metrics struct {
	RunsTotal       *prometheus.CounterVec
	RunDuration     prometheus.Histogram
	ExceptionsTotal *prometheus.CounterVec
	PlannedOrders   prometheus.Gauge
}

// New registers the instruments with the given registerer
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "planning_runs_total",
			Help: "Planning runs by outcome.",
		}, []string{"outcome"}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "planning_run_duration_seconds",
			Help:    "Wall time of completed planning runs.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		ExceptionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "planning_exceptions_total",
			Help: "Exceptions raised by planning runs, by type.",
		}, []string{"type"}),
		PlannedOrders: factory.NewGauge(prometheus.GaugeOpts{
			Name: "planning_planned_orders",
			Help: "Planned orders produced by the most recent run.",
		}),
	}
}

// ObserveRun records one run's outcome and duration
func (m *Metrics) ObserveRun(outcome string, duration time.Duration) {
	m.RunsTotal.WithLabelValues(outcome).Inc()
	if outcome == OutcomeCompleted {
		m.RunDuration.Observe(duration.Seconds())
	}
}
