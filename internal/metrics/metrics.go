// Package metrics holds the Prometheus collectors reported by the session layer.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	actions        *prometheus.CounterVec
	actionDuration *prometheus.HistogramVec
	batches        prometheus.Counter
	listings       prometheus.Counter
	ledgerMisses   prometheus.Counter
	activeSessions prometheus.Gauge
}

// MustNew registers the collectors with reg and panics on duplicate
// registration. Tests should pass a fresh prometheus.NewRegistry().
func MustNew(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		actions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "catalog_bot",
				Subsystem: "session",
				Name:      "actions_total",
				Help:      "Inbound user actions by kind and outcome.",
			},
			[]string{"kind", "outcome"},
		),
		actionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "catalog_bot",
				Subsystem: "session",
				Name:      "action_duration_seconds",
				Help:      "Time spent processing one action, including collaborator calls.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"flow"},
		),
		batches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "catalog_bot",
			Subsystem: "pagination",
			Name:      "batches_emitted_total",
			Help:      "Result batches delivered to users.",
		}),
		listings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "catalog_bot",
			Subsystem: "ledger",
			Name:      "listings_recorded_total",
			Help:      "Delete listings written to the ledger.",
		}),
		ledgerMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "catalog_bot",
			Subsystem: "ledger",
			Name:      "resolve_misses_total",
			Help:      "Delete actions whose listing message could not be resolved.",
		}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "catalog_bot",
			Subsystem: "session",
			Name:      "active",
			Help:      "Sessions currently holding a non-idle state or a running worker.",
		}),
	}
	reg.MustRegister(m.actions, m.actionDuration, m.batches, m.listings, m.ledgerMisses, m.activeSessions)
	return m
}

func (m *Metrics) ObserveAction(kind, outcome, flow string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.actions.WithLabelValues(kind, outcome).Inc()
	m.actionDuration.WithLabelValues(flow).Observe(elapsed.Seconds())
}

func (m *Metrics) BatchEmitted() {
	if m == nil {
		return
	}
	m.batches.Inc()
}

func (m *Metrics) ListingRecorded() {
	if m == nil {
		return
	}
	m.listings.Inc()
}

func (m *Metrics) LedgerMiss() {
	if m == nil {
		return
	}
	m.ledgerMisses.Inc()
}

func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}
