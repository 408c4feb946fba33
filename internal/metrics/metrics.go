// Package metrics holds the Prometheus collectors for the registration engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for registration attempts.
const (
	OutcomeSuccess           = "success"
	OutcomeEventNotFound     = "event_not_found"
	OutcomeEventCancelled    = "event_cancelled"
	OutcomeEventCompleted    = "event_completed"
	OutcomeEventFull         = "event_full"
	OutcomeAlreadyRegistered = "already_registered"
	OutcomeInvalidCapacity   = "invalid_capacity"
	OutcomeInvalidInput      = "invalid_input"
	OutcomeStorageError      = "storage_error"
)

// Metrics holds all Prometheus metrics for the engine. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	Registrations   *prometheus.CounterVec
	Unregistrations prometheus.Counter
	EventsFilled    prometheus.Counter
	TxDuration      *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Registrations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "campus_events_registrations_total",
			Help: "Registration attempts by outcome",
		}, []string{"outcome"}),
		Unregistrations: f.NewCounter(prometheus.CounterOpts{
			Name: "campus_events_unregistrations_total",
			Help: "Registrations removed by students",
		}),
		EventsFilled: f.NewCounter(prometheus.CounterOpts{
			Name: "campus_events_events_filled_total",
			Help: "Events flipped to full by the registration engine",
		}),
		TxDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "campus_events_tx_duration_seconds",
			Help:    "Duration of engine transactions, including lock wait",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}, []string{"op"}),
	}
}

// ObserveRegistration records one attempt.
func (m *Metrics) ObserveRegistration(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.Registrations.WithLabelValues(outcome).Inc()
	m.TxDuration.WithLabelValues("register").Observe(d.Seconds())
}

// ObserveUnregistration records a removal; removed is false for a no-op.
func (m *Metrics) ObserveUnregistration(removed bool, d time.Duration) {
	if m == nil {
		return
	}
	if removed {
		m.Unregistrations.Inc()
	}
	m.TxDuration.WithLabelValues("unregister").Observe(d.Seconds())
}

// ObserveCapacityRead records a snapshot read.
func (m *Metrics) ObserveCapacityRead(d time.Duration) {
	if m == nil {
		return
	}
	m.TxDuration.WithLabelValues("capacity").Observe(d.Seconds())
}

// IncEventsFilled counts an automatic upcoming → full flip.
func (m *Metrics) IncEventsFilled() {
	if m == nil {
		return
	}
	m.EventsFilled.Inc()
}
