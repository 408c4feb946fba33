package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveRegistration(OutcomeSuccess, 3*time.Millisecond)
	m.ObserveRegistration(OutcomeSuccess, time.Millisecond)
	m.ObserveRegistration(OutcomeEventFull, time.Millisecond)
	m.IncEventsFilled()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Registrations.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Registrations.WithLabelValues(OutcomeEventFull)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsFilled))

	n, err := testutil.GatherAndCount(reg, "campus_events_tx_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestObserveUnregistrationCountsOnlyRemovals(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveUnregistration(true, time.Millisecond)
	m.ObserveUnregistration(false, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Unregistrations))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRegistration(OutcomeSuccess, time.Millisecond)
		m.ObserveUnregistration(true, time.Millisecond)
		m.ObserveCapacityRead(time.Millisecond)
		m.IncEventsFilled()
	})
}
