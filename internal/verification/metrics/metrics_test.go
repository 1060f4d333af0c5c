package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncrementTransition("OWNER_KYC", "SUBMIT", "SUBMITTED")
	m.IncrementTransition("OWNER_KYC", "SUBMIT", "SUBMITTED")
	m.ObserveGateCheck("OWNER_KYC", true)
	m.ObserveGateCheck("OWNER_KYC", false)
	m.IncrementRejected("VERIFY", "invalid_transition")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Transitions.WithLabelValues("OWNER_KYC", "SUBMIT", "SUBMITTED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GateChecks.WithLabelValues("OWNER_KYC", "passed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GateChecks.WithLabelValues("OWNER_KYC", "denied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RejectedTransitions.WithLabelValues("VERIFY", "invalid_transition")))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementTransition("OWNER_KYC", "SUBMIT", "SUBMITTED")
		m.ObserveGateCheck("OWNER_KYC", true)
		m.IncrementRelayPublish("published")
	})
}
