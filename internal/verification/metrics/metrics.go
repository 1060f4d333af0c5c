package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the verification module.
type Metrics struct {
	// Applied actions by entity type, action and resulting status
	Transitions *prometheus.CounterVec

	// Actions refused by the state machine, by error code
	RejectedTransitions *prometheus.CounterVec

	// Gate decisions by entity type and outcome
	GateChecks *prometheus.CounterVec

	// Unit-of-work duration per operation
	OperationLatency *prometheus.HistogramVec

	// Outbox relay publish attempts by outcome: "published", "failed", "skipped"
	RelayPublishes *prometheus.CounterVec
}

// New registers the verification metrics with reg. A nil reg uses the
// default Prometheus registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kycgate_case_transitions_total",
			Help: "Total case actions applied, by entity type, action and resulting status",
		}, []string{"entity_type", "action", "status"}),

		RejectedTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kycgate_case_transitions_rejected_total",
			Help: "Total case actions refused, by action and error code",
		}, []string{"action", "code"}),

		GateChecks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kycgate_gate_checks_total",
			Help: "Total access gate checks by entity type and outcome",
		}, []string{"entity_type", "outcome"}),

		OperationLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kycgate_case_operation_duration_seconds",
			Help:    "Duration of case operations including the transaction",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation"}),

		RelayPublishes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kycgate_outbox_publishes_total",
			Help: "Outbox relay publish attempts by outcome",
		}, []string{"outcome"}),
	}
}

// IncrementTransition records an applied action.
func (m *Metrics) IncrementTransition(entityType, action, status string) {
	if m != nil {
		m.Transitions.WithLabelValues(entityType, action, status).Inc()
	}
}

// IncrementRejected records an action the state machine refused.
func (m *Metrics) IncrementRejected(action, code string) {
	if m != nil {
		m.RejectedTransitions.WithLabelValues(action, code).Inc()
	}
}

// ObserveGateCheck implements gate.Observer.
func (m *Metrics) ObserveGateCheck(entityType string, passed bool) {
	if m == nil {
		return
	}
	outcome := "denied"
	if passed {
		outcome = "passed"
	}
	m.GateChecks.WithLabelValues(entityType, outcome).Inc()
}

// ObserveOperation records the duration of a service operation.
func (m *Metrics) ObserveOperation(operation string, d time.Duration) {
	if m != nil {
		m.OperationLatency.WithLabelValues(operation).Observe(d.Seconds())
	}
}

// IncrementRelayPublish records one relay attempt.
func (m *Metrics) IncrementRelayPublish(outcome string) {
	if m != nil {
		m.RelayPublishes.WithLabelValues(outcome).Inc()
	}
}
