package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics tracks checkout phase movement and payment session latency.
type CheckoutMetrics struct {
	transitions *prometheus.CounterVec
	failures    *prometheus.CounterVec
	sessions    *prometheus.HistogramVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_transitions_total",
		Help: "Checkout phase transitions by source and target phase.",
	}, []string{"from", "to"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_failures_total",
		Help: "Checkouts that ended in failure, by failure kind.",
	}, []string{"kind"})
	sessions := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_payment_session_seconds",
		Help:    "Latency of payment session creation.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	reg.MustRegister(transitions, failures, sessions)
	return &CheckoutMetrics{
		transitions: transitions,
		failures:    failures,
		sessions:    sessions,
	}
}

// ObserveTransition counts a committed phase change.
func (m *CheckoutMetrics) ObserveTransition(from, to string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

// ObserveFailure counts a checkout that failed with the given kind.
func (m *CheckoutMetrics) ObserveFailure(kind string) {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.WithLabelValues(normalizeLabel(kind)).Inc()
}

// ObserveSession records how long the payment collaborator took.
func (m *CheckoutMetrics) ObserveSession(outcome string, d time.Duration) {
	if m == nil || m.sessions == nil {
		return
	}
	m.sessions.WithLabelValues(normalizeLabel(outcome)).Observe(d.Seconds())
}
