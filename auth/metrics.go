package auth

import (
	"github.com/prometheus/client_golang/prometheus"
)

type (
	// Metrics counts authentication decisions.
	Metrics struct {
		decisions *prometheus.CounterVec
	}
)

// NewMetrics registers the decision counter in reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "turnstile",
			Subsystem: "auth",
			Name:      "decisions_total",
			Help:      "Authentication decisions by strategy, outcome and rejection reason.",
		}, []string{"strategy", "outcome", "reason"}),
	}
	if err := reg.Register(m.decisions); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) observe(strategy string, d Decision, err error) {
	if m == nil {
		return
	}
	outcome := d.Outcome.String()
	if err != nil {
		outcome = "error"
	}
	m.decisions.WithLabelValues(strategy, outcome, d.Reason.String()).Inc()
}

// Count returns the counter for one label set, mostly useful in tests.
func (m *Metrics) Count(strategy string, outcome Outcome, reason Reason) prometheus.Counter {
	return m.decisions.WithLabelValues(strategy, outcome.String(), reason.String())
}
