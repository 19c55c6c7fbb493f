package obs

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/eliaskioni/RateLimitingDemo/internal/limiter"
)

// Metrics holds the admission engine's Prometheus collectors.
type Metrics struct {
	ConsumesTotal    *prometheus.CounterVec
	SimulationsTotal *prometheus.CounterVec
	ReconfigsTotal   *prometheus.CounterVec
}

// NewMetrics registers the collectors with reg and returns them.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ConsumesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ratelimit_consumes_total",
				Help: "Admission decisions by algorithm and outcome",
			},
			[]string{"algorithm", "outcome"},
		),
		SimulationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ratelimit_simulations_total",
				Help: "Simulation runs by algorithm and result",
			},
			[]string{"algorithm", "result"},
		),
		ReconfigsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ratelimit_reconfigures_total",
				Help: "Configuration swaps by algorithm and result",
			},
			[]string{"algorithm", "result"},
		),
	}

	reg.MustRegister(m.ConsumesTotal, m.SimulationsTotal, m.ReconfigsTotal)
	return m
}

// ObserveDecision counts one admission decision.
func (m *Metrics) ObserveDecision(kind limiter.Kind, d limiter.Decision) {
	outcome := "denied"
	if d.Allowed {
		outcome = "allowed"
	}
	m.ConsumesTotal.WithLabelValues(string(kind), outcome).Inc()
}
