package recorder

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/justapithecus/faultline/types"
)

// PromObserver exports recorded transitions as Prometheus metrics: a
// counter per (from_state, to_state, status) and a duration histogram
// per edge for events that carry a measurement.
type PromObserver struct {
	transitions *prometheus.CounterVec
	durations   *prometheus.HistogramVec
}

// NewPromObserver registers the transition metrics on reg and returns
// the observer. Pass prometheus.DefaultRegisterer for the global
// registry; tests use a fresh prometheus.NewRegistry.
func NewPromObserver(reg prometheus.Registerer) *PromObserver {
	o := &PromObserver{
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "faultline_transitions_total",
				Help: "Total recorded state transitions",
			},
			[]string{"from_state", "to_state", "status"},
		),
		durations: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "faultline_transition_duration_ms",
				Help:    "Transition duration in milliseconds",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
			[]string{"from_state", "to_state"},
		),
	}
	reg.MustRegister(o.transitions, o.durations)
	return o
}

// ObserveTransition implements Observer.
func (o *PromObserver) ObserveTransition(ev types.TransitionEvent) {
	o.transitions.WithLabelValues(ev.FromState, ev.ToState, string(ev.Status)).Inc()
	if ms, ok := ev.Duration(); ok {
		o.durations.WithLabelValues(ev.FromState, ev.ToState).Observe(ms)
	}
}
