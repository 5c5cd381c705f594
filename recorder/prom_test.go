package recorder

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/justapithecus/faultline/types"
)

func TestPromObserver_CountsTransitions(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := NewPromObserver(reg)
	r := New(WithObserver(obs))

	r.Record(types.TransitionEvent{FromState: "A", ToState: "B", Status: types.StatusSuccess})
	r.Record(types.TransitionEvent{FromState: "A", ToState: "B", Status: types.StatusSuccess})
	r.Record(types.TransitionEvent{FromState: "A", ToState: "B", Status: types.StatusFailure, Error: "boom"})

	success := testutil.ToFloat64(obs.transitions.WithLabelValues("A", "B", "SUCCESS"))
	if success != 2 {
		t.Errorf("success counter = %v, want 2", success)
	}
	failure := testutil.ToFloat64(obs.transitions.WithLabelValues("A", "B", "FAILURE"))
	if failure != 1 {
		t.Errorf("failure counter = %v, want 1", failure)
	}
}

func TestPromObserver_ObservesDurations(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := NewPromObserver(reg)
	r := New(WithObserver(obs))

	r.Record(types.TransitionEvent{
		FromState:  "A",
		ToState:    "B",
		Status:     types.StatusSuccess,
		DurationMs: types.DurationPtr(12.5),
	})
	r.Record(types.TransitionEvent{FromState: "B", ToState: "C", Status: types.StatusSuccess})

	// Only the measured edge may create a duration series.
	count := testutil.CollectAndCount(obs.durations)
	if count != 1 {
		t.Errorf("duration series count = %d, want 1 (unmeasured edge must not observe)", count)
	}
}

func TestPromObserver_RegistersBothMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := NewPromObserver(reg)

	obs.ObserveTransition(types.TransitionEvent{
		FromState:  "A",
		ToState:    "B",
		Status:     types.StatusSuccess,
		DurationMs: types.DurationPtr(3),
	})

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}

	found := map[string]bool{}
	for _, mf := range families {
		found[mf.GetName()] = true
	}
	for _, name := range []string{"faultline_transitions_total", "faultline_transition_duration_ms"} {
		if !found[name] {
			t.Errorf("metric %q not registered, got %v", name, found)
		}
	}
}
