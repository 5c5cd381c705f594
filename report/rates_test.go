package report

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/justapithecus/faultline/matrix"
	"github.com/justapithecus/faultline/types"
)

func evt(from, to string) types.TransitionEvent {
	return types.TransitionEvent{FromState: from, ToState: to, Status: types.StatusSuccess}
}

func failEvt(from, to, msg string) types.TransitionEvent {
	return types.TransitionEvent{FromState: from, ToState: to, Status: types.StatusFailure, Error: msg}
}

func timedEvt(from, to string, ms float64) types.TransitionEvent {
	return types.TransitionEvent{
		FromState:  from,
		ToState:    to,
		Status:     types.StatusSuccess,
		DurationMs: types.DurationPtr(ms),
	}
}

func TestRates_ExactPercentage(t *testing.T) {
	var events []types.TransitionEvent
	for range 83 {
		events = append(events, evt("Parse", "Exec"))
	}
	for range 17 {
		events = append(events, failEvt("Parse", "Exec", "timeout"))
	}

	rates := Rates(matrix.Build(events))
	r, ok := rates[types.Edge{From: "Parse", To: "Exec"}]
	if !ok {
		t.Fatal("edge Parse → Exec missing from rates")
	}

	if r.Total != 100 {
		t.Errorf("Total = %d, want 100", r.Total)
	}
	if r.Failures != 17 {
		t.Errorf("Failures = %d, want 17", r.Failures)
	}
	if r.Successes != 83 {
		t.Errorf("Successes = %d, want 83", r.Successes)
	}
	if r.FailureRatePercent != 17.0 {
		t.Errorf("FailureRatePercent = %v, want exactly 17.0", r.FailureRatePercent)
	}
}

func TestRates_ZeroFailureEdge(t *testing.T) {
	events := []types.TransitionEvent{
		evt("A", "B"), evt("A", "B"), evt("A", "B"),
	}

	rates := Rates(matrix.Build(events))
	r := rates[types.Edge{From: "A", To: "B"}]

	if r.FailureRatePercent != 0 {
		t.Errorf("FailureRatePercent = %v, want 0", r.FailureRatePercent)
	}
	if r.Successes != 3 {
		t.Errorf("Successes = %d, want 3", r.Successes)
	}
}

func TestRates_UnobservedEdgeAbsent(t *testing.T) {
	rates := Rates(matrix.Build([]types.TransitionEvent{evt("A", "B")}))

	if len(rates) != 1 {
		t.Fatalf("len(rates) = %d, want 1", len(rates))
	}
	if _, ok := rates[types.Edge{From: "C", To: "D"}]; ok {
		t.Error("unobserved edge C → D present in rates")
	}
}

func TestRates_AvgDuration(t *testing.T) {
	events := []types.TransitionEvent{
		timedEvt("A", "B", 10),
		timedEvt("A", "B", 30),
		evt("A", "B"),
		evt("B", "C"),
	}

	rates := Rates(matrix.Build(events))

	ab := rates[types.Edge{From: "A", To: "B"}]
	if ab.AvgDurationMs == nil {
		t.Fatal("A → B AvgDurationMs is nil, want 20")
	}
	if *ab.AvgDurationMs != 20 {
		t.Errorf("A → B AvgDurationMs = %v, want 20", *ab.AvgDurationMs)
	}

	bc := rates[types.Edge{From: "B", To: "C"}]
	if bc.AvgDurationMs != nil {
		t.Errorf("B → C AvgDurationMs = %v, want nil for unmeasured edge", *bc.AvgDurationMs)
	}
}

func TestRates_EmptyMatrix(t *testing.T) {
	rates := Rates(matrix.Build(nil))
	if len(rates) != 0 {
		t.Errorf("len(rates) = %d, want 0", len(rates))
	}
}

func TestRatesMap_EdgesSorted(t *testing.T) {
	events := []types.TransitionEvent{
		evt("C", "A"), evt("A", "B"), evt("B", "C"), evt("A", "A"),
	}

	edges := Rates(matrix.Build(events)).Edges()

	want := []types.Edge{
		{From: "A", To: "A"},
		{From: "A", To: "B"},
		{From: "B", To: "C"},
		{From: "C", To: "A"},
	}
	if len(edges) != len(want) {
		t.Fatalf("len(edges) = %d, want %d", len(edges), len(want))
	}
	for i, edge := range edges {
		if edge != want[i] {
			t.Errorf("edges[%d] = %v, want %v", i, edge, want[i])
		}
	}
}

func TestRatesMap_JSONRoundTrip(t *testing.T) {
	// The rate map is the baseline artifact. It must survive
	// serialization and reload unchanged.
	events := []types.TransitionEvent{
		evt("START", "Parse"),
		failEvt("Parse", "Exec", "timeout"),
		timedEvt("Exec", "Done", 12.5),
	}
	rates := Rates(matrix.Build(events))

	data, err := json.Marshal(rates)
	if err != nil {
		t.Fatalf("failed to marshal rates: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("failed to unmarshal raw: %v", err)
	}
	if _, ok := raw["Parse → Exec"]; !ok {
		t.Errorf("serialized rates missing %q key, got keys %v", "Parse → Exec", raw)
	}

	var decoded RatesMap
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("failed to unmarshal rates: %v", err)
	}
	if len(decoded) != len(rates) {
		t.Fatalf("decoded %d edges, want %d", len(decoded), len(rates))
	}
	for edge, want := range rates {
		got, ok := decoded[edge]
		if !ok {
			t.Errorf("decoded rates missing edge %v", edge)
			continue
		}
		if got.Total != want.Total || got.Failures != want.Failures || got.FailureRatePercent != want.FailureRatePercent {
			t.Errorf("decoded[%v] = %+v, want %+v", edge, got, want)
		}
		if (got.AvgDurationMs == nil) != (want.AvgDurationMs == nil) {
			t.Errorf("decoded[%v] AvgDurationMs presence mismatch", edge)
		}
	}
}

func TestSlowTransitions_StrictlyAboveThreshold(t *testing.T) {
	events := []types.TransitionEvent{
		timedEvt("A", "B", 100),
		timedEvt("B", "C", 101),
		timedEvt("C", "D", 250),
	}

	slow, err := SlowTransitions(matrix.Build(events), 100)
	if err != nil {
		t.Fatalf("SlowTransitions failed: %v", err)
	}

	if len(slow) != 2 {
		t.Fatalf("len(slow) = %d, want 2 (avg equal to threshold excluded)", len(slow))
	}
	if slow[0].Edge != (types.Edge{From: "C", To: "D"}) {
		t.Errorf("slow[0].Edge = %v, want C → D", slow[0].Edge)
	}
	if slow[0].AvgDurationMs != 250 {
		t.Errorf("slow[0].AvgDurationMs = %v, want 250", slow[0].AvgDurationMs)
	}
	if slow[1].Edge != (types.Edge{From: "B", To: "C"}) {
		t.Errorf("slow[1].Edge = %v, want B → C", slow[1].Edge)
	}
}

func TestSlowTransitions_ExcludesUnmeasuredEdges(t *testing.T) {
	events := []types.TransitionEvent{
		evt("A", "B"), evt("A", "B"),
		timedEvt("B", "C", 500),
	}

	slow, err := SlowTransitions(matrix.Build(events), 1)
	if err != nil {
		t.Fatalf("SlowTransitions failed: %v", err)
	}

	if len(slow) != 1 {
		t.Fatalf("len(slow) = %d, want 1", len(slow))
	}
	if slow[0].Edge != (types.Edge{From: "B", To: "C"}) {
		t.Errorf("slow[0].Edge = %v, want B → C", slow[0].Edge)
	}
	if slow[0].SampleCount != 1 {
		t.Errorf("slow[0].SampleCount = %d, want 1", slow[0].SampleCount)
	}
}

func TestSlowTransitions_TieBrokenLexically(t *testing.T) {
	events := []types.TransitionEvent{
		timedEvt("B", "Z", 50),
		timedEvt("A", "Z", 50),
	}

	slow, err := SlowTransitions(matrix.Build(events), 10)
	if err != nil {
		t.Fatalf("SlowTransitions failed: %v", err)
	}

	if len(slow) != 2 {
		t.Fatalf("len(slow) = %d, want 2", len(slow))
	}
	if slow[0].Edge.From != "A" || slow[1].Edge.From != "B" {
		t.Errorf("tie order = %v, %v; want A → Z before B → Z", slow[0].Edge, slow[1].Edge)
	}
}

func TestSlowTransitions_NonFiniteThreshold(t *testing.T) {
	m := matrix.Build([]types.TransitionEvent{timedEvt("A", "B", 10)})

	for _, threshold := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, err := SlowTransitions(m, threshold); err == nil {
			t.Errorf("SlowTransitions(%v) error = nil, want error", threshold)
		}
	}
}
