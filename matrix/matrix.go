// Package matrix folds transition event sequences into the aggregated
// per-edge failure matrix.
//
// A Matrix is a pure function of its input sequence: each analysis pass
// rebuilds from the full snapshot currently available, never patches
// incrementally. Aggregation is commutative per field, so any
// permutation of the same sequence yields identical cells except for
// duration-sample ordering, which no derived statistic depends on.
package matrix

import (
	"sort"

	"github.com/justapithecus/faultline/types"
)

// Cell is the aggregated state for one directed edge.
type Cell struct {
	// Count is the number of observed traversals.
	Count int64 `json:"count"`
	// Failures is the number of FAILURE traversals. 0 <= Failures <= Count.
	Failures int64 `json:"failures"`
	// DurationSamples holds measured durations in observation order.
	// Only events with a defined duration contribute; absent samples
	// are excluded, never treated as zero.
	DurationSamples []float64 `json:"duration_samples,omitempty"`
	// ErrorFrequency counts failures by truncated error key.
	ErrorFrequency map[string]int64 `json:"error_frequency,omitempty"`
}

// Successes returns the number of SUCCESS traversals.
func (c *Cell) Successes() int64 {
	return c.Count - c.Failures
}

// AvgDuration returns the arithmetic mean of the duration samples.
// The second return is false when the edge has no samples; an
// unmeasured edge must never be reported as instant.
func (c *Cell) AvgDuration() (float64, bool) {
	if len(c.DurationSamples) == 0 {
		return 0, false
	}
	var sum float64
	for _, ms := range c.DurationSamples {
		sum += ms
	}
	return sum / float64(len(c.DurationSamples)), true
}

// FailureRate returns failures/count as a fraction in [0,1].
// Zero when the cell has no observations.
func (c *Cell) FailureRate() float64 {
	if c.Count == 0 {
		return 0
	}
	return float64(c.Failures) / float64(c.Count)
}

// Matrix maps from-state to to-state to the edge's aggregated Cell.
// Edges that were never observed are absent, not present with zeroes.
type Matrix map[string]map[string]*Cell

// Build folds an event sequence into a Matrix.
//
// Any finite sequence is accepted, including empty (which yields an
// empty Matrix, not an error). No event is rejected for malformed
// content beyond missing optional fields: empty state names are valid
// edge keys, a FAILURE without error text counts toward Failures but
// not ErrorFrequency, and events whose status is not FAILURE count as
// successful traversals. Well-formedness validation belongs to the
// layer that produced the events.
func Build(events []types.TransitionEvent) Matrix {
	m := make(Matrix)
	for i := range events {
		ev := &events[i]
		cell := m.ensure(ev.FromState, ev.ToState)
		cell.Count++
		if ev.Status.IsFailure() {
			cell.Failures++
			if ev.Error != "" {
				if cell.ErrorFrequency == nil {
					cell.ErrorFrequency = make(map[string]int64)
				}
				cell.ErrorFrequency[types.ErrorKey(ev.Error)]++
			}
		}
		if ms, ok := ev.Duration(); ok {
			cell.DurationSamples = append(cell.DurationSamples, ms)
		}
	}
	return m
}

// ensure returns the cell for (from, to), creating it if absent.
func (m Matrix) ensure(from, to string) *Cell {
	row, ok := m[from]
	if !ok {
		row = make(map[string]*Cell)
		m[from] = row
	}
	cell, ok := row[to]
	if !ok {
		cell = &Cell{}
		row[to] = cell
	}
	return cell
}

// Cell returns the cell for (from, to) and whether the edge was observed.
func (m Matrix) Cell(from, to string) (*Cell, bool) {
	row, ok := m[from]
	if !ok {
		return nil, false
	}
	cell, ok := row[to]
	return cell, ok
}

// Edges returns every observed edge sorted lexically by from, then to.
// The ordering is the deterministic iteration order used by every
// derived serialization.
func (m Matrix) Edges() []types.Edge {
	edges := make([]types.Edge, 0, len(m))
	for from, row := range m {
		for to := range row {
			edges = append(edges, types.Edge{From: from, To: to})
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		return edges[i].Less(edges[j])
	})
	return edges
}

// States returns the sorted union of all source and target states.
func (m Matrix) States() []string {
	seen := make(map[string]struct{})
	for from, row := range m {
		seen[from] = struct{}{}
		for to := range row {
			seen[to] = struct{}{}
		}
	}
	states := make([]string, 0, len(seen))
	for s := range seen {
		states = append(states, s)
	}
	sort.Strings(states)
	return states
}

// TotalTransitions returns the sum of all cell counts.
// For a matrix built from a sequence this equals the sequence length.
func (m Matrix) TotalTransitions() int64 {
	var total int64
	for _, row := range m {
		for _, cell := range row {
			total += cell.Count
		}
	}
	return total
}

// TotalFailures returns the sum of all cell failure counts.
func (m Matrix) TotalFailures() int64 {
	var total int64
	for _, row := range m {
		for _, cell := range row {
			total += cell.Failures
		}
	}
	return total
}
