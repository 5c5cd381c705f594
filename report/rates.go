// Package report derives failure-localization views from a built
// matrix: per-edge rates, ranked hotspots, global error clusters,
// slow-edge detection, baseline regression comparison, and the
// composed report document.
//
// Every function here is a pure, synchronous computation over its
// arguments. The package performs no I/O apart from the explicit
// Write helper and never prints; presentation belongs to the caller.
package report

import (
	"fmt"
	"math"
	"sort"

	"github.com/justapithecus/faultline/matrix"
	"github.com/justapithecus/faultline/types"
)

// EdgeRates is the rate record for one edge.
type EdgeRates struct {
	// Total is the number of observed traversals.
	Total int64 `json:"total"`
	// Failures is the number of FAILURE traversals.
	Failures int64 `json:"failures"`
	// Successes is Total - Failures.
	Successes int64 `json:"successes"`
	// FailureRatePercent is failures/total*100. Zero when Total is
	// zero; the division is never performed on an empty edge.
	FailureRatePercent float64 `json:"failure_rate_percent"`
	// AvgDurationMs is the mean of the edge's duration samples. Nil
	// when the edge has no samples; an unmeasured edge is never
	// reported as instant.
	AvgDurationMs *float64 `json:"avg_duration_ms,omitempty"`
}

// RatesMap maps each observed edge to its rate record. Serialized
// form keys edges as "A → B"; this is the baseline artifact shape,
// persisted verbatim and reloaded for CompareToBaseline.
type RatesMap map[types.Edge]EdgeRates

// Rates derives the per-edge rate map from a built matrix.
func Rates(m matrix.Matrix) RatesMap {
	rates := make(RatesMap, len(m))
	for from, row := range m {
		for to, cell := range row {
			r := EdgeRates{
				Total:     cell.Count,
				Failures:  cell.Failures,
				Successes: cell.Successes(),
			}
			if cell.Count > 0 {
				r.FailureRatePercent = float64(cell.Failures) / float64(cell.Count) * 100
			}
			if avg, ok := cell.AvgDuration(); ok {
				r.AvgDurationMs = &avg
			}
			rates[types.Edge{From: from, To: to}] = r
		}
	}
	return rates
}

// Edges returns the rate map's edges sorted lexically by from, then to.
func (r RatesMap) Edges() []types.Edge {
	edges := make([]types.Edge, 0, len(r))
	for edge := range r {
		edges = append(edges, edge)
	}
	sort.Slice(edges, func(i, j int) bool {
		return edges[i].Less(edges[j])
	})
	return edges
}

// SlowTransition is one edge whose mean duration exceeded the threshold.
type SlowTransition struct {
	Edge          types.Edge `json:"edge"`
	AvgDurationMs float64    `json:"avg_duration_ms"`
	SampleCount   int        `json:"sample_count"`
}

// SlowTransitions returns edges whose mean duration exceeds thresholdMs,
// sorted descending by mean. Edges with no duration samples are
// excluded, not treated as failing the threshold. A non-finite
// threshold is caller misuse and returns an error.
func SlowTransitions(m matrix.Matrix, thresholdMs float64) ([]SlowTransition, error) {
	if math.IsNaN(thresholdMs) || math.IsInf(thresholdMs, 0) {
		return nil, fmt.Errorf("slow transitions: threshold must be finite, got %v", thresholdMs)
	}

	var slow []SlowTransition
	for from, row := range m {
		for to, cell := range row {
			avg, ok := cell.AvgDuration()
			if !ok || avg <= thresholdMs {
				continue
			}
			slow = append(slow, SlowTransition{
				Edge:          types.Edge{From: from, To: to},
				AvgDurationMs: avg,
				SampleCount:   len(cell.DurationSamples),
			})
		}
	}

	sort.Slice(slow, func(i, j int) bool {
		if slow[i].AvgDurationMs != slow[j].AvgDurationMs {
			return slow[i].AvgDurationMs > slow[j].AvgDurationMs
		}
		return slow[i].Edge.Less(slow[j].Edge)
	})
	return slow, nil
}
