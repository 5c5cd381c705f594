package report

import (
	"fmt"
	"math"
	"sort"

	"github.com/justapithecus/faultline/types"
)

// DefaultRegressionThreshold flags edges whose failure rate grew by
// at least 20% relative to the baseline.
const DefaultRegressionThreshold = 0.2

// rateEpsilon guards the relative-growth division when the baseline
// rate is zero. Any positive delta over a zero baseline divides by
// epsilon instead, which always clears the threshold.
const rateEpsilon = 1e-9

// RegressionEntry is one edge whose failure rate regressed against
// the baseline. Rates are percentages, matching the rate map.
type RegressionEntry struct {
	Edge         types.Edge `json:"edge"`
	BaselineRate float64    `json:"baseline_rate"`
	CurrentRate  float64    `json:"current_rate"`
	// Delta is CurrentRate - BaselineRate, always positive for a
	// flagged entry.
	Delta float64 `json:"delta"`
}

// CompareToBaseline flags edges whose failure rate grew relative to a
// previously captured rate map. Only edges present in both maps are
// compared; edges new to either run carry no signal. An edge is
// flagged when its rate increased and the relative growth meets the
// threshold. Results are sorted by delta descending, ties broken
// lexically by edge. A non-finite threshold is caller misuse and
// returns an error.
func CompareToBaseline(current, baseline RatesMap, threshold float64) ([]RegressionEntry, error) {
	if math.IsNaN(threshold) || math.IsInf(threshold, 0) {
		return nil, fmt.Errorf("compare to baseline: threshold must be finite, got %v", threshold)
	}

	var regressions []RegressionEntry
	for edge, cur := range current {
		base, ok := baseline[edge]
		if !ok {
			continue
		}
		delta := cur.FailureRatePercent - base.FailureRatePercent
		if delta <= 0 {
			continue
		}
		if delta/math.Max(base.FailureRatePercent, rateEpsilon) < threshold {
			continue
		}
		regressions = append(regressions, RegressionEntry{
			Edge:         edge,
			BaselineRate: base.FailureRatePercent,
			CurrentRate:  cur.FailureRatePercent,
			Delta:        delta,
		})
	}

	sort.Slice(regressions, func(i, j int) bool {
		if regressions[i].Delta != regressions[j].Delta {
			return regressions[i].Delta > regressions[j].Delta
		}
		return regressions[i].Edge.Less(regressions[j].Edge)
	})
	return regressions, nil
}
