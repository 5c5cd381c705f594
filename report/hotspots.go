package report

import (
	"fmt"
	"sort"

	"github.com/justapithecus/faultline/matrix"
)

// DefaultMinFailures is the hotspot floor: edges with fewer failures
// are treated as noise and excluded from hotspot reports.
const DefaultMinFailures = 2

// topErrorLimit caps the error samples carried per hotspot.
const topErrorLimit = 3

// ErrorSample is one truncated error key and its occurrence count.
type ErrorSample struct {
	Error string `json:"error"`
	Count int64  `json:"count"`
}

// Hotspot is one edge ranked by failure volume, with its most
// frequent error keys attached for localization.
type Hotspot struct {
	From         string        `json:"from"`
	To           string        `json:"to"`
	FailureCount int64         `json:"failure_count"`
	// FailureRate is a fraction in [0, 1], not a percentage.
	FailureRate float64       `json:"failure_rate"`
	TopErrors   []ErrorSample `json:"top_errors,omitempty"`
}

// Hotspots returns edges whose failure count meets minFailures,
// ranked by failure count descending, ties broken lexically by
// (from, to). Each hotspot carries up to three top error samples
// sorted by count descending, ties broken by error text ascending.
// A negative minFailures is caller misuse and returns an error;
// zero disables the floor.
func Hotspots(m matrix.Matrix, minFailures int) ([]Hotspot, error) {
	if minFailures < 0 {
		return nil, fmt.Errorf("hotspots: min failures must be non-negative, got %d", minFailures)
	}

	var hotspots []Hotspot
	for from, row := range m {
		for to, cell := range row {
			if cell.Failures < int64(minFailures) {
				continue
			}
			hotspots = append(hotspots, Hotspot{
				From:         from,
				To:           to,
				FailureCount: cell.Failures,
				FailureRate:  cell.FailureRate(),
				TopErrors:    topErrors(cell.ErrorFrequency),
			})
		}
	}

	sort.Slice(hotspots, func(i, j int) bool {
		if hotspots[i].FailureCount != hotspots[j].FailureCount {
			return hotspots[i].FailureCount > hotspots[j].FailureCount
		}
		if hotspots[i].From != hotspots[j].From {
			return hotspots[i].From < hotspots[j].From
		}
		return hotspots[i].To < hotspots[j].To
	})
	return hotspots, nil
}

func topErrors(freq map[string]int64) []ErrorSample {
	if len(freq) == 0 {
		return nil
	}
	samples := make([]ErrorSample, 0, len(freq))
	for err, count := range freq {
		samples = append(samples, ErrorSample{Error: err, Count: count})
	}
	sort.Slice(samples, func(i, j int) bool {
		if samples[i].Count != samples[j].Count {
			return samples[i].Count > samples[j].Count
		}
		return samples[i].Error < samples[j].Error
	})
	if len(samples) > topErrorLimit {
		samples = samples[:topErrorLimit]
	}
	return samples
}
