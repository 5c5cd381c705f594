package report

import (
	"fmt"
	"strings"
)

// markdownHotspotLimit caps the hotspot section of the markdown view.
const markdownHotspotLimit = 10

// Markdown renders the report as a Markdown document: totals, a
// From\To table of per-edge failure counts over the sorted state
// union, and a hotspot section listing the top edges at the default
// floor. Edges without failures show as "-".
func Markdown(r *Report) string {
	states := r.Matrix.States()
	if len(states) == 0 {
		return "# Transition Failure Matrix\n\nNo transitions found."
	}

	lines := []string{"# Transition Failure Matrix\n"}
	var failureRate float64
	if r.TotalTransitions > 0 {
		failureRate = float64(r.TotalFailures) / float64(r.TotalTransitions) * 100
	}
	lines = append(lines,
		fmt.Sprintf("**Total Transitions:** %d", r.TotalTransitions),
		fmt.Sprintf("**Total Failures:** %d", r.TotalFailures),
		fmt.Sprintf("**Failure Rate:** %.1f%%\n", failureRate),
	)

	header := "| From \\ To |"
	separator := "|-----------|"
	for _, state := range states {
		header += fmt.Sprintf(" %s |", state)
		separator += "--------|"
	}
	lines = append(lines, header, separator)

	for _, from := range states {
		row := fmt.Sprintf("| **%s** |", from)
		for _, to := range states {
			if cell, ok := r.Matrix.Cell(from, to); ok && cell.Failures > 0 {
				row += fmt.Sprintf(" **%d** |", cell.Failures)
			} else {
				row += " - |"
			}
		}
		lines = append(lines, row)
	}

	// The hotspot section always uses the default floor, independent
	// of the floor the report itself was built with.
	hotspots, err := Hotspots(r.Matrix, DefaultMinFailures)
	if err == nil && len(hotspots) > 0 {
		lines = append(lines, fmt.Sprintf("\n## Hotspots (failures >= %d)\n", DefaultMinFailures))
		if len(hotspots) > markdownHotspotLimit {
			hotspots = hotspots[:markdownHotspotLimit]
		}
		for _, h := range hotspots {
			lines = append(lines, fmt.Sprintf("- %s -> %s: **%d failures**", h.From, h.To, h.FailureCount))
		}
	}

	return strings.Join(lines, "\n")
}
