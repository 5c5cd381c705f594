// Package flow renders a built matrix as flow-diagram text: a plain
// comma-separated body, a Mermaid sankey wrapper, and a Graphviz DOT
// form. The body format is the portable representation; Parse reads
// it back losslessly.
package flow

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/justapithecus/faultline/matrix"
	"github.com/justapithecus/faultline/types"
)

// Options configures flow rendering.
type Options struct {
	// IncludeFailures splits each edge's volume into a success flow
	// toward the target state and a failure flow toward the FAIL
	// sink. When false each edge carries its total volume and no
	// FAIL lines are emitted.
	IncludeFailures bool

	// MinTransitions drops edges whose total volume is below the
	// threshold. Values below one keep every edge.
	MinTransitions int64
}

// DefaultOptions returns the standard render configuration: failure
// flows on, no volume filtering.
func DefaultOptions() Options {
	return Options{IncludeFailures: true, MinTransitions: 1}
}

// Line is one flow record: volume moving from Source to Target.
type Line struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Value  int64  `json:"value"`
}

// Render returns the flow body: one "source,target,value" line per
// flow, edges in lexical order. With failures included, a qualifying
// edge always gets its success line, even at zero volume, and a FAIL
// line only when it has failures; the two lines together conserve the
// edge's total. State names containing commas do not survive Parse.
func Render(m matrix.Matrix, opts Options) string {
	flows := Flows(m, opts)
	lines := make([]string, len(flows))
	for i, f := range flows {
		lines[i] = fmt.Sprintf("%s,%s,%d", f.Source, f.Target, f.Value)
	}
	return strings.Join(lines, "\n")
}

// Flows returns the structured flow records Render serializes.
func Flows(m matrix.Matrix, opts Options) []Line {
	var flows []Line
	for _, edge := range m.Edges() {
		cell, ok := m.Cell(edge.From, edge.To)
		if !ok || cell.Count < opts.MinTransitions {
			continue
		}
		if opts.IncludeFailures {
			flows = append(flows, Line{Source: edge.From, Target: edge.To, Value: cell.Successes()})
			if cell.Failures > 0 {
				flows = append(flows, Line{Source: edge.From, Target: types.FailureSink, Value: cell.Failures})
			}
		} else {
			flows = append(flows, Line{Source: edge.From, Target: edge.To, Value: cell.Count})
		}
	}
	return flows
}

// Parse reads flow body text back into structured records. Blank
// lines are skipped; anything else must be a well-formed
// "source,target,value" record or the line is reported by number.
func Parse(text string) ([]Line, error) {
	var flows []Line
	for i, raw := range strings.Split(text, "\n") {
		if raw == "" {
			continue
		}
		parts := strings.Split(raw, ",")
		if len(parts) != 3 {
			return nil, fmt.Errorf("flow line %d: malformed record %q", i+1, raw)
		}
		value, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("flow line %d: bad value %q: %w", i+1, parts[2], err)
		}
		flows = append(flows, Line{Source: parts[0], Target: parts[1], Value: value})
	}
	return flows, nil
}
