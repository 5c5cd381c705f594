package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/justapithecus/faultline/flow"
	"github.com/justapithecus/faultline/matrix"
	"github.com/justapithecus/faultline/types"
)

// Report is the composed analysis document written by analyze.
// All fields use json tags matching the documented contract.
type Report struct {
	ReportID   string `json:"report_id"`
	CapturedAt string `json:"captured_at"`
	Workflow   string `json:"workflow,omitempty"`

	Matrix           matrix.Matrix `json:"matrix"`
	TotalTransitions int64         `json:"total_transitions"`
	TotalFailures    int64         `json:"total_failures"`
	// FailureRate is a fraction in [0, 1], not a percentage.
	FailureRate float64 `json:"failure_rate"`

	Rates    RatesMap  `json:"rates"`
	Hotspots []Hotspot `json:"hotspots"`

	SlowTransitions []SlowTransition  `json:"slow_transitions,omitempty"`
	Regressions     []RegressionEntry `json:"regressions,omitempty"`
	FlowDiagram     string            `json:"flow_diagram,omitempty"`
}

// Options configures report composition. The zero value produces a
// report with default hotspot floor, no slow-transition section, no
// baseline comparison, and no flow diagram.
type Options struct {
	// Workflow labels the report; empty omits the field.
	Workflow string

	// MinFailures is the hotspot floor. Zero uses DefaultMinFailures;
	// pass a negative value to get the caller-misuse error.
	MinFailures int

	// SlowThresholdMs enables the slow-transition section when
	// positive.
	SlowThresholdMs float64

	// IncludeFlow attaches the flow diagram text.
	IncludeFlow bool
	// Flow overrides the flow render options; nil uses defaults.
	Flow *flow.Options

	// Baseline enables the regression section when non-nil.
	Baseline RatesMap
	// RegressionThreshold is the relative-growth floor for flagging a
	// regression. Zero uses DefaultRegressionThreshold.
	RegressionThreshold float64
}

// Build folds the event sequence into a matrix and derives the full
// report. Derivations run against the one matrix; the report is
// internally consistent even if the caller's event slice changes
// afterward.
func Build(events []types.TransitionEvent, opts Options) (*Report, error) {
	m := matrix.Build(events)

	minFailures := opts.MinFailures
	if minFailures == 0 {
		minFailures = DefaultMinFailures
	}
	hotspots, err := Hotspots(m, minFailures)
	if err != nil {
		return nil, err
	}

	total := m.TotalTransitions()
	failures := m.TotalFailures()
	report := &Report{
		ReportID:         uuid.New().String(),
		CapturedAt:       time.Now().UTC().Format(time.RFC3339),
		Workflow:         opts.Workflow,
		Matrix:           m,
		TotalTransitions: total,
		TotalFailures:    failures,
		Rates:            Rates(m),
		Hotspots:         hotspots,
	}
	if total > 0 {
		report.FailureRate = float64(failures) / float64(total)
	}

	if opts.SlowThresholdMs > 0 {
		slow, err := SlowTransitions(m, opts.SlowThresholdMs)
		if err != nil {
			return nil, err
		}
		report.SlowTransitions = slow
	}

	if opts.Baseline != nil {
		threshold := opts.RegressionThreshold
		if threshold == 0 {
			threshold = DefaultRegressionThreshold
		}
		regressions, err := CompareToBaseline(report.Rates, opts.Baseline, threshold)
		if err != nil {
			return nil, err
		}
		report.Regressions = regressions
	}

	if opts.IncludeFlow {
		flowOpts := flow.DefaultOptions()
		if opts.Flow != nil {
			flowOpts = *opts.Flow
		}
		report.FlowDiagram = flow.Render(m, flowOpts)
	}

	return report, nil
}

// Write writes the report as indented JSON to the specified path.
// If path is "-", writes to stdout.
func Write(report *Report, path string) error {
	if path == "" {
		return errors.New("report path must not be empty")
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	data = append(data, '\n')

	if path == "-" {
		_, err = os.Stdout.Write(data)
		if err != nil {
			return fmt.Errorf("failed to write report to stdout: %w", err)
		}
		return nil
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report to %s: %w", path, err)
	}
	return nil
}

// writeTo writes report JSON to any writer (for testing).
func writeTo(report *Report, w io.Writer) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
