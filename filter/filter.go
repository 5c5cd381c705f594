// Package filter selects transition events with caller-supplied
// expressions. Expressions compile once against a fixed environment
// of event fields and run per event, so filtering a large log does
// not re-parse the source.
//
// Field names mirror the event wire format:
//
//	status == "FAILURE" && from_state == "Parse"
//	duration_ms > 250
//	failed && error contains "timeout"
//	metadata.region == "eu-west-1"
package filter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/justapithecus/faultline/types"
)

// Env is the expression environment: one event, flattened. Absent
// optional fields evaluate as zero values; an unmeasured event has
// duration_ms 0.
type Env struct {
	FromState  string         `expr:"from_state"`
	ToState    string         `expr:"to_state"`
	Status     string         `expr:"status"`
	Failed     bool           `expr:"failed"`
	Error      string         `expr:"error"`
	DurationMs float64        `expr:"duration_ms"`
	WorkflowID string         `expr:"workflow_id"`
	Framework  string         `expr:"framework"`
	AgentRole  string         `expr:"agent_role"`
	ModelID    string         `expr:"model_id"`
	Metadata   map[string]any `expr:"metadata"`
}

// Filter is a compiled event predicate.
type Filter struct {
	src     string
	program *vm.Program
}

// Compile parses and type-checks an expression against the event
// environment. The expression must evaluate to a boolean.
func Compile(src string) (*Filter, error) {
	if strings.TrimSpace(src) == "" {
		return nil, errors.New("filter expression must not be empty")
	}

	program, err := expr.Compile(src, expr.Env(Env{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("failed to compile filter %q: %w", src, err)
	}
	return &Filter{src: src, program: program}, nil
}

// String returns the filter source.
func (f *Filter) String() string {
	return f.src
}

// Match reports whether the event satisfies the filter.
func (f *Filter) Match(ev types.TransitionEvent) (bool, error) {
	out, err := expr.Run(f.program, envFor(ev))
	if err != nil {
		return false, fmt.Errorf("failed to evaluate filter %q: %w", f.src, err)
	}
	matched, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("filter %q evaluated to %T, want bool", f.src, out)
	}
	return matched, nil
}

// Apply returns the events that satisfy the filter, preserving order.
func (f *Filter) Apply(events []types.TransitionEvent) ([]types.TransitionEvent, error) {
	var kept []types.TransitionEvent
	for _, ev := range events {
		matched, err := f.Match(ev)
		if err != nil {
			return nil, err
		}
		if matched {
			kept = append(kept, ev)
		}
	}
	return kept, nil
}

func envFor(ev types.TransitionEvent) Env {
	env := Env{
		FromState:  ev.FromState,
		ToState:    ev.ToState,
		Status:     string(ev.Status),
		Failed:     ev.Status.IsFailure(),
		Error:      ev.Error,
		WorkflowID: ev.WorkflowID,
		Framework:  ev.Framework,
		AgentRole:  ev.AgentRole,
		ModelID:    ev.ModelID,
		Metadata:   ev.Metadata,
	}
	if ms, ok := ev.Duration(); ok {
		env.DurationMs = ms
	}
	if env.Metadata == nil {
		env.Metadata = map[string]any{}
	}
	return env
}
