package types

import (
	"fmt"
	"strings"
)

// ContractVersion is the published payload contract version.
// Report events and archived records carry this version so downstream
// consumers can detect shape changes.
const ContractVersion = "0.3.0"

// StartState is the implicit origin of a workflow's first transition.
// Recorders that track per-workflow cursors use it when no state has
// been entered yet.
const StartState = "START"

// FailureSink is the synthetic terminal state used by flow diagrams
// to represent volume diverted to failure.
const FailureSink = "FAIL"

// Status is the outcome of a single transition.
// Exactly two outcomes exist; there is no partial or pending state.
type Status string

// Status constants.
const (
	StatusSuccess Status = "SUCCESS"
	StatusFailure Status = "FAILURE"
)

// IsFailure returns true if the status is FAILURE.
func (s Status) IsFailure() bool {
	return s == StatusFailure
}

// Valid returns true if the status is one of the two known outcomes.
func (s Status) Valid() bool {
	return s == StatusSuccess || s == StatusFailure
}

// TransitionEvent is one observed edge traversal in a workflow's state
// graph. Events are immutable once produced; aggregation reads them in
// the order supplied and never mutates them.
//
// Field tags cover both wire formats: msgpack for framed binary event
// logs, json for JSONL logs and report serialization.
type TransitionEvent struct {
	// FromState is the source state identifier. Compared by exact
	// string equality, case-sensitive. Empty is accepted as a valid
	// (if unusual) state name.
	FromState string `msgpack:"from_state" json:"from_state"`
	// ToState is the target state identifier. Self-transitions
	// (FromState == ToState) are valid and represent retry loops.
	ToState string `msgpack:"to_state" json:"to_state"`
	// Status is the transition outcome.
	Status Status `msgpack:"status" json:"status"`
	// Error is free-text failure detail. Set only on FAILURE, and may
	// be empty even then. Empty means absent.
	Error string `msgpack:"error,omitempty" json:"error,omitempty"`
	// Timestamp is milliseconds since epoch. An ordering key, not
	// required to be strictly increasing across concurrent producers.
	Timestamp int64 `msgpack:"timestamp" json:"timestamp"`
	// DurationMs is the elapsed time for the transition. Nil means
	// unmeasured; unmeasured is never treated as zero.
	DurationMs *float64 `msgpack:"duration_ms,omitempty" json:"duration_ms,omitempty"`
	// WorkflowID identifies the workflow instance that produced the
	// event. Used for cursor isolation during recording, opaque to
	// aggregation.
	WorkflowID string `msgpack:"workflow_id,omitempty" json:"workflow_id,omitempty"`
	// Framework is an opaque classification field carried through for
	// downstream filtering.
	Framework string `msgpack:"framework,omitempty" json:"framework,omitempty"`
	// AgentRole is an opaque classification field carried through for
	// downstream filtering.
	AgentRole string `msgpack:"agent_role,omitempty" json:"agent_role,omitempty"`
	// ModelID is an opaque classification field carried through for
	// downstream filtering.
	ModelID string `msgpack:"model_id,omitempty" json:"model_id,omitempty"`
	// Metadata is opaque caller context, not used by aggregation.
	Metadata map[string]any `msgpack:"metadata,omitempty" json:"metadata,omitempty"`
}

// Duration returns the duration sample and whether one was measured.
func (e *TransitionEvent) Duration() (float64, bool) {
	if e.DurationMs == nil {
		return 0, false
	}
	return *e.DurationMs, true
}

// DurationPtr returns a *float64 for use in TransitionEvent literals.
func DurationPtr(ms float64) *float64 {
	return &ms
}

// Edge is a directed (from, to) pair: one step of the workflow's state
// graph. A→B and B→A are distinct edges.
type Edge struct {
	From string `msgpack:"from" json:"from"`
	To   string `msgpack:"to" json:"to"`
}

// String renders the edge in the canonical "A → B" display form.
func (e Edge) String() string {
	return e.From + EdgeSeparator + e.To
}

// Less orders edges lexically by From, then To. Used wherever a
// deterministic edge ordering is required.
func (e Edge) Less(other Edge) bool {
	if e.From != other.From {
		return e.From < other.From
	}
	return e.To < other.To
}

// EdgeSeparator joins the two states in an edge's serialized key form.
const EdgeSeparator = " → "

// MarshalText renders the edge as "A → B" so edge-keyed maps
// serialize with readable keys.
func (e Edge) MarshalText() ([]byte, error) {
	return []byte(e.From + EdgeSeparator + e.To), nil
}

// UnmarshalText parses the "A → B" key form. A state name containing
// the separator splits at its first occurrence; that ambiguity is
// accepted, arrow-bearing state names are not supported.
func (e *Edge) UnmarshalText(text []byte) error {
	from, to, found := strings.Cut(string(text), EdgeSeparator)
	if !found {
		return fmt.Errorf("invalid edge key %q: missing %q separator", string(text), EdgeSeparator)
	}
	e.From = from
	e.To = to
	return nil
}

// errorKeyLen is the clustering key length: error strings are grouped
// by their first 50 characters. Distinct long errors sharing a prefix
// collide by design; that is the documented clustering trade-off.
const errorKeyLen = 50

// ErrorKey truncates an error string to the shared clustering key.
// Truncation is by runes so multi-byte text never splits mid-character.
func ErrorKey(err string) string {
	runes := []rune(err)
	if len(runes) <= errorKeyLen {
		return err
	}
	return string(runes[:errorKeyLen])
}
