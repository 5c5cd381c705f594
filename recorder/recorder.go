// Package recorder captures transition events from live instrumented
// workflows. The Recorder is the mutable ingestion surface; analysis
// stays in the matrix and report packages, which fold over the
// snapshot returned by Events.
//
// A Recorder tracks a current-state cursor per workflow so call sites
// only name the state they are entering. The cursor starts at START
// and advances only on success; a failed step leaves the workflow
// where it was, so a retry records the same edge again.
package recorder

import (
	"sync"
	"time"

	"github.com/justapithecus/faultline/log"
	"github.com/justapithecus/faultline/types"
)

// DefaultWorkflow is the cursor key used when an event names no workflow.
const DefaultWorkflow = "default"

// Observer receives each recorded event. Implementations must be safe
// for concurrent use; they are invoked outside the recorder's lock.
type Observer interface {
	ObserveTransition(ev types.TransitionEvent)
}

// Recorder accumulates transition events. Thread-safe via sync.Mutex.
type Recorder struct {
	mu        sync.Mutex
	events    []types.TransitionEvent
	cursor    map[string]string
	observers []Observer
	logger    *log.Logger
	now       func() time.Time
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithLogger attaches a logger; every recorded transition emits an
// info line in the "TRANSITION: A -> B STATUS" format.
func WithLogger(l *log.Logger) Option {
	return func(r *Recorder) { r.logger = l }
}

// WithObserver registers an observer for recorded events.
func WithObserver(o Observer) Option {
	return func(r *Recorder) { r.observers = append(r.observers, o) }
}

// WithClock overrides the time source used for timestamps and
// Observe timing.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) { r.now = now }
}

// New creates a Recorder.
func New(opts ...Option) *Recorder {
	r := &Recorder{
		cursor: make(map[string]string),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record appends one transition event. A zero Timestamp is stamped
// from the recorder's clock. On success the workflow's cursor
// advances to the target state.
func (r *Recorder) Record(ev types.TransitionEvent) {
	if r == nil {
		return
	}

	workflow := ev.WorkflowID
	if workflow == "" {
		workflow = DefaultWorkflow
	}

	r.mu.Lock()
	if ev.Timestamp == 0 {
		ev.Timestamp = r.now().UnixMilli()
	}
	r.events = append(r.events, ev)
	if !ev.Status.IsFailure() {
		r.cursor[workflow] = ev.ToState
	}
	observers := r.observers
	r.mu.Unlock()

	r.logTransition(ev, workflow)
	for _, o := range observers {
		o.ObserveTransition(ev)
	}
}

func (r *Recorder) logTransition(ev types.TransitionEvent, workflow string) {
	if r.logger == nil {
		return
	}

	msg := "TRANSITION: " + ev.FromState + " -> " + ev.ToState + " " + string(ev.Status)
	if ev.Error != "" {
		msg += " ERROR: " + ev.Error
	}

	fields := map[string]any{
		"from_state":  ev.FromState,
		"to_state":    ev.ToState,
		"status":      string(ev.Status),
		"workflow_id": workflow,
	}
	if ms, ok := ev.Duration(); ok {
		fields["duration_ms"] = ms
	}
	r.logger.Info(msg, fields)
}

// Observe runs fn as the workflow's entry into state, timing it and
// recording the transition from the workflow's current state. The
// status comes from fn's error, which is passed through unchanged.
func (r *Recorder) Observe(workflowID, state string, fn func() error) error {
	from, ok := r.CurrentState(workflowID)
	if !ok {
		from = types.StartState
	}

	start := r.now()
	err := fn()
	elapsed := float64(r.now().Sub(start)) / float64(time.Millisecond)

	ev := types.TransitionEvent{
		FromState:  from,
		ToState:    state,
		Status:     types.StatusSuccess,
		DurationMs: types.DurationPtr(elapsed),
		WorkflowID: workflowID,
	}
	if err != nil {
		ev.Status = types.StatusFailure
		ev.Error = err.Error()
	}
	r.Record(ev)
	return err
}

// Step runs fn as an explicit from-to transition, for call sites that
// know both endpoints. Timing and status capture match Observe.
func (r *Recorder) Step(from, to string, fn func() error) error {
	start := r.now()
	err := fn()
	elapsed := float64(r.now().Sub(start)) / float64(time.Millisecond)

	ev := types.TransitionEvent{
		FromState:  from,
		ToState:    to,
		Status:     types.StatusSuccess,
		DurationMs: types.DurationPtr(elapsed),
	}
	if err != nil {
		ev.Status = types.StatusFailure
		ev.Error = err.Error()
	}
	r.Record(ev)
	return err
}

// SetState pins a workflow's cursor, typically to START at the top of
// a run.
func (r *Recorder) SetState(workflowID, state string) {
	if r == nil {
		return
	}
	if workflowID == "" {
		workflowID = DefaultWorkflow
	}
	r.mu.Lock()
	r.cursor[workflowID] = state
	r.mu.Unlock()
}

// CurrentState reports a workflow's cursor position.
func (r *Recorder) CurrentState(workflowID string) (string, bool) {
	if r == nil {
		return "", false
	}
	if workflowID == "" {
		workflowID = DefaultWorkflow
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.cursor[workflowID]
	return state, ok
}

// Events returns a copy of the recorded events. The copy is safe to
// hand to matrix.Build while recording continues.
func (r *Recorder) Events() []types.TransitionEvent {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	events := make([]types.TransitionEvent, len(r.events))
	copy(events, r.events)
	return events
}

// Len reports the number of recorded events.
func (r *Recorder) Len() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// Reset clears all recorded events and cursors.
func (r *Recorder) Reset() {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.events = nil
	r.cursor = make(map[string]string)
	r.mu.Unlock()
}
