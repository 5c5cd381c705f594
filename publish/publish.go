// Package publish defines the notification boundary for completed
// analyses.
//
// Publishers deliver report completion events to downstream systems.
// The CLI owns publisher lifecycle; users provide configuration only.
package publish

import (
	"context"

	"github.com/justapithecus/faultline/report"
	"github.com/justapithecus/faultline/types"
)

// EventTypeReportCompleted is the event_type of every published event.
const EventTypeReportCompleted = "report_completed"

// ReportEvent is the payload published when an analysis completes.
type ReportEvent struct {
	ContractVersion  string  `json:"contract_version"`
	EventType        string  `json:"event_type"` // always "report_completed"
	ReportID         string  `json:"report_id"`
	Workflow         string  `json:"workflow,omitempty"`
	CapturedAt       string  `json:"captured_at"` // ISO 8601
	TotalTransitions int64   `json:"total_transitions"`
	TotalFailures    int64   `json:"total_failures"`
	FailureRate      float64 `json:"failure_rate"`
	HotspotCount     int     `json:"hotspot_count"`
	RegressionCount  int     `json:"regression_count"`
	TopEdge          string  `json:"top_edge,omitempty"`
	TopEdgeFailures  int64   `json:"top_edge_failures,omitempty"`
}

// Publisher delivers report completion events to a downstream system.
// Implementations must respect context cancellation and deadlines.
type Publisher interface {
	// Publish sends a report completion event to the downstream system.
	Publish(ctx context.Context, event *ReportEvent) error

	// Close releases publisher resources.
	Close() error
}

// FromReport builds the completion event for a report.
// The top edge is the worst hotspot when any exist, otherwise the edge
// with the most failures overall; reports without failures carry none.
func FromReport(r *report.Report) *ReportEvent {
	event := &ReportEvent{
		ContractVersion:  types.ContractVersion,
		EventType:        EventTypeReportCompleted,
		ReportID:         r.ReportID,
		Workflow:         r.Workflow,
		CapturedAt:       r.CapturedAt,
		TotalTransitions: r.TotalTransitions,
		TotalFailures:    r.TotalFailures,
		FailureRate:      r.FailureRate,
		HotspotCount:     len(r.Hotspots),
		RegressionCount:  len(r.Regressions),
	}

	if len(r.Hotspots) > 0 {
		top := r.Hotspots[0]
		event.TopEdge = types.Edge{From: top.From, To: top.To}.String()
		event.TopEdgeFailures = top.FailureCount
		return event
	}

	// Edges() order makes the lexically first edge win ties.
	for _, edge := range r.Rates.Edges() {
		if failures := r.Rates[edge].Failures; failures > event.TopEdgeFailures {
			event.TopEdge = edge.String()
			event.TopEdgeFailures = failures
		}
	}
	return event
}
