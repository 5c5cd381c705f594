package archive

import (
	"errors"

	"github.com/justapithecus/faultline/report"
	"github.com/justapithecus/faultline/types"
)

// Record kind discriminator values.
const (
	RecordKindSummary   = "report_summary"
	RecordKindEdgeRates = "edge_rates"
)

// Summary is the parsed form of a report_summary record.
type Summary struct {
	ReportID         string  `json:"report_id"`
	Workflow         string  `json:"workflow"`
	Day              string  `json:"day"`
	CapturedAt       string  `json:"captured_at"`
	TotalTransitions int64   `json:"total_transitions"`
	TotalFailures    int64   `json:"total_failures"`
	FailureRate      float64 `json:"failure_rate"`
	HotspotCount     int64   `json:"hotspot_count"`
	EdgeCount        int64   `json:"edge_count"`
}

// summaryRecordMap converts a report to a summary record for storage.
// Lode HiveLayout requires records as map[string]any.
func summaryRecordMap(r *report.Report, workflow, day string) map[string]any {
	return map[string]any{
		"record_kind":       RecordKindSummary,
		"report_id":         r.ReportID,
		"workflow":          workflow,
		"day":               day,
		"captured_at":       r.CapturedAt,
		"total_transitions": r.TotalTransitions,
		"total_failures":    r.TotalFailures,
		"failure_rate":      r.FailureRate,
		"hotspot_count":     int64(len(r.Hotspots)),
		"edge_count":        int64(len(r.Rates)),
	}
}

// edgeRateRecordMap converts one edge's rates to a storage record.
func edgeRateRecordMap(reportID string, edge types.Edge, rates report.EdgeRates, workflow, day string) map[string]any {
	m := map[string]any{
		"record_kind":          RecordKindEdgeRates,
		"report_id":            reportID,
		"workflow":             workflow,
		"day":                  day,
		"from_state":           edge.From,
		"to_state":             edge.To,
		"total":                rates.Total,
		"failures":             rates.Failures,
		"successes":            rates.Successes,
		"failure_rate_percent": rates.FailureRatePercent,
		"has_duration":         rates.AvgDurationMs != nil,
	}
	if rates.AvgDurationMs != nil {
		m["avg_duration_ms"] = *rates.AvgDurationMs
	}
	return m
}

// summaryFromRecord converts a raw record map back to a Summary.
// Handles both int64 (direct writes) and float64 (JSON round-trips) for
// numeric fields.
func summaryFromRecord(record map[string]any) (*Summary, error) {
	if record == nil {
		return nil, errors.New("nil record")
	}

	s := &Summary{
		ReportID:         toString(record["report_id"]),
		Workflow:         toString(record["workflow"]),
		Day:              toString(record["day"]),
		CapturedAt:       toString(record["captured_at"]),
		TotalTransitions: toInt64(record["total_transitions"]),
		TotalFailures:    toInt64(record["total_failures"]),
		FailureRate:      toFloat64(record["failure_rate"]),
		HotspotCount:     toInt64(record["hotspot_count"]),
		EdgeCount:        toInt64(record["edge_count"]),
	}

	// The write path always populates report_id; a missing value
	// indicates a malformed record.
	if s.ReportID == "" {
		return nil, errors.New("summary record missing required field: report_id")
	}
	return s, nil
}

// summaryFromRecords finds the first valid summary record in a
// snapshot's records, applying the workflow filter at record level.
func summaryFromRecords(data []any, workflow string) *Summary {
	for _, item := range data {
		record, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if record["record_kind"] != RecordKindSummary {
			continue
		}
		if workflow != "" && toString(record["workflow"]) != workflow {
			continue
		}
		s, err := summaryFromRecord(record)
		if err != nil {
			continue
		}
		return s
	}
	return nil
}

// ratesFromRecords reassembles a rates map from a snapshot's records.
// Only edge_rates records are considered; when workflow is non-empty,
// records from other workflows are skipped. Records are grouped by
// report_id so a merged snapshot never mixes two reports' edges.
func ratesFromRecords(data []any, workflow string) report.RatesMap {
	rates := make(report.RatesMap)
	reportID := ""
	for _, item := range data {
		record, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if record["record_kind"] != RecordKindEdgeRates {
			continue
		}
		if workflow != "" && toString(record["workflow"]) != workflow {
			continue
		}

		id := toString(record["report_id"])
		if reportID == "" {
			reportID = id
		}
		if id != reportID {
			continue
		}

		edge := types.Edge{From: toString(record["from_state"]), To: toString(record["to_state"])}
		if edge.From == "" || edge.To == "" {
			continue
		}

		entry := report.EdgeRates{
			Total:              toInt64(record["total"]),
			Failures:           toInt64(record["failures"]),
			Successes:          toInt64(record["successes"]),
			FailureRatePercent: toFloat64(record["failure_rate_percent"]),
		}
		if hasDuration(record) {
			avg := toFloat64(record["avg_duration_ms"])
			entry.AvgDurationMs = &avg
		}
		rates[edge] = entry
	}
	return rates
}

// hasDuration reports whether an edge_rates record carries a measured
// average duration. The has_duration flag is authoritative; older
// records without it fall back to key presence.
func hasDuration(record map[string]any) bool {
	if b, ok := record["has_duration"].(bool); ok {
		return b
	}
	_, present := record["avg_duration_ms"]
	return present
}

// toInt64 converts a value to int64, handling float64 from JSON
// round-trips and int64 from direct writes.
func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case float64:
		return int64(n)
	case int:
		return int64(n)
	default:
		return 0
	}
}

// toFloat64 converts a value to float64, handling integer-typed values
// from direct writes.
func toFloat64(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	default:
		return 0
	}
}

// toString converts a value to string, returning empty string for
// nil/non-string.
func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
