// Package archive stores analysis reports in Lode datasets for
// historical queries.
//
// Each Push writes one snapshot holding a report_summary record plus one
// edge_rates record per observed edge. Snapshots partition by workflow,
// day, and record kind, so consumers can scan a single workflow's
// history without touching the rest of the dataset.
package archive

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/justapithecus/lode/lode"

	"github.com/justapithecus/faultline/report"
)

// DatasetID is the Lode dataset holding archived reports.
const DatasetID = "faultline"

// ErrNoReportsFound is returned when no archived report matches a query.
var ErrNoReportsFound = errors.New("no archived reports found")

// DeriveDay computes the day partition from a capture time.
// Format: YYYY-MM-DD in UTC.
func DeriveDay(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Client reads and writes archived reports.
type Client struct {
	dataset lode.Dataset
}

// NewClientWithFactory creates a client with a custom store factory.
// Use lode.NewMemoryFactory() for testing.
func NewClientWithFactory(factory lode.StoreFactory) (*Client, error) {
	ds, err := lode.NewDataset(
		lode.DatasetID(DatasetID),
		factory,
		lode.WithHiveLayout("workflow", "day", "record_kind"),
		lode.WithCodec(lode.NewJSONLCodec()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create archive dataset: %w", err)
	}
	return &Client{dataset: ds}, nil
}

// NewFSClient creates a client with filesystem storage rooted at root.
func NewFSClient(root string) (*Client, error) {
	return NewClientWithFactory(lode.NewFSFactory(root))
}

// Push archives one report snapshot.
func (c *Client) Push(ctx context.Context, r *report.Report) error {
	if r == nil {
		return errors.New("nil report")
	}

	workflow := workflowOrDefault(r.Workflow)
	day := captureDay(r.CapturedAt)

	records := make([]any, 0, 1+len(r.Rates))
	records = append(records, summaryRecordMap(r, workflow, day))
	for _, edge := range r.Rates.Edges() {
		records = append(records, edgeRateRecordMap(r.ReportID, edge, r.Rates[edge], workflow, day))
	}

	if _, err := c.dataset.Write(ctx, records, lode.Metadata{}); err != nil {
		return fmt.Errorf("failed to archive report %s: %w", r.ReportID, err)
	}
	return nil
}

// LatestRates reassembles the edge rates of the most recent archived
// report for workflow. Empty workflow matches any.
func (c *Client) LatestRates(ctx context.Context, workflow string) (report.RatesMap, error) {
	snapshots, err := c.dataset.Snapshots(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list archive snapshots: %w", err)
	}

	// Latest first. Snapshots are ordered by creation time.
	for i := len(snapshots) - 1; i >= 0; i-- {
		snap := snapshots[i]
		if !snapshotMatchesFilter(snap, "workflow", workflow) {
			continue
		}

		data, err := c.dataset.Read(ctx, snap.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to read archive snapshot %s: %w", snap.ID, err)
		}

		// Manifest path filtering is a coarse pre-filter; record fields
		// are authoritative.
		if rates := ratesFromRecords(data, workflow); len(rates) > 0 {
			return rates, nil
		}
	}

	return nil, ErrNoReportsFound
}

// LatestSummary returns the summary of the most recent archived report
// for workflow. Empty workflow matches any.
func (c *Client) LatestSummary(ctx context.Context, workflow string) (*Summary, error) {
	snapshots, err := c.dataset.Snapshots(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list archive snapshots: %w", err)
	}

	for i := len(snapshots) - 1; i >= 0; i-- {
		snap := snapshots[i]
		if !snapshotMatchesFilter(snap, "workflow", workflow) {
			continue
		}

		data, err := c.dataset.Read(ctx, snap.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to read archive snapshot %s: %w", snap.ID, err)
		}

		if s := summaryFromRecords(data, workflow); s != nil {
			return s, nil
		}
	}

	return nil, ErrNoReportsFound
}

// SnapshotInfo summarizes one archived snapshot from its manifest.
type SnapshotInfo struct {
	ID        string   `json:"id"`
	Workflows []string `json:"workflows"`
	Days      []string `json:"days"`
}

// ListSnapshots returns manifest summaries for every archived snapshot,
// oldest first.
func (c *Client) ListSnapshots(ctx context.Context) ([]SnapshotInfo, error) {
	snapshots, err := c.dataset.Snapshots(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list archive snapshots: %w", err)
	}

	infos := make([]SnapshotInfo, 0, len(snapshots))
	for _, snap := range snapshots {
		infos = append(infos, SnapshotInfo{
			ID:        fmt.Sprint(snap.ID),
			Workflows: partitionValues(snap, "workflow"),
			Days:      partitionValues(snap, "day"),
		})
	}
	return infos, nil
}

// captureDay derives the day partition from a report's captured_at
// stamp, falling back to the current day when the stamp is absent or
// malformed.
func captureDay(capturedAt string) string {
	t, err := time.Parse(time.RFC3339, capturedAt)
	if err != nil {
		t = time.Now()
	}
	return DeriveDay(t)
}

// workflowOrDefault normalizes an empty workflow to the default
// partition value.
func workflowOrDefault(workflow string) string {
	if workflow == "" {
		return "default"
	}
	return workflow
}

// snapshotMatchesFilter checks if a snapshot's manifest paths match the
// given partition key=value filter. Empty value matches everything.
func snapshotMatchesFilter(snap *lode.DatasetSnapshot, key, value string) bool {
	if value == "" {
		return true
	}
	for _, f := range snap.Manifest.Files {
		if matchesPartitionValue(f.Path, key, value) {
			return true
		}
	}
	return false
}

// matchesPartitionValue checks if a Hive-partitioned path contains an
// exact key=value segment. Exact segment match avoids substring false
// positives (e.g. workflow=wf-1 matching workflow=wf-10).
func matchesPartitionValue(path, key, value string) bool {
	segment := key + "=" + value
	for _, part := range strings.Split(path, "/") {
		if part == segment {
			return true
		}
	}
	return false
}

// partitionValues collects the distinct values of a partition key across
// a snapshot's manifest paths, sorted.
func partitionValues(snap *lode.DatasetSnapshot, key string) []string {
	seen := make(map[string]struct{})
	prefix := key + "="
	for _, f := range snap.Manifest.Files {
		for _, part := range strings.Split(f.Path, "/") {
			if v, ok := strings.CutPrefix(part, prefix); ok {
				seen[v] = struct{}{}
			}
		}
	}

	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}
