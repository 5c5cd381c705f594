package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/faultline/cli/config"
	"github.com/justapithecus/faultline/report"
	"github.com/justapithecus/faultline/types"
)

// runProbe runs a probe command with the given flags and args so tests
// can exercise helpers against a real cli.Context. The exit handler is
// a no-op so cli.Exit errors surface instead of killing the process.
func runProbe(t *testing.T, flags []cli.Flag, args []string, fn cli.ActionFunc) error {
	t.Helper()
	app := &cli.App{
		ExitErrHandler: func(*cli.Context, error) {},
		Commands: []*cli.Command{
			{Name: "probe", Flags: flags, Action: fn},
		},
	}
	return app.Run(append([]string{"faultline", "probe"}, args...))
}

// writeEventLog writes events to a temp JSONL log and returns its path.
func writeEventLog(t *testing.T, events []types.TransitionEvent) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.jsonl")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create event log: %v", err)
	}
	enc := json.NewEncoder(f)
	for _, ev := range events {
		if err := enc.Encode(ev); err != nil {
			t.Fatalf("encode event: %v", err)
		}
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close event log: %v", err)
	}
	return path
}

func sampleEvents() []types.TransitionEvent {
	return []types.TransitionEvent{
		{FromState: "START", ToState: "Parse", Status: types.StatusSuccess, Timestamp: 1},
		{FromState: "Parse", ToState: "Exec", Status: types.StatusFailure, Error: "timeout", Timestamp: 2},
		{FromState: "Parse", ToState: "Exec", Status: types.StatusFailure, Error: "timeout", Timestamp: 3},
		{FromState: "Parse", ToState: "Exec", Status: types.StatusSuccess, Timestamp: 4, DurationMs: types.DurationPtr(120)},
	}
}

func TestLoadEvents_ReadsAndFilters(t *testing.T) {
	path := writeEventLog(t, sampleEvents())

	var got []types.TransitionEvent
	err := runProbe(t, EventFlags(), []string{"--events", path, "--filter", "failed"},
		func(c *cli.Context) error {
			events, err := loadEvents(c)
			got = events
			return err
		})
	if err != nil {
		t.Fatalf("probe error: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("filtered events = %d, want 2", len(got))
	}
	for _, ev := range got {
		if !ev.Status.IsFailure() {
			t.Errorf("filter 'failed' kept a %s event", ev.Status)
		}
	}
}

func TestLoadEvents_ConcatenatesFilesInOrder(t *testing.T) {
	first := writeEventLog(t, sampleEvents()[:2])
	second := writeEventLog(t, sampleEvents()[2:])

	var got []types.TransitionEvent
	err := runProbe(t, EventFlags(), []string{"--events", first, "--events", second},
		func(c *cli.Context) error {
			events, err := loadEvents(c)
			got = events
			return err
		})
	if err != nil {
		t.Fatalf("probe error: %v", err)
	}

	if len(got) != 4 {
		t.Fatalf("events = %d, want 4", len(got))
	}
	if got[0].Timestamp != 1 || got[3].Timestamp != 4 {
		t.Errorf("event order not preserved across files: first ts %d, last ts %d", got[0].Timestamp, got[3].Timestamp)
	}
}

func TestResolveStorage_FlagsOverrideConfig(t *testing.T) {
	sc := config.StoreConfig{Backend: "s3", Path: "bucket/prefix", Region: "us-east-1"}

	err := runProbe(t, StorageFlags(), []string{"--storage-backend", "fs", "--storage-path", "/tmp/b"},
		func(c *cli.Context) error {
			s := resolveStorage(c, sc, DefaultBaselineRoot)
			if s.Backend != "fs" {
				t.Errorf("Backend = %q, want fs (flag wins)", s.Backend)
			}
			if s.Path != "/tmp/b" {
				t.Errorf("Path = %q, want /tmp/b (flag wins)", s.Path)
			}
			if s.Region != "us-east-1" {
				t.Errorf("Region = %q, want config value preserved", s.Region)
			}
			return nil
		})
	if err != nil {
		t.Fatalf("probe error: %v", err)
	}
}

func TestResolveStorage_Defaults(t *testing.T) {
	err := runProbe(t, StorageFlags(), nil,
		func(c *cli.Context) error {
			s := resolveStorage(c, config.StoreConfig{}, DefaultBaselineRoot)
			if s.Backend != "fs" {
				t.Errorf("Backend = %q, want fs default", s.Backend)
			}
			if s.Path != DefaultBaselineRoot {
				t.Errorf("Path = %q, want fallback root", s.Path)
			}
			return nil
		})
	if err != nil {
		t.Fatalf("probe error: %v", err)
	}
}

func TestSplitS3Path(t *testing.T) {
	tests := []struct {
		path   string
		bucket string
		prefix string
	}{
		{"bucket/prefix", "bucket", "prefix"},
		{"bucket/deep/prefix", "bucket", "deep/prefix"},
		{"bucket", "bucket", ""},
		{"", "", ""},
	}
	for _, tt := range tests {
		bucket, prefix := splitS3Path(tt.path)
		if bucket != tt.bucket || prefix != tt.prefix {
			t.Errorf("splitS3Path(%q) = (%q, %q), want (%q, %q)", tt.path, bucket, prefix, tt.bucket, tt.prefix)
		}
	}
}

func TestValidateBackend(t *testing.T) {
	if err := validateBackend("fs"); err != nil {
		t.Errorf("fs should be valid: %v", err)
	}
	if err := validateBackend("s3"); err != nil {
		t.Errorf("s3 should be valid: %v", err)
	}
	if err := validateBackend("memory"); err == nil {
		t.Error("memory should be rejected at the CLI boundary")
	}
}

func TestAnalysisOptions_FlagOverConfigPrecedence(t *testing.T) {
	cfg := &config.Config{
		Workflow: "pipeline",
		Analysis: config.AnalysisConfig{MinFailures: 5, SlowThresholdMs: 900},
	}

	flags := append(append(EventFlags(), StorageFlags()...),
		&cli.IntFlag{Name: "min-failures"},
		&cli.Float64Flag{Name: "slow-threshold"},
		&cli.StringFlag{Name: "baseline"},
		&cli.StringFlag{Name: "baseline-file"},
		&cli.BoolFlag{Name: "baseline-archive"},
		&cli.Float64Flag{Name: "regression-threshold"},
		&cli.BoolFlag{Name: "no-flow"},
		&cli.Int64Flag{Name: "flow-min-transitions"},
	)

	path := writeEventLog(t, sampleEvents())
	err := runProbe(t, flags,
		[]string{"--events", path, "--min-failures", "3", "--flow-min-transitions", "7"},
		func(c *cli.Context) error {
			opts, err := analysisOptions(c, cfg)
			if err != nil {
				return err
			}
			if opts.MinFailures != 3 {
				t.Errorf("MinFailures = %d, want 3 (flag wins)", opts.MinFailures)
			}
			if opts.SlowThresholdMs != 900 {
				t.Errorf("SlowThresholdMs = %v, want 900 (config fallback)", opts.SlowThresholdMs)
			}
			if opts.Workflow != "pipeline" {
				t.Errorf("Workflow = %q, want config fallback", opts.Workflow)
			}
			if !opts.IncludeFlow {
				t.Error("IncludeFlow should default to true")
			}
			if opts.Flow == nil || opts.Flow.MinTransitions != 7 {
				t.Errorf("Flow.MinTransitions not taken from flag: %+v", opts.Flow)
			}
			return nil
		})
	if err != nil {
		t.Fatalf("probe error: %v", err)
	}
}

func TestRatesRows_SortedByEdge(t *testing.T) {
	rates := report.RatesMap{
		{From: "Parse", To: "Exec"}:  {Total: 3, Failures: 2, Successes: 1},
		{From: "START", To: "Parse"}: {Total: 1, Successes: 1},
	}

	rows := ratesRows(rates)
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].Edge.From != "Parse" || rows[1].Edge.From != "START" {
		t.Errorf("rows not in lexical edge order: %v then %v", rows[0].Edge, rows[1].Edge)
	}
}

func TestClusterRows_OrderedByCountThenKey(t *testing.T) {
	events := []types.TransitionEvent{
		{FromState: "A", ToState: "B", Status: types.StatusFailure, Error: "timeout"},
		{FromState: "B", ToState: "C", Status: types.StatusFailure, Error: "timeout"},
		{FromState: "A", ToState: "B", Status: types.StatusFailure, Error: "denied"},
	}

	rows := clusterRows(report.ClusterErrors(events))
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].ErrorKey != "timeout" || rows[0].Count != 2 {
		t.Errorf("first row = %+v, want timeout cluster of 2", rows[0])
	}
	if len(rows[0].Edges) != 2 {
		t.Errorf("timeout cluster edges = %v, want both edges", rows[0].Edges)
	}
}

func TestAnalyze_EndToEnd_WritesReport(t *testing.T) {
	path := writeEventLog(t, sampleEvents())
	out := filepath.Join(t.TempDir(), "report.json")

	app := &cli.App{
		ExitErrHandler: func(*cli.Context, error) {},
		Commands:       []*cli.Command{AnalyzeCommand()},
	}
	err := app.Run([]string{"faultline", "analyze", "--events", path, "--out", out})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var rep report.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		t.Fatalf("decode report: %v", err)
	}

	if rep.TotalTransitions != 4 {
		t.Errorf("TotalTransitions = %d, want 4", rep.TotalTransitions)
	}
	if rep.TotalFailures != 2 {
		t.Errorf("TotalFailures = %d, want 2", rep.TotalFailures)
	}
	if len(rep.Hotspots) != 1 {
		t.Fatalf("Hotspots = %d, want 1", len(rep.Hotspots))
	}
	if rep.Hotspots[0].From != "Parse" || rep.Hotspots[0].To != "Exec" {
		t.Errorf("hotspot edge = %s -> %s, want Parse -> Exec", rep.Hotspots[0].From, rep.Hotspots[0].To)
	}
	if rep.FlowDiagram == "" {
		t.Error("FlowDiagram should be attached by default")
	}
}

func TestBaselineSaveThenCompare_RoundTrip(t *testing.T) {
	root := t.TempDir()
	path := writeEventLog(t, sampleEvents())

	app := &cli.App{
		ExitErrHandler: func(*cli.Context, error) {},
		Commands:       []*cli.Command{BaselineCommand()},
	}

	err := app.Run([]string{"faultline", "baseline", "save",
		"--events", path, "--storage-backend", "fs", "--storage-path", root, "good"})
	if err != nil {
		t.Fatalf("baseline save: %v", err)
	}

	// Worse run: one extra failure on the same edge.
	worse := append(sampleEvents(), types.TransitionEvent{
		FromState: "Parse", ToState: "Exec", Status: types.StatusFailure, Error: "timeout", Timestamp: 5,
	})
	worsePath := writeEventLog(t, worse)

	err = app.Run([]string{"faultline", "baseline", "compare",
		"--events", worsePath, "--storage-backend", "fs", "--storage-path", root,
		"--format", "json", "good"})
	if err != nil {
		t.Fatalf("baseline compare: %v", err)
	}
}

func TestCommands_Registered(t *testing.T) {
	commands := []*cli.Command{
		AnalyzeCommand(),
		RatesCommand(),
		HotspotsCommand(),
		SlowCommand(),
		ClustersCommand(),
		FlowCommand(),
		BaselineCommand(),
		ArchiveCommand(),
		VersionCommand("abc123"),
	}

	want := []string{"analyze", "rates", "hotspots", "slow", "clusters", "flow", "baseline", "archive", "version"}
	for i, cmd := range commands {
		if cmd.Name != want[i] {
			t.Errorf("command %d = %q, want %q", i, cmd.Name, want[i])
		}
	}
}

func TestReadOnlyFlags_IncludesTUI(t *testing.T) {
	hasTUI := false
	for _, f := range ReadOnlyFlags() {
		if f.Names()[0] == "tui" {
			hasTUI = true
			break
		}
	}
	if !hasTUI {
		t.Error("ReadOnlyFlags should include --tui for explicit error handling")
	}
}

func TestRequireKeyArg(t *testing.T) {
	err := runProbe(t, nil, nil, func(c *cli.Context) error {
		_, err := requireKeyArg(c)
		return err
	})
	if err == nil {
		t.Error("missing key argument should error")
	}

	err = runProbe(t, nil, []string{"good"}, func(c *cli.Context) error {
		key, err := requireKeyArg(c)
		if err != nil {
			return err
		}
		if key != "good" {
			t.Errorf("key = %q, want good", key)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("probe error: %v", err)
	}
}
