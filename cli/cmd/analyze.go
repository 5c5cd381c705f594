package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/faultline/cli/config"
	"github.com/justapithecus/faultline/cli/render"
	"github.com/justapithecus/faultline/cli/tui"
	"github.com/justapithecus/faultline/flow"
	"github.com/justapithecus/faultline/iox"
	"github.com/justapithecus/faultline/publish"
	"github.com/justapithecus/faultline/report"
)

// AnalyzeCommand returns the analyze command: the full pipeline from
// event logs to a composed failure-localization report.
func AnalyzeCommand() *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "Build the full failure-localization report from event logs",
		Flags: append(append(EventFlags(), StorageFlags()...),
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: json, table, yaml, markdown",
			},
			NoColorFlag,
			TUIFlag,
			ConfigFlag,
			&cli.IntFlag{Name: "min-failures", Usage: "Hotspot noise floor (default 2)"},
			&cli.Float64Flag{Name: "slow-threshold", Usage: "Slow-transition threshold in ms (0 disables the section)"},
			&cli.StringFlag{Name: "baseline", Usage: "Baseline key to load from the baseline store"},
			&cli.StringFlag{Name: "baseline-file", Usage: "Baseline rates JSON file to compare against"},
			&cli.BoolFlag{Name: "baseline-archive", Usage: "Compare against the latest archived report"},
			&cli.Float64Flag{Name: "regression-threshold", Usage: "Relative rate-growth floor for regressions (default 0.2)"},
			&cli.BoolFlag{Name: "no-flow", Usage: "Omit the flow diagram section"},
			&cli.Int64Flag{Name: "flow-min-transitions", Usage: "Drop flow edges below this volume"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Write the report JSON to a path ('-' for stdout)"},
			&cli.StringFlag{Name: "save-baseline", Usage: "Save this run's rates to the baseline store under a key"},
			&cli.BoolFlag{Name: "archive", Usage: "Push the report to the archive"},
			&cli.BoolFlag{Name: "publish", Usage: "Publish the completion event (needs a publish config section)"},
		),
		Action: analyzeAction,
	}
}

func analyzeAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	events, err := loadEvents(c)
	if err != nil {
		return err
	}

	opts, err := analysisOptions(c, cfg)
	if err != nil {
		return err
	}

	r, err := report.Build(events, opts)
	if err != nil {
		return err
	}

	if key := c.String("save-baseline"); key != "" {
		store, err := newBaselineStore(c.Context, c, cfg)
		if err != nil {
			return err
		}
		if err := store.Save(c.Context, key, r.Rates); err != nil {
			return fmt.Errorf("failed to save baseline %s: %w", key, err)
		}
	}

	if c.Bool("archive") {
		client, err := newArchiveClient(c.Context, c, cfg)
		if err != nil {
			return err
		}
		if err := client.Push(c.Context, r); err != nil {
			return err
		}
	}

	if c.Bool("publish") {
		if err := publishReport(c, cfg, r); err != nil {
			return err
		}
	}

	return renderReport(c, r)
}

// analysisOptions resolves report options with flag-over-config
// precedence and loads the requested baseline, if any.
func analysisOptions(c *cli.Context, cfg *config.Config) (report.Options, error) {
	opts := report.Options{
		Workflow:            resolveWorkflow(c, cfg),
		MinFailures:         cfg.Analysis.MinFailures,
		SlowThresholdMs:     cfg.Analysis.SlowThresholdMs,
		RegressionThreshold: cfg.Analysis.RegressionThreshold,
	}
	if c.IsSet("min-failures") {
		opts.MinFailures = c.Int("min-failures")
	}
	if c.IsSet("slow-threshold") {
		opts.SlowThresholdMs = c.Float64("slow-threshold")
	}
	if c.IsSet("regression-threshold") {
		opts.RegressionThreshold = c.Float64("regression-threshold")
	}

	opts.IncludeFlow = !c.Bool("no-flow")
	if opts.IncludeFlow {
		flowOpts := flow.DefaultOptions()
		if cfg.Analysis.Flow.IncludeFailures != nil {
			flowOpts.IncludeFailures = *cfg.Analysis.Flow.IncludeFailures
		}
		if cfg.Analysis.Flow.MinTransitions > 0 {
			flowOpts.MinTransitions = cfg.Analysis.Flow.MinTransitions
		}
		if c.IsSet("flow-min-transitions") {
			flowOpts.MinTransitions = c.Int64("flow-min-transitions")
		}
		opts.Flow = &flowOpts
	}

	baselineRates, err := loadBaseline(c, cfg)
	if err != nil {
		return report.Options{}, err
	}
	opts.Baseline = baselineRates

	return opts, nil
}

// loadBaseline resolves the baseline source. The three sources are
// mutually exclusive; none selected means no regression section.
func loadBaseline(c *cli.Context, cfg *config.Config) (report.RatesMap, error) {
	selected := 0
	for _, name := range []string{"baseline", "baseline-file", "baseline-archive"} {
		if c.IsSet(name) {
			selected++
		}
	}
	if selected > 1 {
		return nil, fmt.Errorf("--baseline, --baseline-file, and --baseline-archive are mutually exclusive")
	}

	switch {
	case c.IsSet("baseline"):
		store, err := newBaselineStore(c.Context, c, cfg)
		if err != nil {
			return nil, err
		}
		return store.Load(c.Context, c.String("baseline"))

	case c.IsSet("baseline-file"):
		path := c.String("baseline-file")
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read baseline file %s: %w", path, err)
		}
		var rates report.RatesMap
		if err := json.Unmarshal(data, &rates); err != nil {
			return nil, fmt.Errorf("failed to decode baseline file %s: %w", path, err)
		}
		return rates, nil

	case c.Bool("baseline-archive"):
		client, err := newArchiveClient(c.Context, c, cfg)
		if err != nil {
			return nil, err
		}
		return client.LatestRates(c.Context, resolveWorkflow(c, cfg))
	}

	return nil, nil
}

// publishReport sends the completion event via the configured publisher.
func publishReport(c *cli.Context, cfg *config.Config, r *report.Report) error {
	p, err := newPublisher(cfg.Publish)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("--publish requires a publish section in the config file")
	}
	defer iox.DiscardClose(p)

	return p.Publish(c.Context, publish.FromReport(r))
}

// renderReport writes the report in the selected shape: TUI, markdown,
// a JSON artifact via --out, or the standard renderer.
func renderReport(c *cli.Context, r *report.Report) error {
	if c.Bool("tui") {
		renderer, err := render.NewRenderer(c)
		if err != nil {
			return err
		}
		return renderer.RenderTUI(tui.ViewReport, r)
	}

	if strings.EqualFold(c.String("format"), "markdown") {
		fmt.Fprintln(os.Stdout, report.Markdown(r))
		return nil
	}

	if c.IsSet("out") {
		return report.Write(r, c.String("out"))
	}

	renderer, err := render.NewRenderer(c)
	if err != nil {
		return err
	}
	return renderer.Render(r)
}
