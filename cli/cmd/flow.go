package cmd

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/faultline/cli/config"
	"github.com/justapithecus/faultline/flow"
	"github.com/justapithecus/faultline/matrix"
)

// Diagram dialects the flow command can emit.
const (
	DiagramCSV     = "csv"
	DiagramMermaid = "mermaid"
	DiagramDOT     = "dot"
)

// FlowCommand returns the flow command. Diagram text goes straight to
// stdout; it is already a serialization format, so the renderer's
// json/table/yaml shapes do not apply.
func FlowCommand() *cli.Command {
	return &cli.Command{
		Name:  "flow",
		Usage: "Emit the workflow flow diagram (sankey edge list)",
		Flags: append(EventFlags(),
			ConfigFlag,
			&cli.StringFlag{
				Name:    "diagram",
				Aliases: []string{"d"},
				Usage:   "Diagram dialect: csv, mermaid, dot",
				Value:   DiagramCSV,
			},
			&cli.Int64Flag{Name: "min-transitions", Usage: "Drop edges below this volume"},
			&cli.BoolFlag{Name: "no-failures", Usage: "Carry total volume per edge instead of splitting failures to the FAIL sink"},
		),
		Action: flowAction,
	}
}

func flowAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	events, err := loadEvents(c)
	if err != nil {
		return err
	}
	m := matrix.Build(events)
	opts := flowOptions(c, cfg)

	var text string
	switch c.String("diagram") {
	case DiagramCSV:
		text = flow.Render(m, opts)
	case DiagramMermaid:
		text = flow.Mermaid(m, opts)
	case DiagramDOT:
		text, err = flow.DOT(m, opts)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported diagram dialect: %s (must be csv, mermaid, or dot)", c.String("diagram"))
	}

	fmt.Fprintln(os.Stdout, text)
	return nil
}

// flowOptions merges flow flags over the config section's defaults.
func flowOptions(c *cli.Context, cfg *config.Config) flow.Options {
	opts := flow.DefaultOptions()
	if cfg.Analysis.Flow.IncludeFailures != nil {
		opts.IncludeFailures = *cfg.Analysis.Flow.IncludeFailures
	}
	if cfg.Analysis.Flow.MinTransitions > 0 {
		opts.MinTransitions = cfg.Analysis.Flow.MinTransitions
	}
	if c.Bool("no-failures") {
		opts.IncludeFailures = false
	}
	if c.IsSet("min-transitions") {
		opts.MinTransitions = c.Int64("min-transitions")
	}
	return opts
}
