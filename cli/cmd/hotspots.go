package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/justapithecus/faultline/cli/render"
	"github.com/justapithecus/faultline/cli/tui"
	"github.com/justapithecus/faultline/report"
)

// HotspotsCommand returns the hotspots command.
func HotspotsCommand() *cli.Command {
	return &cli.Command{
		Name:  "hotspots",
		Usage: "Rank edges by failure volume with top error samples",
		Flags: append(EventFlags(),
			FormatFlag,
			NoColorFlag,
			TUIFlag,
			ConfigFlag,
			&cli.IntFlag{Name: "min-failures", Usage: "Hotspot noise floor (default 2)"},
		),
		Action: hotspotsAction,
	}
}

func hotspotsAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	events, err := loadEvents(c)
	if err != nil {
		return err
	}

	minFailures := cfg.Analysis.MinFailures
	if c.IsSet("min-failures") {
		minFailures = c.Int("min-failures")
	}

	// Build the full report rather than bare hotspots so the TUI gets
	// its summary boxes; the flat path renders only the hotspot list.
	rep, err := report.Build(events, report.Options{
		Workflow:    resolveWorkflow(c, cfg),
		MinFailures: minFailures,
	})
	if err != nil {
		return err
	}

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}
	if c.Bool("tui") {
		return r.RenderTUI(tui.ViewHotspots, rep)
	}
	return r.Render(rep.Hotspots)
}
