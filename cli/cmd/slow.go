package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/justapithecus/faultline/cli/render"
	"github.com/justapithecus/faultline/matrix"
	"github.com/justapithecus/faultline/report"
)

// SlowCommand returns the slow command.
func SlowCommand() *cli.Command {
	return &cli.Command{
		Name:  "slow",
		Usage: "List edges whose mean duration exceeds a threshold",
		Flags: append(EventFlags(),
			FormatFlag,
			NoColorFlag,
			TUIFlag,
			ConfigFlag,
			&cli.Float64Flag{
				Name:     "threshold",
				Aliases:  []string{"t"},
				Usage:    "Duration threshold in milliseconds",
				Required: true,
			},
		),
		Action: slowAction,
	}
}

func slowAction(c *cli.Context) error {
	events, err := loadEvents(c)
	if err != nil {
		return err
	}

	slow, err := report.SlowTransitions(matrix.Build(events), c.Float64("threshold"))
	if err != nil {
		return err
	}

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}
	if c.Bool("tui") {
		return cli.Exit("--tui is not supported for slow", 1)
	}
	return r.Render(slow)
}
