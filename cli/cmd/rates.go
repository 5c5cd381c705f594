package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/justapithecus/faultline/cli/render"
	"github.com/justapithecus/faultline/matrix"
	"github.com/justapithecus/faultline/report"
	"github.com/justapithecus/faultline/types"
)

// RatesCommand returns the rates command.
func RatesCommand() *cli.Command {
	return &cli.Command{
		Name:   "rates",
		Usage:  "Show per-edge transition counts, failure rates, and mean durations",
		Flags:  append(EventFlags(), ReadOnlyFlags()...),
		Action: ratesAction,
	}
}

// ratesRow flattens one edge's rate record for rendering. Rows sort
// lexically by edge so output is diff-stable.
type ratesRow struct {
	Edge               types.Edge `json:"edge"`
	Total              int64      `json:"total"`
	Failures           int64      `json:"failures"`
	Successes          int64      `json:"successes"`
	FailureRatePercent float64    `json:"failure_rate_percent"`
	AvgDurationMs      *float64   `json:"avg_duration_ms,omitempty"`
}

func ratesAction(c *cli.Context) error {
	events, err := loadEvents(c)
	if err != nil {
		return err
	}

	rates := report.Rates(matrix.Build(events))

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}
	if c.Bool("tui") {
		return cli.Exit("--tui is not supported for rates", 1)
	}
	return r.Render(ratesRows(rates))
}

// ratesRows converts a rate map into sorted rows.
func ratesRows(rates report.RatesMap) []ratesRow {
	rows := make([]ratesRow, 0, len(rates))
	for _, edge := range rates.Edges() {
		er := rates[edge]
		rows = append(rows, ratesRow{
			Edge:               edge,
			Total:              er.Total,
			Failures:           er.Failures,
			Successes:          er.Successes,
			FailureRatePercent: er.FailureRatePercent,
			AvgDurationMs:      er.AvgDurationMs,
		})
	}
	return rows
}
