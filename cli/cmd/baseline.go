package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/justapithecus/faultline/cli/render"
	"github.com/justapithecus/faultline/matrix"
	"github.com/justapithecus/faultline/report"
)

// BaselineCommand returns the baseline command with subcommands.
func BaselineCommand() *cli.Command {
	return &cli.Command{
		Name:  "baseline",
		Usage: "Manage failure-rate baselines (save, show, compare, list)",
		Subcommands: []*cli.Command{
			baselineSaveCommand(),
			baselineShowCommand(),
			baselineCompareCommand(),
			baselineListCommand(),
		},
	}
}

func baselineSaveCommand() *cli.Command {
	return &cli.Command{
		Name:      "save",
		Usage:     "Compute rates from event logs and store them under a key",
		ArgsUsage: "<key>",
		Flags:     append(EventFlags(), append(StorageFlags(), ConfigFlag)...),
		Action:    baselineSaveAction,
	}
}

func baselineSaveAction(c *cli.Context) error {
	key, err := requireKeyArg(c)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	events, err := loadEvents(c)
	if err != nil {
		return err
	}

	store, err := newBaselineStore(c.Context, c, cfg)
	if err != nil {
		return err
	}
	return store.Save(c.Context, key, report.Rates(matrix.Build(events)))
}

func baselineShowCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show a stored baseline's rates",
		ArgsUsage: "<key>",
		Flags:     append(ReadOnlyFlags(), StorageFlags()...),
		Action:    baselineShowAction,
	}
}

func baselineShowAction(c *cli.Context) error {
	key, err := requireKeyArg(c)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	store, err := newBaselineStore(c.Context, c, cfg)
	if err != nil {
		return err
	}
	rates, err := store.Load(c.Context, key)
	if err != nil {
		return err
	}

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}
	if c.Bool("tui") {
		return cli.Exit("--tui is not supported for baseline show", 1)
	}
	return r.Render(ratesRows(rates))
}

func baselineCompareCommand() *cli.Command {
	return &cli.Command{
		Name:      "compare",
		Usage:     "Compare event logs against a stored baseline",
		ArgsUsage: "<key>",
		Flags: append(EventFlags(), append(StorageFlags(),
			FormatFlag,
			NoColorFlag,
			TUIFlag,
			ConfigFlag,
			&cli.Float64Flag{Name: "threshold", Usage: "Relative rate-growth floor (default 0.2)"},
		)...),
		Action: baselineCompareAction,
	}
}

func baselineCompareAction(c *cli.Context) error {
	key, err := requireKeyArg(c)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	events, err := loadEvents(c)
	if err != nil {
		return err
	}

	store, err := newBaselineStore(c.Context, c, cfg)
	if err != nil {
		return err
	}
	base, err := store.Load(c.Context, key)
	if err != nil {
		return err
	}

	threshold := report.DefaultRegressionThreshold
	if cfg.Analysis.RegressionThreshold != 0 {
		threshold = cfg.Analysis.RegressionThreshold
	}
	if c.IsSet("threshold") {
		threshold = c.Float64("threshold")
	}

	current := report.Rates(matrix.Build(events))
	regressions, err := report.CompareToBaseline(current, base, threshold)
	if err != nil {
		return err
	}

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}
	if c.Bool("tui") {
		return cli.Exit("--tui is not supported for baseline compare", 1)
	}
	return r.Render(regressions)
}

func baselineListCommand() *cli.Command {
	return &cli.Command{
		Name:   "list",
		Usage:  "List stored baseline keys",
		Flags:  append(ReadOnlyFlags(), StorageFlags()...),
		Action: baselineListAction,
	}
}

// baselineKeyRow wraps a key so table rendering gets a header.
type baselineKeyRow struct {
	Key string `json:"key"`
}

func baselineListAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	store, err := newBaselineStore(c.Context, c, cfg)
	if err != nil {
		return err
	}
	keys, err := store.List(c.Context)
	if err != nil {
		return err
	}

	rows := make([]baselineKeyRow, len(keys))
	for i, key := range keys {
		rows[i] = baselineKeyRow{Key: key}
	}

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}
	if c.Bool("tui") {
		return cli.Exit("--tui is not supported for baseline list", 1)
	}
	return r.Render(rows)
}

// requireKeyArg extracts the single positional baseline key argument.
func requireKeyArg(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", cli.Exit("exactly one baseline key argument is required", 1)
	}
	return c.Args().First(), nil
}
