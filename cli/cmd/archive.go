package cmd

import (
	"errors"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/faultline/archive"
	"github.com/justapithecus/faultline/cli/render"
	"github.com/justapithecus/faultline/report"
)

// ArchiveCommand returns the archive command with subcommands.
func ArchiveCommand() *cli.Command {
	return &cli.Command{
		Name:  "archive",
		Usage: "Manage the report archive (push, latest, snapshots)",
		Subcommands: []*cli.Command{
			archivePushCommand(),
			archiveLatestCommand(),
			archiveSnapshotsCommand(),
		},
	}
}

func archivePushCommand() *cli.Command {
	return &cli.Command{
		Name:  "push",
		Usage: "Analyze event logs and push the report to the archive",
		Flags: append(EventFlags(), append(StorageFlags(),
			ConfigFlag,
			&cli.IntFlag{Name: "min-failures", Usage: "Hotspot noise floor (default 2)"},
		)...),
		Action: archivePushAction,
	}
}

func archivePushAction(c *cli.Context) error {
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

	rep, err := report.Build(events, report.Options{
		Workflow:    resolveWorkflow(c, cfg),
		MinFailures: minFailures,
	})
	if err != nil {
		return err
	}

	client, err := newArchiveClient(c.Context, c, cfg)
	if err != nil {
		return err
	}
	return client.Push(c.Context, rep)
}

func archiveLatestCommand() *cli.Command {
	return &cli.Command{
		Name:  "latest",
		Usage: "Show the most recent archived report summary",
		Flags: append(ReadOnlyFlags(), append(StorageFlags(),
			&cli.StringFlag{Name: "workflow", Aliases: []string{"w"}, Usage: "Filter by workflow"},
		)...),
		Action: archiveLatestAction,
	}
}

func archiveLatestAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	client, err := newArchiveClient(c.Context, c, cfg)
	if err != nil {
		return err
	}

	summary, err := client.LatestSummary(c.Context, resolveWorkflow(c, cfg))
	if errors.Is(err, archive.ErrNoReportsFound) {
		return cli.Exit("no archived reports found", 1)
	}
	if err != nil {
		return err
	}

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}
	if c.Bool("tui") {
		return cli.Exit("--tui is not supported for archive latest", 1)
	}
	return r.Render(summary)
}

func archiveSnapshotsCommand() *cli.Command {
	return &cli.Command{
		Name:   "snapshots",
		Usage:  "List archived snapshots",
		Flags:  append(ReadOnlyFlags(), StorageFlags()...),
		Action: archiveSnapshotsAction,
	}
}

func archiveSnapshotsAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	client, err := newArchiveClient(c.Context, c, cfg)
	if err != nil {
		return err
	}
	snapshots, err := client.ListSnapshots(c.Context)
	if err != nil {
		return err
	}

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}
	if c.Bool("tui") {
		return cli.Exit("--tui is not supported for archive snapshots", 1)
	}
	return r.Render(snapshots)
}
