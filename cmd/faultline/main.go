// Package main provides the faultline CLI entrypoint.
//
// Usage:
//
//	faultline <command> [subcommand] [options]
//
// All commands are read-only over their event logs; the only writes
// are the explicitly requested ones (analyze --out, baseline save,
// archive push).
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/faultline/cli/cmd"
	"github.com/justapithecus/faultline/types"
)

// Commit is set via ldflags at build time.
var commit = "unknown"

func main() {
	app := &cli.App{
		Name:           "faultline",
		Usage:          "Transition failure matrix analysis for multi-step workflows",
		Version:        fmt.Sprintf("%s (commit: %s)", types.Version, commit),
		ExitErrHandler: exitErrHandler,
		Commands: []*cli.Command{
			cmd.AnalyzeCommand(),
			cmd.RatesCommand(),
			cmd.HotspotsCommand(),
			cmd.SlowCommand(),
			cmd.ClustersCommand(),
			cmd.FlowCommand(),
			cmd.BaselineCommand(),
			cmd.ArchiveCommand(),
			cmd.VersionCommand(commit),
		},
	}

	if err := app.Run(os.Args); err != nil {
		// ExitErrHandler already handled the exit for cli.ExitCoder errors.
		// This branch handles unexpected errors that weren't wrapped.
		os.Exit(1)
	}
}

// exitErrHandler handles errors from the CLI, preserving exit codes
// from cli.Exit().
func exitErrHandler(_ *cli.Context, err error) {
	if err == nil {
		return
	}

	// Check for ExitCoder (from cli.Exit), handles wrapped errors
	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		code := exitCoder.ExitCode()
		msg := exitCoder.Error()

		// cli.Exit("", N).Error() returns "exit status N"; skip those
		// so silent exits stay silent.
		if msg != "" && msg != fmt.Sprintf("exit status %d", code) {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(code)
	}

	// Unexpected error - print and exit with code 1
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
