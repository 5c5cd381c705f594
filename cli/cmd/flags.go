// Package cmd provides CLI commands for the faultline binary.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/faultline/cli/config"
	"github.com/justapithecus/faultline/eventlog"
	"github.com/justapithecus/faultline/filter"
	"github.com/justapithecus/faultline/types"
)

// DefaultConfigFile is the config file loaded when --config is not given.
const DefaultConfigFile = "faultline.yaml"

// Shared flags for all commands.
var (
	// FormatFlag selects output format: json, table, yaml.
	FormatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: json, table, yaml",
	}

	// NoColorFlag disables colored output.
	NoColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable colored output",
	}

	// TUIFlag enables Bubble Tea interactive mode.
	// Only valid for select commands (analyze, hotspots).
	TUIFlag = &cli.BoolFlag{
		Name:  "tui",
		Usage: "Enable interactive TUI mode (analyze, hotspots only)",
	}

	// ConfigFlag points at an explicit config file.
	ConfigFlag = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Config file path (default: faultline.yaml if present)",
	}
)

// ReadOnlyFlags returns the shared flags for all read-only commands.
// Includes --tui so that unsupported commands can provide explicit error
// messages instead of generic "flag not defined" errors.
func ReadOnlyFlags() []cli.Flag {
	return []cli.Flag{
		FormatFlag,
		NoColorFlag,
		TUIFlag,
		ConfigFlag,
	}
}

// EventFlags returns the flags every event-consuming command shares.
func EventFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:     "events",
			Aliases:  []string{"e"},
			Usage:    "Event log path (.jsonl, .bin, .tfm); repeatable",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "filter",
			Usage: `Event filter expression (e.g. 'failed && framework == "langgraph"')`,
		},
		&cli.StringFlag{
			Name:    "workflow",
			Aliases: []string{"w"},
			Usage:   "Workflow label for the analysis",
		},
	}
}

// StorageFlags returns the flags for commands that touch a baseline
// store or report archive.
func StorageFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "storage-backend",
			Usage: "Storage backend: fs or s3",
		},
		&cli.StringFlag{
			Name:  "storage-path",
			Usage: "Storage path (fs: directory, s3: bucket/prefix)",
		},
		&cli.StringFlag{
			Name:  "storage-region",
			Usage: "AWS region for the s3 backend",
		},
		&cli.StringFlag{
			Name:  "storage-endpoint",
			Usage: "Custom S3 endpoint URL (MinIO, localstack)",
		},
		&cli.BoolFlag{
			Name:  "storage-path-style",
			Usage: "Force path-style S3 addressing",
		},
	}
}

// loadConfig resolves the config file: --config when given, otherwise
// faultline.yaml in the working directory when present, otherwise an
// empty config.
func loadConfig(c *cli.Context) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		return config.Load(path)
	}
	if _, err := os.Stat(DefaultConfigFile); err == nil {
		return config.Load(DefaultConfigFile)
	}
	return &config.Config{}, nil
}

// loadEvents reads every --events log in order and applies the
// --filter expression when one is given. Event order within and
// across files is preserved; aggregation is order-independent, but a
// stable order keeps duration samples reproducible.
func loadEvents(c *cli.Context) ([]types.TransitionEvent, error) {
	var events []types.TransitionEvent
	for _, path := range c.StringSlice("events") {
		batch, err := eventlog.ReadFile(path)
		if err != nil {
			return nil, err
		}
		events = append(events, batch...)
	}

	if src := c.String("filter"); src != "" {
		f, err := filter.Compile(src)
		if err != nil {
			return nil, err
		}
		return f.Apply(events)
	}
	return events, nil
}

// resolveWorkflow applies flag-over-config precedence for the
// workflow label.
func resolveWorkflow(c *cli.Context, cfg *config.Config) string {
	if c.IsSet("workflow") {
		return c.String("workflow")
	}
	return cfg.Workflow
}

// storageSettings is the resolved storage target for one store section.
type storageSettings struct {
	Backend   string
	Path      string
	Region    string
	Endpoint  string
	PathStyle bool
}

// resolveStorage merges storage flags over one config section, with
// fallbackPath as the last-resort fs root.
func resolveStorage(c *cli.Context, sc config.StoreConfig, fallbackPath string) storageSettings {
	s := storageSettings{
		Backend:   sc.Backend,
		Path:      sc.Path,
		Region:    sc.Region,
		Endpoint:  sc.Endpoint,
		PathStyle: sc.S3PathStyle,
	}
	if c.IsSet("storage-backend") {
		s.Backend = c.String("storage-backend")
	}
	if c.IsSet("storage-path") {
		s.Path = c.String("storage-path")
	}
	if c.IsSet("storage-region") {
		s.Region = c.String("storage-region")
	}
	if c.IsSet("storage-endpoint") {
		s.Endpoint = c.String("storage-endpoint")
	}
	if c.IsSet("storage-path-style") {
		s.PathStyle = c.Bool("storage-path-style")
	}
	if s.Backend == "" {
		s.Backend = "fs"
	}
	if s.Path == "" && s.Backend == "fs" {
		s.Path = fallbackPath
	}
	return s
}

// splitS3Path splits "bucket/prefix" into its parts. A bare bucket is
// valid; the prefix is empty then.
func splitS3Path(path string) (bucket, prefix string) {
	bucket, prefix, _ = strings.Cut(path, "/")
	return bucket, prefix
}

// validateBackend rejects anything but the two storage backends.
func validateBackend(backend string) error {
	switch backend {
	case "fs", "s3":
		return nil
	default:
		return fmt.Errorf("unsupported storage backend: %s (must be fs or s3)", backend)
	}
}
