package config

import (
	"fmt"
	"time"
)

// Config represents a faultline.yaml configuration file.
// All values are optional and act as defaults for faultline commands.
// CLI flags always override config values.
type Config struct {
	Workflow string         `yaml:"workflow"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Baseline StoreConfig    `yaml:"baseline"`
	Archive  StoreConfig    `yaml:"archive"`
	Publish  PublishConfig  `yaml:"publish"`
}

// AnalysisConfig holds report-building defaults from the config file.
// Zero values fall through to the report package defaults.
type AnalysisConfig struct {
	MinFailures         int        `yaml:"min_failures"`
	SlowThresholdMs     float64    `yaml:"slow_threshold_ms"`
	RegressionThreshold float64    `yaml:"regression_threshold"`
	Flow                FlowConfig `yaml:"flow"`
}

// FlowConfig holds flow-diagram defaults from the config file.
// IncludeFailures is a pointer because false is meaningful and distinct
// from unset (the package default is true).
type FlowConfig struct {
	IncludeFailures *bool `yaml:"include_failures,omitempty"`
	MinTransitions  int64 `yaml:"min_transitions"`
}

// StoreConfig holds store defaults shared by the baseline and archive
// sections. Path is a directory for the fs backend and "bucket/prefix"
// for s3.
type StoreConfig struct {
	Backend     string `yaml:"backend"`
	Path        string `yaml:"path"`
	Region      string `yaml:"region"`
	Endpoint    string `yaml:"endpoint"`
	S3PathStyle bool   `yaml:"s3_path_style"`
}

// PublishConfig holds publisher defaults from the config file.
// Channel applies to the redis type, Headers to webhook.
type PublishConfig struct {
	Type    string            `yaml:"type"`
	URL     string            `yaml:"url"`
	Channel string            `yaml:"channel,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Timeout Duration          `yaml:"timeout,omitempty"`
	Retries *int              `yaml:"retries,omitempty"`
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}
