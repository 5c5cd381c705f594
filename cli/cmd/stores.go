package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/faultline/archive"
	"github.com/justapithecus/faultline/baseline"
	"github.com/justapithecus/faultline/cli/config"
	"github.com/justapithecus/faultline/publish"
	pubredis "github.com/justapithecus/faultline/publish/redis"
	pubwebhook "github.com/justapithecus/faultline/publish/webhook"
)

// Default filesystem roots when neither flags nor config name a path.
const (
	DefaultBaselineRoot = ".faultline/baselines"
	DefaultArchiveRoot  = ".faultline/archive"
)

// newBaselineStore builds the baseline store from storage flags and
// the baseline config section.
func newBaselineStore(ctx context.Context, c *cli.Context, cfg *config.Config) (baseline.Store, error) {
	s := resolveStorage(c, cfg.Baseline, DefaultBaselineRoot)
	if err := validateBackend(s.Backend); err != nil {
		return nil, err
	}

	if s.Backend == "fs" {
		return baseline.NewFSStore(s.Path), nil
	}

	bucket, prefix := splitS3Path(s.Path)
	return baseline.NewS3Store(ctx, baseline.S3Config{
		Bucket:       bucket,
		Prefix:       prefix,
		Region:       s.Region,
		Endpoint:     s.Endpoint,
		UsePathStyle: s.PathStyle,
	})
}

// newArchiveClient builds the report archive client from storage flags
// and the archive config section.
func newArchiveClient(ctx context.Context, c *cli.Context, cfg *config.Config) (*archive.Client, error) {
	s := resolveStorage(c, cfg.Archive, DefaultArchiveRoot)
	if err := validateBackend(s.Backend); err != nil {
		return nil, err
	}

	if s.Backend == "fs" {
		return archive.NewFSClient(s.Path)
	}

	bucket, prefix := splitS3Path(s.Path)
	return archive.NewS3Client(ctx, archive.S3Config{
		Bucket:       bucket,
		Prefix:       prefix,
		Region:       s.Region,
		Endpoint:     s.Endpoint,
		UsePathStyle: s.PathStyle,
	})
}

// newPublisher builds the configured publisher, or nil when the
// config has no publish section.
func newPublisher(pc config.PublishConfig) (publish.Publisher, error) {
	retries := pubredis.DefaultRetries
	if pc.Retries != nil {
		retries = *pc.Retries
	}

	switch pc.Type {
	case "":
		return nil, nil
	case "redis":
		return pubredis.New(pubredis.Config{
			URL:     pc.URL,
			Channel: pc.Channel,
			Timeout: pc.Timeout.Duration,
			Retries: retries,
		})
	case "webhook":
		return pubwebhook.New(pubwebhook.Config{
			URL:     pc.URL,
			Headers: pc.Headers,
			Timeout: pc.Timeout.Duration,
			Retries: retries,
		})
	default:
		return nil, fmt.Errorf("unsupported publisher type: %s (must be redis or webhook)", pc.Type)
	}
}
