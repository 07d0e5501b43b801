package objectstore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/animus-labs/animus-baseline/internal/platform/env"
)

const envEndpoint = "BASELINE_MINIO_ENDPOINT"

// Config describes the S3-compatible bucket that mirrors run directories.
type Config struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	Region     string
	UseSSL     bool
	BucketRuns string
	Prefix     string
}

// Enabled reports whether run mirroring has been configured.
func Enabled() bool {
	return env.Enabled(envEndpoint)
}

func ConfigFromEnv() (Config, error) {
	useSSL, err := env.Bool("BASELINE_MINIO_USE_SSL", false)
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		Endpoint:   env.String(envEndpoint, "localhost:9000"),
		AccessKey:  env.String("BASELINE_MINIO_ACCESS_KEY", "baseline"),
		SecretKey:  env.String("BASELINE_MINIO_SECRET_KEY", "baselineminio"),
		Region:     env.String("BASELINE_MINIO_REGION", "us-east-1"),
		UseSSL:     useSSL,
		BucketRuns: env.String("BASELINE_MINIO_BUCKET_RUNS", "baseline-runs"),
		Prefix:     strings.Trim(env.String("BASELINE_MINIO_PREFIX", "runs"), "/"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Endpoint) == "" {
		return errors.New("endpoint is required")
	}
	if strings.TrimSpace(c.AccessKey) == "" {
		return errors.New("access key is required")
	}
	if strings.TrimSpace(c.SecretKey) == "" {
		return errors.New("secret key is required")
	}
	if strings.TrimSpace(c.Region) == "" {
		return errors.New("region is required")
	}
	if strings.TrimSpace(c.BucketRuns) == "" {
		return errors.New("runs bucket is required")
	}
	if strings.Contains(c.Endpoint, "://") {
		return fmt.Errorf("endpoint must not include scheme: %q", c.Endpoint)
	}
	return nil
}
