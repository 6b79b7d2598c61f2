package config

import (
	"fmt"
	"os"
	"time"

	"github.com/SmartChain-HD/AI/pkg/formatting"
)

const (
	EnvFetchLocalRoot   = "AIRUN_FETCH_LOCAL_ROOT"
	EnvFetchMaxSize     = "AIRUN_FETCH_MAX_SIZE"
	EnvFetchHTTPTimeout = "AIRUN_FETCH_HTTP_TIMEOUT"
	EnvFetchS3Enabled   = "AIRUN_FETCH_S3_ENABLED"
	EnvFetchS3Region    = "AIRUN_FETCH_S3_REGION"
	EnvFetchGCSEnabled  = "AIRUN_FETCH_GCS_ENABLED"
)

// FetchConfig selects the storage schemes evidence files may be read from.
// Local files and http(s) are always available; cloud schemes are opt-in.
type FetchConfig struct {
	LocalRoot   string `toml:"local_root"`
	MaxSize     string `toml:"max_size"`
	HTTPTimeout string `toml:"http_timeout"`
	S3Enabled   bool   `toml:"s3_enabled"`
	S3Region    string `toml:"s3_region"`
	GCSEnabled  bool   `toml:"gcs_enabled"`
}

// MaxSizeBytes returns MaxSize in bytes.
func (c *FetchConfig) MaxSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxSize)
	if err != nil {
		return 50 * 1024 * 1024
	}
	return size
}

// HTTPTimeoutDuration returns HTTPTimeout as a time.Duration.
func (c *FetchConfig) HTTPTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.HTTPTimeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *FetchConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay. Boolean fields always apply.
func (c *FetchConfig) Merge(overlay *FetchConfig) {
	if overlay.LocalRoot != "" {
		c.LocalRoot = overlay.LocalRoot
	}
	if overlay.MaxSize != "" {
		c.MaxSize = overlay.MaxSize
	}
	if overlay.HTTPTimeout != "" {
		c.HTTPTimeout = overlay.HTTPTimeout
	}
	if overlay.S3Region != "" {
		c.S3Region = overlay.S3Region
	}
	c.S3Enabled = overlay.S3Enabled
	c.GCSEnabled = overlay.GCSEnabled
}

func (c *FetchConfig) loadDefaults() {
	if c.MaxSize == "" {
		c.MaxSize = "50MB"
	}
	if c.HTTPTimeout == "" {
		c.HTTPTimeout = "30s"
	}
}

func (c *FetchConfig) loadEnv() {
	if v := os.Getenv(EnvFetchLocalRoot); v != "" {
		c.LocalRoot = v
	}
	if v := os.Getenv(EnvFetchMaxSize); v != "" {
		c.MaxSize = v
	}
	if v := os.Getenv(EnvFetchHTTPTimeout); v != "" {
		c.HTTPTimeout = v
	}
	if v := os.Getenv(EnvFetchS3Region); v != "" {
		c.S3Region = v
	}
	loadBool(EnvFetchS3Enabled, &c.S3Enabled)
	loadBool(EnvFetchGCSEnabled, &c.GCSEnabled)
}

func (c *FetchConfig) validate() error {
	if _, err := formatting.ParseBytes(c.MaxSize); err != nil {
		return fmt.Errorf("invalid max_size: %w", err)
	}
	if _, err := time.ParseDuration(c.HTTPTimeout); err != nil {
		return fmt.Errorf("invalid http_timeout: %w", err)
	}
	return nil
}
