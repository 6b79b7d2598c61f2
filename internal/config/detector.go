package config

import (
	"fmt"
	"net/url"
	"os"
	"time"
)

const (
	EnvDetectorEndpoint = "AIRUN_DETECTOR_ENDPOINT"
	EnvDetectorTimeout  = "AIRUN_DETECTOR_TIMEOUT"
)

// DetectorConfig points at the optional person-counting service.
type DetectorConfig struct {
	Endpoint string `toml:"endpoint"`
	Timeout  string `toml:"timeout"`
}

// Enabled reports whether a detector endpoint is configured.
func (c *DetectorConfig) Enabled() bool {
	return c.Endpoint != ""
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *DetectorConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *DetectorConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *DetectorConfig) Merge(overlay *DetectorConfig) {
	if overlay.Endpoint != "" {
		c.Endpoint = overlay.Endpoint
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}

func (c *DetectorConfig) loadDefaults() {
	if c.Timeout == "" {
		c.Timeout = "10s"
	}
}

func (c *DetectorConfig) loadEnv() {
	if v := os.Getenv(EnvDetectorEndpoint); v != "" {
		c.Endpoint = v
	}
	if v := os.Getenv(EnvDetectorTimeout); v != "" {
		c.Timeout = v
	}
}

func (c *DetectorConfig) validate() error {
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if c.Endpoint == "" {
		return nil
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid endpoint: %s", c.Endpoint)
	}
	return nil
}
