package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvPipelineFetchTimeout = "AIRUN_PIPELINE_FETCH_TIMEOUT"
	EnvPipelineMaxWorkers   = "AIRUN_PIPELINE_MAX_WORKERS"
	EnvPipelineRateLimit    = "AIRUN_PIPELINE_RATE_LIMIT"
	EnvPipelineRateBurst    = "AIRUN_PIPELINE_RATE_BURST"
	EnvPipelineFallback     = "AIRUN_PIPELINE_FALLBACK"
	EnvPipelineEnrich       = "AIRUN_PIPELINE_ENRICH"
	EnvPipelineJudge        = "AIRUN_PIPELINE_JUDGE"
)

// PipelineConfig holds extraction bounds and the optional model stages.
type PipelineConfig struct {
	FetchTimeout string `toml:"fetch_timeout"`
	MaxWorkers   int    `toml:"max_workers"`
	// RateLimit caps model calls per second; zero leaves them unthrottled.
	RateLimit float64 `toml:"rate_limit"`
	RateBurst int     `toml:"rate_burst"`
	Fallback  bool    `toml:"fallback"`
	Enrich    bool    `toml:"enrich"`
	Judge     bool    `toml:"judge"`
}

// FetchTimeoutDuration returns FetchTimeout as a time.Duration.
func (c *PipelineConfig) FetchTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.FetchTimeout)
	return d
}

// UsesModels reports whether any stage calls the agent.
func (c *PipelineConfig) UsesModels() bool {
	return c.Fallback || c.Enrich || c.Judge
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *PipelineConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay. Boolean fields always apply.
func (c *PipelineConfig) Merge(overlay *PipelineConfig) {
	if overlay.FetchTimeout != "" {
		c.FetchTimeout = overlay.FetchTimeout
	}
	if overlay.MaxWorkers != 0 {
		c.MaxWorkers = overlay.MaxWorkers
	}
	if overlay.RateLimit != 0 {
		c.RateLimit = overlay.RateLimit
	}
	if overlay.RateBurst != 0 {
		c.RateBurst = overlay.RateBurst
	}
	c.Fallback = overlay.Fallback
	c.Enrich = overlay.Enrich
	c.Judge = overlay.Judge
}

func (c *PipelineConfig) loadDefaults() {
	if c.FetchTimeout == "" {
		c.FetchTimeout = "30s"
	}
	if c.MaxWorkers == 0 {
		c.MaxWorkers = 10
	}
	if c.RateBurst == 0 {
		c.RateBurst = 1
	}
}

func (c *PipelineConfig) loadEnv() {
	if v := os.Getenv(EnvPipelineFetchTimeout); v != "" {
		c.FetchTimeout = v
	}
	if v := os.Getenv(EnvPipelineMaxWorkers); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxWorkers = n
		}
	}
	if v := os.Getenv(EnvPipelineRateLimit); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.RateLimit = f
		}
	}
	if v := os.Getenv(EnvPipelineRateBurst); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RateBurst = n
		}
	}
	loadBool(EnvPipelineFallback, &c.Fallback)
	loadBool(EnvPipelineEnrich, &c.Enrich)
	loadBool(EnvPipelineJudge, &c.Judge)
}

func (c *PipelineConfig) validate() error {
	if _, err := time.ParseDuration(c.FetchTimeout); err != nil {
		return fmt.Errorf("invalid fetch_timeout: %w", err)
	}
	if c.MaxWorkers < 1 {
		return fmt.Errorf("max_workers must be positive: %d", c.MaxWorkers)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative: %v", c.RateLimit)
	}
	if c.RateBurst < 1 {
		return fmt.Errorf("rate_burst must be positive: %d", c.RateBurst)
	}
	return nil
}

func loadBool(env string, dst *bool) {
	if v := os.Getenv(env); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
