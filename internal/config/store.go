package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvStoreBackend       = "AIRUN_STORE_BACKEND"
	EnvStoreLock          = "AIRUN_STORE_LOCK"
	EnvStoreRedisAddr     = "AIRUN_STORE_REDIS_ADDR"
	EnvStoreRedisPassword = "AIRUN_STORE_REDIS_PASSWORD"
	EnvStoreRedisDB       = "AIRUN_STORE_REDIS_DB"
	EnvStoreLockTTL       = "AIRUN_STORE_LOCK_TTL"
	EnvStoreLockRetry     = "AIRUN_STORE_LOCK_RETRY"
)

// Package store and lock backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	LockLocal       = "local"
	LockRedis       = "redis"
)

// StoreConfig selects where package hints live and how package writers
// are serialized.
type StoreConfig struct {
	Backend       string `toml:"backend"`
	Lock          string `toml:"lock"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	LockTTL       string `toml:"lock_ttl"`
	LockRetry     string `toml:"lock_retry"`
}

// LockTTLDuration returns LockTTL as a time.Duration.
func (c *StoreConfig) LockTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.LockTTL)
	return d
}

// LockRetryDuration returns LockRetry as a time.Duration.
func (c *StoreConfig) LockRetryDuration() time.Duration {
	d, _ := time.ParseDuration(c.LockRetry)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *StoreConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *StoreConfig) Merge(overlay *StoreConfig) {
	if overlay.Backend != "" {
		c.Backend = overlay.Backend
	}
	if overlay.Lock != "" {
		c.Lock = overlay.Lock
	}
	if overlay.RedisAddr != "" {
		c.RedisAddr = overlay.RedisAddr
	}
	if overlay.RedisPassword != "" {
		c.RedisPassword = overlay.RedisPassword
	}
	if overlay.RedisDB != 0 {
		c.RedisDB = overlay.RedisDB
	}
	if overlay.LockTTL != "" {
		c.LockTTL = overlay.LockTTL
	}
	if overlay.LockRetry != "" {
		c.LockRetry = overlay.LockRetry
	}
}

func (c *StoreConfig) loadDefaults() {
	if c.Backend == "" {
		c.Backend = BackendMemory
	}
	if c.Lock == "" {
		c.Lock = LockLocal
	}
	if c.LockTTL == "" {
		c.LockTTL = "5m"
	}
	if c.LockRetry == "" {
		c.LockRetry = "100ms"
	}
}

func (c *StoreConfig) loadEnv() {
	if v := os.Getenv(EnvStoreBackend); v != "" {
		c.Backend = v
	}
	if v := os.Getenv(EnvStoreLock); v != "" {
		c.Lock = v
	}
	if v := os.Getenv(EnvStoreRedisAddr); v != "" {
		c.RedisAddr = v
	}
	if v := os.Getenv(EnvStoreRedisPassword); v != "" {
		c.RedisPassword = v
	}
	if v := os.Getenv(EnvStoreRedisDB); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			c.RedisDB = db
		}
	}
	if v := os.Getenv(EnvStoreLockTTL); v != "" {
		c.LockTTL = v
	}
	if v := os.Getenv(EnvStoreLockRetry); v != "" {
		c.LockRetry = v
	}
}

func (c *StoreConfig) validate() error {
	switch c.Backend {
	case BackendMemory, BackendPostgres:
	default:
		return fmt.Errorf("unknown backend: %s", c.Backend)
	}
	switch c.Lock {
	case LockLocal:
	case LockRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("redis_addr required for redis lock")
		}
	default:
		return fmt.Errorf("unknown lock: %s", c.Lock)
	}
	if _, err := time.ParseDuration(c.LockTTL); err != nil {
		return fmt.Errorf("invalid lock_ttl: %w", err)
	}
	if _, err := time.ParseDuration(c.LockRetry); err != nil {
		return fmt.Errorf("invalid lock_retry: %w", err)
	}
	return nil
}
