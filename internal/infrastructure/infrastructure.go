// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, database, storage, locking) that domain systems require.
package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/SmartChain-HD/AI/internal/config"
	"github.com/SmartChain-HD/AI/internal/packages"
	"github.com/SmartChain-HD/AI/pkg/database"
	"github.com/SmartChain-HD/AI/pkg/lifecycle"
	"github.com/SmartChain-HD/AI/pkg/storage"
)

// Infrastructure holds the core systems required by all domain modules.
// Database is nil unless the package store runs on Postgres; Storage is nil
// unless a blob account is configured.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
	Packages  packages.Store
	Locker    packages.Locker

	redis *redis.Client
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	infra := &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
	}

	switch cfg.Store.Backend {
	case config.BackendPostgres:
		db, err := database.New(&cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("database init failed: %w", err)
		}
		infra.Database = db
		infra.Packages = packages.NewPostgres(db.Connection(), logger)
	default:
		infra.Packages = packages.NewMemory()
	}

	switch cfg.Store.Lock {
	case config.LockRedis:
		infra.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Store.RedisAddr,
			Password: cfg.Store.RedisPassword,
			DB:       cfg.Store.RedisDB,
		})
		infra.Locker = packages.NewRedisLocker(infra.redis, cfg.Store.LockTTLDuration(), cfg.Store.LockRetryDuration(), logger)
	default:
		infra.Locker = packages.NewLocalLocker()
	}

	if cfg.Storage.Enabled() {
		store, err := storage.New(&cfg.Storage, logger)
		if err != nil {
			return nil, fmt.Errorf("storage init failed: %w", err)
		}
		infra.Storage = store
	}

	return infra, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
// Database, storage, and redis hooks are registered for startup and shutdown coordination.
func (i *Infrastructure) Start() error {
	if i.Database != nil {
		if err := i.Database.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("database start failed: %w", err)
		}
	}
	if i.Storage != nil {
		if err := i.Storage.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("storage start failed: %w", err)
		}
	}
	if i.redis != nil {
		i.startRedis()
	}
	return nil
}

func (i *Infrastructure) startRedis() {
	logger := i.Logger.With("system", "redis")

	i.Lifecycle.OnStartup(func() {
		if err := i.redis.Ping(i.Lifecycle.Context()).Err(); err != nil {
			logger.Error("redis ping failed", "error", err)
			return
		}
		logger.Info("redis connection established")
	})

	i.Lifecycle.OnShutdown(func() {
		<-i.Lifecycle.Context().Done()
		if err := i.redis.Close(); err != nil {
			logger.Error("redis close failed", "error", err)
			return
		}
		logger.Info("redis connection closed")
	})
}

// Ping reports whether the configured backing services answer.
func (i *Infrastructure) Ping(ctx context.Context) error {
	if i.Database != nil {
		if err := i.Database.Connection().PingContext(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	if i.redis != nil {
		if err := i.redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}
