package packages

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Unlock releases a lock. Calling it more than once is a no-op.
type Unlock func()

// Locker grants one holder at a time per key.
type Locker interface {
	Lock(ctx context.Context, key string) (Unlock, error)
}

// WithLock runs fn while holding the lock for key.
func WithLock[T any](ctx context.Context, l Locker, key string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	unlock, err := l.Lock(ctx, key)
	if err != nil {
		return zero, err
	}
	defer unlock()

	return fn(ctx)
}

type keyLock struct {
	sem  chan struct{}
	refs int
}

type localLocker struct {
	mu   sync.Mutex
	keys map[string]*keyLock
}

// NewLocalLocker creates a keyed mutex for a single process. Entries are
// removed once no holder or waiter remains.
func NewLocalLocker() Locker {
	return &localLocker{keys: make(map[string]*keyLock)}
}

func (l *localLocker) Lock(ctx context.Context, key string) (Unlock, error) {
	l.mu.Lock()
	k, ok := l.keys[key]
	if !ok {
		k = &keyLock{sem: make(chan struct{}, 1)}
		l.keys[key] = k
	}
	k.refs++
	l.mu.Unlock()

	select {
	case k.sem <- struct{}{}:
	case <-ctx.Done():
		l.release(key, k)
		return nil, fmt.Errorf("%w: %w", ErrLockTimeout, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-k.sem
			l.release(key, k)
		})
	}, nil
}

func (l *localLocker) release(key string, k *keyLock) {
	l.mu.Lock()
	defer l.mu.Unlock()

	k.refs--
	if k.refs == 0 {
		delete(l.keys, key)
	}
}

// releaseScript deletes the lock only when it still holds this owner's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisLocker struct {
	client redis.UniversalClient
	ttl    time.Duration
	retry  time.Duration
	prefix string
	logger *slog.Logger
}

// NewRedisLocker creates a lock shared by every process using client.
// A lock expires after ttl if its holder never releases it.
func NewRedisLocker(client redis.UniversalClient, ttl, retry time.Duration, logger *slog.Logger) Locker {
	return &redisLocker{
		client: client,
		ttl:    ttl,
		retry:  retry,
		prefix: "airun:lock:",
		logger: logger.With("locker", "redis"),
	}
}

func (l *redisLocker) Lock(ctx context.Context, key string) (Unlock, error) {
	key = l.prefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire %s: %w", key, err)
		}
		if ok {
			break
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", ErrLockTimeout, ctx.Err())
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), l.ttl)
			defer cancel()
			// A failed release leaves the key to expire after ttl.
			if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
				l.logger.Warn("lock release failed", "key", key, "ttl", l.ttl, "error", err)
			}
		})
	}, nil
}
