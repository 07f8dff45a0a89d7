package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/castpass/castpass/internal/shared/keylock"
	"github.com/castpass/castpass/internal/shared/logger"
)

const (
	defaultLockPrefix = "castpass:lock:"
	defaultLockTTL    = 30 * time.Second
	lockRetryInterval = 25 * time.Millisecond
)

// releaseLockScript deletes the key only while it still holds our token, so
// a lock that expired and was taken by another holder is left alone.
var releaseLockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisIdentityLocker is a keylock.Locker shared by every instance using the
// same Redis. Each key is a SET NX PX entry holding a random token.
type RedisIdentityLocker struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger logger.Interface
}

// NewRedisIdentityLocker creates a locker. ttl bounds how long a crashed
// holder can block others; zero picks 30s.
func NewRedisIdentityLocker(client *redis.Client, ttl time.Duration, logger logger.Interface) *RedisIdentityLocker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisIdentityLocker{
		client: client,
		prefix: defaultLockPrefix,
		ttl:    ttl,
		logger: logger,
	}
}

var _ keylock.Locker = (*RedisIdentityLocker)(nil)

// Lock acquires every key in sorted order, waiting until ctx is done.
func (l *RedisIdentityLocker) Lock(ctx context.Context, keys ...string) (func(), error) {
	token := uuid.NewString()
	ordered := keylock.Normalize(keys)

	acquired := make([]string, 0, len(ordered))
	for _, key := range ordered {
		redisKey := l.prefix + key
		if err := l.acquire(ctx, redisKey, token); err != nil {
			l.release(acquired, token)
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		acquired = append(acquired, redisKey)
	}

	var once sync.Once
	return func() {
		once.Do(func() { l.release(acquired, token) })
	}, nil
}

func (l *RedisIdentityLocker) acquire(ctx context.Context, key, token string) error {
	ticker := time.NewTicker(lockRetryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// release uses a fresh context so locks are freed even after the caller's
// context was cancelled.
func (l *RedisIdentityLocker) release(keys []string, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for i := len(keys) - 1; i >= 0; i-- {
		if err := releaseLockScript.Run(ctx, l.client, []string{keys[i]}, token).Err(); err != nil {
			l.logger.Warnw("failed to release lock", "key", keys[i], "error", err)
		}
	}
}
