package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castpass/castpass/internal/shared/logger"
)

func setupTestRedis(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15,
	})

	ctx := context.Background()
	err := client.Ping(ctx).Err()
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	client.FlushDB(ctx)

	t.Cleanup(func() {
		client.FlushDB(ctx)
		client.Close()
	})

	return client
}

func TestRedisIdentityLocker_MutualExclusion(t *testing.T) {
	client := setupTestRedis(t)
	locker := NewRedisIdentityLocker(client, time.Second, logger.NewDiscardLogger())

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locker.Lock(context.Background(), "wallet:0xabc", "fid:1")
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt32(&inside, -1)
			release()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
	assert.Equal(t, int64(0), client.Exists(context.Background(), "castpass:lock:fid:1").Val())
}

func TestRedisIdentityLocker_ContextCancelled(t *testing.T) {
	client := setupTestRedis(t)
	locker := NewRedisIdentityLocker(client, 5*time.Second, logger.NewDiscardLogger())

	release, err := locker.Lock(context.Background(), "fid:9")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(ctx, "fid:9", "wallet:0xdef")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// Partially acquired keys are released on failure.
	assert.Equal(t, int64(0), client.Exists(context.Background(), "castpass:lock:wallet:0xdef").Val())
}

func TestRedisIdentityLocker_ReleaseKeepsForeignLock(t *testing.T) {
	client := setupTestRedis(t)
	locker := NewRedisIdentityLocker(client, 50*time.Millisecond, logger.NewDiscardLogger())
	ctx := context.Background()

	release, err := locker.Lock(ctx, "fid:3")
	require.NoError(t, err)

	// The lock expires and someone else takes the key.
	time.Sleep(80 * time.Millisecond)
	require.NoError(t, client.Set(ctx, "castpass:lock:fid:3", "other", time.Minute).Err())

	release()
	assert.Equal(t, "other", client.Get(ctx, "castpass:lock:fid:3").Val())
}
