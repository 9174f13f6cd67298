package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Sahani-Mohottige/SafeOnlineShop/pkg/lock"
	"github.com/Sahani-Mohottige/SafeOnlineShop/pkg/logger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const lockKeyPrefix = "lock:"

// compare-and-delete so a holder never releases a lock re-acquired by someone else after expiry
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker is a lock.Locker shared by every instance using the same Redis.
type Locker struct {
	client     *redis.Client
	ttl        time.Duration
	retryDelay time.Duration
}

// NewLocker returns a Locker whose locks expire after ttl if never released.
func NewLocker(client *redis.Client, ttl time.Duration) *Locker {
	return &Locker{
		client:     client,
		ttl:        ttl,
		retryDelay: 20 * time.Millisecond,
	}
}

func (l *Locker) Lock(ctx context.Context, key string) (lock.UnlockFunc, error) {
	redisKey := lockKeyPrefix + key
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, lock.ErrNotAcquired
			}
			logger.Error("Failed to acquire redis lock", err, map[string]interface{}{
				"key": redisKey,
			})
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			logger.Warn("Timed out waiting for redis lock", map[string]interface{}{
				"key": redisKey,
			})
			return nil, lock.ErrNotAcquired
		case <-time.After(l.retryDelay):
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() { l.release(redisKey, token) })
	}, nil
}

func (l *Locker) release(redisKey, token string) {
	releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := releaseScript.Run(releaseCtx, l.client, []string{redisKey}, token).Err(); err != nil {
		logger.Error("Failed to release redis lock", err, map[string]interface{}{
			"key": redisKey,
		})
	}
}
