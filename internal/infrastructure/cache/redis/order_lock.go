package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"order-fraud-review/internal/pkg/lock"
)

const (
	orderLockPrefix   = "fraud-review:lock:order:"
	lockRetryInterval = 25 * time.Millisecond
)

// releaseScript deletes the key only if it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// OrderLock is a lock.Locker shared by every replica of the service.
// A holder that dies keeps the lock for at most ttl.
type OrderLock struct {
	client *Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewOrderLock creates a distributed per-order lock
func NewOrderLock(client *Client, ttl time.Duration, logger *zap.Logger) *OrderLock {
	return &OrderLock{client: client, ttl: ttl, logger: logger}
}

// Acquire polls SET NX PX until it wins or ctx is done
func (l *OrderLock) Acquire(ctx context.Context, key string) (func(), error) {
	redisKey := orderLockPrefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(lockRetryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl)
		if err != nil {
			if ctx.Err() != nil {
				return nil, lock.ErrLockTimeout
			}
			return nil, fmt.Errorf("failed to acquire order lock: %w", err)
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, lock.ErrLockTimeout
		case <-ticker.C:
		}
	}

	return func() {
		// the request context may already be done, release regardless
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		if _, err := l.client.RunScript(releaseCtx, releaseScript, []string{redisKey}, token); err != nil {
			l.logger.Warn("failed to release order lock", zap.String("key", key), zap.Error(err))
		}
	}, nil
}
