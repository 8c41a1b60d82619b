package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"order-fraud-review/internal/pkg/lock"
)

func newTestLock(t *testing.T, ttl time.Duration) (*OrderLock, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewOrderLock(NewClientFromRedis(rdb), ttl, zap.NewNop()), mr
}

func TestOrderLock_AcquireAndRelease(t *testing.T) {
	l, mr := newTestLock(t, 30*time.Second)

	release, err := l.Acquire(context.Background(), "R123")
	require.NoError(t, err)
	assert.True(t, mr.Exists(orderLockPrefix+"R123"))

	release()
	assert.False(t, mr.Exists(orderLockPrefix+"R123"))
}

func TestOrderLock_ContendedTimesOut(t *testing.T) {
	l, _ := newTestLock(t, 30*time.Second)

	release, err := l.Acquire(context.Background(), "R123")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = l.Acquire(ctx, "R123")
	assert.ErrorIs(t, err, lock.ErrLockTimeout)
}

func TestOrderLock_WaiterGetsLockAfterRelease(t *testing.T) {
	l, _ := newTestLock(t, 30*time.Second)

	release, err := l.Acquire(context.Background(), "R123")
	require.NoError(t, err)

	go func() {
		time.Sleep(50 * time.Millisecond)
		release()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	second, err := l.Acquire(ctx, "R123")
	require.NoError(t, err)
	second()
}

func TestOrderLock_StaleReleaseKeepsNewOwner(t *testing.T) {
	l, mr := newTestLock(t, time.Second)

	staleRelease, err := l.Acquire(context.Background(), "R123")
	require.NoError(t, err)

	// first holder's lease runs out and someone else takes the lock
	mr.FastForward(2 * time.Second)
	release, err := l.Acquire(context.Background(), "R123")
	require.NoError(t, err)
	defer release()

	staleRelease()
	assert.True(t, mr.Exists(orderLockPrefix+"R123"))
}

func TestOrderLock_AsLocker(t *testing.T) {
	ol, mr := newTestLock(t, time.Second)
	var l lock.Locker = ol

	release, err := l.Acquire(context.Background(), "R42")
	require.NoError(t, err)
	assert.True(t, mr.Exists("fraud-review:lock:order:R42"))
	release()
	assert.False(t, mr.Exists("fraud-review:lock:order:R42"))
}
