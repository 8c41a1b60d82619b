package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedLocker_SerializesSameKey(t *testing.T) {
	l := NewKeyedLocker()
	var active, maxActive int32
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Acquire(context.Background(), "R123")
			if err != nil {
				t.Error(err)
				return
			}
			defer release()

			n := atomic.AddInt32(&active, 1)
			for {
				m := atomic.LoadInt32(&maxActive)
				if n <= m || atomic.CompareAndSwapInt32(&maxActive, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&active, -1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxActive)
	assert.Equal(t, 0, l.Len())
}

func TestKeyedLocker_IndependentKeys(t *testing.T) {
	l := NewKeyedLocker()

	releaseA, err := l.Acquire(context.Background(), "A")
	require.NoError(t, err)
	defer releaseA()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	releaseB, err := l.Acquire(ctx, "B")
	require.NoError(t, err)
	releaseB()
}

func TestKeyedLocker_TimesOut(t *testing.T) {
	l := NewKeyedLocker()

	release, err := l.Acquire(context.Background(), "R1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Acquire(ctx, "R1")
	assert.ErrorIs(t, err, ErrLockTimeout)

	release()
	release() // second call is a no-op
	assert.Equal(t, 0, l.Len())
}

func TestKeyedLocker_AsLocker(t *testing.T) {
	var l Locker = NewKeyedLocker()

	release, err := l.Acquire(context.Background(), "R42")
	require.NoError(t, err)
	require.NotNil(t, release)
	release()
}
