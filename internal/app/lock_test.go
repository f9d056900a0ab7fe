package app

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rummikub/internal/domain"
	"rummikub/internal/ports"
)

func TestWithGameLockMutualExclusion(t *testing.T) {
	svc := newTestService(newMemStore())
	ctx := context.Background()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := svc.withGameLock(ctx, "g1", func(ctx context.Context) error {
				now := atomic.AddInt32(&inside, 1)
				for {
					seen := atomic.LoadInt32(&maxInside)
					if now <= seen || atomic.CompareAndSwapInt32(&maxInside, seen, now) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&inside, -1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&maxInside), "critical sections overlapped")
}

func TestWithGameLockReleasesAfterUse(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	err := svc.withGameLock(ctx, "g1", func(ctx context.Context) error { return nil })
	require.NoError(t, err)

	_, err = store.Get(ctx, lockKey("g1"))
	assert.ErrorIs(t, err, ports.ErrNotFound, "lock key must be deleted after release")
}

func TestWithGameLockAttemptsAreBounded(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, nil, nil, Options{
		LockTTL:           time.Minute,
		LockRetryInterval: time.Millisecond,
		LockMaxAttempts:   3,
	})
	ctx := context.Background()

	// Another holder keeps the lock for longer than all attempts combined.
	ok, err := store.SetIfAbsent(ctx, lockKey("g1"), "other-holder", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	err = svc.withGameLock(ctx, "g1", func(ctx context.Context) error {
		t.Fatal("critical section ran without the lock")
		return nil
	})
	assert.True(t, domain.IsKind(err, domain.ErrLockNotAcquired), "error = %v", err)
}

func TestWithGameLockExpiryUnblocksWaiters(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	// A crashed holder left a lock behind; its expiry must let the next
	// caller in without manual cleanup.
	ok, err := store.SetIfAbsent(ctx, lockKey("g1"), "crashed-holder", 10*time.Millisecond)
	require.NoError(t, err)
	require.True(t, ok)

	ran := false
	err = svc.withGameLock(ctx, "g1", func(ctx context.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestWithGameLockHonorsContextCancellation(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	ok, err := store.SetIfAbsent(context.Background(), lockKey("g1"), "other-holder", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = svc.withGameLock(ctx, "g1", func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithGameLockPropagatesCallbackError(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	wantErr := domain.NewError(domain.ErrInvalidMove, "boom")
	err := svc.withGameLock(ctx, "g1", func(ctx context.Context) error { return wantErr })
	assert.ErrorIs(t, err, wantErr)

	// The lock is released even when the callback fails.
	_, err = store.Get(ctx, lockKey("g1"))
	assert.ErrorIs(t, err, ports.ErrNotFound)
}
