package lock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-RentalService/internal/domain"
)

func TestLocalLocker_MutualExclusion(t *testing.T) {
	locker := NewLocalLocker(0)
	key := ResourceKey(1)

	var inside, maxInside int32
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			release, err := locker.Acquire(context.Background(), key)
			if !assert.NoError(t, err) {
				return
			}
			defer release()

			n := atomic.AddInt32(&inside, 1)
			for {
				current := atomic.LoadInt32(&maxInside)
				if n <= current || atomic.CompareAndSwapInt32(&maxInside, current, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
		}()
	}

	wg.Wait()
	assert.Equal(t, int32(1), maxInside)
	assert.Empty(t, locker.locks)
}

func TestLocalLocker_DifferentKeysDoNotBlock(t *testing.T) {
	locker := NewLocalLocker(50 * time.Millisecond)

	release1, err := locker.Acquire(context.Background(), ResourceKey(1))
	require.NoError(t, err)
	defer release1()

	release2, err := locker.Acquire(context.Background(), ResourceKey(2))
	require.NoError(t, err)
	release2()
}

func TestLocalLocker_WaitTimeout(t *testing.T) {
	locker := NewLocalLocker(20 * time.Millisecond)
	key := ResourceKey(1)

	release, err := locker.Acquire(context.Background(), key)
	require.NoError(t, err)
	defer release()

	_, err = locker.Acquire(context.Background(), key)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrResourceBusy))
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestLocalLocker_ContextCancelled(t *testing.T) {
	locker := NewLocalLocker(0)
	key := ResourceKey(1)

	release, err := locker.Acquire(context.Background(), key)
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err = locker.Acquire(ctx, key)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLocalLocker_ReleaseIsIdempotent(t *testing.T) {
	locker := NewLocalLocker(20 * time.Millisecond)
	key := ResourceKey(1)

	release, err := locker.Acquire(context.Background(), key)
	require.NoError(t, err)
	release()
	release()

	release, err = locker.Acquire(context.Background(), key)
	require.NoError(t, err)
	release()
}
