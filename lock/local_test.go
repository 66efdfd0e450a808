package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/rotacl/types"
)

func TestLocal_AcquireRelease(t *testing.T) {
	l := NewLocal()
	ctx := context.Background()

	h, err := l.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, l.Locked())

	require.NoError(t, h.Verify(ctx))

	require.NoError(t, h.Release(ctx))
	require.False(t, l.Locked())

	require.ErrorIs(t, h.Verify(ctx), types.ErrLockState)
	require.ErrorIs(t, h.Release(ctx), types.ErrLockState)
	require.False(t, l.Locked(), "double release must not unlock twice")
}

func TestLocal_ContextCancellation(t *testing.T) {
	l := NewLocal()
	ctx := context.Background()

	h, err := l.Acquire(ctx)
	require.NoError(t, err)
	defer func() { _ = h.Release(ctx) }()

	waitCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()

	_, err = l.Acquire(waitCtx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	canceled, cancelNow := context.WithCancel(ctx)
	cancelNow()
	_, err = l.Acquire(canceled)
	require.ErrorIs(t, err, context.Canceled)
}

func TestLocal_MutualExclusion(t *testing.T) {
	l := NewLocal()
	ctx := context.Background()

	var inside, maxInside atomic.Int32
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1) //nolint:revive // Standard pattern for concurrent operations
		go func() {
			defer wg.Done()

			h, err := l.Acquire(ctx)
			if err != nil {
				t.Errorf("acquire failed: %v", err)
				return
			}
			n := inside.Add(1)
			for {
				m := maxInside.Load()
				if n <= m || maxInside.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			inside.Add(-1)
			_ = h.Release(ctx)
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), maxInside.Load())
}
