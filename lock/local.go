package lock

import (
	"context"
	"sync/atomic"

	"github.com/arloliu/rotacl/types"
)

// Local is an in-process types.Locker.
//
// Waiters are served in no particular order. Acquire honors context
// cancellation while waiting.
type Local struct {
	sem chan struct{}
}

// Compile-time assertion that Local implements Locker.
var _ types.Locker = (*Local)(nil)

// NewLocal creates an unlocked in-process lock.
func NewLocal() *Local {
	return &Local{sem: make(chan struct{}, 1)}
}

// Acquire blocks until the lock is free or ctx is done.
//
// Parameters:
//   - ctx: Context bounding the wait
//
// Returns:
//   - types.LockHandle: Handle to release the lock
//   - error: ctx.Err() if the wait was abandoned
func (l *Local) Acquire(ctx context.Context) (types.LockHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	select {
	case l.sem <- struct{}{}:
		return &localHandle{lock: l}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Locked reports whether the lock is currently held.
func (l *Local) Locked() bool {
	return len(l.sem) == 1
}

type localHandle struct {
	lock     *Local
	released atomic.Bool
}

func (h *localHandle) Verify(_ context.Context) error {
	if h.released.Load() {
		return types.ErrLockState
	}

	return nil
}

func (h *localHandle) Release(_ context.Context) error {
	if !h.released.CompareAndSwap(false, true) {
		return types.ErrLockState
	}
	<-h.lock.sem

	return nil
}
