package rotation

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/arloliu/rotacl/types"
)

// Lock is the scoped token proving the cluster-wide rotation lock is held.
//
// A Lock is only valid for the Repository that issued it and only until
// Release is called. Release must be called exactly once.
type Lock struct {
	repo       *Repository
	handle     types.LockHandle
	seq        uint64
	acquiredAt time.Time
	released   atomic.Bool
}

// Release releases the cluster-wide lock.
//
// Parameters:
//   - ctx: Context for the release operation
//
// Returns:
//   - error: ErrLockState on a nil or already released token, or the backend release error
func (l *Lock) Release(ctx context.Context) error {
	if l == nil || !l.released.CompareAndSwap(false, true) {
		return types.ErrLockState
	}

	held := time.Since(l.acquiredAt)
	l.repo.metrics.RecordLockHeld(held.Seconds())
	l.repo.logger.Debug("rotation lock released", "seq", l.seq, "held", held)

	if err := l.handle.Release(ctx); err != nil {
		return fmt.Errorf("failed to release rotation lock: %w", err)
	}

	return nil
}

// Verify confirms the cluster-wide lock is still held before a write.
//
// Callers that commit to the assignment table call Verify immediately before
// the write and abort on error. For lease-based lockers a successful Verify
// also renews the lease.
//
// Returns:
//   - error: ErrLockState for a released token, ErrLockLost if the lease was
//     lost, or the backend error
func (l *Lock) Verify(ctx context.Context) error {
	if l == nil || l.released.Load() {
		return types.ErrLockState
	}

	if err := l.handle.Verify(ctx); err != nil {
		l.repo.metrics.RecordRotationFailure("lock")
		return fmt.Errorf("rotation lock verification failed: %w", err)
	}

	return nil
}

// Held reports whether the token has not been released yet.
func (l *Lock) Held() bool {
	return l != nil && !l.released.Load()
}

// check validates that lock is a live token issued by r.
func (r *Repository) check(lock *Lock) error {
	if lock == nil {
		return fmt.Errorf("%w: nil lock", types.ErrLockState)
	}
	if lock.repo != r {
		return fmt.Errorf("%w: lock issued by another repository", types.ErrLockState)
	}
	if lock.released.Load() {
		return fmt.Errorf("%w: lock already released", types.ErrLockState)
	}

	return nil
}
