package types

import "context"

// Locker is the cluster-wide mutual-exclusion primitive guarding the rotation
// assignment table.
//
// Implementations can use:
//   - NATS KV (built-in, lock.NewNATS)
//   - In-process mutex (built-in, lock.NewLocal) for tests and single-process control planes
//   - External lock managers (etcd, ZooKeeper)
type Locker interface {
	// Acquire blocks until the lock is held or ctx is done.
	//
	// Parameters:
	//   - ctx: Context for cancellation; Acquire waits forever on a context without deadline
	//
	// Returns:
	//   - LockHandle: Handle that must be released exactly once
	//   - error: Context error or backend failure
	Acquire(ctx context.Context) (LockHandle, error)
}

// LockHandle is a held lock returned by Locker.Acquire.
type LockHandle interface {
	// Verify confirms the lock is still held by this handle.
	//
	// Lease-based implementations check ownership against the backend and
	// refresh the lease, so a nil result leaves a full lease for the write
	// that follows.
	//
	// Returns:
	//   - error: ErrLockState after Release, ErrLockLost if the lease expired
	//     or was taken over, or a backend failure
	Verify(ctx context.Context) error

	// Release releases the lock. Releasing twice returns ErrLockState.
	Release(ctx context.Context) error
}
