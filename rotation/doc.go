// Package rotation assigns global rotations to application endpoints.
//
// A Repository owns the immutable rotation pool and hands out rotations under
// a cluster-wide lock. Every read-modify-write of the assignment table follows
// the same protocol:
//
//	lock, err := repo.Lock(ctx)         // blocks until the cluster-wide lock is held
//	defer lock.Release(ctx)             // exactly once, on every exit path
//	instance, _ := store.Instance(ctx, id)
//	assigned, err := repo.GetOrAssignRotations(ctx, spec, instance, lock)
//	store.Store(ctx, id, assigned)      // persist while the lock is still held
//
// Repository.WithLock wraps the acquire/release pair for callers that prefer a
// scoped function.
//
// Allocation is deterministic: available rotations are handed out in ascending
// RotationID order and new endpoints are served in declaration order, so a
// retried call produces the same result.
package rotation
