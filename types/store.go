package types

import "context"

// AssignmentReader reads the committed rotation assignment table.
//
// The rotation repository reads through this interface while the rotation
// lock is held; it never caches results across calls.
type AssignmentReader interface {
	// Instance returns the committed state of an instance.
	// An unknown instance is returned with no rotations, not as an error.
	Instance(ctx context.Context, id InstanceID) (Instance, error)

	// AssignedRotations returns every committed assignment of every instance.
	AssignedRotations(ctx context.Context) (map[InstanceID][]AssignedRotation, error)
}

// AssignmentStore persists the rotation assignment table.
//
// Writers must hold the rotation lock.
type AssignmentStore interface {
	AssignmentReader

	// Store replaces the committed assignments of an instance.
	Store(ctx context.Context, id InstanceID, rotations []AssignedRotation) error

	// Remove drops the instance and frees its rotations.
	Remove(ctx context.Context, id InstanceID) error
}
