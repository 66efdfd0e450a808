package types

import "context"

// Hooks defines callbacks for Controller events.
//
// All hooks are optional. Hooks run after the corresponding change has been
// committed and the rotation lock released, so they never extend the lock scope.
//
// Hook execution behavior:
//   - Hook errors are logged but don't fail the operation that triggered them
//   - Hooks should complete quickly and respect context cancellation
//   - Hooks should be idempotent (a retried operation fires them again)
//
// Example:
//
//	hooks := &rotacl.Hooks{
//	    OnRotationsAssigned: func(ctx context.Context, id rotacl.InstanceID, rotations []rotacl.AssignedRotation) error {
//	        return dns.Sync(ctx, id, rotations)
//	    },
//	}
type Hooks struct {
	// OnRotationsAssigned is called after an instance's assignments were committed.
	OnRotationsAssigned func(ctx context.Context, id InstanceID, rotations []AssignedRotation) error

	// OnInstanceRemoved is called after an instance's assignments were dropped.
	OnInstanceRemoved func(ctx context.Context, id InstanceID, released []AssignedRotation) error

	// OnError is called when an operation fails.
	OnError func(ctx context.Context, err error) error
}
