package rotacl

import "github.com/arloliu/rotacl/types"

// Sentinel errors returned by the Controller and its components.
//
// They are the same values as in the types package, so errors.Is works
// regardless of which package a caller imports.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = types.ErrInvalidConfig

	// ErrRotationSourceRequired is returned when the rotation source is nil.
	ErrRotationSourceRequired = types.ErrRotationSourceRequired

	// ErrAssignmentStoreRequired is returned when the assignment store is nil.
	ErrAssignmentStoreRequired = types.ErrAssignmentStoreRequired

	// ErrLockerRequired is returned when the rotation locker is nil.
	ErrLockerRequired = types.ErrLockerRequired

	// ErrConfiguration classifies invalid declarations and topology violations.
	// Match the details with errors.As and *ConfigurationError.
	ErrConfiguration = types.ErrConfiguration

	// ErrRotationsExhausted is returned when the pool has no rotation left for a new endpoint.
	ErrRotationsExhausted = types.ErrRotationsExhausted

	// ErrInvalidAssignment is returned when a stored assignment cannot be attributed to an instance.
	ErrInvalidAssignment = types.ErrInvalidAssignment

	// ErrLockState is returned for an invalid or released lock token.
	ErrLockState = types.ErrLockState

	// ErrLockTimeout is returned when Config.Lock.Timeout expires.
	ErrLockTimeout = types.ErrLockTimeout

	// ErrLockLost is returned when the lock lease was lost while held.
	ErrLockLost = types.ErrLockLost

	// ErrUnsupportedNodeType is returned for node types with no ACL rules.
	ErrUnsupportedNodeType = types.ErrUnsupportedNodeType

	// ErrNodeNotFound is returned when a hostname is not part of the snapshot.
	ErrNodeNotFound = types.ErrNodeNotFound

	// ErrConnectivity indicates a NATS connectivity issue.
	ErrConnectivity = types.ErrConnectivity
)
