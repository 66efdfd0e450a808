package types

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the rotacl library.
//
// These errors provide type-safe error checking using errors.Is() and errors.As().
// All components should use these sentinel errors for known error conditions
// and wrap external errors with context using fmt.Errorf("%s: %w", msg, err).
//
// Error Naming Convention:
//   - Use descriptive names with Err prefix
//   - Group by component (Controller, Repository, Lock, ACL)
//   - Use consistent messages across similar error types

// Controller errors - Public API errors returned by Controller component.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrRotationSourceRequired is returned when the rotation source is nil.
	ErrRotationSourceRequired = errors.New("rotation source is required")

	// ErrAssignmentStoreRequired is returned when the assignment store is nil.
	ErrAssignmentStoreRequired = errors.New("assignment store is required")

	// ErrLockerRequired is returned when the cluster-wide locker is nil.
	ErrLockerRequired = errors.New("rotation locker is required")
)

// Repository errors - rotation allocation outcomes.
var (
	// ErrConfiguration classifies invalid declarations and topology invariant
	// violations. It is reported immediately and never retried.
	ErrConfiguration = errors.New("configuration error")

	// ErrRotationsExhausted is returned when no unassigned rotation remains for
	// a new endpoint. Nothing from the failing call is committed.
	ErrRotationsExhausted = errors.New("ran out of rotations, unable to assign rotation")

	// ErrUnknownRotation is returned when a rotation ID is not part of the pool.
	ErrUnknownRotation = errors.New("unknown rotation")

	// ErrInvalidAssignment is returned when the assignment table holds an entry
	// that cannot be attributed to an instance.
	ErrInvalidAssignment = errors.New("invalid assignment entry")
)

// Lock errors - cluster-wide rotation lock.
var (
	// ErrLockState is returned when an operation is attempted without a valid
	// lock token. It indicates a programming error and is never expected under
	// correct use.
	ErrLockState = errors.New("rotation lock not held")

	// ErrLockTimeout is returned when a bounded lock wait expires.
	ErrLockTimeout = errors.New("timed out waiting for rotation lock")

	// ErrLockLost is returned when a lease-based lock expired or was taken over
	// while held.
	ErrLockLost = errors.New("rotation lock lease lost")
)

// ACL errors - node trust set computation.
var (
	// ErrUnsupportedNodeType is returned for node types with no ACL rules.
	ErrUnsupportedNodeType = errors.New("unsupported node type")

	// ErrNodeNotFound is returned when a hostname is not part of the topology.
	ErrNodeNotFound = errors.New("node not found")
)

// Common errors - Shared errors used across multiple components.
var (
	// ErrConnectivity indicates a NATS/KV connectivity issue.
	// This is used to distinguish network failures from application errors.
	ErrConnectivity = errors.New("connectivity issue")

	// ErrNoKeysFound is returned when NATS KV returns no keys (expected condition).
	ErrNoKeysFound = errors.New("no keys found")
)

// ConfigurationError reports an invalid declaration or topology state.
//
// It always names the offending instance or node and matches ErrConfiguration
// (and Err, if set) with errors.Is.
type ConfigurationError struct {
	// Subject names the offending instance or node.
	Subject string

	// Reason describes what is wrong.
	Reason string

	// Err is an optional more specific cause.
	Err error
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e.Subject == "" {
		return e.Reason
	}

	return fmt.Sprintf("%s: %s", e.Subject, e.Reason)
}

// Unwrap exposes ErrConfiguration and the optional cause.
func (e *ConfigurationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrConfiguration}
	}

	return []error{ErrConfiguration, e.Err}
}

// IsNoKeysFoundError checks if an error indicates that no keys were found in NATS KV.
//
// This function handles NATS-specific "no keys found" errors which may come as:
//   - Direct error: "nats: no keys found"
//   - Wrapped error: "failed to list KV keys: nats: no keys found"
//
// Parameters:
//   - err: The error to check
//
// Returns:
//   - bool: true if the error indicates no keys were found, false otherwise
func IsNoKeysFoundError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNoKeysFound) {
		return true
	}

	return strings.Contains(err.Error(), "no keys found")
}
