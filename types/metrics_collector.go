package types

// MetricsCollector defines methods for recording operational metrics.
//
// Implementations should be non-blocking and handle failures gracefully.
// Methods may be called concurrently and must be thread-safe.
//
// This interface composes smaller, domain-focused interfaces for better modularity.
type MetricsCollector interface {
	LockMetrics
	RotationMetrics
	ACLMetrics
}

// LockMetrics defines metrics for the cluster-wide rotation lock.
type LockMetrics interface {
	// RecordLockWait records how long a caller waited for the rotation lock.
	//
	// Parameters:
	//   - duration: Time waited in seconds
	//   - acquired: true if the lock was acquired, false on timeout or error
	RecordLockWait(duration float64, acquired bool)

	// RecordLockHeld records how long the rotation lock was held.
	//
	// Parameters:
	//   - duration: Time held in seconds
	RecordLockHeld(duration float64)
}

// RotationMetrics defines metrics for rotation allocation.
type RotationMetrics interface {
	// RecordRotationAssignment records the outcome of one GetOrAssignRotations call.
	//
	// Parameters:
	//   - assigned: Number of endpoints bound to a new rotation
	//   - reused: Number of endpoints that kept their existing rotation
	RecordRotationAssignment(assigned, reused int)

	// RecordRotationFailure records a failed allocation.
	//
	// Parameters:
	//   - reason: Failure class ("configuration", "exhausted", "lock", "store")
	RecordRotationFailure(reason string)

	// RecordAvailableRotations sets the number of unassigned rotations (gauge metric).
	RecordAvailableRotations(count int)

	// RecordPoolSize sets the configured rotation pool size (gauge metric).
	RecordPoolSize(count int)
}

// ACLMetrics defines metrics for node trust set computation.
type ACLMetrics interface {
	// RecordACLComputation records one node ACL computation.
	//
	// Parameters:
	//   - nodeType: Type of the node the ACL was computed for
	//   - duration: Time taken in seconds
	//   - success: false if the computation failed
	RecordACLComputation(nodeType NodeType, duration float64, success bool)

	// RecordACLBatch records a full-zone ACL refresh.
	//
	// Parameters:
	//   - nodes: Number of nodes computed
	//   - duration: Time taken in seconds
	RecordACLBatch(nodes int, duration float64)
}
