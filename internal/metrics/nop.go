package metrics

import "github.com/arloliu/rotacl/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Useful for testing or when external
// metrics collection is used.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
//
// Returns:
//   - *NopMetrics: A new no-op metrics collector instance
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// LockMetrics implementation

// RecordLockWait discards the lock wait metric.
func (n *NopMetrics) RecordLockWait(_ /* duration */ float64, _ /* acquired */ bool) {
	// No-op
}

// RecordLockHeld discards the lock hold metric.
func (n *NopMetrics) RecordLockHeld(_ /* duration */ float64) {
	// No-op
}

// RotationMetrics implementation

// RecordRotationAssignment discards the assignment metric.
func (n *NopMetrics) RecordRotationAssignment(_ /* assigned */, _ /* reused */ int) {
	// No-op
}

// RecordRotationFailure discards the failure metric.
func (n *NopMetrics) RecordRotationFailure(_ /* reason */ string) {
	// No-op
}

// RecordAvailableRotations discards the available rotations gauge.
func (n *NopMetrics) RecordAvailableRotations(_ /* count */ int) {
	// No-op
}

// RecordPoolSize discards the pool size gauge.
func (n *NopMetrics) RecordPoolSize(_ /* count */ int) {
	// No-op
}

// ACLMetrics implementation

// RecordACLComputation discards the ACL computation metric.
func (n *NopMetrics) RecordACLComputation(_ /* nodeType */ types.NodeType, _ /* duration */ float64, _ /* success */ bool) {
	// No-op
}

// RecordACLBatch discards the ACL batch metric.
func (n *NopMetrics) RecordACLBatch(_ /* nodes */ int, _ /* duration */ float64) {
	// No-op
}
