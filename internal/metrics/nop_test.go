package metrics

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/rotacl/types"
)

func TestNewNop(t *testing.T) {
	metrics := NewNop()

	require.NotNil(t, metrics)
	require.IsType(t, &NopMetrics{}, metrics)
}

func TestNopMetrics_Record(t *testing.T) {
	metrics := NewNop()

	// Should not panic with various inputs
	require.NotPanics(t, func() {
		metrics.RecordLockWait(0.5, true)
		metrics.RecordLockWait(-1, false)
		metrics.RecordLockHeld(0)
		metrics.RecordRotationAssignment(3, 1)
		metrics.RecordRotationAssignment(-1, -1)
		metrics.RecordRotationFailure("exhausted")
		metrics.RecordAvailableRotations(0)
		metrics.RecordPoolSize(12)
		metrics.RecordACLComputation(types.NodeTypeTenant, 0.001, true)
		metrics.RecordACLComputation("", 0, false)
		metrics.RecordACLBatch(100, 0.2)
	})
}

func BenchmarkNopMetrics_RecordACLComputation(b *testing.B) {
	metrics := NewNop()
	for b.Loop() {
		metrics.RecordACLComputation(types.NodeTypeTenant, 0.001, true)
	}
}
