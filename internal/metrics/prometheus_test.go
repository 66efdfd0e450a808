package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/rotacl/types"
)

func TestPrometheusCollector(t *testing.T) {
	t.Run("registers lazily", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		_ = NewPrometheus(reg, "test")

		families, err := reg.Gather()
		require.NoError(t, err)
		require.Empty(t, families)
	})

	t.Run("records rotation metrics", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		p := NewPrometheus(reg, "test")

		p.RecordPoolSize(3)
		p.RecordAvailableRotations(1)
		p.RecordRotationAssignment(2, 0)
		p.RecordRotationAssignment(0, 2)
		p.RecordRotationFailure("exhausted")

		require.InDelta(t, 3, testutil.ToFloat64(p.poolSize), 0)
		require.InDelta(t, 1, testutil.ToFloat64(p.rotationsFree), 0)
		require.InDelta(t, 2, testutil.ToFloat64(p.rotationsAssigned.WithLabelValues("new")), 0)
		require.InDelta(t, 2, testutil.ToFloat64(p.rotationsAssigned.WithLabelValues("reused")), 0)
		require.InDelta(t, 1, testutil.ToFloat64(p.rotationFailures.WithLabelValues("exhausted")), 0)
	})

	t.Run("records lock and acl metrics", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		p := NewPrometheus(reg, "")

		p.RecordLockWait(0.01, true)
		p.RecordLockWait(1, false)
		p.RecordLockHeld(0.02)
		p.RecordACLComputation(types.NodeTypeConfig, 0.0001, true)
		p.RecordACLComputation(types.NodeTypeHost, 0.0001, false)
		p.RecordACLBatch(5, 0.01)

		require.Equal(t, 2, testutil.CollectAndCount(p.lockWait))
		require.InDelta(t, 1, testutil.ToFloat64(p.aclFailures.WithLabelValues("host")), 0)
		require.InDelta(t, 5, testutil.ToFloat64(p.aclBatchNodes), 0)

		families, err := reg.Gather()
		require.NoError(t, err)
		names := make([]string, 0, len(families))
		for _, f := range families {
			names = append(names, f.GetName())
		}
		require.Contains(t, names, "rotacl_lock_wait_seconds")
		require.Contains(t, names, "rotacl_acl_computation_seconds")
	})
}
