package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arloliu/rotacl/types"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
//
// Collectors are created and registered lazily on first use, so constructing a
// collector that is never used leaves the registry untouched.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	lockWait          *prometheus.HistogramVec
	lockHeld          prometheus.Histogram
	rotationsAssigned *prometheus.CounterVec
	rotationFailures  *prometheus.CounterVec
	rotationsFree     prometheus.Gauge
	poolSize          prometheus.Gauge
	aclDuration       *prometheus.HistogramVec
	aclFailures       *prometheus.CounterVec
	aclBatchNodes     prometheus.Gauge
	aclBatchDuration  prometheus.Histogram
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer interface (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "rotacl" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "rotacl"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.lockWait = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "lock",
			Name:      "wait_seconds",
			Help:      "Time spent waiting for the cluster-wide rotation lock.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10), // 1ms .. ~4.4m
		}, []string{"result"})

		p.lockHeld = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "lock",
			Name:      "held_seconds",
			Help:      "Time the cluster-wide rotation lock was held.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		})

		p.rotationsAssigned = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "rotation",
			Name:      "endpoints_total",
			Help:      "Endpoints served by rotation assignment, by kind (new, reused).",
		}, []string{"kind"})

		p.rotationFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "rotation",
			Name:      "failures_total",
			Help:      "Failed rotation assignments by reason (configuration, exhausted, lock, store).",
		}, []string{"reason"})

		p.rotationsFree = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "rotation",
			Name:      "available",
			Help:      "Rotations not assigned to any endpoint at the last check.",
		})

		p.poolSize = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "rotation",
			Name:      "pool_size",
			Help:      "Configured rotations.",
		})

		p.aclDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "acl",
			Name:      "computation_seconds",
			Help:      "Time to compute one node ACL, by node type.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8), // 10µs .. ~160ms
		}, []string{"node_type"})

		p.aclFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "acl",
			Name:      "failures_total",
			Help:      "Failed node ACL computations, by node type.",
		}, []string{"node_type"})

		p.aclBatchNodes = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "acl",
			Name:      "batch_nodes",
			Help:      "Nodes covered by the last full-zone ACL refresh.",
		})

		p.aclBatchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "acl",
			Name:      "batch_seconds",
			Help:      "Duration of full-zone ACL refreshes.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		})

		p.reg.MustRegister(p.lockWait)
		p.reg.MustRegister(p.lockHeld)
		p.reg.MustRegister(p.rotationsAssigned)
		p.reg.MustRegister(p.rotationFailures)
		p.reg.MustRegister(p.rotationsFree)
		p.reg.MustRegister(p.poolSize)
		p.reg.MustRegister(p.aclDuration)
		p.reg.MustRegister(p.aclFailures)
		p.reg.MustRegister(p.aclBatchNodes)
		p.reg.MustRegister(p.aclBatchDuration)
	})
}

// LockMetrics implementation

// RecordLockWait observes the lock wait time, labeled by outcome.
func (p *PrometheusCollector) RecordLockWait(duration float64, acquired bool) {
	p.ensureRegistered()
	result := "acquired"
	if !acquired {
		result = "failed"
	}
	p.lockWait.WithLabelValues(result).Observe(duration)
}

// RecordLockHeld observes the lock hold time.
func (p *PrometheusCollector) RecordLockHeld(duration float64) {
	p.ensureRegistered()
	p.lockHeld.Observe(duration)
}

// RotationMetrics implementation

// RecordRotationAssignment counts new and reused endpoint assignments.
func (p *PrometheusCollector) RecordRotationAssignment(assigned, reused int) {
	p.ensureRegistered()
	if assigned > 0 {
		p.rotationsAssigned.WithLabelValues("new").Add(float64(assigned))
	}
	if reused > 0 {
		p.rotationsAssigned.WithLabelValues("reused").Add(float64(reused))
	}
}

// RecordRotationFailure counts a failed assignment.
func (p *PrometheusCollector) RecordRotationFailure(reason string) {
	p.ensureRegistered()
	p.rotationFailures.WithLabelValues(reason).Inc()
}

// RecordAvailableRotations sets the available rotations gauge.
func (p *PrometheusCollector) RecordAvailableRotations(count int) {
	p.ensureRegistered()
	p.rotationsFree.Set(float64(count))
}

// RecordPoolSize sets the pool size gauge.
func (p *PrometheusCollector) RecordPoolSize(count int) {
	p.ensureRegistered()
	p.poolSize.Set(float64(count))
}

// ACLMetrics implementation

// RecordACLComputation observes one ACL computation.
func (p *PrometheusCollector) RecordACLComputation(nodeType types.NodeType, duration float64, success bool) {
	p.ensureRegistered()
	p.aclDuration.WithLabelValues(string(nodeType)).Observe(duration)
	if !success {
		p.aclFailures.WithLabelValues(string(nodeType)).Inc()
	}
}

// RecordACLBatch records a full-zone ACL refresh.
func (p *PrometheusCollector) RecordACLBatch(nodes int, duration float64) {
	p.ensureRegistered()
	p.aclBatchNodes.Set(float64(nodes))
	p.aclBatchDuration.Observe(duration)
}
