package rotacl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/rotacl/lock"
	"github.com/arloliu/rotacl/source"
	"github.com/arloliu/rotacl/store"
	rotacltest "github.com/arloliu/rotacl/testing"
	"github.com/arloliu/rotacl/topology"
)

var (
	app1Default = InstanceID{Tenant: "tenant1", Application: "app1", Instance: "default"}
	app2Default = InstanceID{Tenant: "tenant2", Application: "app2", Instance: "default"}
)

func endpointSpec(endpointIDs ...string) DeploymentSpec {
	endpoints := make([]Endpoint, len(endpointIDs))
	for i, id := range endpointIDs {
		endpoints[i] = Endpoint{
			EndpointID:  EndpointID(id),
			ContainerID: "foo",
			Regions:     []string{"us-east-3", "us-west-1"},
		}
	}

	return DeploymentSpec{Instances: []InstanceSpec{{
		Name:      "default",
		Zones:     []Zone{{Environment: EnvironmentProd, Region: "us-east-3"}, {Environment: EnvironmentProd, Region: "us-west-1"}},
		Endpoints: endpoints,
	}}}
}

func rotationIDsOf(assigned []AssignedRotation) []RotationID {
	ids := make([]RotationID, len(assigned))
	for i, a := range assigned {
		ids[i] = a.RotationID
	}

	return ids
}

// countingStore counts Store calls on top of an in-memory store.
type countingStore struct {
	*store.Memory
	stores atomic.Int32
}

func (s *countingStore) Store(ctx context.Context, id InstanceID, rotations []AssignedRotation) error {
	s.stores.Add(1)
	return s.Memory.Store(ctx, id, rotations)
}

func newTestController(t *testing.T, src RotationSource, st AssignmentStore, locker Locker, opts ...Option) *Controller {
	t.Helper()

	cfg := TestConfig()
	opts = append([]Option{WithLogger(rotacltest.NewTestLogger(t))}, opts...)
	ctrl, err := NewController(t.Context(), &cfg, src, st, locker, opts...)
	require.NoError(t, err)

	return ctrl
}

func TestNewController(t *testing.T) {
	ctx := t.Context()
	src := source.NewStatic(rotacltest.NumberedRotations(2))

	t.Run("required dependencies", func(t *testing.T) {
		cfg := TestConfig()

		_, err := NewController(ctx, nil, src, store.NewMemory(), lock.NewLocal())
		require.ErrorIs(t, err, ErrInvalidConfig)
		_, err = NewController(ctx, &cfg, src, nil, lock.NewLocal())
		require.ErrorIs(t, err, ErrAssignmentStoreRequired)
		_, err = NewController(ctx, &cfg, src, store.NewMemory(), nil)
		require.ErrorIs(t, err, ErrLockerRequired)
		_, err = NewController(ctx, &cfg, nil, store.NewMemory(), lock.NewLocal())
		require.ErrorIs(t, err, ErrRotationSourceRequired)
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := TestConfig()
		cfg.ACLWorkers = -1

		_, err := NewController(ctx, &cfg, src, store.NewMemory(), lock.NewLocal())
		require.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("zero config gets defaults", func(t *testing.T) {
		cfg := Config{}

		ctrl, err := NewController(ctx, &cfg, src, store.NewMemory(), lock.NewLocal())
		require.NoError(t, err)
		require.Equal(t, DefaultConfig(), cfg)
		require.Len(t, ctrl.Pool(), 2)
	})

	t.Run("rotations file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rotations.yaml")
		require.NoError(t, os.WriteFile(path, []byte("rotations:\n  rotation-id-02: fqdn-02.\n  rotation-id-01: fqdn-01.\n"), 0o600))

		cfg := TestConfig()
		cfg.RotationsFile = path
		ctrl, err := NewController(ctx, &cfg, nil, store.NewMemory(), lock.NewLocal())
		require.NoError(t, err)
		require.Equal(t, []Rotation{
			{ID: "rotation-id-01", DNSTarget: "fqdn-01."},
			{ID: "rotation-id-02", DNSTarget: "fqdn-02."},
		}, ctrl.Pool())

		cfg.RotationsFile = filepath.Join(t.TempDir(), "nope.yaml")
		_, err = NewController(ctx, &cfg, nil, store.NewMemory(), lock.NewLocal())
		require.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestController_AssignRotations(t *testing.T) {
	t.Run("lowest free rotation per endpoint in declaration order", func(t *testing.T) {
		src := source.NewStatic(rotacltest.Rotations("C", "A", "B"))
		st := &countingStore{Memory: store.NewMemory()}
		locker := lock.NewLocal()
		ctrl := newTestController(t, src, st, locker)

		assigned, err := ctrl.AssignRotations(t.Context(), endpointSpec("e1", "e2"), app1Default)
		require.NoError(t, err)
		require.Equal(t, []RotationID{"A", "B"}, rotationIDsOf(assigned))
		require.Equal(t, EndpointID("e1"), assigned[0].EndpointID)
		require.Equal(t, int32(1), st.stores.Load())
		require.False(t, locker.Locked())

		committed, err := ctrl.Instance(t.Context(), app1Default)
		require.NoError(t, err)
		require.Equal(t, assigned, committed.Rotations)

		// Unchanged assignments are not rewritten.
		again, err := ctrl.AssignRotations(t.Context(), endpointSpec("e1", "e2"), app1Default)
		require.NoError(t, err)
		require.Equal(t, assigned, again)
		require.Equal(t, int32(1), st.stores.Load())

		available, err := ctrl.AvailableRotations(t.Context())
		require.NoError(t, err)
		require.Equal(t, []Rotation{{ID: "C", DNSTarget: "C.global.example.com"}}, available)
	})

	t.Run("instances never share a rotation", func(t *testing.T) {
		ctrl := newTestController(t, source.NewStatic(rotacltest.NumberedRotations(3)), store.NewMemory(), lock.NewLocal())

		first, err := ctrl.AssignRotations(t.Context(), endpointSpec("e1"), app1Default)
		require.NoError(t, err)
		second, err := ctrl.AssignRotations(t.Context(), endpointSpec("e1", "e2"), app2Default)
		require.NoError(t, err)

		require.Equal(t, []RotationID{"rotation-id-01"}, rotationIDsOf(first))
		require.Equal(t, []RotationID{"rotation-id-02", "rotation-id-03"}, rotationIDsOf(second))
	})

	t.Run("exhaustion commits nothing and releases the lock", func(t *testing.T) {
		st := store.NewMemory()
		locker := lock.NewLocal()
		var reported []error
		var mu sync.Mutex
		hooks := &Hooks{OnError: func(_ context.Context, err error) error {
			mu.Lock()
			defer mu.Unlock()
			reported = append(reported, err)

			return nil
		}}
		ctrl := newTestController(t, source.NewStatic(rotacltest.NumberedRotations(2)), st, locker, WithHooks(hooks))

		_, err := ctrl.AssignRotations(t.Context(), endpointSpec("e1", "e2", "e3"), app1Default)
		require.ErrorIs(t, err, ErrRotationsExhausted)
		require.False(t, locker.Locked())
		require.Zero(t, st.Len())

		mu.Lock()
		defer mu.Unlock()
		require.Len(t, reported, 1)
		require.ErrorIs(t, reported[0], ErrRotationsExhausted)
	})

	t.Run("configuration error", func(t *testing.T) {
		ctrl := newTestController(t, source.NewStatic(rotacltest.NumberedRotations(2)), store.NewMemory(), lock.NewLocal())

		spec := endpointSpec("e1")
		spec.Instances[0].GlobalServiceID = "foo"
		_, err := ctrl.AssignRotations(t.Context(), spec, app1Default)

		var cfgErr *ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		require.ErrorIs(t, err, ErrConfiguration)
	})

	t.Run("hook receives committed assignments", func(t *testing.T) {
		var got []AssignedRotation
		hooks := &Hooks{OnRotationsAssigned: func(_ context.Context, id InstanceID, rotations []AssignedRotation) error {
			assert.Equal(t, app1Default, id)
			got = rotations

			return errors.New("hook failure is logged only")
		}}
		locker := lock.NewLocal()
		ctrl := newTestController(t, source.NewStatic(rotacltest.NumberedRotations(2)), store.NewMemory(), locker, WithHooks(hooks))

		assigned, err := ctrl.AssignRotations(t.Context(), endpointSpec("e1"), app1Default)
		require.NoError(t, err)
		require.Equal(t, assigned, got)
	})

	t.Run("lock timeout", func(t *testing.T) {
		locker := lock.NewLocal()
		cfg := TestConfig()
		cfg.Lock.Timeout = 50 * time.Millisecond
		ctrl, err := NewController(t.Context(), &cfg, source.NewStatic(rotacltest.NumberedRotations(2)), store.NewMemory(), locker)
		require.NoError(t, err)

		held, err := locker.Acquire(t.Context())
		require.NoError(t, err)
		defer func() { require.NoError(t, held.Release(context.Background())) }()

		_, err = ctrl.AssignRotations(t.Context(), endpointSpec("e1"), app1Default)
		require.ErrorIs(t, err, ErrLockTimeout)
	})

	t.Run("metrics", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		ctrl := newTestController(t, source.NewStatic(rotacltest.NumberedRotations(3)), store.NewMemory(), lock.NewLocal(),
			WithMetrics(NewPrometheusMetrics(reg)))

		_, err := ctrl.AssignRotations(t.Context(), endpointSpec("e1", "e2"), app1Default)
		require.NoError(t, err)
		_, err = ctrl.AvailableRotations(t.Context())
		require.NoError(t, err)

		count, err := testutil.GatherAndCount(reg, "rotacl_rotation_pool_size", "rotacl_rotation_available", "rotacl_lock_held_seconds")
		require.NoError(t, err)
		require.Equal(t, 3, count)
	})
}

func TestController_RemoveInstance(t *testing.T) {
	var removed []AssignedRotation
	hooks := &Hooks{OnInstanceRemoved: func(_ context.Context, _ InstanceID, released []AssignedRotation) error {
		removed = released
		return nil
	}}
	ctrl := newTestController(t, source.NewStatic(rotacltest.NumberedRotations(2)), store.NewMemory(), lock.NewLocal(), WithHooks(hooks))

	assigned, err := ctrl.AssignRotations(t.Context(), endpointSpec("e1", "e2"), app1Default)
	require.NoError(t, err)

	_, err = ctrl.AssignRotations(t.Context(), endpointSpec("e1"), app2Default)
	require.ErrorIs(t, err, ErrRotationsExhausted)

	released, err := ctrl.RemoveInstance(t.Context(), app1Default)
	require.NoError(t, err)
	require.Equal(t, assigned, released)
	require.Equal(t, assigned, removed)

	// Freed rotations go to the next caller, lowest first.
	next, err := ctrl.AssignRotations(t.Context(), endpointSpec("e1"), app2Default)
	require.NoError(t, err)
	require.Equal(t, []RotationID{"rotation-id-01"}, rotationIDsOf(next))

	removed = nil
	released, err = ctrl.RemoveInstance(t.Context(), app1Default)
	require.NoError(t, err)
	require.Empty(t, released)
	require.Nil(t, removed, "no hook for an instance without rotations")
}

func TestController_NATSBackend(t *testing.T) {
	_, nc := rotacltest.StartEmbeddedNATS(t)
	js, err := jetstream.New(nc)
	require.NoError(t, err)

	const instances = 8
	src := source.NewStatic(rotacltest.NumberedRotations(instances * 2))

	// Two controllers, as if in two processes, sharing the same buckets.
	controllers := make([]*Controller, 2)
	for i := range controllers {
		cfg := TestConfig()
		backend, err := OpenJetStreamBackend(t.Context(), js, &cfg, rotacltest.NewTestLogger(t))
		require.NoError(t, err)
		controllers[i] = newTestController(t, src, backend.Store, backend.Locker)
	}

	var wg sync.WaitGroup
	results := make([][]AssignedRotation, instances)
	errs := make([]error, instances)
	for i := range instances {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := InstanceID{Tenant: "tenant", Application: fmt.Sprintf("app%d", i), Instance: "default"}
			results[i], errs[i] = controllers[i%2].AssignRotations(t.Context(), endpointSpec("e1", "e2"), id)
		}()
	}
	wg.Wait()

	seen := make(map[RotationID]bool)
	for i := range instances {
		require.NoError(t, errs[i])
		require.Len(t, results[i], 2)
		for _, a := range results[i] {
			require.False(t, seen[a.RotationID], "rotation %s assigned twice", a.RotationID)
			seen[a.RotationID] = true
		}
	}

	available, err := controllers[0].AvailableRotations(t.Context())
	require.NoError(t, err)
	require.Empty(t, available)
}

// takeoverStore hands the rotation lock to another holder once the
// assignment table has been read, before anything is written.
type takeoverStore struct {
	AssignmentStore
	takeover func(ctx context.Context)
	once     sync.Once
}

func (s *takeoverStore) AssignedRotations(ctx context.Context) (map[InstanceID][]AssignedRotation, error) {
	assigned, err := s.AssignmentStore.AssignedRotations(ctx)
	s.once.Do(func() { s.takeover(ctx) })

	return assigned, err
}

func TestController_LockLostBeforeWrite(t *testing.T) {
	_, nc := rotacltest.StartEmbeddedNATS(t)
	js, err := jetstream.New(nc)
	require.NoError(t, err)

	cfg := TestConfig()
	backend, err := OpenJetStreamBackend(t.Context(), js, &cfg, rotacltest.NewTestLogger(t))
	require.NoError(t, err)
	lockKV, err := js.KeyValue(t.Context(), cfg.Lock.Bucket)
	require.NoError(t, err)

	var usurper LockHandle
	st := &takeoverStore{AssignmentStore: backend.Store, takeover: func(ctx context.Context) {
		require.NoError(t, lockKV.Purge(ctx, cfg.Lock.Key))
		other := lock.NewNATS(lockKV, lock.WithKey(cfg.Lock.Key), lock.WithTTL(cfg.Lock.TTL), lock.WithOwner("usurper"))
		h, err := other.Acquire(ctx)
		require.NoError(t, err)
		usurper = h
	}}

	var reported atomic.Int32
	hooks := &Hooks{OnError: func(_ context.Context, err error) error {
		assert.ErrorIs(t, err, ErrLockLost)
		reported.Add(1)

		return nil
	}}
	ctrl := newTestController(t, source.NewStatic(rotacltest.NumberedRotations(2)), st, backend.Locker, WithHooks(hooks))

	_, err = ctrl.AssignRotations(t.Context(), endpointSpec("e1"), app1Default)
	require.ErrorIs(t, err, ErrLockLost)
	require.Equal(t, int32(1), reported.Load())

	committed, err := backend.Store.AssignedRotations(t.Context())
	require.NoError(t, err)
	require.Empty(t, committed, "a call that lost the lock must not commit")

	require.NotNil(t, usurper)
	require.NoError(t, usurper.Verify(t.Context()))
	require.NoError(t, usurper.Release(t.Context()))
}

func TestController_NodeACLs(t *testing.T) {
	owner := ApplicationID("tenant1:app1:default")
	snapshot, err := topology.NewSnapshot([]Node{
		{Hostname: "host1", Type: NodeTypeHost, State: NodeStateActive},
		{Hostname: "cfg1", Type: NodeTypeConfig, State: NodeStateActive},
		{Hostname: "t1", Type: NodeTypeTenant, State: NodeStateActive, ParentHostname: "host1",
			Allocation: &Allocation{Owner: owner, ClusterID: "foo"}},
	}, nil)
	require.NoError(t, err)

	var reported atomic.Int32
	hooks := &Hooks{OnError: func(context.Context, error) error {
		reported.Add(1)
		return nil
	}}
	ctrl := newTestController(t, source.NewStatic(nil), store.NewMemory(), lock.NewLocal(), WithHooks(hooks))

	t.Run("single node", func(t *testing.T) {
		acl, err := ctrl.NodeACL(t.Context(), snapshot, "t1")
		require.NoError(t, err)
		require.Equal(t, []string{"cfg1", "host1", "t1"}, acl.TrustedHostnames())
		require.True(t, acl.TrustsPort(SSHPort))

		_, err = ctrl.NodeACL(t.Context(), snapshot, "missing")
		require.ErrorIs(t, err, ErrNodeNotFound)
	})

	t.Run("host types are rejected", func(t *testing.T) {
		_, err := ctrl.NodeACL(t.Context(), snapshot, "host1")
		require.ErrorIs(t, err, ErrUnsupportedNodeType)

		bad, err := topology.NewSnapshot([]Node{{Hostname: "x1", Type: NodeType("storage")}}, nil)
		require.NoError(t, err)
		_, err = ctrl.NodeACLs(t.Context(), bad)
		require.ErrorIs(t, err, ErrUnsupportedNodeType)
		require.Equal(t, int32(1), reported.Load())
	})

	t.Run("all nodes", func(t *testing.T) {
		acls, err := ctrl.NodeACLs(t.Context(), snapshot)
		require.NoError(t, err)
		require.Len(t, acls, 2, "hosts have no ACL")
		require.Equal(t, "cfg1", acls[0].Node.Hostname)
		require.Equal(t, "t1", acls[1].Node.Hostname)

		for _, got := range acls {
			want, err := ctrl.NodeACL(t.Context(), snapshot, got.Node.Hostname)
			require.NoError(t, err)
			require.Equal(t, want, got)
		}
		require.Equal(t, []string{"cfg1", "host1", "t1"}, acls[1].TrustedHostnames())
	})
}
