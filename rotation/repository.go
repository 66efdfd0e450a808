package rotation

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/arloliu/rotacl/internal/logging"
	"github.com/arloliu/rotacl/internal/metrics"
	"github.com/arloliu/rotacl/types"
)

// Repository offers global rotations to application instances.
//
// The rotation pool is loaded once at construction and never changes. The
// set of assigned rotations is read fresh from the AssignmentReader under the
// rotation lock on every call.
//
// Thread Safety:
//   - All methods are safe for concurrent use
//   - Mutual exclusion between allocating callers is provided by the Locker
type Repository struct {
	pool   *Pool
	reader types.AssignmentReader
	locker types.Locker

	lockTimeout time.Duration
	logger      types.Logger
	metrics     types.MetricsCollector

	lockSeq atomic.Uint64
}

// Option configures a Repository.
type Option func(*Repository)

// WithLogger sets the repository logger.
func WithLogger(logger types.Logger) Option {
	return func(r *Repository) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics sets the repository metrics collector.
func WithMetrics(m types.MetricsCollector) Option {
	return func(r *Repository) {
		if m != nil {
			r.metrics = m
		}
	}
}

// WithLockTimeout bounds how long Lock waits for the rotation lock.
//
// A zero timeout (default) waits until the lock is acquired or the caller's
// context is done. When the bound expires Lock returns ErrLockTimeout.
func WithLockTimeout(timeout time.Duration) Option {
	return func(r *Repository) {
		r.lockTimeout = timeout
	}
}

// NewRepository creates a repository, loading the rotation pool from src.
//
// Parameters:
//   - ctx: Context for loading the pool
//   - src: Static rotation catalog
//   - reader: Committed assignment table
//   - locker: Cluster-wide mutual exclusion primitive
//   - opts: Optional logger, metrics and lock timeout
//
// Returns:
//   - *Repository: Initialized repository
//   - error: Pool load or validation error
func NewRepository(
	ctx context.Context,
	src types.RotationSource,
	reader types.AssignmentReader,
	locker types.Locker,
	opts ...Option,
) (*Repository, error) {
	if src == nil {
		return nil, types.ErrRotationSourceRequired
	}
	if reader == nil {
		return nil, types.ErrAssignmentStoreRequired
	}
	if locker == nil {
		return nil, types.ErrLockerRequired
	}

	r := &Repository{
		reader:  reader,
		locker:  locker,
		logger:  logging.NewNop(),
		metrics: metrics.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}

	rotations, err := src.ListRotations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load rotations: %w", err)
	}

	r.pool, err = NewPool(rotations)
	if err != nil {
		return nil, fmt.Errorf("invalid rotation pool: %w", err)
	}

	r.metrics.RecordPoolSize(r.pool.Len())
	r.logger.Info("rotation pool loaded", "rotations", r.pool.Len())

	return r, nil
}

// Lock acquires the cluster-wide rotation lock.
//
// Blocks until the lock is held, ctx is done, or the configured lock timeout
// expires. The returned token must be released exactly once.
//
// Returns:
//   - *Lock: Token required by AvailableRotations and GetOrAssignRotations
//   - error: ErrLockTimeout on bounded-wait expiry, otherwise the wrapped acquisition error
func (r *Repository) Lock(ctx context.Context) (*Lock, error) {
	acquireCtx := ctx
	if r.lockTimeout > 0 {
		var cancel context.CancelFunc
		acquireCtx, cancel = context.WithTimeout(ctx, r.lockTimeout)
		defer cancel()
	}

	start := time.Now()
	handle, err := r.locker.Acquire(acquireCtx)
	waited := time.Since(start)
	if err != nil {
		r.metrics.RecordLockWait(waited.Seconds(), false)
		r.metrics.RecordRotationFailure("lock")

		// Only our own bound maps to ErrLockTimeout; a caller deadline is the caller's error.
		if r.lockTimeout > 0 && ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s: %w", types.ErrLockTimeout, r.lockTimeout, err)
		}

		return nil, fmt.Errorf("failed to acquire rotation lock: %w", err)
	}
	r.metrics.RecordLockWait(waited.Seconds(), true)

	lock := &Lock{
		repo:       r,
		handle:     handle,
		seq:        r.lockSeq.Add(1),
		acquiredAt: time.Now(),
	}
	r.logger.Debug("rotation lock acquired", "seq", lock.seq, "waited", waited)

	return lock, nil
}

// WithLock runs fn while holding the rotation lock.
//
// The lock is released on every exit path, including errors and panics in fn.
// A release failure is reported only when fn itself succeeded.
func (r *Repository) WithLock(ctx context.Context, fn func(lock *Lock) error) (err error) {
	lock, err := r.Lock(ctx)
	if err != nil {
		return err
	}
	defer func() {
		releaseErr := lock.Release(context.WithoutCancel(ctx))
		if releaseErr != nil {
			if err == nil {
				err = releaseErr
			} else {
				r.logger.Warn("failed to release rotation lock after error", "error", releaseErr)
			}
		}
	}()

	return fn(lock)
}

// Rotation returns the pool rotation with the given ID.
func (r *Repository) Rotation(id types.RotationID) (types.Rotation, bool) {
	return r.pool.Get(id)
}

// Pool returns every configured rotation in ascending ID order.
func (r *Repository) Pool() []types.Rotation {
	return r.pool.Rotations()
}

// AvailableRotations returns the rotations not assigned to any instance.
//
// The assignment table is read fresh on every call. The result is ordered
// ascending by RotationID.
//
// Parameters:
//   - ctx: Context for the assignment table read
//   - lock: Live token from Lock
//
// Returns:
//   - []types.Rotation: Unassigned rotations, lowest ID first
//   - error: ErrLockState for an invalid token, or the read error
func (r *Repository) AvailableRotations(ctx context.Context, lock *Lock) ([]types.Rotation, error) {
	if err := r.check(lock); err != nil {
		return nil, err
	}

	assigned, err := r.reader.AssignedRotations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read assigned rotations: %w", err)
	}

	taken := make(map[types.RotationID]struct{})
	for _, rotations := range assigned {
		for _, a := range rotations {
			taken[a.RotationID] = struct{}{}
		}
	}

	available := r.pool.without(taken)
	r.metrics.RecordAvailableRotations(len(available))

	return available, nil
}

// GetOrAssignRotations returns rotation assignments for every endpoint of an instance.
//
// Endpoints that already have a rotation keep it. Endpoints without one take
// the lowest available rotation, in declaration order. The legacy
// global-service-id declaration yields a single assignment for the default
// endpoint. If the pool is empty no rotations are assigned.
//
// Nothing is persisted; the caller stores the result while still holding lock.
// On error no assignment is returned, so a failing call never partially commits.
//
// Parameters:
//   - ctx: Context for the assignment table read
//   - spec: Deployment spec of the instance's application
//   - instance: Committed state of the instance
//   - lock: Live token from Lock
//
// Returns:
//   - []types.AssignedRotation: Assignments in declaration order
//   - error: ErrLockState, a *types.ConfigurationError, or ErrRotationsExhausted
func (r *Repository) GetOrAssignRotations(
	ctx context.Context,
	spec types.DeploymentSpec,
	instance types.Instance,
	lock *Lock,
) ([]types.AssignedRotation, error) {
	if err := r.check(lock); err != nil {
		return nil, err
	}

	assigned, err := r.getOrAssign(ctx, spec, instance, lock)
	if err != nil {
		r.metrics.RecordRotationFailure(failureReason(err))
		return nil, err
	}

	return assigned, nil
}

func (r *Repository) getOrAssign(
	ctx context.Context,
	spec types.DeploymentSpec,
	instance types.Instance,
	lock *Lock,
) ([]types.AssignedRotation, error) {
	instanceSpec, err := spec.RequireInstance(instance.ID.Instance)
	if err != nil {
		return nil, err
	}

	// Only allow one kind of declaration syntax.
	if instanceSpec.UsesGlobalServiceID() && len(instanceSpec.Endpoints) > 0 {
		return nil, &types.ConfigurationError{
			Subject: instanceSubject(instance.ID),
			Reason:  "cannot provision rotations with both global-service-id and 'endpoints'",
		}
	}

	if r.pool.Len() == 0 {
		r.logger.Debug("no rotations configured, skipping assignment", "instance", instance.ID)
		return []types.AssignedRotation{}, nil
	}

	if instanceSpec.UsesGlobalServiceID() {
		return r.assignGlobalServiceID(ctx, instanceSpec, instance, lock)
	}

	return r.assignEndpoints(ctx, instanceSpec, instance, lock)
}

// assignGlobalServiceID handles the legacy single-endpoint declaration.
func (r *Repository) assignGlobalServiceID(
	ctx context.Context,
	spec types.InstanceSpec,
	instance types.Instance,
	lock *Lock,
) ([]types.AssignedRotation, error) {
	regions := spec.ProductionRegions()

	var rotation types.Rotation
	if len(instance.Rotations) > 0 {
		existing := instance.Rotations[0].RotationID
		found, ok := r.pool.Get(existing)
		if !ok {
			return nil, fmt.Errorf("%w: %s assigned to %s", types.ErrUnknownRotation, existing, instance.ID)
		}
		rotation = found
		r.metrics.RecordRotationAssignment(0, 1)
	} else {
		if len(regions) < 2 {
			return nil, &types.ConfigurationError{
				Subject: instanceSubject(instance.ID),
				Reason:  "global-service-id is set but less than 2 prod regions are defined",
			}
		}

		available, err := r.AvailableRotations(ctx, lock)
		if err != nil {
			return nil, err
		}
		if len(available) == 0 {
			return nil, fmt.Errorf("%w: instance %s", types.ErrRotationsExhausted, instance.ID)
		}
		rotation = available[0]
		r.logger.Info("offering rotation", "rotation", rotation.ID, "instance", instance.ID)
		r.metrics.RecordRotationAssignment(1, 0)
	}

	return []types.AssignedRotation{
		types.NewAssignedRotation(types.ClusterID(spec.GlobalServiceID), types.DefaultEndpointID, rotation.ID, regions),
	}, nil
}

// assignEndpoints handles the multi-endpoint declaration.
func (r *Repository) assignEndpoints(
	ctx context.Context,
	spec types.InstanceSpec,
	instance types.Instance,
	lock *Lock,
) ([]types.AssignedRotation, error) {
	available, err := r.AvailableRotations(ctx, lock)
	if err != nil {
		return nil, err
	}

	existing := make(map[types.EndpointID]types.AssignedRotation, len(instance.Rotations))
	for _, a := range instance.Rotations {
		existing[a.EndpointID] = a
	}

	seen := make(map[types.EndpointID]struct{}, len(spec.Endpoints))
	assignments := make([]types.AssignedRotation, 0, len(spec.Endpoints))
	newCount, reused := 0, 0

	for _, endpoint := range spec.Endpoints {
		if _, dup := seen[endpoint.EndpointID]; dup {
			return nil, &types.ConfigurationError{
				Subject: instanceSubject(instance.ID),
				Reason:  fmt.Sprintf("endpoint '%s' is declared more than once", endpoint.EndpointID),
			}
		}
		seen[endpoint.EndpointID] = struct{}{}

		var rotationID types.RotationID
		if current, ok := existing[endpoint.EndpointID]; ok {
			rotationID = current.RotationID
			reused++
		} else {
			if len(available) == 0 {
				return nil, fmt.Errorf("%w: endpoint '%s' of instance %s",
					types.ErrRotationsExhausted, endpoint.EndpointID, instance.ID)
			}
			rotationID = available[0].ID
			available = available[1:]
			newCount++
			r.logger.Debug("assigning rotation", "rotation", rotationID, "endpoint", endpoint.EndpointID, "instance", instance.ID)
		}

		assignments = append(assignments,
			types.NewAssignedRotation(endpoint.ContainerID, endpoint.EndpointID, rotationID, endpoint.Regions))
	}

	r.metrics.RecordRotationAssignment(newCount, reused)
	if newCount > 0 {
		r.logger.Info("assigned rotations", "instance", instance.ID, "new", newCount, "reused", reused)
	}

	return assignments, nil
}

func instanceSubject(id types.InstanceID) string {
	return fmt.Sprintf("instance '%s'", id)
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, types.ErrConfiguration):
		return "configuration"
	case errors.Is(err, types.ErrRotationsExhausted):
		return "exhausted"
	case errors.Is(err, types.ErrLockState):
		return "lock"
	default:
		return "store"
	}
}
