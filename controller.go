package rotacl

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/arloliu/rotacl/acl"
	"github.com/arloliu/rotacl/internal/hooks"
	"github.com/arloliu/rotacl/internal/logging"
	"github.com/arloliu/rotacl/internal/metrics"
	"github.com/arloliu/rotacl/rotation"
	"github.com/arloliu/rotacl/source"
	"github.com/arloliu/rotacl/topology"
)

// Controller assigns global rotations to application instances and computes
// node ACLs.
//
// Every rotation operation runs under the cluster-wide rotation lock and
// releases it before returning. ACL computation takes no lock.
//
// Thread Safety:
//   - All methods are safe for concurrent use
//   - Controllers in different processes sharing the same Locker and
//     AssignmentStore never hand out the same rotation twice
type Controller struct {
	cfg     Config
	repo    *rotation.Repository
	store   AssignmentStore
	acls    *acl.Computer
	hooks   Hooks
	metrics MetricsCollector
	logger  Logger
}

// NewController creates a Controller and loads the rotation pool.
//
// If src is nil the pool is read from cfg.RotationsFile.
//
// Parameters:
//   - ctx: Context for loading the rotation pool
//   - cfg: Configuration; missing values are filled with defaults
//   - src: Rotation catalog (optional when cfg.RotationsFile is set)
//   - store: Committed assignment table
//   - locker: Cluster-wide lock guarding the assignment table
//   - opts: Optional hooks, metrics and logger
//
// Returns:
//   - *Controller: Initialized controller
//   - error: Invalid configuration, missing dependency or pool load error
//
// Example:
//
//	cfg := rotacl.DefaultConfig()
//	ctrl, err := rotacl.NewController(ctx, &cfg, source.FromMap(table), store.NewMemory(), lock.NewLocal())
//	if err != nil {
//	    return err
//	}
//	rotations, err := ctrl.AssignRotations(ctx, spec, id)
func NewController(
	ctx context.Context,
	cfg *Config,
	src RotationSource,
	store AssignmentStore,
	locker Locker,
	opts ...Option,
) (*Controller, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if store == nil {
		return nil, ErrAssignmentStoreRequired
	}
	if locker == nil {
		return nil, ErrLockerRequired
	}

	// Fill in missing configuration values with defaults
	SetDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if src == nil {
		if cfg.RotationsFile == "" {
			return nil, ErrRotationSourceRequired
		}
		fileSrc, err := source.LoadFile(cfg.RotationsFile)
		if err != nil {
			return nil, err
		}
		src = fileSrc
	}

	options := &controllerOptions{}
	for _, opt := range opts {
		opt(options)
	}

	metricsCollector := options.metrics
	if metricsCollector == nil {
		metricsCollector = metrics.NewNop()
	}

	loggerInstance := options.logger
	if loggerInstance == nil {
		loggerInstance = logging.NewNop()
	}

	cfg.ValidateWithWarnings(loggerInstance)

	repo, err := rotation.NewRepository(ctx, src, store, locker,
		rotation.WithLogger(loggerInstance),
		rotation.WithMetrics(metricsCollector),
		rotation.WithLockTimeout(cfg.Lock.Timeout),
	)
	if err != nil {
		return nil, err
	}

	return &Controller{
		cfg:   *cfg,
		repo:  repo,
		store: store,
		acls: acl.NewComputer(
			acl.WithWorkers(cfg.ACLWorkers),
			acl.WithLogger(loggerInstance),
			acl.WithMetrics(metricsCollector),
		),
		hooks:   hooks.Fill(options.hooks),
		metrics: metricsCollector,
		logger:  loggerInstance,
	}, nil
}

// Pool returns every configured rotation in ascending ID order.
func (c *Controller) Pool() []Rotation {
	return c.repo.Pool()
}

// Instance returns the committed rotation state of an instance.
//
// The read takes no lock; the result may be stale by the time it is used.
func (c *Controller) Instance(ctx context.Context, id InstanceID) (Instance, error) {
	opCtx, cancel := context.WithTimeout(ctx, c.cfg.OperationTimeout)
	defer cancel()

	return c.store.Instance(opCtx, id)
}

// AssignRotations binds a rotation to every endpoint of an instance and commits the result.
//
// The lock is held across reading the assignment table, allocating and storing,
// and released before returning. Endpoints keep rotations they already hold.
// The lock is verified, and its lease renewed, right before the write; if it
// was lost the call fails with ErrLockLost and nothing is committed.
//
// Parameters:
//   - ctx: Context for lock acquisition and store access
//   - spec: Deployment spec of the instance's application
//   - id: Instance to assign rotations to
//
// Returns:
//   - []AssignedRotation: Committed assignments in declaration order
//   - error: *ConfigurationError, ErrRotationsExhausted, ErrLockTimeout, ErrLockLost, or a store/lock error
func (c *Controller) AssignRotations(ctx context.Context, spec DeploymentSpec, id InstanceID) ([]AssignedRotation, error) {
	var assigned []AssignedRotation

	err := c.repo.WithLock(ctx, func(lock *rotation.Lock) error {
		opCtx, cancel := context.WithTimeout(ctx, c.cfg.OperationTimeout)
		defer cancel()

		instance, err := c.store.Instance(opCtx, id)
		if err != nil {
			return fmt.Errorf("failed to read instance %s: %w", id, err)
		}

		rotations, err := c.repo.GetOrAssignRotations(opCtx, spec, instance, lock)
		if err != nil {
			return err
		}

		if !slices.EqualFunc(rotations, instance.Rotations, AssignedRotation.Equal) {
			if err := lock.Verify(opCtx); err != nil {
				return err
			}
			if err := c.store.Store(opCtx, id, rotations); err != nil {
				return fmt.Errorf("failed to store rotations of %s: %w", id, err)
			}
		}
		assigned = rotations

		return nil
	})
	if err != nil {
		c.reportError(ctx, "rotation assignment failed", err, "instance", id)
		return nil, err
	}

	c.logger.Info("rotations assigned", "instance", id, "rotations", len(assigned))
	c.runHook(ctx, "OnRotationsAssigned", func(hookCtx context.Context) error {
		return c.hooks.OnRotationsAssigned(hookCtx, id, slices.Clone(assigned))
	})

	return assigned, nil
}

// RemoveInstance drops the committed assignments of an instance, freeing its rotations.
//
// Removing an unknown instance is not an error.
//
// Parameters:
//   - ctx: Context for lock acquisition and store access
//   - id: Instance to remove
//
// Returns:
//   - []AssignedRotation: Assignments that were released
//   - error: Store or lock error
func (c *Controller) RemoveInstance(ctx context.Context, id InstanceID) ([]AssignedRotation, error) {
	var released []AssignedRotation

	err := c.repo.WithLock(ctx, func(lock *rotation.Lock) error {
		opCtx, cancel := context.WithTimeout(ctx, c.cfg.OperationTimeout)
		defer cancel()

		instance, err := c.store.Instance(opCtx, id)
		if err != nil {
			return fmt.Errorf("failed to read instance %s: %w", id, err)
		}
		if err := lock.Verify(opCtx); err != nil {
			return err
		}
		if err := c.store.Remove(opCtx, id); err != nil {
			return fmt.Errorf("failed to remove instance %s: %w", id, err)
		}
		released = instance.Rotations

		return nil
	})
	if err != nil {
		c.reportError(ctx, "instance removal failed", err, "instance", id)
		return nil, err
	}

	if len(released) == 0 {
		return released, nil
	}

	c.logger.Info("instance removed", "instance", id, "released", len(released))
	c.runHook(ctx, "OnInstanceRemoved", func(hookCtx context.Context) error {
		return c.hooks.OnInstanceRemoved(hookCtx, id, slices.Clone(released))
	})

	return released, nil
}

// AvailableRotations returns the rotations not assigned to any instance.
//
// The assignment table is read under the rotation lock, so the result is
// consistent at the time of the read.
//
// Returns:
//   - []Rotation: Unassigned rotations, lowest ID first
//   - error: Store or lock error
func (c *Controller) AvailableRotations(ctx context.Context) ([]Rotation, error) {
	var available []Rotation

	err := c.repo.WithLock(ctx, func(lock *rotation.Lock) error {
		opCtx, cancel := context.WithTimeout(ctx, c.cfg.OperationTimeout)
		defer cancel()

		var err error
		available, err = c.repo.AvailableRotations(opCtx, lock)

		return err
	})
	if err != nil {
		c.reportError(ctx, "listing available rotations failed", err)
		return nil, err
	}

	return available, nil
}

// NodeACLs computes the ACL of every guest node in snapshot.
//
// Host-type nodes are skipped; they stay in the snapshot and are trusted by
// their child nodes.
//
// Parameters:
//   - ctx: Context for cancellation
//   - snapshot: Zone topology
//
// Returns:
//   - []NodeACL: One ACL per guest node, ordered by hostname
//   - error: *ConfigurationError wrapping ErrUnsupportedNodeType, or ctx error
func (c *Controller) NodeACLs(ctx context.Context, snapshot *topology.Snapshot) ([]NodeACL, error) {
	acls, err := c.acls.ComputeAll(ctx, snapshot)
	if err != nil && !errors.Is(err, context.Canceled) {
		c.reportError(ctx, "node ACL computation failed", err)
	}

	return acls, err
}

// NodeACL computes the ACL of a single node in snapshot.
//
// Returns:
//   - NodeACL: The node's trust set
//   - error: ErrNodeNotFound, *ConfigurationError wrapping ErrUnsupportedNodeType, or ctx error
func (c *Controller) NodeACL(ctx context.Context, snapshot *topology.Snapshot, hostname string) (NodeACL, error) {
	return c.acls.Compute(ctx, snapshot, hostname)
}

// runHook calls fn after the lock has been released. Errors are logged only.
func (c *Controller) runHook(ctx context.Context, name string, fn func(context.Context) error) {
	hookCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.OperationTimeout)
	defer cancel()

	if err := fn(hookCtx); err != nil {
		c.logger.Error("hook error", "hook", name, "error", err)
	}
}

func (c *Controller) reportError(ctx context.Context, msg string, err error, keysAndValues ...any) {
	c.logger.Error(msg, append(keysAndValues, "error", err)...)
	c.runHook(ctx, "OnError", func(hookCtx context.Context) error {
		return c.hooks.OnError(hookCtx, err)
	})
}
