package rotacl

// Option configures a Controller with optional dependencies.
type Option func(*controllerOptions)

// controllerOptions holds optional Controller configuration.
type controllerOptions struct {
	hooks   *Hooks
	metrics MetricsCollector
	logger  Logger
}

// WithHooks sets event hooks.
//
// Parameters:
//   - hooks: Hooks structure with callback functions; nil callbacks are skipped
//
// Returns:
//   - Option: Functional option for NewController
//
// Example:
//
//	hooks := &rotacl.Hooks{
//	    OnRotationsAssigned: func(ctx context.Context, id rotacl.InstanceID, rotations []rotacl.AssignedRotation) error {
//	        return publishEndpoints(ctx, id, rotations)
//	    },
//	}
//	ctrl, err := rotacl.NewController(ctx, &cfg, src, store, locker, rotacl.WithHooks(hooks))
func WithHooks(hooks *Hooks) Option {
	return func(o *controllerOptions) {
		o.hooks = hooks
	}
}

// WithMetrics sets a metrics collector.
//
// Parameters:
//   - metrics: MetricsCollector implementation
//
// Returns:
//   - Option: Functional option for NewController
//
// Example:
//
//	ctrl, err := rotacl.NewController(ctx, &cfg, src, store, locker,
//	    rotacl.WithMetrics(rotacl.NewPrometheusMetrics(prometheus.DefaultRegisterer)))
func WithMetrics(metrics MetricsCollector) Option {
	return func(o *controllerOptions) {
		o.metrics = metrics
	}
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation (compatible with zap.SugaredLogger)
//
// Returns:
//   - Option: Functional option for NewController
//
// Example:
//
//	ctrl, err := rotacl.NewController(ctx, &cfg, src, store, locker, rotacl.WithLogger(logger))
func WithLogger(logger Logger) Option {
	return func(o *controllerOptions) {
		o.logger = logger
	}
}
