package rotacl

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/rotacl/internal/logging"
	"github.com/arloliu/rotacl/lock"
	"github.com/arloliu/rotacl/store"
)

// JetStreamBackend bundles the NATS KV backed lock and assignment store.
type JetStreamBackend struct {
	Store  *store.KV
	Locker *lock.NATS
}

// OpenJetStreamBackend creates (or opens) the lock and assignment buckets named by cfg.
//
// Parameters:
//   - ctx: Context for bucket creation
//   - js: JetStream context
//   - cfg: Configuration; missing values are filled with defaults
//   - logger: Logger (nil for no logging)
//
// Returns:
//   - *JetStreamBackend: Store and Locker to pass to NewController
//   - error: Invalid configuration or bucket creation error
//
// Example:
//
//	js, _ := jetstream.New(nc)
//	backend, err := rotacl.OpenJetStreamBackend(ctx, js, &cfg, logger)
//	if err != nil {
//	    return err
//	}
//	ctrl, err := rotacl.NewController(ctx, &cfg, src, backend.Store, backend.Locker)
func OpenJetStreamBackend(ctx context.Context, js jetstream.JetStream, cfg *Config, logger Logger) (*JetStreamBackend, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	SetDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	locker, err := lock.OpenNATS(ctx, js, cfg.Lock.Bucket,
		lock.WithKey(cfg.Lock.Key),
		lock.WithTTL(cfg.Lock.TTL),
		lock.WithPollInterval(cfg.Lock.PollInterval),
		lock.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	assignments, err := store.OpenKV(ctx, js, cfg.AssignmentBucket, logger)
	if err != nil {
		return nil, err
	}

	return &JetStreamBackend{Store: assignments, Locker: locker}, nil
}
