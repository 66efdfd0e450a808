package rotacl

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// LockConfig configures the cluster-wide rotation lock.
type LockConfig struct {
	// Bucket is the NATS KV bucket holding the lock key.
	Bucket string `yaml:"bucket"`

	// Key is the lock key inside Bucket.
	Key string `yaml:"key"`

	// TTL is the lease duration of a held lock. The holder renews it every TTL/3,
	// so a crashed holder blocks other callers for at most TTL.
	TTL time.Duration `yaml:"ttl"`

	// PollInterval is how often a waiter re-checks the lock key.
	// Watch events wake waiters earlier on explicit release; polling covers
	// lease expiry, which leaves no event behind.
	PollInterval time.Duration `yaml:"pollInterval"`

	// Timeout bounds how long an operation waits for the lock.
	// 0 waits until the lock is acquired or the caller's context is done.
	// On expiry operations fail with ErrLockTimeout.
	Timeout time.Duration `yaml:"timeout"`
}

// Config configures a Controller.
//
// Load it from YAML with LoadConfig, or start from DefaultConfig and override
// individual fields.
type Config struct {
	// RotationsFile is the path of the YAML rotation table.
	// Optional when the rotation source is passed to NewController directly.
	RotationsFile string `yaml:"rotationsFile"`

	// AssignmentBucket is the NATS KV bucket holding committed rotation assignments.
	AssignmentBucket string `yaml:"assignmentBucket"`

	// OperationTimeout bounds store reads and writes made while the lock is held,
	// and hook execution.
	OperationTimeout time.Duration `yaml:"operationTimeout"`

	// ACLWorkers bounds concurrent ACL computations in NodeACLs.
	// 0 uses GOMAXPROCS.
	ACLWorkers int `yaml:"aclWorkers"`

	// Lock configures the rotation lock.
	Lock LockConfig `yaml:"lock"`
}

// DefaultConfig returns a Config with sensible defaults.
//
// Returns:
//   - Config: Configuration with default values
func DefaultConfig() Config {
	return Config{
		AssignmentBucket: "rotacl-assignments",
		OperationTimeout: 10 * time.Second,
		ACLWorkers:       0, // GOMAXPROCS
		Lock: LockConfig{
			Bucket:       "rotacl-lock",
			Key:          "rotations",
			TTL:          30 * time.Second,
			PollInterval: 500 * time.Millisecond,
			Timeout:      0, // Wait for the caller's context
		},
	}
}

// SetDefaults fills in missing configuration values with production defaults.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func SetDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.AssignmentBucket == "" {
		cfg.AssignmentBucket = defaults.AssignmentBucket
	}
	if cfg.OperationTimeout == 0 {
		cfg.OperationTimeout = defaults.OperationTimeout
	}
	if cfg.Lock.Bucket == "" {
		cfg.Lock.Bucket = defaults.Lock.Bucket
	}
	if cfg.Lock.Key == "" {
		cfg.Lock.Key = defaults.Lock.Key
	}
	if cfg.Lock.TTL == 0 {
		cfg.Lock.TTL = defaults.Lock.TTL
	}
	if cfg.Lock.PollInterval == 0 {
		cfg.Lock.PollInterval = defaults.Lock.PollInterval
	}
	// Note: Lock.Timeout and ACLWorkers of 0 are valid, so we don't apply defaults
}

// Validate checks configuration constraints and returns error for invalid values.
//
// Hard Validation Rules:
//   - Lock.TTL >= 3 * Lock.PollInterval (waiters must notice expiry within a lease)
//   - Lock.TTL >= 1s (renewal runs every TTL/3)
//   - OperationTimeout > 0
//   - Lock.Timeout >= 0 and ACLWorkers >= 0
//   - Bucket names and lock key are set
//
// Returns:
//   - error: Validation error with clear explanation, nil if valid
func (cfg *Config) Validate() error {
	// Rule 1: names
	if cfg.AssignmentBucket == "" {
		return fmt.Errorf("AssignmentBucket must be set")
	}
	if cfg.Lock.Bucket == "" || cfg.Lock.Key == "" {
		return fmt.Errorf("Lock.Bucket and Lock.Key must be set")
	}

	// Rule 2: lease sanity
	if cfg.Lock.TTL < time.Second {
		return fmt.Errorf("Lock.TTL (%v) must be >= 1s", cfg.Lock.TTL)
	}
	if cfg.Lock.PollInterval <= 0 {
		return fmt.Errorf("Lock.PollInterval must be > 0, got %v", cfg.Lock.PollInterval)
	}
	if cfg.Lock.TTL < 3*cfg.Lock.PollInterval {
		return fmt.Errorf(
			"Lock.TTL (%v) must be >= 3*Lock.PollInterval (%v) so waiters notice an expired lease",
			cfg.Lock.TTL, cfg.Lock.PollInterval,
		)
	}

	// Rule 3: timeouts
	if cfg.Lock.Timeout < 0 {
		return fmt.Errorf("Lock.Timeout must be >= 0, got %v", cfg.Lock.Timeout)
	}
	if cfg.OperationTimeout <= 0 {
		return fmt.Errorf("OperationTimeout must be > 0, got %v", cfg.OperationTimeout)
	}

	// Rule 4: worker bound
	if cfg.ACLWorkers < 0 {
		return fmt.Errorf("ACLWorkers must be >= 0, got %d", cfg.ACLWorkers)
	}

	return nil
}

// ValidateWithWarnings checks configuration and logs warnings for non-recommended values.
//
// This is called after Validate() in NewController() to provide operator guidance.
//
// Parameters:
//   - logger: Logger instance for warning output
func (cfg *Config) ValidateWithWarnings(logger Logger) {
	// A lock timeout shorter than the lease cannot outlast a crashed holder.
	if cfg.Lock.Timeout > 0 && cfg.Lock.Timeout < cfg.Lock.TTL {
		logger.Warn(
			"Lock.Timeout is below Lock.TTL, callers may time out while a crashed holder's lease runs out",
			"lockTimeout", cfg.Lock.Timeout,
			"lockTTL", cfg.Lock.TTL,
		)
	}

	if cfg.OperationTimeout > cfg.Lock.TTL {
		logger.Warn(
			"OperationTimeout exceeds Lock.TTL, a stalled store call can outlive a lease that fails to renew",
			"operationTimeout", cfg.OperationTimeout,
			"lockTTL", cfg.Lock.TTL,
		)
	}
}

// TestConfig returns a configuration optimized for fast test execution.
//
// Returns:
//   - Config: Configuration with fast timings for tests
//
// Example:
//
//	cfg := rotacl.TestConfig()
//	cfg.Lock.Timeout = time.Second
//	ctrl, err := rotacl.NewController(ctx, &cfg, src, store, locker)
func TestConfig() Config {
	cfg := DefaultConfig()

	cfg.OperationTimeout = 2 * time.Second
	cfg.Lock.TTL = 3 * time.Second
	cfg.Lock.PollInterval = 50 * time.Millisecond

	return cfg
}

// LoadConfig reads a YAML configuration file and applies defaults.
//
// Unknown fields are rejected. The returned configuration is validated.
//
// Parameters:
//   - path: Path of the YAML file
//
// Returns:
//   - Config: Loaded configuration
//   - error: Read, decode or validation error
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	SetDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return cfg, nil
}
