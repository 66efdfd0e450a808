package lock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/rotacl/internal/kvutil"
	"github.com/arloliu/rotacl/internal/logging"
	"github.com/arloliu/rotacl/internal/natsutil"
	"github.com/arloliu/rotacl/types"
)

// Defaults for the NATS lock.
const (
	DefaultKey          = "rotations"
	DefaultTTL          = 30 * time.Second
	DefaultPollInterval = 500 * time.Millisecond
)

// holder is the JSON value stored under the lock key.
type holder struct {
	Owner      string    `json:"owner"`
	AcquiredAt time.Time `json:"acquired_at"`
	RenewedAt  time.Time `json:"renewed_at"`
}

// NATS is a types.Locker backed by a NATS JetStream KV bucket.
//
// The bucket must be configured with a TTL equal to the lock TTL so that a
// crashed holder's key expires. OpenNATS creates the bucket that way.
type NATS struct {
	kv           jetstream.KeyValue
	key          string
	ttl          time.Duration
	pollInterval time.Duration
	owner        string
	logger       types.Logger
}

// Compile-time assertion that NATS implements Locker.
var _ types.Locker = (*NATS)(nil)

// NATSOption configures a NATS lock.
type NATSOption func(*NATS)

// WithKey sets the lock key (default "rotations").
func WithKey(key string) NATSOption {
	return func(n *NATS) {
		if key != "" {
			n.key = key
		}
	}
}

// WithTTL sets the lease TTL used to pace renewals (default 30s).
func WithTTL(ttl time.Duration) NATSOption {
	return func(n *NATS) {
		if ttl > 0 {
			n.ttl = ttl
		}
	}
}

// WithPollInterval sets how often a waiter retries while the lock is busy (default 500ms).
func WithPollInterval(interval time.Duration) NATSOption {
	return func(n *NATS) {
		if interval > 0 {
			n.pollInterval = interval
		}
	}
}

// WithOwner sets the holder name written to the lock key (default "<hostname>-<pid>").
func WithOwner(owner string) NATSOption {
	return func(n *NATS) {
		if owner != "" {
			n.owner = owner
		}
	}
}

// WithLogger sets the lock logger.
func WithLogger(logger types.Logger) NATSOption {
	return func(n *NATS) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// NewNATS creates a lock on an existing KV bucket.
//
// Parameters:
//   - kv: JetStream KV bucket with a TTL matching the lock TTL
//   - opts: Optional key, TTL, poll interval, owner and logger
//
// Returns:
//   - *NATS: Lock instance
//
// Example:
//
//	kv, _ := js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
//	    Bucket: "rotacl-lock",
//	    TTL:    30 * time.Second,
//	})
//	locker := lock.NewNATS(kv, lock.WithTTL(30*time.Second))
func NewNATS(kv jetstream.KeyValue, opts ...NATSOption) *NATS {
	n := &NATS{
		kv:           kv,
		key:          DefaultKey,
		ttl:          DefaultTTL,
		pollInterval: DefaultPollInterval,
		owner:        defaultOwner(),
		logger:       logging.NewNop(),
	}
	for _, opt := range opts {
		opt(n)
	}

	return n
}

// OpenNATS ensures the lock bucket exists with the lock TTL and returns a lock on it.
//
// Parameters:
//   - ctx: Context for bucket creation
//   - js: JetStream context
//   - bucket: Lock bucket name
//   - opts: Lock options; WithTTL also sets the bucket TTL
//
// Returns:
//   - *NATS: Lock instance
//   - error: Bucket creation error
func OpenNATS(ctx context.Context, js jetstream.JetStream, bucket string, opts ...NATSOption) (*NATS, error) {
	n := NewNATS(nil, opts...)

	kv, err := kvutil.EnsureBucket(ctx, js, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "rotacl rotation lock",
		History:     1,
		TTL:         n.ttl,
	}, 3)
	if err != nil {
		return nil, natsutil.Wrap("failed to open lock bucket", err)
	}
	n.kv = kv

	return n, nil
}

// Acquire blocks until the lock key is created by this caller or ctx is done.
//
// Parameters:
//   - ctx: Context bounding the wait
//
// Returns:
//   - types.LockHandle: Handle holding the lease
//   - error: ctx.Err() if the wait was abandoned, or a KV error (connectivity
//     failures match types.ErrConnectivity)
func (n *NATS) Acquire(ctx context.Context) (types.LockHandle, error) {
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		now := time.Now()
		value, err := json.Marshal(holder{Owner: n.owner, AcquiredAt: now, RenewedAt: now})
		if err != nil {
			return nil, fmt.Errorf("failed to encode lock holder: %w", err)
		}

		revision, err := n.kv.Create(ctx, n.key, value)
		if err == nil {
			n.logger.Debug("rotation lock key created", "key", n.key, "owner", n.owner, "revision", revision, "attempts", attempt)
			return n.newHandle(revision, now), nil
		}
		if !errors.Is(err, jetstream.ErrKeyExists) {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}

			return nil, natsutil.Wrap("failed to create lock key", err)
		}

		if attempt == 1 {
			n.logger.Debug("rotation lock busy, waiting", "key", n.key, "holder", n.currentHolder(ctx))
		}
		if err := n.waitForRelease(ctx); err != nil {
			return nil, err
		}
	}
}

// waitForRelease returns when the lock key is deleted, the poll interval
// elapses, or ctx is done. TTL expiry leaves no delete marker, so polling
// covers that case.
func (n *NATS) waitForRelease(ctx context.Context) error {
	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var updates <-chan jetstream.KeyValueEntry
	watcher, err := n.kv.Watch(watchCtx, n.key, jetstream.UpdatesOnly())
	if err != nil {
		n.logger.Debug("lock watch unavailable, polling", "key", n.key, "error", err)
	} else {
		defer func() { _ = watcher.Stop() }()
		updates = watcher.Updates()
	}

	ticker := time.NewTicker(n.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			return nil
		case entry, ok := <-updates:
			if !ok {
				updates = nil
				continue
			}
			if entry == nil {
				continue
			}
			op := entry.Operation()
			if op == jetstream.KeyValueDelete || op == jetstream.KeyValuePurge {
				return nil
			}
		}
	}
}

func (n *NATS) currentHolder(ctx context.Context) string {
	entry, err := n.kv.Get(ctx, n.key)
	if err != nil {
		return ""
	}

	var h holder
	if err := json.Unmarshal(entry.Value(), &h); err != nil {
		return ""
	}

	return h.Owner
}

func (n *NATS) newHandle(revision uint64, acquiredAt time.Time) *natsHandle {
	h := &natsHandle{
		lock:       n,
		revision:   revision,
		acquiredAt: acquiredAt,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
	go h.renewalLoop()

	return h
}

// natsHandle holds one lease on the lock key.
type natsHandle struct {
	lock       *NATS
	acquiredAt time.Time

	mu       sync.Mutex
	revision uint64
	released bool
	lost     atomic.Bool

	stopCh chan struct{}
	doneCh chan struct{}
}

// renewalLoop refreshes the lease at TTL/3 until released or lost.
func (h *natsHandle) renewalLoop() {
	defer close(h.doneCh)

	interval := h.lock.ttl / 3
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-h.stopCh:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			err := h.renew(ctx)
			cancel()
			if err == nil {
				continue
			}
			if natsutil.IsConnectivityError(err) {
				h.lock.logger.Warn("rotation lock renewal failed, retrying", "key", h.lock.key, "error", err)
				continue
			}
			h.markLost(err)

			return
		}
	}
}

func (h *natsHandle) markLost(err error) {
	if h.lost.CompareAndSwap(false, true) {
		h.lock.logger.Error("rotation lock lease lost", "key", h.lock.key, "owner", h.lock.owner, "error", err)
	}
}

// Verify renews the lease with a revision-checked update. Success proves no
// other holder has written the lock key since our last renewal.
func (h *natsHandle) Verify(ctx context.Context) error {
	h.mu.Lock()
	released := h.released
	h.mu.Unlock()
	if released {
		return types.ErrLockState
	}
	if h.lost.Load() {
		return fmt.Errorf("%w: key %s", types.ErrLockLost, h.lock.key)
	}

	err := h.renew(ctx)
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if natsutil.IsConnectivityError(err) {
		return err
	}
	h.markLost(err)

	return fmt.Errorf("%w: %w", types.ErrLockLost, err)
}

func (h *natsHandle) renew(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.released {
		return nil
	}

	value, err := json.Marshal(holder{Owner: h.lock.owner, AcquiredAt: h.acquiredAt, RenewedAt: time.Now()})
	if err != nil {
		return fmt.Errorf("failed to encode lock holder: %w", err)
	}

	revision, err := h.lock.kv.Update(ctx, h.lock.key, value, h.revision)
	if err != nil {
		return natsutil.Wrap("failed to renew lock key", err)
	}
	h.revision = revision

	return nil
}

// Release stops renewal and deletes the lock key if this lease still owns it.
func (h *natsHandle) Release(ctx context.Context) error {
	h.mu.Lock()
	if h.released {
		h.mu.Unlock()
		return types.ErrLockState
	}
	h.released = true
	revision := h.revision
	h.mu.Unlock()

	close(h.stopCh)
	select {
	case <-h.doneCh:
	case <-ctx.Done():
		return ctx.Err()
	}

	if h.lost.Load() {
		return fmt.Errorf("%w: key %s", types.ErrLockLost, h.lock.key)
	}

	err := h.lock.kv.Delete(ctx, h.lock.key, jetstream.LastRevision(revision))
	if err != nil {
		if natsutil.IsConnectivityError(err) {
			return natsutil.Wrap("failed to delete lock key", err)
		}
		// Another holder took over after our lease expired.
		return fmt.Errorf("%w: %w", types.ErrLockLost, err)
	}
	h.lock.logger.Debug("rotation lock key deleted", "key", h.lock.key, "owner", h.lock.owner)

	return nil
}

func defaultOwner() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "rotacl"
	}

	return host + "-" + strconv.Itoa(os.Getpid())
}
