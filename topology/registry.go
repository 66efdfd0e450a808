package topology

import (
	"context"
	"errors"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/rotacl/internal/kvutil"
	"github.com/arloliu/rotacl/internal/logging"
	"github.com/arloliu/rotacl/internal/natsutil"
	"github.com/arloliu/rotacl/types"
)

// Key prefixes of the node registry bucket.
const (
	nodePrefix         = "node"
	loadBalancerPrefix = "lb"
)

// NodeKey returns the registry key of a node.
func NodeKey(hostname string) string {
	return nodePrefix + "." + hostname
}

// LoadBalancerKey returns the registry key of a load balancer.
func LoadBalancerKey(id string) string {
	return loadBalancerPrefix + "." + id
}

// LoadFromKV builds a snapshot from a NATS KV node registry.
//
// The registry holds one JSON types.Node per "node.<hostname>" key and one
// JSON types.LoadBalancer per "lb.<id>" key. Other keys are ignored.
//
// Parameters:
//   - ctx: Context for KV reads
//   - kv: Registry bucket
//
// Returns:
//   - *Snapshot: Snapshot of the registry contents
//   - error: KV error (connectivity failures match types.ErrConnectivity) or
//     a snapshot validation error
func LoadFromKV(ctx context.Context, kv jetstream.KeyValue) (*Snapshot, error) {
	nodes, err := loadAll[types.Node](ctx, kv, nodePrefix)
	if err != nil {
		return nil, err
	}

	lbs, err := loadAll[types.LoadBalancer](ctx, kv, loadBalancerPrefix)
	if err != nil {
		return nil, err
	}

	return NewSnapshot(nodes, lbs)
}

func loadAll[T any](ctx context.Context, kv jetstream.KeyValue, prefix string) ([]T, error) {
	keys, err := kvutil.KeysWithPrefix(ctx, kv, prefix)
	if err != nil {
		return nil, natsutil.Wrap("failed to list "+prefix+" keys", err)
	}

	out := make([]T, 0, len(keys))
	for _, key := range keys {
		v, _, err := kvutil.GetJSON[T](ctx, kv, key)
		if err != nil {
			if errors.Is(err, jetstream.ErrKeyNotFound) {
				continue
			}

			return nil, natsutil.Wrap("failed to read registry", err)
		}
		out = append(out, v)
	}

	return out, nil
}

// PutNode writes a node to the registry.
func PutNode(ctx context.Context, kv jetstream.KeyValue, node types.Node) error {
	if node.Hostname == "" {
		return &types.ConfigurationError{Subject: "topology", Reason: "node without hostname"}
	}
	_, err := kvutil.PutJSON(ctx, kv, NodeKey(node.Hostname), node)

	return natsutil.Wrap("failed to publish node", err)
}

// PutLoadBalancer writes a load balancer to the registry.
func PutLoadBalancer(ctx context.Context, kv jetstream.KeyValue, lb types.LoadBalancer) error {
	if lb.ID == "" {
		return &types.ConfigurationError{Subject: "topology", Reason: "load balancer without id"}
	}
	_, err := kvutil.PutJSON(ctx, kv, LoadBalancerKey(lb.ID), lb)

	return natsutil.Wrap("failed to publish load balancer", err)
}

// RemoveNode deletes a node from the registry. Removing an unknown node is a no-op.
func RemoveNode(ctx context.Context, kv jetstream.KeyValue, hostname string) error {
	err := kv.Delete(ctx, NodeKey(hostname))
	if err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return natsutil.Wrap("failed to remove node", err)
	}

	return nil
}

// Watch calls onChange with a fresh snapshot now and after every registry change.
//
// Bursts of changes are coalesced: a reload happens once no further change
// arrived for settle. Watch blocks until ctx is done and then returns nil.
//
// Parameters:
//   - ctx: Context ending the watch
//   - kv: Registry bucket
//   - settle: Quiet period before reloading (100ms if zero)
//   - logger: Logger for reload failures
//   - onChange: Receives every new snapshot, called from the Watch goroutine
//
// Returns:
//   - error: Initial load or watch setup error
func Watch(
	ctx context.Context,
	kv jetstream.KeyValue,
	settle time.Duration,
	logger types.Logger,
	onChange func(*Snapshot),
) error {
	if settle <= 0 {
		settle = 100 * time.Millisecond
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	// Subscribe before the initial load so no change falls between the two.
	watcher, err := kv.WatchAll(ctx, jetstream.UpdatesOnly())
	if err != nil {
		return natsutil.Wrap("failed to watch registry", err)
	}
	defer func() { _ = watcher.Stop() }()

	snapshot, err := LoadFromKV(ctx, kv)
	if err != nil {
		return err
	}
	onChange(snapshot)

	timer := time.NewTimer(settle)
	timer.Stop()
	defer timer.Stop()

	updates := watcher.Updates()
	for {
		select {
		case <-ctx.Done():
			return nil
		case entry, ok := <-updates:
			if !ok {
				return nil
			}
			if entry == nil {
				continue
			}
			timer.Reset(settle)
		case <-timer.C:
			snapshot, err := LoadFromKV(ctx, kv)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				logger.Warn("topology reload failed, keeping previous snapshot", "error", err)

				continue
			}
			onChange(snapshot)
		}
	}
}
