package acl

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/arloliu/rotacl/internal/logging"
	"github.com/arloliu/rotacl/internal/metrics"
	"github.com/arloliu/rotacl/topology"
	"github.com/arloliu/rotacl/types"
)

// Computer computes node ACLs for whole snapshots on a bounded worker pool.
//
// A Computer holds no per-snapshot state and is safe for concurrent use.
type Computer struct {
	workers int
	logger  types.Logger
	metrics types.MetricsCollector
}

// Option configures a Computer.
type Option func(*Computer)

// WithWorkers bounds the number of concurrent ACL computations (default GOMAXPROCS).
func WithWorkers(n int) Option {
	return func(c *Computer) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithLogger sets the computer logger.
func WithLogger(logger types.Logger) Option {
	return func(c *Computer) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics sets the computer metrics collector.
func WithMetrics(m types.MetricsCollector) Option {
	return func(c *Computer) {
		if m != nil {
			c.metrics = m
		}
	}
}

// NewComputer creates an ACL computer.
//
// Parameters:
//   - opts: Optional worker bound, logger and metrics
//
// Returns:
//   - *Computer: Computer instance
func NewComputer(opts ...Option) *Computer {
	c := &Computer{
		workers: runtime.GOMAXPROCS(0),
		logger:  logging.NewNop(),
		metrics: metrics.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Compute returns the ACL of the node with the given hostname.
//
// Parameters:
//   - ctx: Context for cancellation
//   - snapshot: Zone topology
//   - hostname: Node to compute the ACL for
//
// Returns:
//   - types.NodeACL: The node's trust set
//   - error: types.ErrNodeNotFound, or the For error
func (c *Computer) Compute(ctx context.Context, snapshot *topology.Snapshot, hostname string) (types.NodeACL, error) {
	if err := ctx.Err(); err != nil {
		return types.NodeACL{}, err
	}

	node, ok := snapshot.Nodes().Node(hostname)
	if !ok {
		return types.NodeACL{}, fmt.Errorf("%w: %s", types.ErrNodeNotFound, hostname)
	}

	return c.compute(node, snapshot)
}

// ComputeAll returns the ACL of every guest node in snapshot, ordered by hostname.
//
// Host-type nodes have no ACL of their own and are skipped. Every guest is
// computed against the whole snapshot, hosts included, so parent hosts stay
// in its trust set. Computations run concurrently, at most WithWorkers at a
// time. The first error cancels the remaining computations and is returned.
//
// Parameters:
//   - ctx: Context for cancellation
//   - snapshot: Zone topology
//
// Returns:
//   - []types.NodeACL: One ACL per guest node, in hostname order
//   - error: First computation error or ctx error
func (c *Computer) ComputeAll(ctx context.Context, snapshot *topology.Snapshot) ([]types.NodeACL, error) {
	start := time.Now()
	nodes := guests(snapshot)
	acls := make([]types.NodeACL, len(nodes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, node := range nodes {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			acl, err := c.compute(node, snapshot)
			if err != nil {
				return err
			}
			acls[i] = acl

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		c.logger.Error("node ACL refresh failed", "nodes", len(nodes), "error", err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	c.metrics.RecordACLBatch(len(nodes), elapsed.Seconds())
	c.logger.Debug("computed node ACLs", "nodes", len(nodes), "duration", elapsed)

	return acls, nil
}

func guests(snapshot *topology.Snapshot) []types.Node {
	all := snapshot.Nodes().All()
	out := make([]types.Node, 0, len(all))
	for _, node := range all {
		if !node.Type.IsHost() {
			out = append(out, node)
		}
	}

	return out
}

func (c *Computer) compute(node types.Node, snapshot *topology.Snapshot) (types.NodeACL, error) {
	start := time.Now()
	acl, err := For(node, snapshot)
	c.metrics.RecordACLComputation(node.Type, time.Since(start).Seconds(), err == nil)
	if err != nil {
		return types.NodeACL{}, err
	}

	return acl, nil
}
