// Package rotacl assigns global rotations to application instances and
// computes per-node network ACLs for a zone.
//
// A rotation is a globally routed DNS name drawn from a fixed pool. Each
// endpoint an instance declares gets exactly one rotation, and no rotation is
// ever handed to two instances. Allocation runs under a cluster-wide lock, so
// any number of controller processes can share one pool.
//
// The ACL side is a pure function of a topology snapshot: given the nodes and
// load balancers of a zone, it tells each node which peers, networks and
// ports to trust.
//
// # Quick Start
//
// In-process lock and store, rotation pool from a map:
//
//	import (
//	    "github.com/arloliu/rotacl"
//	    "github.com/arloliu/rotacl/lock"
//	    "github.com/arloliu/rotacl/source"
//	    "github.com/arloliu/rotacl/store"
//	)
//
//	cfg := rotacl.DefaultConfig()
//	src := source.FromMap(map[string]string{
//	    "rotation-id-01": "rotation-fqdn-01.",
//	    "rotation-id-02": "rotation-fqdn-02.",
//	})
//	ctrl, err := rotacl.NewController(ctx, &cfg, src, store.NewMemory(), lock.NewLocal())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	rotations, err := ctrl.AssignRotations(ctx, spec, id)
//
// # Shared state over NATS
//
// Controllers in different processes coordinate through NATS JetStream KV:
//
//	js, _ := jetstream.New(nc)
//	backend, err := rotacl.OpenJetStreamBackend(ctx, js, &cfg, logger)
//	ctrl, err := rotacl.NewController(ctx, &cfg, src, backend.Store, backend.Locker,
//	    rotacl.WithLogger(logger),
//	    rotacl.WithMetrics(rotacl.NewPrometheusMetrics(nil)),
//	)
//
// # Allocation rules
//
//   - An endpoint that already holds a rotation keeps it
//   - New endpoints take the lowest free rotation ID, in declaration order
//   - An instance declaring a global service ID gets one rotation for the
//     "default" endpoint and must be deployed to at least two production regions
//   - If the pool runs out the whole call fails and nothing is committed
//   - An empty pool disables rotations: every call returns no assignments
//
// # Node ACLs
//
//	snapshot, err := topology.LoadFromKV(ctx, kv)
//	acls, err := ctrl.NodeACLs(ctx, snapshot)
//
// See package acl for the trust rules of each node type, and the examples/
// directory for complete programs.
package rotacl
