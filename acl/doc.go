// Package acl computes which nodes, networks and ports a node must trust.
//
// For is a pure function of a node and an immutable topology snapshot. The
// Computer runs For for every node of a snapshot on a bounded worker pool.
//
// Rules applied to every node:
//
//   - port 22 is trusted
//   - the node's parent host is trusted
//   - an allocated node trusts every node of its owner and every network of
//     its owner's provisioned load balancers
//
// Additional rules by node type:
//
//   - tenant: config and proxy nodes; parents of the owner's nodes; when in
//     state ready, every tenant node in the zone
//   - config: every node in the zone; port 4443
//   - proxy: config nodes; ports 443 and 4443
//   - controller: ports 4443 and 443
//
// Any other node type is a configuration error.
package acl
