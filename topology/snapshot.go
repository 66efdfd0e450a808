package topology

import (
	"fmt"
	"time"

	"github.com/arloliu/rotacl/types"
)

// Snapshot is an immutable view of a zone's nodes and load balancers.
type Snapshot struct {
	nodes   NodeList
	lbs     LoadBalancers
	takenAt time.Time
}

// NewSnapshot creates a snapshot from copies of nodes and lbs.
//
// Parameters:
//   - nodes: Every node in the zone
//   - lbs: Every load balancer in the zone
//
// Returns:
//   - *Snapshot: Immutable snapshot
//   - error: *types.ConfigurationError for an empty or duplicate hostname
func NewSnapshot(nodes []types.Node, lbs []types.LoadBalancer) (*Snapshot, error) {
	list := NewNodeList(nodes)
	for i, n := range list.nodes {
		if n.Hostname == "" {
			return nil, &types.ConfigurationError{Subject: "topology", Reason: "node without hostname"}
		}
		if i > 0 && list.nodes[i-1].Hostname == n.Hostname {
			return nil, &types.ConfigurationError{
				Subject: fmt.Sprintf("node %s", n.Hostname),
				Reason:  "hostname appears more than once",
			}
		}
	}

	return &Snapshot{
		nodes:   list.indexed(),
		lbs:     NewLoadBalancers(lbs),
		takenAt: time.Now(),
	}, nil
}

// Nodes returns every node in the zone.
func (s *Snapshot) Nodes() NodeList {
	return s.nodes
}

// LoadBalancers returns every load balancer in the zone.
func (s *Snapshot) LoadBalancers() LoadBalancers {
	return s.lbs
}

// TakenAt returns when the snapshot was built.
func (s *Snapshot) TakenAt() time.Time {
	return s.takenAt
}
