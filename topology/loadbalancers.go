package topology

import (
	"slices"

	"github.com/arloliu/rotacl/types"
)

// LoadBalancers is an immutable list of load balancers grouped by owner.
type LoadBalancers struct {
	lbs     []types.LoadBalancer
	byOwner map[types.ApplicationID][]int
}

// NewLoadBalancers creates a list from lbs, sorted by ID.
func NewLoadBalancers(lbs []types.LoadBalancer) LoadBalancers {
	out := make([]types.LoadBalancer, len(lbs))
	for i, lb := range lbs {
		out[i] = cloneLoadBalancer(lb)
	}
	slices.SortStableFunc(out, func(a, b types.LoadBalancer) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		default:
			return 0
		}
	})

	byOwner := make(map[types.ApplicationID][]int)
	for i, lb := range out {
		byOwner[lb.Owner] = append(byOwner[lb.Owner], i)
	}

	return LoadBalancers{lbs: out, byOwner: byOwner}
}

// All returns a copy of every load balancer.
func (l LoadBalancers) All() []types.LoadBalancer {
	out := make([]types.LoadBalancer, len(l.lbs))
	for i, lb := range l.lbs {
		out[i] = cloneLoadBalancer(lb)
	}

	return out
}

// Len returns the number of load balancers.
func (l LoadBalancers) Len() int {
	return len(l.lbs)
}

// Owner returns the load balancers of app.
func (l LoadBalancers) Owner(app types.ApplicationID) []types.LoadBalancer {
	idx := l.byOwner[app]
	out := make([]types.LoadBalancer, 0, len(idx))
	for _, i := range idx {
		out = append(out, cloneLoadBalancer(l.lbs[i]))
	}

	return out
}

// Networks returns the networks exposed by provisioned load balancer
// instances of app, in first-seen order without duplicates.
func (l LoadBalancers) Networks(app types.ApplicationID) []string {
	var out []string
	for _, i := range l.byOwner[app] {
		inst := l.lbs[i].Instance
		if inst == nil {
			continue
		}
		for _, network := range inst.Networks {
			if !slices.Contains(out, network) {
				out = append(out, network)
			}
		}
	}

	return out
}

func cloneLoadBalancer(lb types.LoadBalancer) types.LoadBalancer {
	if lb.Instance != nil {
		inst := *lb.Instance
		inst.Networks = slices.Clone(inst.Networks)
		inst.Ports = slices.Clone(inst.Ports)
		lb.Instance = &inst
	}

	return lb
}
