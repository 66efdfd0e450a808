package topology

import (
	"iter"
	"slices"
	"strings"

	"github.com/arloliu/rotacl/types"
)

// NodeList is an immutable list of nodes sorted by hostname.
//
// Filter methods return new lists and never modify the receiver.
type NodeList struct {
	nodes []types.Node
	idx   *nodeIndex
}

// nodeIndex holds groupings precomputed for a snapshot's full node list.
type nodeIndex struct {
	byType  map[types.NodeType]NodeList
	byOwner map[types.ApplicationID]NodeList
}

// NewNodeList creates a list from nodes, sorted by hostname.
//
// Nodes are copied; later changes to the input do not affect the list.
func NewNodeList(nodes []types.Node) NodeList {
	out := make([]types.Node, len(nodes))
	for i, n := range nodes {
		out[i] = cloneNode(n)
	}
	slices.SortStableFunc(out, compareHostname)

	return NodeList{nodes: out}
}

// indexed returns l with type and owner groupings precomputed.
func (l NodeList) indexed() NodeList {
	idx := &nodeIndex{
		byType:  make(map[types.NodeType]NodeList),
		byOwner: make(map[types.ApplicationID]NodeList),
	}
	for _, n := range l.nodes {
		idx.byType[n.Type] = NodeList{nodes: append(idx.byType[n.Type].nodes, n)}
		if owner, ok := n.Owner(); ok {
			idx.byOwner[owner] = NodeList{nodes: append(idx.byOwner[owner].nodes, n)}
		}
	}
	l.idx = idx

	return l
}

// All returns a copy of the nodes in hostname order.
func (l NodeList) All() []types.Node {
	return slices.Clone(l.nodes)
}

// Iter yields the nodes in hostname order without copying the list.
func (l NodeList) Iter() iter.Seq[types.Node] {
	return slices.Values(l.nodes)
}

// Len returns the number of nodes.
func (l NodeList) Len() int {
	return len(l.nodes)
}

// Hostnames returns the hostnames in order.
func (l NodeList) Hostnames() []string {
	out := make([]string, len(l.nodes))
	for i, n := range l.nodes {
		out[i] = n.Hostname
	}

	return out
}

// Node returns the node with the given hostname.
func (l NodeList) Node(hostname string) (types.Node, bool) {
	i, found := slices.BinarySearchFunc(l.nodes, hostname, func(n types.Node, h string) int {
		return strings.Compare(n.Hostname, h)
	})
	if !found {
		return types.Node{}, false
	}

	return l.nodes[i], true
}

// NodeType returns the nodes having any of the given types.
func (l NodeList) NodeType(nodeTypes ...types.NodeType) NodeList {
	if l.idx != nil && len(nodeTypes) == 1 {
		return l.idx.byType[nodeTypes[0]]
	}

	return l.filter(func(n types.Node) bool {
		return slices.Contains(nodeTypes, n.Type)
	})
}

// State returns the nodes in any of the given states.
func (l NodeList) State(states ...types.NodeState) NodeList {
	return l.filter(func(n types.Node) bool {
		return slices.Contains(states, n.State)
	})
}

// Owner returns the nodes allocated to app.
func (l NodeList) Owner(app types.ApplicationID) NodeList {
	if l.idx != nil {
		return l.idx.byOwner[app]
	}

	return l.filter(func(n types.Node) bool {
		owner, ok := n.Owner()
		return ok && owner == app
	})
}

// Allocated returns the nodes allocated to any application.
func (l NodeList) Allocated() NodeList {
	return l.filter(func(n types.Node) bool {
		return n.Allocation != nil
	})
}

// ParentOf returns the parent host of n, if it is in this list.
func (l NodeList) ParentOf(n types.Node) (types.Node, bool) {
	if n.ParentHostname == "" {
		return types.Node{}, false
	}

	return l.Node(n.ParentHostname)
}

// ParentsOf returns the parent hosts in this list of any node in children.
func (l NodeList) ParentsOf(children NodeList) NodeList {
	names := make(map[string]struct{}, children.Len())
	for _, c := range children.nodes {
		if c.ParentHostname != "" {
			names[c.ParentHostname] = struct{}{}
		}
	}

	return l.filter(func(n types.Node) bool {
		_, ok := names[n.Hostname]
		return ok
	})
}

// ChildrenOf returns the nodes in this list running on host.
func (l NodeList) ChildrenOf(host types.Node) NodeList {
	return l.filter(func(n types.Node) bool {
		return n.ParentHostname == host.Hostname
	})
}

func (l NodeList) filter(keep func(types.Node) bool) NodeList {
	var out []types.Node
	for _, n := range l.nodes {
		if keep(n) {
			out = append(out, n)
		}
	}

	return NodeList{nodes: out}
}

func compareHostname(a, b types.Node) int {
	return strings.Compare(a.Hostname, b.Hostname)
}

func cloneNode(n types.Node) types.Node {
	if n.Allocation != nil {
		alloc := *n.Allocation
		n.Allocation = &alloc
	}

	return n
}
