package acl

import (
	"fmt"
	"slices"
	"strings"

	"github.com/arloliu/rotacl/topology"
	"github.com/arloliu/rotacl/types"
)

// Ports opened to the world by node type.
const (
	PortHTTPS       = 443
	PortHealthCheck = 4443
)

// For computes the ACL of node within snapshot.
//
// Parameters:
//   - node: Node to compute the ACL for
//   - snapshot: Zone topology the node belongs to
//
// Returns:
//   - types.NodeACL: Trust set with TrustedNodes sorted by hostname
//   - error: *types.ConfigurationError wrapping types.ErrUnsupportedNodeType
//     for node types without ACL rules
//
// Example:
//
//	acl, err := acl.For(node, snapshot)
//	if err != nil {
//	    return err
//	}
//	firewall.Apply(acl.TrustedHostnames(), acl.TrustedNetworks, acl.TrustedPorts)
func For(node types.Node, snapshot *topology.Snapshot) (types.NodeACL, error) {
	all := snapshot.Nodes()
	b := newBuilder(node)

	b.addPorts(types.SSHPort)
	if parent, ok := all.ParentOf(node); ok {
		b.addNodes(parent)
	}

	owner, allocated := node.Owner()
	if allocated {
		b.addList(all.Owner(owner))
		b.addNetworks(snapshot.LoadBalancers().Networks(owner)...)
	}

	switch node.Type {
	case types.NodeTypeTenant:
		b.addList(all.NodeType(types.NodeTypeConfig))
		b.addList(all.NodeType(types.NodeTypeProxy))
		if allocated {
			// Traffic between nodes on different IP versions is NAT-ed through the parent.
			b.addList(all.ParentsOf(all.Owner(owner)))
		}
		if node.State == types.NodeStateReady {
			// Covers the window between allocation and the allocated ACL reaching the node.
			b.addList(all.NodeType(types.NodeTypeTenant))
		}
	case types.NodeTypeConfig:
		b.addList(all)
		b.addPorts(PortHealthCheck)
	case types.NodeTypeProxy:
		b.addList(all.NodeType(types.NodeTypeConfig))
		b.addPorts(PortHTTPS, PortHealthCheck)
	case types.NodeTypeController:
		b.addPorts(PortHealthCheck, PortHTTPS)
	case types.NodeTypeHost, types.NodeTypeConfigHost, types.NodeTypeProxyHost, types.NodeTypeControllerHost:
		return types.NodeACL{}, unsupported(node)
	default:
		return types.NodeACL{}, unsupported(node)
	}

	return b.build(), nil
}

func unsupported(node types.Node) error {
	return &types.ConfigurationError{
		Subject: node.String(),
		Reason:  fmt.Sprintf("don't know how to create ACL for node type '%s'", node.Type),
		Err:     types.ErrUnsupportedNodeType,
	}
}

// builder accumulates a trust set without duplicates.
type builder struct {
	node     types.Node
	nodes    map[string]types.Node
	networks []string
	ports    []int
}

func newBuilder(node types.Node) *builder {
	return &builder{node: node, nodes: make(map[string]types.Node)}
}

func (b *builder) addNodes(nodes ...types.Node) {
	for _, n := range nodes {
		if _, ok := b.nodes[n.Hostname]; !ok {
			b.nodes[n.Hostname] = n
		}
	}
}

func (b *builder) addList(list topology.NodeList) {
	for n := range list.Iter() {
		b.addNodes(n)
	}
}

func (b *builder) addNetworks(networks ...string) {
	for _, n := range networks {
		if !slices.Contains(b.networks, n) {
			b.networks = append(b.networks, n)
		}
	}
}

func (b *builder) addPorts(ports ...int) {
	for _, p := range ports {
		if !slices.Contains(b.ports, p) {
			b.ports = append(b.ports, p)
		}
	}
}

func (b *builder) build() types.NodeACL {
	trusted := make([]types.Node, 0, len(b.nodes))
	for _, n := range b.nodes {
		trusted = append(trusted, n)
	}
	slices.SortFunc(trusted, func(x, y types.Node) int {
		return strings.Compare(x.Hostname, y.Hostname)
	})

	networks := b.networks
	if networks == nil {
		networks = []string{}
	}

	return types.NodeACL{
		Node:            b.node,
		TrustedNodes:    trusted,
		TrustedNetworks: networks,
		TrustedPorts:    b.ports,
	}
}
