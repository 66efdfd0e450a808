package types

import (
	"encoding/binary"
	"slices"

	"github.com/zeebo/xxh3"
)

// SSHPort is trusted by every node.
const SSHPort = 22

// NodeACL declares which nodes, networks and ports a node should trust.
//
// A NodeACL is derived from topology state and recomputed on demand; it is
// never the source of truth for firewall state.
type NodeACL struct {
	// Node is the node the ACL applies to.
	Node Node `json:"node"`

	// TrustedNodes is sorted by hostname and contains each hostname once.
	TrustedNodes []Node `json:"trustedNodes"`

	// TrustedNetworks is a set of CIDR networks, in first-seen order.
	TrustedNetworks []string `json:"trustedNetworks"`

	// TrustedPorts is a set of ports open to the world, in first-seen order.
	TrustedPorts []int `json:"trustedPorts"`
}

// TrustsNode reports whether hostname is in the trusted node set.
func (a NodeACL) TrustsNode(hostname string) bool {
	_, found := slices.BinarySearchFunc(a.TrustedNodes, hostname, func(n Node, h string) int {
		switch {
		case n.Hostname < h:
			return -1
		case n.Hostname > h:
			return 1
		default:
			return 0
		}
	})

	return found
}

// TrustsNetwork reports whether network is in the trusted network set.
func (a NodeACL) TrustsNetwork(network string) bool {
	return slices.Contains(a.TrustedNetworks, network)
}

// TrustsPort reports whether port is in the trusted port set.
func (a NodeACL) TrustsPort(port int) bool {
	return slices.Contains(a.TrustedPorts, port)
}

// TrustedHostnames returns the hostnames of the trusted nodes, sorted.
func (a NodeACL) TrustedHostnames() []string {
	out := make([]string, len(a.TrustedNodes))
	for i, n := range a.TrustedNodes {
		out[i] = n.Hostname
	}

	return out
}

// Fingerprint returns a hash of the trust set that is independent of set order.
//
// Firewall rule generators compare fingerprints to skip unchanged nodes.
func (a NodeACL) Fingerprint() uint64 {
	h := xxh3.New()
	_, _ = h.WriteString(a.Node.Hostname)
	_, _ = h.Write([]byte{0})

	for _, name := range a.TrustedHostnames() {
		_, _ = h.WriteString(name)
		_, _ = h.Write([]byte{0})
	}
	_, _ = h.Write([]byte{1})

	networks := slices.Clone(a.TrustedNetworks)
	slices.Sort(networks)
	for _, n := range networks {
		_, _ = h.WriteString(n)
		_, _ = h.Write([]byte{0})
	}
	_, _ = h.Write([]byte{1})

	ports := slices.Clone(a.TrustedPorts)
	slices.Sort(ports)
	var buf [8]byte
	for _, p := range ports {
		binary.LittleEndian.PutUint64(buf[:], uint64(p)) //nolint:gosec // ports are non-negative
		_, _ = h.Write(buf[:])
	}

	return h.Sum64()
}
