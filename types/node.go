package types

// ApplicationID identifies the owner of allocated nodes and load balancers,
// in the "tenant:application:instance" form.
type ApplicationID string

// String returns the raw identifier.
func (id ApplicationID) String() string {
	return string(id)
}

// NodeType is the role of a node in a zone.
type NodeType string

// Node types known to the topology.
const (
	// NodeTypeTenant runs tenant application containers.
	NodeTypeTenant NodeType = "tenant"
	// NodeTypeConfig runs a config server.
	NodeTypeConfig NodeType = "config"
	// NodeTypeProxy runs a zone routing proxy.
	NodeTypeProxy NodeType = "proxy"
	// NodeTypeController runs the platform controller.
	NodeTypeController NodeType = "controller"
	// NodeTypeHost is a bare-metal or virtual host for tenant nodes.
	NodeTypeHost NodeType = "host"
	// NodeTypeConfigHost hosts config server nodes.
	NodeTypeConfigHost NodeType = "confighost"
	// NodeTypeProxyHost hosts proxy nodes.
	NodeTypeProxyHost NodeType = "proxyhost"
	// NodeTypeControllerHost hosts controller nodes.
	NodeTypeControllerHost NodeType = "controllerhost"
)

// IsHost reports whether the type is a host for child nodes.
func (t NodeType) IsHost() bool {
	switch t {
	case NodeTypeHost, NodeTypeConfigHost, NodeTypeProxyHost, NodeTypeControllerHost:
		return true
	default:
		return false
	}
}

// NodeState is the lifecycle state of a node.
type NodeState string

// Node states.
const (
	NodeStateProvisioned   NodeState = "provisioned"
	NodeStateReady         NodeState = "ready"
	NodeStateReserved      NodeState = "reserved"
	NodeStateActive        NodeState = "active"
	NodeStateInactive      NodeState = "inactive"
	NodeStateDirty         NodeState = "dirty"
	NodeStateFailed        NodeState = "failed"
	NodeStateParked        NodeState = "parked"
	NodeStateDeprovisioned NodeState = "deprovisioned"
)

// Allocation records which application a node is allocated to.
type Allocation struct {
	Owner     ApplicationID `json:"owner"`
	ClusterID ClusterID     `json:"clusterId"`
}

// Node is a member of the zone topology.
type Node struct {
	// Hostname uniquely identifies the node within a zone.
	Hostname string `json:"hostname"`

	// Type is the node's role.
	Type NodeType `json:"type"`

	// State is the node's lifecycle state.
	State NodeState `json:"state"`

	// ParentHostname is the host this node runs on, empty for hosts.
	ParentHostname string `json:"parentHostname,omitempty"`

	// Allocation is set while the node is allocated to an application.
	Allocation *Allocation `json:"allocation,omitempty"`
}

// Owner returns the owning application of an allocated node.
func (n Node) Owner() (ApplicationID, bool) {
	if n.Allocation == nil {
		return "", false
	}

	return n.Allocation.Owner, true
}

// String returns a short description used in logs and errors.
func (n Node) String() string {
	return "node " + n.Hostname + " (" + string(n.Type) + ", " + string(n.State) + ")"
}

// LoadBalancerInstance is the provisioned part of a load balancer.
type LoadBalancerInstance struct {
	Hostname string   `json:"hostname"`
	Networks []string `json:"networks"`
	Ports    []int    `json:"ports"`
}

// LoadBalancer fronts one cluster of an application.
type LoadBalancer struct {
	ID        string        `json:"id"`
	Owner     ApplicationID `json:"owner"`
	ClusterID ClusterID     `json:"clusterId"`
	State     string        `json:"state"`

	// Instance is nil until the load balancer has been provisioned.
	Instance *LoadBalancerInstance `json:"instance,omitempty"`
}
