package rotacl

import "github.com/arloliu/rotacl/types"

// Re-export types from the internal types package.
//
// The sub-packages (rotation, acl, store, lock, topology) depend on `types`
// only, so the root package can import all of them while users still write
// rotacl.Rotation, rotacl.Logger and so on.
type (
	RotationID       = types.RotationID
	Rotation         = types.Rotation
	EndpointID       = types.EndpointID
	ClusterID        = types.ClusterID
	AssignedRotation = types.AssignedRotation
	InstanceID       = types.InstanceID
	Instance         = types.Instance
	ApplicationID    = types.ApplicationID

	Environment    = types.Environment
	Zone           = types.Zone
	Endpoint       = types.Endpoint
	InstanceSpec   = types.InstanceSpec
	DeploymentSpec = types.DeploymentSpec

	NodeType             = types.NodeType
	NodeState            = types.NodeState
	Allocation           = types.Allocation
	Node                 = types.Node
	LoadBalancerInstance = types.LoadBalancerInstance
	LoadBalancer         = types.LoadBalancer
	NodeACL              = types.NodeACL

	ConfigurationError = types.ConfigurationError
)

// Re-export interfaces from the internal types package for convenience.
type (
	RotationSource   = types.RotationSource
	AssignmentReader = types.AssignmentReader
	AssignmentStore  = types.AssignmentStore
	Locker           = types.Locker
	LockHandle       = types.LockHandle
	MetricsCollector = types.MetricsCollector
	Logger           = types.Logger
	Hooks            = types.Hooks
)

// DefaultEndpointID is the endpoint of rotations assigned through a global service ID.
const DefaultEndpointID = types.DefaultEndpointID

// SSHPort is trusted by every node ACL.
const SSHPort = types.SSHPort

// Re-export environment constants.
const (
	EnvironmentProd    = types.EnvironmentProd
	EnvironmentStaging = types.EnvironmentStaging
	EnvironmentPerf    = types.EnvironmentPerf
	EnvironmentTest    = types.EnvironmentTest
	EnvironmentDev     = types.EnvironmentDev
)

// Re-export node type constants.
const (
	NodeTypeTenant         = types.NodeTypeTenant
	NodeTypeConfig         = types.NodeTypeConfig
	NodeTypeProxy          = types.NodeTypeProxy
	NodeTypeController     = types.NodeTypeController
	NodeTypeHost           = types.NodeTypeHost
	NodeTypeConfigHost     = types.NodeTypeConfigHost
	NodeTypeProxyHost      = types.NodeTypeProxyHost
	NodeTypeControllerHost = types.NodeTypeControllerHost
)

// Re-export node state constants.
const (
	NodeStateProvisioned   = types.NodeStateProvisioned
	NodeStateReady         = types.NodeStateReady
	NodeStateReserved      = types.NodeStateReserved
	NodeStateActive        = types.NodeStateActive
	NodeStateInactive      = types.NodeStateInactive
	NodeStateDirty         = types.NodeStateDirty
	NodeStateFailed        = types.NodeStateFailed
	NodeStateParked        = types.NodeStateParked
	NodeStateDeprovisioned = types.NodeStateDeprovisioned
)
