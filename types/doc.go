// Package types provides core type definitions and interfaces for the rotacl library.
//
// This package contains shared types that are used across multiple packages in the
// rotacl library. By keeping these types in a separate package, we avoid import cycles
// between the main rotacl package and its implementations.
//
// Key types:
//   - Rotation, RotationID: Global load-balancing rotations from the static pool
//   - AssignedRotation: Binding of an application endpoint to a rotation
//   - DeploymentSpec: Endpoint declarations of an application's instances
//   - Node, LoadBalancer: Members of a zone topology
//   - NodeACL: Derived trust set of a node
//   - Locker, AssignmentStore, RotationSource: Collaborator interfaces
//   - Logger, MetricsCollector, Hooks: Observability interfaces
package types
