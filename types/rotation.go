package types

import (
	"slices"
	"strings"
)

// RotationID identifies a global rotation.
//
// Rotation IDs are opaque but totally ordered by lexicographic comparison.
// Allocation always hands out the lowest available ID first, which makes
// assignments reproducible across retries.
type RotationID string

// String returns the raw identifier.
func (id RotationID) String() string {
	return string(id)
}

// Compare orders rotation IDs lexicographically.
//
// Returns:
//   - int: -1 if id < other, 0 if equal, +1 if id > other
func (id RotationID) Compare(other RotationID) int {
	return strings.Compare(string(id), string(other))
}

// Rotation is a pre-provisioned global DNS/load-balancing resource.
//
// Rotations are created once from static configuration and never mutated.
type Rotation struct {
	// ID uniquely identifies the rotation.
	ID RotationID `json:"id" yaml:"id"`

	// DNSTarget is the global name traffic for this rotation is routed through.
	DNSTarget string `json:"dnsTarget" yaml:"dnsTarget"`
}

// EndpointID names an application-declared traffic entry point.
type EndpointID string

// DefaultEndpointID is the endpoint used for rotations assigned through the
// legacy global-service-id declaration.
const DefaultEndpointID EndpointID = "default"

// String returns the raw identifier.
func (id EndpointID) String() string {
	return string(id)
}

// ClusterID identifies a container cluster within an application.
type ClusterID string

// String returns the raw identifier.
func (id ClusterID) String() string {
	return string(id)
}

// AssignedRotation binds one endpoint of an instance to one rotation.
//
// An assignment is created on first allocation and its rotation never changes
// while the endpoint stays declared.
type AssignedRotation struct {
	// ClusterID is the container cluster receiving the endpoint's traffic.
	ClusterID ClusterID `json:"clusterId"`

	// EndpointID is the declared endpoint.
	EndpointID EndpointID `json:"endpointId"`

	// RotationID is the rotation backing the endpoint.
	RotationID RotationID `json:"rotationId"`

	// Regions lists the regions the endpoint routes to, sorted and unique.
	Regions []string `json:"regions"`
}

// NewAssignedRotation creates an assignment with normalized regions.
func NewAssignedRotation(cluster ClusterID, endpoint EndpointID, rotation RotationID, regions []string) AssignedRotation {
	return AssignedRotation{
		ClusterID:  cluster,
		EndpointID: endpoint,
		RotationID: rotation,
		Regions:    normalizeRegions(regions),
	}
}

// Equal reports whether two assignments are identical.
func (a AssignedRotation) Equal(other AssignedRotation) bool {
	return a.ClusterID == other.ClusterID &&
		a.EndpointID == other.EndpointID &&
		a.RotationID == other.RotationID &&
		slices.Equal(a.Regions, other.Regions)
}

func normalizeRegions(regions []string) []string {
	out := make([]string, 0, len(regions))
	for _, r := range regions {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	slices.Sort(out)

	return slices.Compact(out)
}
