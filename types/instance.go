package types

import (
	"fmt"
	"strings"
)

// InstanceID identifies one instance of a tenant's application.
type InstanceID struct {
	Tenant      string `json:"tenant"`
	Application string `json:"application"`
	Instance    string `json:"instance"`
}

// ParseInstanceID parses the dotted "tenant.application.instance" form.
//
// Parameters:
//   - s: Serialized instance ID
//
// Returns:
//   - InstanceID: Parsed identifier
//   - error: Non-nil if s does not have exactly three non-empty parts
func ParseInstanceID(s string) (InstanceID, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return InstanceID{}, fmt.Errorf("invalid instance id %q: expected tenant.application.instance", s)
	}

	return InstanceID{Tenant: parts[0], Application: parts[1], Instance: parts[2]}, nil
}

// String returns the dotted serialized form.
func (id InstanceID) String() string {
	return id.Tenant + "." + id.Application + "." + id.Instance
}

// IsZero reports whether no part of the ID is set.
func (id InstanceID) IsZero() bool {
	return id == InstanceID{}
}

// ApplicationID returns the owner identity used for nodes allocated to this instance.
func (id InstanceID) ApplicationID() ApplicationID {
	return ApplicationID(id.Tenant + ":" + id.Application + ":" + id.Instance)
}

// Instance is the persisted rotation state of an application instance.
type Instance struct {
	// ID identifies the instance.
	ID InstanceID `json:"id"`

	// Rotations holds the committed assignments, in endpoint declaration order.
	Rotations []AssignedRotation `json:"rotations"`
}

// Rotation returns the committed assignment for the given endpoint.
func (i Instance) Rotation(endpoint EndpointID) (AssignedRotation, bool) {
	for _, r := range i.Rotations {
		if r.EndpointID == endpoint {
			return r, true
		}
	}

	return AssignedRotation{}, false
}
