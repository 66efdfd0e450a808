package testutil

import (
	"testing"

	"github.com/arloliu/rotacl/types"
)

func TestAssertRotationsExclusive_Passes(t *testing.T) {
	assignments := map[types.InstanceID][]types.AssignedRotation{
		{Tenant: "t", Application: "a1", Instance: "default"}: {
			{EndpointID: "e1", RotationID: "r1"},
			{EndpointID: "e2", RotationID: "r2"},
		},
		{Tenant: "t", Application: "a2", Instance: "default"}: {
			{EndpointID: "e1", RotationID: "r3"},
			{EndpointID: "e2", RotationID: "r4"},
		},
	}

	AssertRotationsExclusive(t, assignments, 4)
	AssertEndpointsCovered(t, assignments, "e1", "e2")
}
