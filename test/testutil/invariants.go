package testutil

import (
	"testing"

	"github.com/arloliu/rotacl/types"
)

// AssertRotationsExclusive verifies that no rotation is assigned to more than one
// endpoint and that the number of assignments equals expectedTotal.
//
// Parameters:
//   - t: testing handle
//   - assignments: map of instance -> committed assignments
//   - expectedTotal: expected number of assignments across all instances
func AssertRotationsExclusive(t testing.TB, assignments map[types.InstanceID][]types.AssignedRotation, expectedTotal int) {
	t.Helper()

	owners := make(map[types.RotationID]string, expectedTotal)
	sum := 0
	for id, rotations := range assignments {
		sum += len(rotations)
		for _, a := range rotations {
			owner := id.String() + "/" + a.EndpointID.String()
			if prev, ok := owners[a.RotationID]; ok {
				t.Fatalf("rotation %s assigned to both %s and %s", a.RotationID, prev, owner)
			}
			owners[a.RotationID] = owner
		}
	}

	if sum != expectedTotal {
		t.Fatalf("number of assignments (%d) does not equal expected total (%d)", sum, expectedTotal)
	}
}

// AssertEndpointsCovered verifies that every instance holds exactly one rotation per
// expected endpoint, in the given order.
func AssertEndpointsCovered(t testing.TB, assignments map[types.InstanceID][]types.AssignedRotation, endpoints ...types.EndpointID) {
	t.Helper()

	for id, rotations := range assignments {
		if len(rotations) != len(endpoints) {
			t.Fatalf("instance %s holds %d rotations, expected %d", id, len(rotations), len(endpoints))
		}
		for i, a := range rotations {
			if a.EndpointID != endpoints[i] {
				t.Fatalf("instance %s: assignment %d is for endpoint %s, expected %s", id, i, a.EndpointID, endpoints[i])
			}
		}
	}
}
