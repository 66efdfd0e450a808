package testing

import (
	"fmt"

	"github.com/arloliu/rotacl/types"
)

// Rotations builds a rotation pool fixture.
//
// Each id gets the DNS target "<id>.global.example.com".
//
// Example:
//
//	src := source.NewStatic(rotacltest.Rotations("rotation-id-01", "rotation-id-02"))
func Rotations(ids ...string) []types.Rotation {
	out := make([]types.Rotation, 0, len(ids))
	for _, id := range ids {
		out = append(out, types.Rotation{
			ID:        types.RotationID(id),
			DNSTarget: id + ".global.example.com",
		})
	}

	return out
}

// NumberedRotations builds a pool of n rotations named rotation-id-01 and up.
func NumberedRotations(n int) []types.Rotation {
	ids := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		ids = append(ids, fmt.Sprintf("rotation-id-%02d", i))
	}

	return Rotations(ids...)
}
