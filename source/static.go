package source

import (
	"context"
	"slices"

	"github.com/arloliu/rotacl/types"
)

// Static implements a rotation source with a fixed list of rotations.
type Static struct {
	rotations []types.Rotation
}

var _ types.RotationSource = (*Static)(nil)

// NewStatic creates a new static rotation source.
//
// The source returns a fixed list of rotations that never changes.
//
// Parameters:
//   - rotations: Fixed list of rotations
//
// Returns:
//   - *Static: Initialized static source
//
// Example:
//
//	src := source.NewStatic([]types.Rotation{
//	    {ID: "rotation-id-01", DNSTarget: "rotation-fqdn-01."},
//	    {ID: "rotation-id-02", DNSTarget: "rotation-fqdn-02."},
//	})
func NewStatic(rotations []types.Rotation) *Static {
	return &Static{rotations: slices.Clone(rotations)}
}

// FromMap creates a static source from an id to DNS target table, the shape
// rotations are configured in.
func FromMap(table map[string]string) *Static {
	rotations := make([]types.Rotation, 0, len(table))
	for id, target := range table {
		rotations = append(rotations, types.Rotation{ID: types.RotationID(id), DNSTarget: target})
	}

	return &Static{rotations: rotations}
}

// ListRotations returns a copy of the static rotation list.
//
// Returns:
//   - []types.Rotation: The fixed list of rotations
//   - error: Always nil (never fails)
func (s *Static) ListRotations(_ context.Context) ([]types.Rotation, error) {
	return slices.Clone(s.rotations), nil
}
