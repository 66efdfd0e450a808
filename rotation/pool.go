package rotation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/arloliu/rotacl/types"
)

// Pool is the immutable rotation catalog, sorted by RotationID.
type Pool struct {
	rotations []types.Rotation
	byID      map[types.RotationID]types.Rotation
}

// NewPool builds a pool from configured rotations.
//
// DNS targets are trimmed and rotations sorted ascending by ID. Empty or
// duplicate IDs are rejected.
//
// Parameters:
//   - rotations: Configured rotations, in any order
//
// Returns:
//   - *Pool: Sorted, immutable pool
//   - error: Non-nil on empty or duplicate IDs
func NewPool(rotations []types.Rotation) (*Pool, error) {
	p := &Pool{
		rotations: make([]types.Rotation, 0, len(rotations)),
		byID:      make(map[types.RotationID]types.Rotation, len(rotations)),
	}

	for _, r := range rotations {
		if r.ID == "" {
			return nil, fmt.Errorf("rotation with empty id (target %q)", r.DNSTarget)
		}
		if _, dup := p.byID[r.ID]; dup {
			return nil, fmt.Errorf("duplicate rotation id %s", r.ID)
		}
		r.DNSTarget = strings.TrimSpace(r.DNSTarget)
		p.byID[r.ID] = r
		p.rotations = append(p.rotations, r)
	}

	slices.SortFunc(p.rotations, func(a, b types.Rotation) int {
		return a.ID.Compare(b.ID)
	})

	return p, nil
}

// Len returns the number of rotations in the pool.
func (p *Pool) Len() int {
	return len(p.rotations)
}

// Rotations returns a copy of the pool in ascending ID order.
func (p *Pool) Rotations() []types.Rotation {
	return slices.Clone(p.rotations)
}

// Get returns the rotation with the given ID.
func (p *Pool) Get(id types.RotationID) (types.Rotation, bool) {
	r, ok := p.byID[id]
	return r, ok
}

// without returns the pool minus the given IDs, preserving ascending order.
func (p *Pool) without(taken map[types.RotationID]struct{}) []types.Rotation {
	out := make([]types.Rotation, 0, len(p.rotations))
	for _, r := range p.rotations {
		if _, ok := taken[r.ID]; !ok {
			out = append(out, r)
		}
	}

	return out
}
