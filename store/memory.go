package store

import (
	"context"
	"slices"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/arloliu/rotacl/types"
)

// Memory is an in-process assignment table.
//
// It is safe for concurrent use. Stored slices are copied on the way in and
// out, so callers never share backing arrays with the table.
type Memory struct {
	instances *xsync.Map[types.InstanceID, []types.AssignedRotation]
}

// Compile-time assertion that Memory implements AssignmentStore.
var _ types.AssignmentStore = (*Memory)(nil)

// NewMemory creates an empty in-memory assignment table.
func NewMemory() *Memory {
	return &Memory{instances: xsync.NewMap[types.InstanceID, []types.AssignedRotation]()}
}

// Instance returns the committed state of id.
func (m *Memory) Instance(_ context.Context, id types.InstanceID) (types.Instance, error) {
	rotations, _ := m.instances.Load(id)

	return types.Instance{ID: id, Rotations: cloneRotations(rotations)}, nil
}

// AssignedRotations returns a snapshot of every instance's assignments.
func (m *Memory) AssignedRotations(_ context.Context) (map[types.InstanceID][]types.AssignedRotation, error) {
	out := make(map[types.InstanceID][]types.AssignedRotation, m.instances.Size())
	m.instances.Range(func(id types.InstanceID, rotations []types.AssignedRotation) bool {
		out[id] = cloneRotations(rotations)
		return true
	})

	return out, nil
}

// Store replaces the assignments of id.
func (m *Memory) Store(_ context.Context, id types.InstanceID, rotations []types.AssignedRotation) error {
	if id.IsZero() {
		return &types.ConfigurationError{Subject: "assignment store", Reason: "instance id is empty"}
	}
	m.instances.Store(id, cloneRotations(rotations))

	return nil
}

// Remove drops id from the table. Removing an unknown instance is a no-op.
func (m *Memory) Remove(_ context.Context, id types.InstanceID) error {
	m.instances.Delete(id)

	return nil
}

// Len returns the number of instances in the table.
func (m *Memory) Len() int {
	return m.instances.Size()
}

func cloneRotations(rotations []types.AssignedRotation) []types.AssignedRotation {
	out := make([]types.AssignedRotation, len(rotations))
	for i, r := range rotations {
		r.Regions = slices.Clone(r.Regions)
		out[i] = r
	}

	return out
}
