package hooks

import (
	"context"

	"github.com/arloliu/rotacl/types"
)

// NopHooks implements Hooks with no-op callbacks.
//
// This is the default implementation used when no custom hooks are provided,
// eliminating the need for nil checks throughout the codebase.
type NopHooks struct{}

// Compile-time assertions that NopHooks implements hook callbacks.
var (
	_ func(context.Context, types.InstanceID, []types.AssignedRotation) error = (*NopHooks)(nil).OnRotationsAssigned
	_ func(context.Context, types.InstanceID, []types.AssignedRotation) error = (*NopHooks)(nil).OnInstanceRemoved
	_ func(context.Context, error) error                                      = (*NopHooks)(nil).OnError
)

// NewNop creates a new no-op hooks implementation.
//
// Returns:
//   - types.Hooks: Hooks with no-op implementations
func NewNop() types.Hooks {
	h := &NopHooks{}
	return types.Hooks{
		OnRotationsAssigned: h.OnRotationsAssigned,
		OnInstanceRemoved:   h.OnInstanceRemoved,
		OnError:             h.OnError,
	}
}

// Fill returns hooks with every nil callback replaced by its no-op version.
//
// Parameters:
//   - h: Caller supplied hooks, may be nil
//
// Returns:
//   - types.Hooks: Hooks safe to call without nil checks
func Fill(h *types.Hooks) types.Hooks {
	nop := NewNop()
	if h == nil {
		return nop
	}

	out := *h
	if out.OnRotationsAssigned == nil {
		out.OnRotationsAssigned = nop.OnRotationsAssigned
	}
	if out.OnInstanceRemoved == nil {
		out.OnInstanceRemoved = nop.OnInstanceRemoved
	}
	if out.OnError == nil {
		out.OnError = nop.OnError
	}

	return out
}

// OnRotationsAssigned is a no-op implementation.
func (h *NopHooks) OnRotationsAssigned(_ context.Context, _ types.InstanceID, _ []types.AssignedRotation) error {
	return nil
}

// OnInstanceRemoved is a no-op implementation.
func (h *NopHooks) OnInstanceRemoved(_ context.Context, _ types.InstanceID, _ []types.AssignedRotation) error {
	return nil
}

// OnError is a no-op implementation.
func (h *NopHooks) OnError(_ context.Context, _ error) error {
	return nil
}
