package types

import "context"

// RotationSource provides the static catalog of rotations.
//
// Implementations can read:
//   - Static: fixed list, e.g. built from configuration
//   - File: YAML rotation table loaded at startup
//
// The repository calls ListRotations exactly once, at construction. Pool
// membership never changes afterwards.
type RotationSource interface {
	// ListRotations returns every configured rotation.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//
	// Returns:
	//   - []Rotation: Configured rotations, in any order
	//   - error: Load error (nil on success)
	ListRotations(ctx context.Context) ([]Rotation, error)
}
