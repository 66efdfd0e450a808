// Package source provides built-in rotation source implementations.
//
// Rotation sources provide the static rotation catalog. The package includes:
//
//   - Static: Fixed list of rotations
//   - File: Rotation table loaded from a YAML file
//
// Custom sources can be implemented by satisfying the types.RotationSource interface.
package source
