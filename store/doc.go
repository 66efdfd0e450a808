// Package store provides types.AssignmentStore implementations holding the
// committed endpoint-to-rotation assignment table.
//
// Writers must hold the rotation lock; readers used by the rotation
// repository are called under the same lock.
package store
