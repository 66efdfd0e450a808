// Package testing provides test utilities for the rotacl library.
//
// This package offers helpers for setting up test environments, particularly
// embedded NATS servers for the KV-backed lock, assignment store and topology
// registry. It follows Go's convention of providing testing utilities in a
// dedicated package (similar to net/http/httptest).
//
// Key utilities:
//   - StartEmbeddedNATS: Single NATS server with JetStream
//   - CreateJetStreamKV: Convenience wrapper for KV bucket creation
//   - NewTestLogger: Logger writing through t.Logf
//   - Rotations: Rotation pool fixture
//
// Example usage:
//
//	import (
//	    "testing"
//	    rotacltest "github.com/arloliu/rotacl/testing"
//	)
//
//	func TestMyComponent(t *testing.T) {
//	    _, nc := rotacltest.StartEmbeddedNATS(t)
//	    kv := rotacltest.CreateJetStreamKV(t, nc, "rotacl-assignments")
//	}
package testing
