// Package lock provides cluster-wide mutual exclusion for rotation assignment.
//
// Two types.Locker implementations are available:
//
//   - Local: an in-process, context-aware mutex for tests and single-process
//     control planes.
//   - NATS: a lease held as a single key in a NATS JetStream KV bucket.
//
// NATS lock protocol:
//
//   - Acquire: atomic Create of the lock key. If the key exists, the caller
//     watches the key for a delete and polls at the configured interval, then
//     retries the Create.
//   - Hold: a renewal goroutine refreshes the key with a revision-checked
//     Update every TTL/3. The bucket TTL expires the key if the holder dies.
//   - Release: revision-checked Delete, so a holder whose lease was taken over
//     never deletes the new holder's key.
package lock
