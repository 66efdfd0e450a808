// Package topology provides immutable snapshots of a zone's nodes and load
// balancers, the input to node ACL computation.
//
// A Snapshot is built once (from slices or from a NATS KV node registry) and
// never changes afterwards, so any number of goroutines may query it
// concurrently without locking.
package topology
