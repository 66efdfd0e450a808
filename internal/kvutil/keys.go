package kvutil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/rotacl/types"
)

// KeysWithPrefix lists the bucket keys starting with prefix + ".".
//
// An empty bucket is not an error and yields an empty slice.
//
// Parameters:
//   - ctx: Context for cancellation
//   - kv: Bucket to list
//   - prefix: Key prefix without the trailing dot (e.g., "node")
//
// Returns:
//   - []string: Matching keys in bucket order
//   - error: KV access error
func KeysWithPrefix(ctx context.Context, kv jetstream.KeyValue, prefix string) ([]string, error) {
	keys, err := kv.Keys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) || types.IsNoKeysFoundError(err) {
			return []string{}, nil
		}

		return nil, fmt.Errorf("failed to list KV keys: %w", err)
	}

	want := prefix + "."
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		if strings.HasPrefix(key, want) {
			out = append(out, key)
		}
	}

	return out, nil
}

// GetJSON reads key and decodes its JSON value into a T.
//
// Parameters:
//   - ctx: Context for cancellation
//   - kv: Bucket to read
//   - key: Key to read
//
// Returns:
//   - T: Decoded value
//   - uint64: Entry revision
//   - error: jetstream.ErrKeyNotFound (wrapped) when absent, or a decode error
func GetJSON[T any](ctx context.Context, kv jetstream.KeyValue, key string) (T, uint64, error) {
	var v T

	entry, err := kv.Get(ctx, key)
	if err != nil {
		return v, 0, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	if err := json.Unmarshal(entry.Value(), &v); err != nil {
		return v, 0, fmt.Errorf("failed to decode key %s: %w", key, err)
	}

	return v, entry.Revision(), nil
}

// PutJSON encodes v as JSON and stores it under key.
//
// Parameters:
//   - ctx: Context for cancellation
//   - kv: Bucket to write
//   - key: Key to write
//   - v: Value to encode
//
// Returns:
//   - uint64: New entry revision
//   - error: Encode or KV error
func PutJSON(ctx context.Context, kv jetstream.KeyValue, key string, v any) (uint64, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("failed to encode key %s: %w", key, err)
	}

	rev, err := kv.Put(ctx, key, data)
	if err != nil {
		return 0, fmt.Errorf("failed to put key %s: %w", key, err)
	}

	return rev, nil
}
