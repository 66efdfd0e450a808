// Package kvutil holds the NATS JetStream KV helpers shared by the lock,
// assignment store and topology registry.
package kvutil

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// ErrBucketMismatch is returned when an existing bucket was created with a
// different TTL than requested.
var ErrBucketMismatch = errors.New("existing KV bucket does not match requested config")

// EnsureBucket creates a KV bucket, or opens it if another process already has.
//
// Controllers started together race to create the lock and assignment
// buckets; losing the race is not an error. Transient failures are retried
// with exponential backoff. An existing bucket must carry the requested TTL,
// since the rotation lock relies on it to expire a crashed holder's lease.
//
// Parameters:
//   - ctx: Context for cancellation
//   - js: JetStream context
//   - config: Bucket configuration
//   - attempts: Maximum number of attempts (3 if <= 0)
//
// Returns:
//   - jetstream.KeyValue: Created or opened bucket
//   - error: ErrBucketMismatch, ctx error, or the last creation error
//
// Example:
//
//	kv, err := kvutil.EnsureBucket(ctx, js, jetstream.KeyValueConfig{
//	    Bucket:  "rotacl-lock",
//	    History: 1,
//	    TTL:     30 * time.Second,
//	}, 3)
func EnsureBucket(
	ctx context.Context,
	js jetstream.JetStream,
	config jetstream.KeyValueConfig,
	attempts int,
) (jetstream.KeyValue, error) {
	if attempts <= 0 {
		attempts = 3
	}

	var lastErr error
	for attempt := range attempts {
		kv, err := js.CreateKeyValue(ctx, config)
		if err == nil {
			return kv, nil
		}

		if errors.Is(err, jetstream.ErrBucketExists) {
			kv, err = openExisting(ctx, js, config)
			if err == nil || errors.Is(err, ErrBucketMismatch) {
				return kv, err
			}
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, fmt.Errorf("bucket %s: %w", config.Bucket, ctx.Err())
		}

		if attempt < attempts-1 {
			backoff := time.Duration(1<<uint(attempt)) * 10 * time.Millisecond //nolint:gosec // attempt is bounded
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("bucket %s: %w", config.Bucket, ctx.Err())
			case <-time.After(backoff):
			}
		}
	}

	return nil, fmt.Errorf("failed to create or open bucket %s after %d attempts: %w",
		config.Bucket, attempts, lastErr)
}

func openExisting(ctx context.Context, js jetstream.JetStream, config jetstream.KeyValueConfig) (jetstream.KeyValue, error) {
	kv, err := js.KeyValue(ctx, config.Bucket)
	if err != nil {
		return nil, fmt.Errorf("bucket %s exists but failed to open: %w", config.Bucket, err)
	}

	status, err := kv.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read status of bucket %s: %w", config.Bucket, err)
	}
	if status.TTL() != config.TTL {
		return nil, fmt.Errorf("%w: bucket %s has TTL %s, want %s",
			ErrBucketMismatch, config.Bucket, status.TTL(), config.TTL)
	}

	return kv, nil
}
