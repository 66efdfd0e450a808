package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/rotacl/internal/kvutil"
	"github.com/arloliu/rotacl/internal/logging"
	"github.com/arloliu/rotacl/internal/natsutil"
	"github.com/arloliu/rotacl/types"
)

// keyPrefix prefixes every instance key: instance.<tenant>.<application>.<instance>.
const keyPrefix = "instance"

// record is the JSON value stored per instance.
type record struct {
	Instance  string                   `json:"instance"`
	Rotations []types.AssignedRotation `json:"rotations"`
}

// KV is an assignment table persisted in a NATS JetStream KV bucket.
//
// Every instance is one key holding its complete assignment list, so Store
// replaces an instance's assignments in a single write.
type KV struct {
	kv     jetstream.KeyValue
	logger types.Logger
}

// Compile-time assertion that KV implements AssignmentStore.
var _ types.AssignmentStore = (*KV)(nil)

// NewKV creates a KV-backed assignment table.
//
// Parameters:
//   - kv: JetStream KV bucket without TTL
//   - logger: Logger (nil for no logging)
//
// Returns:
//   - *KV: Assignment store
func NewKV(kv jetstream.KeyValue, logger types.Logger) *KV {
	if logger == nil {
		logger = logging.NewNop()
	}

	return &KV{kv: kv, logger: logger}
}

// OpenKV ensures the assignment bucket exists and returns a store on it.
//
// Parameters:
//   - ctx: Context for bucket creation
//   - js: JetStream context
//   - bucket: Assignment bucket name
//   - logger: Logger (nil for no logging)
//
// Returns:
//   - *KV: Assignment store
//   - error: Bucket creation error
func OpenKV(ctx context.Context, js jetstream.JetStream, bucket string, logger types.Logger) (*KV, error) {
	kv, err := kvutil.EnsureBucket(ctx, js, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "rotacl rotation assignments",
		History:     5,
		Storage:     jetstream.FileStorage,
	}, 3)
	if err != nil {
		return nil, natsutil.Wrap("failed to open assignment bucket", err)
	}

	return NewKV(kv, logger), nil
}

// Instance returns the committed state of id.
func (s *KV) Instance(ctx context.Context, id types.InstanceID) (types.Instance, error) {
	key, err := instanceKey(id)
	if err != nil {
		return types.Instance{}, err
	}

	rec, _, err := kvutil.GetJSON[record](ctx, s.kv, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return types.Instance{ID: id, Rotations: []types.AssignedRotation{}}, nil
		}

		return types.Instance{}, natsutil.Wrap("failed to read instance "+id.String(), err)
	}

	return types.Instance{ID: id, Rotations: nonNil(rec.Rotations)}, nil
}

// AssignedRotations reads every instance key in the bucket.
func (s *KV) AssignedRotations(ctx context.Context) (map[types.InstanceID][]types.AssignedRotation, error) {
	keys, err := kvutil.KeysWithPrefix(ctx, s.kv, keyPrefix)
	if err != nil {
		return nil, natsutil.Wrap("failed to list instances", err)
	}

	out := make(map[types.InstanceID][]types.AssignedRotation, len(keys))
	for _, key := range keys {
		rec, _, err := kvutil.GetJSON[record](ctx, s.kv, key)
		if err != nil {
			// Deleted between listing and reading.
			if errors.Is(err, jetstream.ErrKeyNotFound) {
				continue
			}

			return nil, natsutil.Wrap("failed to read assignments", err)
		}

		// The key is authoritative; a record is never dropped, or its
		// rotations would count as free.
		id, err := instanceIDFromKey(key)
		if err != nil {
			return nil, err
		}
		if rec.Instance != id.String() {
			s.logger.Warn("assignment record names another instance, using key", "key", key, "instance", rec.Instance)
		}
		out[id] = nonNil(rec.Rotations)
	}

	s.logger.Debug("read assignment table", "instances", len(out))

	return out, nil
}

// Store replaces the assignments of id.
func (s *KV) Store(ctx context.Context, id types.InstanceID, rotations []types.AssignedRotation) error {
	key, err := instanceKey(id)
	if err != nil {
		return err
	}

	rev, err := kvutil.PutJSON(ctx, s.kv, key, record{Instance: id.String(), Rotations: nonNil(rotations)})
	if err != nil {
		return natsutil.Wrap("failed to store instance "+id.String(), err)
	}
	s.logger.Debug("stored assignments", "instance", id, "rotations", len(rotations), "revision", rev)

	return nil
}

// Remove deletes id's key. Removing an unknown instance is a no-op.
func (s *KV) Remove(ctx context.Context, id types.InstanceID) error {
	key, err := instanceKey(id)
	if err != nil {
		return err
	}

	if err := s.kv.Delete(ctx, key); err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return natsutil.Wrap("failed to remove instance "+id.String(), err)
	}

	return nil
}

func instanceKey(id types.InstanceID) (string, error) {
	if id.IsZero() {
		return "", &types.ConfigurationError{Subject: "assignment store", Reason: "instance id is empty"}
	}
	for _, part := range []string{id.Tenant, id.Application, id.Instance} {
		if part == "" || strings.ContainsAny(part, ".*> ") {
			return "", &types.ConfigurationError{
				Subject: fmt.Sprintf("instance '%s'", id),
				Reason:  "id parts must be non-empty and must not contain '.', '*', '>' or spaces",
			}
		}
	}

	return keyPrefix + "." + id.String(), nil
}

func instanceIDFromKey(key string) (types.InstanceID, error) {
	rest, ok := strings.CutPrefix(key, keyPrefix+".")
	if !ok {
		return types.InstanceID{}, fmt.Errorf("%w: unexpected assignment key %q", types.ErrInvalidAssignment, key)
	}

	id, err := types.ParseInstanceID(rest)
	if err != nil {
		return types.InstanceID{}, fmt.Errorf("%w: key %q: %w", types.ErrInvalidAssignment, key, err)
	}

	return id, nil
}

func nonNil(rotations []types.AssignedRotation) []types.AssignedRotation {
	if rotations == nil {
		return []types.AssignedRotation{}
	}

	return rotations
}
