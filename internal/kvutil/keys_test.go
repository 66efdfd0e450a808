package kvutil

import (
	"context"
	"testing"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"

	rotacltest "github.com/arloliu/rotacl/testing"
)

type record struct {
	Name  string `json:"name"`
	Ports []int  `json:"ports"`
}

func TestKeysWithPrefix(t *testing.T) {
	_, nc := rotacltest.StartEmbeddedNATS(t)
	kv := rotacltest.CreateJetStreamKV(t, nc, "test-keys")
	ctx := context.Background()

	t.Run("empty bucket", func(t *testing.T) {
		keys, err := KeysWithPrefix(ctx, kv, "node")
		require.NoError(t, err)
		require.Empty(t, keys)
	})

	t.Run("filters by prefix", func(t *testing.T) {
		for _, key := range []string{"node.host1", "node.host2", "lb.lb1", "nodes.other"} {
			_, err := kv.Put(ctx, key, []byte("{}"))
			require.NoError(t, err)
		}

		keys, err := KeysWithPrefix(ctx, kv, "node")
		require.NoError(t, err)
		require.ElementsMatch(t, []string{"node.host1", "node.host2"}, keys)

		keys, err = KeysWithPrefix(ctx, kv, "lb")
		require.NoError(t, err)
		require.Equal(t, []string{"lb.lb1"}, keys)
	})
}

func TestJSONRoundTrip(t *testing.T) {
	_, nc := rotacltest.StartEmbeddedNATS(t)
	kv := rotacltest.CreateJetStreamKV(t, nc, "test-json")
	ctx := context.Background()

	rev, err := PutJSON(ctx, kv, "node.host1", record{Name: "host1", Ports: []int{22, 443}})
	require.NoError(t, err)
	require.NotZero(t, rev)

	got, gotRev, err := GetJSON[record](ctx, kv, "node.host1")
	require.NoError(t, err)
	require.Equal(t, rev, gotRev)
	require.Equal(t, record{Name: "host1", Ports: []int{22, 443}}, got)

	_, _, err = GetJSON[record](ctx, kv, "node.missing")
	require.ErrorIs(t, err, jetstream.ErrKeyNotFound)

	_, err = kv.Put(ctx, "node.bad", []byte("not-json"))
	require.NoError(t, err)
	_, _, err = GetJSON[record](ctx, kv, "node.bad")
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode")
}
