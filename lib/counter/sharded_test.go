package counter

import (
	"errors"
	"fmt"
	"github.com/ValentinKolb/dCount/lib/ring"
	"github.com/ValentinKolb/dCount/lib/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func newTestSharded(t *testing.T, ids ...string) (*ShardedStore, *fakeCluster, *ring.Ring) {
	t.Helper()
	cluster := newFakeCluster()
	registry := NewNodeRegistry(cluster.connect)
	for _, id := range ids {
		require.NoError(t, registry.Register(NodeConfig{ID: id}))
	}
	r, err := ring.New(ids, 8)
	require.NoError(t, err)
	return NewShardedStore(r, registry), cluster, r
}

func TestShardedRoutesToOwner(t *testing.T) {
	s, cluster, r := newTestSharded(t, "a", "b", "c")

	for i := 0; i < 50; i++ {
		key := fmt.Sprintf("p%d", i)
		total, err := s.IncrementOnNode(key, int64(i+1))
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), total)

		owner, _ := r.Route(key)
		v, ok, err := cluster.node(owner).Get(key)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, int64(i+1), v)

		read, err := s.ReadFromNode(key)
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), read)
	}
}

func TestShardedMissingKeyReadsZero(t *testing.T) {
	s, _, _ := newTestSharded(t, "a")

	v, err := s.ReadFromNode("never-seen")
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)
}

func TestShardedRemoteFailure(t *testing.T) {
	s, cluster, _ := newTestSharded(t, "a")
	cluster.node("a").down.Store(true)

	_, err := s.IncrementOnNode("p", 1)
	require.Error(t, err)
	assert.True(t, store.IsRemoteUnavailable(err))
	assert.True(t, errors.Is(err, errNodeDown))

	var se *store.Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "a", se.Node)

	_, err = s.ReadFromNode("p")
	assert.True(t, store.IsRemoteUnavailable(err))
}

func TestShardedUnregisteredNode(t *testing.T) {
	cluster := newFakeCluster()
	registry := NewNodeRegistry(cluster.connect)
	require.NoError(t, registry.Register(NodeConfig{ID: "a"}))

	// ring knows a node the registry does not
	r, err := ring.New([]string{"ghost"}, 4)
	require.NoError(t, err)
	s := NewShardedStore(r, registry)

	_, err = s.ReadFromNode("p")
	assert.True(t, store.IsNotFound(err))
	assert.False(t, store.IsRemoteUnavailable(err))
}
