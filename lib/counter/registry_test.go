package counter

import (
	"errors"
	"github.com/ValentinKolb/dCount/lib/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestParseNodeList(t *testing.T) {
	nodes, err := ParseNodeList(" a=localhost:8081, b/2=localhost:8082,localhost:8083 ,c=local", 1)
	require.NoError(t, err)
	assert.Equal(t, []NodeConfig{
		{ID: "a", Endpoint: "localhost:8081", ShardID: 1},
		{ID: "b", Endpoint: "localhost:8082", ShardID: 2},
		{ID: "localhost:8083", Endpoint: "localhost:8083", ShardID: 1},
		{ID: "c", Endpoint: LocalEndpoint, ShardID: 1},
	}, nodes)
}

func TestParseNodeListInvalid(t *testing.T) {
	for _, s := range []string{"", " , ", "a=", "=host:1", "a=h:1,a=h:2", "a/x=h:1"} {
		_, err := ParseNodeList(s, 1)
		assert.True(t, store.IsConfigurationError(err), "input %q", s)
	}
}

func TestRegistry(t *testing.T) {
	cluster := newFakeCluster()
	r := NewNodeRegistry(cluster.connect)

	require.NoError(t, r.RegisterAll([]NodeConfig{{ID: "b"}, {ID: "a"}}))
	assert.Equal(t, []string{"a", "b"}, r.NodeIDs())

	client, err := r.Get("a")
	require.NoError(t, err)
	assert.Same(t, cluster.node("a"), client)

	// duplicate registration does not connect again
	err = r.Register(NodeConfig{ID: "a"})
	assert.True(t, store.IsConfigurationError(err))
	assert.Same(t, cluster.node("a"), client)

	_, err = r.Get("unknown")
	assert.True(t, store.IsNotFound(err))

	require.NoError(t, r.Close())
	assert.True(t, cluster.node("a").closed.Load())
	assert.True(t, cluster.node("b").closed.Load())
	require.NoError(t, r.Close())
}

func TestRegistryConnectFailure(t *testing.T) {
	r := NewNodeRegistry(func(node NodeConfig) (store.ICounterStore, error) {
		return nil, errors.New("dial failed")
	})

	err := r.Register(NodeConfig{ID: "a", Endpoint: "h:1"})
	assert.True(t, store.IsConfigurationError(err))
	assert.Empty(t, r.NodeIDs())
}
