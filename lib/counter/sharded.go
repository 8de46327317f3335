package counter

import (
	"github.com/ValentinKolb/dCount/lib/ring"
	"github.com/ValentinKolb/dCount/lib/store"
)

// IShardedStore routes counter operations to the backing node that owns a key.
type IShardedStore interface {
	// IncrementOnNode adds delta to the counter of key on the owning node and returns the new total.
	IncrementOnNode(key string, delta int64) (total int64, err error)
	// ReadFromNode returns the counter of key from the owning node. A missing counter reads as 0.
	ReadFromNode(key string) (total int64, err error)
}

// ShardedStore is the default IShardedStore. It combines a hash ring with a node registry.
type ShardedStore struct {
	ring     *ring.Ring
	registry *NodeRegistry
}

// NewShardedStore creates a sharded store. Every node on the ring must be registered.
func NewShardedStore(r *ring.Ring, registry *NodeRegistry) *ShardedStore {
	return &ShardedStore{
		ring:     r,
		registry: registry,
	}
}

// owner returns the id and the client of the node owning key.
// Ring and registry errors are returned unchanged.
func (s *ShardedStore) owner(key string) (string, store.ICounterStore, error) {
	nodeID, err := s.ring.Route(key)
	if err != nil {
		return "", nil, err
	}
	client, err := s.registry.Get(nodeID)
	if err != nil {
		return nodeID, nil, err
	}
	return nodeID, client, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see IShardedStore)
// --------------------------------------------------------------------------

func (s *ShardedStore) IncrementOnNode(key string, delta int64) (int64, error) {
	nodeID, client, err := s.owner(key)
	if err != nil {
		return 0, err
	}

	total, err := client.Incr(key, delta)
	if err != nil {
		return 0, store.WrapError(store.RetCRemoteUnavailable, nodeID, err)
	}
	return total, nil
}

func (s *ShardedStore) ReadFromNode(key string) (int64, error) {
	nodeID, client, err := s.owner(key)
	if err != nil {
		return 0, err
	}

	total, ok, err := client.Get(key)
	if err != nil {
		return 0, store.WrapError(store.RetCRemoteUnavailable, nodeID, err)
	}
	if !ok {
		return 0, nil
	}
	return total, nil
}
