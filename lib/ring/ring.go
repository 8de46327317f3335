package ring

import (
	"fmt"
	"github.com/ValentinKolb/dCount/lib/store"
	"github.com/cespare/xxhash/v2"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spaolacci/murmur3"
	"sort"
	"strconv"
	"strings"
)

var Logger = logger.GetLogger("ring")

// --------------------------------------------------------------------------
// Hash Functions
// --------------------------------------------------------------------------

// HashFunc maps a string into the 64 bit ring space.
// All instances routing the same keys must use the same function.
type HashFunc func(s string) uint64

// HashXX hashes with xxHash64 (default)
func HashXX(s string) uint64 {
	return xxhash.Sum64String(s)
}

// HashMurmur3 hashes with the 64 bit variant of murmur3 (x64_128, first half)
func HashMurmur3(s string) uint64 {
	return murmur3.Sum64([]byte(s))
}

// ParseHashFunc returns the hash function for the given name (xxhash, murmur3)
func ParseHashFunc(name string) (HashFunc, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "xxhash":
		return HashXX, nil
	case "murmur3":
		return HashMurmur3, nil
	default:
		return nil, store.NewError(store.RetCConfigurationError, fmt.Sprintf("invalid ring hash %q (expected xxhash or murmur3)", name))
	}
}

// --------------------------------------------------------------------------
// Ring
// --------------------------------------------------------------------------

// position is a single virtual node on the ring
type position struct {
	hash   uint64
	nodeID string
}

// Ring is an immutable consistent hash ring. It is safe for concurrent use.
type Ring struct {
	positions    []position // sorted by (hash, nodeID)
	nodes        []string
	virtualNodes int
	hash         HashFunc
}

// Option configures a Ring
type Option func(r *Ring)

// WithHashFunc sets the hash function used for virtual nodes and keys
func WithHashFunc(f HashFunc) Option {
	return func(r *Ring) {
		if f != nil {
			r.hash = f
		}
	}
}

// New builds a ring with virtualNodesPerNode positions for every node.
//
// An empty node list is accepted, every Route call on such a ring fails with a
// configuration error. Duplicate node ids and virtualNodesPerNode < 1 are rejected.
func New(nodeIDs []string, virtualNodesPerNode int, opts ...Option) (*Ring, error) {
	if virtualNodesPerNode < 1 {
		return nil, store.NewError(store.RetCConfigurationError, fmt.Sprintf("virtual nodes per node must be >= 1, got %d", virtualNodesPerNode))
	}

	r := &Ring{
		virtualNodes: virtualNodesPerNode,
		hash:         HashXX,
		positions:    make([]position, 0, len(nodeIDs)*virtualNodesPerNode),
		nodes:        make([]string, 0, len(nodeIDs)),
	}
	for _, opt := range opts {
		opt(r)
	}

	seen := make(map[string]struct{}, len(nodeIDs))
	for _, id := range nodeIDs {
		if id == "" {
			return nil, store.NewError(store.RetCConfigurationError, "empty node id")
		}
		if _, ok := seen[id]; ok {
			return nil, store.NewError(store.RetCConfigurationError, fmt.Sprintf("duplicate node id %q", id))
		}
		seen[id] = struct{}{}
		r.nodes = append(r.nodes, id)

		for i := 0; i < virtualNodesPerNode; i++ {
			r.positions = append(r.positions, position{
				hash:   r.hash(id + "#" + strconv.Itoa(i)),
				nodeID: id,
			})
		}
	}

	// equal hashes are ordered by node id, so the ring does not depend on the input order
	sort.Slice(r.positions, func(i, j int) bool {
		if r.positions[i].hash != r.positions[j].hash {
			return r.positions[i].hash < r.positions[j].hash
		}
		return r.positions[i].nodeID < r.positions[j].nodeID
	})

	Logger.Debugf("built ring with %d nodes and %d positions", len(r.nodes), len(r.positions))
	return r, nil
}

// Route returns the node responsible for key: the first position whose hash is >= the
// key hash, wrapping around to the smallest position.
func (r *Ring) Route(key string) (string, error) {
	if len(r.positions) == 0 {
		return "", store.NewError(store.RetCConfigurationError, "ring has no nodes")
	}

	h := r.hash(key)
	idx := sort.Search(len(r.positions), func(i int) bool {
		return r.positions[i].hash >= h
	})
	if idx == len(r.positions) {
		idx = 0
	}
	return r.positions[idx].nodeID, nil
}

// Nodes returns the node ids in the order they were passed to New
func (r *Ring) Nodes() []string {
	nodes := make([]string, len(r.nodes))
	copy(nodes, r.nodes)
	return nodes
}

// Size returns the number of positions (virtual nodes) on the ring
func (r *Ring) Size() int {
	return len(r.positions)
}

// VirtualNodes returns the number of positions per node
func (r *Ring) VirtualNodes() int {
	return r.virtualNodes
}
