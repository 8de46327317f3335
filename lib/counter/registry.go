package counter

import (
	"errors"
	"fmt"
	"github.com/ValentinKolb/dCount/lib/store"
	"github.com/puzpuzpuz/xsync/v3"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
)

// --------------------------------------------------------------------------
// Node configuration
// --------------------------------------------------------------------------

// LocalEndpoint is the endpoint of a node served by an in-process store
const LocalEndpoint = "local"

// NodeConfig describes a single backing node
type NodeConfig struct {
	// ID is the identifier used on the hash ring
	ID string
	// Endpoint is the transport address of the node (or LocalEndpoint)
	Endpoint string
	// ShardID is the shard on the node that holds the counters
	ShardID uint64
}

// ParseNodeList parses a comma-separated node list. Each entry is either ID=ENDPOINT
// or ENDPOINT (the endpoint is used as id). An optional /SHARD suffix on the id selects the
// shard on the node, defaultShardID is used otherwise.
//
// Example: "a=localhost:8081,b/2=localhost:8082,localhost:8083"
func ParseNodeList(s string, defaultShardID uint64) ([]NodeConfig, error) {
	var nodes []NodeConfig
	seen := make(map[string]struct{})

	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		node := NodeConfig{ShardID: defaultShardID}
		if id, endpoint, ok := strings.Cut(entry, "="); ok {
			node.ID = strings.TrimSpace(id)
			node.Endpoint = strings.TrimSpace(endpoint)
		} else {
			node.ID = entry
			node.Endpoint = entry
		}

		// optional shard suffix on the id
		if id, shard, ok := strings.Cut(node.ID, "/"); ok && node.ID != node.Endpoint {
			shardID, err := strconv.ParseUint(shard, 10, 64)
			if err != nil {
				return nil, store.NewError(store.RetCConfigurationError, fmt.Sprintf("invalid shard id in node entry %q: %v", entry, err))
			}
			node.ID = id
			node.ShardID = shardID
		}

		if node.ID == "" || node.Endpoint == "" {
			return nil, store.NewError(store.RetCConfigurationError, fmt.Sprintf("invalid node entry %q (expected ID=ENDPOINT or ENDPOINT)", entry))
		}
		if _, ok := seen[node.ID]; ok {
			return nil, store.NewError(store.RetCConfigurationError, fmt.Sprintf("duplicate node id %q", node.ID))
		}
		seen[node.ID] = struct{}{}
		nodes = append(nodes, node)
	}

	if len(nodes) == 0 {
		return nil, store.NewError(store.RetCConfigurationError, "node list is empty")
	}
	return nodes, nil
}

// --------------------------------------------------------------------------
// Node Registry
// --------------------------------------------------------------------------

// NodeConnector creates the client for a backing node. It is called exactly once per node.
type NodeConnector func(node NodeConfig) (store.ICounterStore, error)

// registeredNode is a node together with its client
type registeredNode struct {
	config NodeConfig
	client store.ICounterStore
}

// NodeRegistry owns one client per backing node for the whole process lifetime.
//
// Thread-safety: All methods are thread-safe.
type NodeRegistry struct {
	connect NodeConnector
	nodes   *xsync.MapOf[string, registeredNode]
	closed  atomic.Bool
}

// NewNodeRegistry creates an empty registry that uses connect to create node clients
func NewNodeRegistry(connect NodeConnector) *NodeRegistry {
	return &NodeRegistry{
		connect: connect,
		nodes:   xsync.NewMapOf[string, registeredNode](),
	}
}

// Register connects to the node and stores the client.
// Registering the same id twice is a configuration error.
func (r *NodeRegistry) Register(node NodeConfig) error {
	if r.closed.Load() {
		return store.NewError(store.RetCInvalidOperation, "registry is closed")
	}
	if _, ok := r.nodes.Load(node.ID); ok {
		return store.NewError(store.RetCConfigurationError, fmt.Sprintf("node %q is already registered", node.ID))
	}

	client, err := r.connect(node)
	if err != nil {
		return &store.Error{
			Code:  store.RetCConfigurationError,
			Msg:   "failed to connect",
			Node:  node.ID,
			Cause: err,
		}
	}

	if _, loaded := r.nodes.LoadOrStore(node.ID, registeredNode{config: node, client: client}); loaded {
		_ = client.Close()
		return store.NewError(store.RetCConfigurationError, fmt.Sprintf("node %q is already registered", node.ID))
	}

	Logger.Infof("registered node %s (endpoint %s, shard %d)", node.ID, node.Endpoint, node.ShardID)
	return nil
}

// RegisterAll registers every node of the list. It stops at the first error.
func (r *NodeRegistry) RegisterAll(nodes []NodeConfig) error {
	for _, node := range nodes {
		if err := r.Register(node); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the client of the node. An unknown id indicates a routing or
// configuration mismatch and returns a not found error.
func (r *NodeRegistry) Get(nodeID string) (store.ICounterStore, error) {
	n, ok := r.nodes.Load(nodeID)
	if !ok {
		return nil, &store.Error{
			Code: store.RetCNotFound,
			Msg:  store.RetCNotFound.Describe(),
			Node: nodeID,
		}
	}
	return n.client, nil
}

// NodeIDs returns the sorted ids of all registered nodes
func (r *NodeRegistry) NodeIDs() []string {
	ids := make([]string, 0, r.nodes.Size())
	r.nodes.Range(func(id string, _ registeredNode) bool {
		ids = append(ids, id)
		return true
	})
	sort.Strings(ids)
	return ids
}

// Nodes returns the configuration of all registered nodes sorted by id
func (r *NodeRegistry) Nodes() []NodeConfig {
	nodes := make([]NodeConfig, 0, r.nodes.Size())
	for _, id := range r.NodeIDs() {
		if n, ok := r.nodes.Load(id); ok {
			nodes = append(nodes, n.config)
		}
	}
	return nodes
}

// Close closes all node clients. Subsequent calls are no-ops.
func (r *NodeRegistry) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}

	var errs []error
	r.nodes.Range(func(id string, n registeredNode) bool {
		if err := n.client.Close(); err != nil {
			errs = append(errs, fmt.Errorf("node %s: %w", id, err))
		}
		return true
	})
	return errors.Join(errs...)
}
