package counter

import (
	"errors"
	"github.com/ValentinKolb/dCount/lib/store"
	"github.com/ValentinKolb/dCount/lib/store/lstore"
	"sync"
	"sync/atomic"
	"time"
)

var errNodeDown = errors.New("connection refused")

// fakeNode wraps a local store and can be switched to fail every call.
// If gate is set, Incr signals entered and blocks until gate is closed.
type fakeNode struct {
	store.ICounterStore
	down    atomic.Bool
	incrs   atomic.Int64
	reads   atomic.Int64
	closed  atomic.Bool
	gate    chan struct{}
	entered chan struct{}
}

func newFakeNode() *fakeNode {
	return &fakeNode{ICounterStore: lstore.NewLocalStore()}
}

func (n *fakeNode) Incr(key string, delta int64) (int64, error) {
	if n.gate != nil {
		n.entered <- struct{}{}
		<-n.gate
	}
	if n.down.Load() {
		return 0, errNodeDown
	}
	n.incrs.Add(1)
	return n.ICounterStore.Incr(key, delta)
}

func (n *fakeNode) Get(key string) (int64, bool, error) {
	if n.down.Load() {
		return 0, false, errNodeDown
	}
	n.reads.Add(1)
	return n.ICounterStore.Get(key)
}

func (n *fakeNode) Close() error {
	n.closed.Store(true)
	return n.ICounterStore.Close()
}

// fakeCluster hands out a fakeNode per node id
type fakeCluster struct {
	mu    sync.Mutex
	nodes map[string]*fakeNode
}

func newFakeCluster() *fakeCluster {
	return &fakeCluster{nodes: make(map[string]*fakeNode)}
}

func (c *fakeCluster) connect(node NodeConfig) (store.ICounterStore, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := newFakeNode()
	c.nodes[node.ID] = n
	return n, nil
}

func (c *fakeCluster) node(id string) *fakeNode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nodes[id]
}

// fakeClock is a manually advanced clock
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testConfig(nodeIDs ...string) Config {
	nodes := make([]NodeConfig, len(nodeIDs))
	for i, id := range nodeIDs {
		nodes[i] = NodeConfig{ID: id, Endpoint: LocalEndpoint, ShardID: 1}
	}
	return Config{
		Nodes:         nodes,
		VirtualNodes:  8,
		RingHash:      "xxhash",
		CacheTTL:      5 * time.Second,
		FlushInterval: time.Hour,
	}
}
