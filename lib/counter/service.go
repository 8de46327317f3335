package counter

import (
	"fmt"
	"github.com/ValentinKolb/dCount/lib/ring"
	"github.com/ValentinKolb/dCount/lib/store"
	"github.com/google/uuid"
	"github.com/lni/dragonboat/v4/logger"
	"io"
	"strings"
	"sync/atomic"
	"time"
)

var Logger = logger.GetLogger("counter")

// ErrServiceStopped is returned by increments issued after Stop
var ErrServiceStopped = store.NewError(store.RetCInvalidOperation, "counter service is stopped")

// --------------------------------------------------------------------------
// Config
// --------------------------------------------------------------------------

// Config holds everything needed to build a Service
type Config struct {
	Nodes         []NodeConfig
	VirtualNodes  int
	RingHash      string
	CacheTTL      time.Duration
	FlushInterval time.Duration
	// DegradedReads serves buffered-only counts instead of an error when the owning node is down
	DegradedReads bool
}

// Validate checks the config without connecting to any node
func (c Config) Validate() error {
	if len(c.Nodes) == 0 {
		return store.NewError(store.RetCConfigurationError, "no nodes configured")
	}
	if c.VirtualNodes < 1 {
		return store.NewError(store.RetCConfigurationError, fmt.Sprintf("virtual nodes must be >= 1, got %d", c.VirtualNodes))
	}
	if c.CacheTTL < 0 {
		return store.NewError(store.RetCConfigurationError, "cache ttl must not be negative")
	}
	if _, err := ring.ParseHashFunc(c.RingHash); err != nil {
		return err
	}
	return nil
}

func (c Config) String() string {
	var sb strings.Builder
	sb.WriteString("Counter Service Configuration:\n")
	sb.WriteString(fmt.Sprintf("  Virtual Nodes:   %d\n", c.VirtualNodes))
	sb.WriteString(fmt.Sprintf("  Ring Hash:       %s\n", c.RingHash))
	sb.WriteString(fmt.Sprintf("  Cache TTL:       %s\n", c.CacheTTL))
	sb.WriteString(fmt.Sprintf("  Flush Interval:  %s\n", c.FlushInterval))
	sb.WriteString(fmt.Sprintf("  Degraded Reads:  %t\n", c.DegradedReads))
	sb.WriteString("  Nodes:\n")
	for _, n := range c.Nodes {
		sb.WriteString(fmt.Sprintf("    - %s -> %s (shard %d)\n", n.ID, n.Endpoint, n.ShardID))
	}
	return sb.String()
}

// --------------------------------------------------------------------------
// Service
// --------------------------------------------------------------------------

// ServedVia names the source of the base count of a read
type ServedVia string

const (
	ServedViaCache  ServedVia = "in_memory" // base count from the read cache
	ServedViaRemote ServedVia = "remote"    // base count fetched from the owning node
)

// VisitCount is the result of a read: base count plus the pending local delta
type VisitCount struct {
	Count     int64     `json:"visits"`
	ServedVia ServedVia `json:"served_via"`
	Degraded  bool      `json:"degraded,omitempty"`
}

// Info describes a running service instance
type Info struct {
	InstanceID    string   `json:"instance_id"`
	Nodes         []string `json:"nodes"`
	VirtualNodes  int      `json:"virtual_nodes"`
	BufferedKeys  int      `json:"buffered_keys"`
	CachedKeys    int      `json:"cached_keys"`
	FlusherState  string   `json:"flusher_state"`
	DegradedReads bool     `json:"degraded_reads"`
}

// Service is the entry point for recording and reading visits.
// Increments are buffered locally and written by the flusher, reads combine the
// (cached) count of the owning node with the local pending delta.
//
// Thread-safety: All methods are thread-safe.
type Service struct {
	id       uuid.UUID
	conf     Config
	ring     *ring.Ring
	registry *NodeRegistry
	remote   IShardedStore
	buffer   *WriteBuffer
	cache    *ReadCache
	flusher  *Flusher
	metrics  *Metrics
	clock    Clock
	stopped  atomic.Bool
}

// Option configures a Service
type Option func(s *Service)

// WithClock replaces time.Now for cache freshness and eviction
func WithClock(clock Clock) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewService validates conf, builds the hash ring and connects to every node once.
// The flusher is not started, call Start.
func NewService(conf Config, connect NodeConnector, opts ...Option) (*Service, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	s := &Service{
		id:    uuid.New(),
		conf:  conf,
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	hash, _ := ring.ParseHashFunc(conf.RingHash)
	ids := make([]string, len(conf.Nodes))
	for i, n := range conf.Nodes {
		ids[i] = n.ID
	}
	r, err := ring.New(ids, conf.VirtualNodes, ring.WithHashFunc(hash))
	if err != nil {
		return nil, err
	}

	registry := NewNodeRegistry(connect)
	if err := registry.RegisterAll(conf.Nodes); err != nil {
		_ = registry.Close()
		return nil, err
	}

	s.ring = r
	s.registry = registry
	s.remote = NewShardedStore(r, registry)
	s.buffer = NewWriteBuffer()
	s.cache = NewReadCache(conf.CacheTTL, s.clock)
	s.metrics = newMetrics(s.buffer, s.cache)
	s.flusher = NewFlusher(s.buffer, s.cache, s.remote, conf.FlushInterval, s.metrics, s.clock)

	Logger.Infof("counter service %s ready with %d nodes", s.id, len(ids))
	return s, nil
}

// Start starts the background flusher
func (s *Service) Start() {
	s.flusher.Start()
}

// Stop runs the final flush and closes all node connections. Subsequent calls are no-ops.
func (s *Service) Stop() error {
	if !s.stopped.CompareAndSwap(false, true) {
		return nil
	}
	s.flusher.Stop()
	return s.registry.Close()
}

// IncrementVisit records a single visit of key. After Stop the visit is dropped and logged.
func (s *Service) IncrementVisit(key string) {
	if err := s.IncrementVisitBy(key, 1); err != nil {
		Logger.Warningf("visit of %s dropped: %v", key, err)
	}
}

// IncrementVisitBy records amount visits of key, amount must be >= 1.
// It fails once the service is stopped since nothing would flush the delta anymore.
func (s *Service) IncrementVisitBy(key string, amount int64) error {
	if amount < 1 {
		return store.NewError(store.RetCInvalidOperation, fmt.Sprintf("amount must be >= 1, got %d", amount))
	}
	if s.stopped.Load() {
		return ErrServiceStopped
	}
	s.buffer.AddDelta(key, amount)
	s.cache.Invalidate(key)
	s.metrics.increments.Add(int(amount))
	return nil
}

// GetVisitCount returns the base count of key plus its pending local delta.
//
// A fresh cache entry is used as base if present, otherwise the owning node is asked and
// the answer is cached. If the owning node is unavailable the error is returned together
// with the local delta, or, with degraded reads enabled, the local delta is served as count.
func (s *Service) GetVisitCount(key string) (VisitCount, error) {
	var (
		e       CacheEntry
		hit     bool
		pending int64
	)
	s.buffer.View(key, func(delta int64) {
		e, hit = s.cache.Get(key)
		pending = delta
	})
	if hit {
		s.metrics.readsCache.Inc()
		return VisitCount{
			Count:     e.Count + pending,
			ServedVia: ServedViaCache,
		}, nil
	}

	observedAt := s.clock()
	base, err := s.remote.ReadFromNode(key)
	if err != nil {
		pending := s.buffer.Peek(key)
		if store.IsRemoteUnavailable(err) {
			s.metrics.remoteErrors.Inc()
		}
		if s.conf.DegradedReads && store.IsRemoteUnavailable(err) {
			s.metrics.readsDegraded.Inc()
			Logger.Warningf("serving degraded count for %s: %v", key, err)
			return VisitCount{
				Count:     pending,
				ServedVia: ServedViaCache,
				Degraded:  true,
			}, nil
		}
		return VisitCount{Count: pending, ServedVia: ServedViaRemote}, err
	}

	s.cache.Put(key, base, observedAt)
	s.metrics.readsRemote.Inc()
	return VisitCount{
		Count:     base + s.buffer.Peek(key),
		ServedVia: ServedViaRemote,
	}, nil
}

// Flush runs a flusher tick immediately
func (s *Service) Flush() FlushResult {
	return s.flusher.Flush()
}

// InstanceID returns the random id of this instance
func (s *Service) InstanceID() string {
	return s.id.String()
}

// Info returns a description of the instance
func (s *Service) Info() Info {
	return Info{
		InstanceID:    s.InstanceID(),
		Nodes:         s.registry.NodeIDs(),
		VirtualNodes:  s.ring.VirtualNodes(),
		BufferedKeys:  s.buffer.Len(),
		CachedKeys:    s.cache.Len(),
		FlusherState:  s.flusher.State().String(),
		DegradedReads: s.conf.DegradedReads,
	}
}

// Owner returns the id of the node owning key
func (s *Service) Owner(key string) (string, error) {
	return s.ring.Route(key)
}

// Metrics returns the instruments of the instance
func (s *Service) Metrics() *Metrics {
	return s.metrics
}

// WriteMetrics writes the metrics of the instance in the prometheus text format
func (s *Service) WriteMetrics(w io.Writer) {
	s.metrics.WritePrometheus(w)
}
