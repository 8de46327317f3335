package counter

import (
	"sync"
	"sync/atomic"
	"time"
)

// FlusherState is the state of the background flusher
type FlusherState int32

const (
	FlusherIdle     FlusherState = iota // waiting for the next tick
	FlusherFlushing                     // a tick is running
	FlusherStopped                      // the final flush is done
)

func (s FlusherState) String() string {
	switch s {
	case FlusherIdle:
		return "idle"
	case FlusherFlushing:
		return "flushing"
	case FlusherStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// FlushResult summarizes a single tick
type FlushResult struct {
	Flushed int      // keys whose delta was written to the owning node
	Failed  int      // keys whose delta was re-buffered
	Evicted []string // cache entries removed because they expired
}

// Flusher periodically writes the buffered deltas to the backing nodes.
//
// A tick drains the buffer and increments every key on its owning node. Written keys have
// their cache entry invalidated, failed deltas go back into the buffer. Expired cache
// entries are evicted at the end. Ticks never overlap and a stopped flusher does nothing.
type Flusher struct {
	buffer   *WriteBuffer
	cache    *ReadCache
	remote   IShardedStore
	metrics  *Metrics
	clock    Clock
	interval time.Duration

	tickMu   sync.Mutex
	state    atomic.Int32
	started  atomic.Bool
	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
	final    FlushResult
}

// NewFlusher creates a flusher that ticks every interval once started
func NewFlusher(buffer *WriteBuffer, cache *ReadCache, remote IShardedStore, interval time.Duration, m *Metrics, clock Clock) *Flusher {
	if clock == nil {
		clock = time.Now
	}
	if m == nil {
		m = newMetrics(buffer, cache)
	}
	return &Flusher{
		buffer:   buffer,
		cache:    cache,
		remote:   remote,
		metrics:  m,
		clock:    clock,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the ticker goroutine. Calling Start more than once is a no-op.
func (f *Flusher) Start() {
	if f.interval <= 0 {
		Logger.Warningf("flush interval is %s, periodic flushing disabled", f.interval)
		return
	}
	if !f.started.CompareAndSwap(false, true) {
		return
	}

	go func() {
		defer close(f.doneCh)

		ticker := time.NewTicker(f.interval)
		defer ticker.Stop()

		for {
			select {
			case <-f.stopCh:
				return
			case <-ticker.C:
				f.Flush()
			}
		}
	}()
}

// Stop halts the ticker and runs a final flush. Deltas that still fail to flush are lost
// and logged. Only the first call does any work, later calls return the same result.
func (f *Flusher) Stop() FlushResult {
	f.stopOnce.Do(func() {
		close(f.stopCh)
		if f.started.Load() {
			<-f.doneCh
		}

		f.final = f.Flush()
		f.state.Store(int32(FlusherStopped))

		if lost := f.buffer.Len(); lost > 0 {
			Logger.Errorf("final flush failed for %d keys, their buffered increments are lost", lost)
		} else {
			Logger.Infof("final flush done (%d keys written)", f.final.Flushed)
		}
	})
	return f.final
}

// Flush runs a single tick and waits for it to finish
func (f *Flusher) Flush() FlushResult {
	f.tickMu.Lock()
	defer f.tickMu.Unlock()

	if f.State() == FlusherStopped {
		return FlushResult{}
	}

	f.state.Store(int32(FlusherFlushing))
	defer f.state.CompareAndSwap(int32(FlusherFlushing), int32(FlusherIdle))

	start := time.Now()
	res := FlushResult{}

	var firstErr error
	for key, delta := range f.buffer.DrainAll() {
		if _, err := f.remote.IncrementOnNode(key, delta); err != nil {
			f.buffer.Restore(key, delta)
			f.metrics.remoteErrors.Inc()
			f.metrics.flushFailures.Inc()
			res.Failed++
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		// the stale base must be gone before the delta leaves the buffer
		f.buffer.Commit(key, delta, func() { f.cache.Invalidate(key) })
		f.metrics.flushedKeys.Inc()
		res.Flushed++
	}

	res.Evicted = f.cache.EvictExpired(f.clock(), f.cache.TTL())

	f.metrics.flushDuration.UpdateDuration(start)
	if res.Failed > 0 {
		Logger.Warningf("flush: %d of %d keys failed and were re-buffered, first error: %v", res.Failed, res.Failed+res.Flushed, firstErr)
	} else if res.Flushed > 0 {
		Logger.Debugf("flush: wrote %d keys, evicted %d cache entries", res.Flushed, len(res.Evicted))
	}
	return res
}

// State returns the current state of the flusher
func (f *Flusher) State() FlusherState {
	return FlusherState(f.state.Load())
}
