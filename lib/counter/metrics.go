package counter

import (
	"github.com/VictoriaMetrics/metrics"
	"io"
)

// Metrics holds the instruments of a single service instance.
// Each instance owns its own set, so tests can create many services in one process.
type Metrics struct {
	set *metrics.Set

	increments    *metrics.Counter
	readsCache    *metrics.Counter
	readsRemote   *metrics.Counter
	readsDegraded *metrics.Counter
	remoteErrors  *metrics.Counter
	flushedKeys   *metrics.Counter
	flushFailures *metrics.Counter
	flushDuration *metrics.Histogram
}

// newMetrics creates the instruments. The gauges read the current size of buffer and cache.
func newMetrics(buffer *WriteBuffer, cache *ReadCache) *Metrics {
	set := metrics.NewSet()
	m := &Metrics{
		set:           set,
		increments:    set.NewCounter("dcount_increments_total"),
		readsCache:    set.NewCounter(`dcount_reads_total{served_via="in_memory"}`),
		readsRemote:   set.NewCounter(`dcount_reads_total{served_via="remote"}`),
		readsDegraded: set.NewCounter("dcount_degraded_reads_total"),
		remoteErrors:  set.NewCounter("dcount_remote_errors_total"),
		flushedKeys:   set.NewCounter("dcount_flushed_keys_total"),
		flushFailures: set.NewCounter("dcount_flush_failures_total"),
		flushDuration: set.NewHistogram("dcount_flush_duration_seconds"),
	}
	set.NewGauge("dcount_buffered_keys", func() float64 {
		return float64(buffer.Len())
	})
	set.NewGauge("dcount_cached_keys", func() float64 {
		return float64(cache.Len())
	})
	return m
}

// WritePrometheus writes all instruments in the prometheus text format
func (m *Metrics) WritePrometheus(w io.Writer) {
	m.set.WritePrometheus(w)
}

// Increments returns the number of recorded visits
func (m *Metrics) Increments() uint64 {
	return m.increments.Get()
}

// FlushedKeys returns the number of deltas successfully written to backing nodes
func (m *Metrics) FlushedKeys() uint64 {
	return m.flushedKeys.Get()
}

// FlushFailures returns the number of deltas that had to be re-buffered
func (m *Metrics) FlushFailures() uint64 {
	return m.flushFailures.Get()
}
