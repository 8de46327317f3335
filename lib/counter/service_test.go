package counter

import (
	"bytes"
	"fmt"
	"github.com/ValentinKolb/dCount/lib/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sync"
	"testing"
	"time"
)

func newTestService(t *testing.T, conf Config) (*Service, *fakeCluster, *fakeClock) {
	t.Helper()
	cluster := newFakeCluster()
	clock := newFakeClock()
	svc, err := NewService(conf, cluster.connect, WithClock(clock.Now))
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Stop() })
	return svc, cluster, clock
}

func TestIncrementThenRead(t *testing.T) {
	svc, _, _ := newTestService(t, testConfig("A", "B"))

	for i := 0; i < 3; i++ {
		svc.IncrementVisit("page1")
	}

	// base comes from the owning node, the cached base is used afterwards.
	// The documented walkthrough lists this first read as in_memory. Here it is remote
	// because every increment invalidates the cache entry and servedVia names where the
	// base was read from.
	count, err := svc.GetVisitCount("page1")
	require.NoError(t, err)
	assert.Equal(t, VisitCount{Count: 3, ServedVia: ServedViaRemote}, count)

	count, err = svc.GetVisitCount("page1")
	require.NoError(t, err)
	assert.Equal(t, VisitCount{Count: 3, ServedVia: ServedViaCache}, count)
}

func TestIncrementInvalidatesCache(t *testing.T) {
	svc, cluster, _ := newTestService(t, testConfig("A"))

	_, err := svc.GetVisitCount("p")
	require.NoError(t, err)
	reads := cluster.node("A").reads.Load()

	svc.IncrementVisit("p")
	count, err := svc.GetVisitCount("p")
	require.NoError(t, err)
	assert.Equal(t, ServedViaRemote, count.ServedVia)
	assert.Equal(t, int64(1), count.Count)
	assert.Equal(t, reads+1, cluster.node("A").reads.Load())
}

func TestReadAfterFlush(t *testing.T) {
	svc, cluster, _ := newTestService(t, testConfig("A", "B"))

	require.NoError(t, svc.IncrementVisitBy("p", 4))
	svc.IncrementVisit("p")

	res := svc.Flush()
	assert.Equal(t, 1, res.Flushed)

	owner, err := svc.Owner("p")
	require.NoError(t, err)
	v, ok, err := cluster.node(owner).Get("p")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(5), v)

	count, err := svc.GetVisitCount("p")
	require.NoError(t, err)
	assert.Equal(t, int64(5), count.Count)
}

func TestCacheExpiryTriggersRemoteRead(t *testing.T) {
	svc, _, clock := newTestService(t, testConfig("A"))

	_, err := svc.GetVisitCount("p")
	require.NoError(t, err)

	clock.Advance(4 * time.Second)
	count, _ := svc.GetVisitCount("p")
	assert.Equal(t, ServedViaCache, count.ServedVia)

	clock.Advance(time.Second)
	count, _ = svc.GetVisitCount("p")
	assert.Equal(t, ServedViaRemote, count.ServedVia)
}

func TestReadRemoteUnavailable(t *testing.T) {
	svc, cluster, _ := newTestService(t, testConfig("A"))
	require.NoError(t, svc.IncrementVisitBy("p", 2))
	cluster.node("A").down.Store(true)

	count, err := svc.GetVisitCount("p")
	require.Error(t, err)
	assert.True(t, store.IsRemoteUnavailable(err))
	assert.Equal(t, int64(2), count.Count)
}

func TestReadDegraded(t *testing.T) {
	conf := testConfig("A")
	conf.DegradedReads = true
	svc, cluster, _ := newTestService(t, conf)

	svc.IncrementVisit("p")
	cluster.node("A").down.Store(true)

	count, err := svc.GetVisitCount("p")
	require.NoError(t, err)
	assert.Equal(t, VisitCount{Count: 1, ServedVia: ServedViaCache, Degraded: true}, count)
}

func TestReadDuringFlushSeesInFlightDelta(t *testing.T) {
	svc, cluster, _ := newTestService(t, testConfig("A"))
	node := cluster.node("A")
	_, err := node.ICounterStore.Incr("p", 10)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		svc.IncrementVisit("p")
	}
	count, err := svc.GetVisitCount("p")
	require.NoError(t, err)
	assert.Equal(t, VisitCount{Count: 13, ServedVia: ServedViaRemote}, count)

	node.gate = make(chan struct{})
	node.entered = make(chan struct{}, 1)
	done := make(chan FlushResult, 1)
	go func() { done <- svc.Flush() }()
	<-node.entered

	// the cached base 10 is still fresh and the 3 visits are on their way to the node
	count, err = svc.GetVisitCount("p")
	require.NoError(t, err)
	assert.Equal(t, VisitCount{Count: 13, ServedVia: ServedViaCache}, count)

	close(node.gate)
	res := <-done
	assert.Equal(t, 1, res.Flushed)

	count, err = svc.GetVisitCount("p")
	require.NoError(t, err)
	assert.Equal(t, VisitCount{Count: 13, ServedVia: ServedViaRemote}, count)
}

func TestReadDuringFailedFlushCountsOnce(t *testing.T) {
	svc, cluster, _ := newTestService(t, testConfig("A"))
	node := cluster.node("A")

	require.NoError(t, svc.IncrementVisitBy("p", 2))
	_, err := svc.GetVisitCount("p")
	require.NoError(t, err)

	node.gate = make(chan struct{})
	node.entered = make(chan struct{}, 1)
	node.down.Store(true)
	done := make(chan FlushResult, 1)
	go func() { done <- svc.Flush() }()
	<-node.entered

	count, err := svc.GetVisitCount("p")
	require.NoError(t, err)
	assert.Equal(t, VisitCount{Count: 2, ServedVia: ServedViaCache}, count)

	close(node.gate)
	res := <-done
	assert.Equal(t, 1, res.Failed)

	// the restored delta is counted once
	count, err = svc.GetVisitCount("p")
	require.NoError(t, err)
	assert.Equal(t, VisitCount{Count: 2, ServedVia: ServedViaCache}, count)
	assert.Equal(t, 1, svc.Info().BufferedKeys)

	node.gate = nil
	node.down.Store(false)
	svc.IncrementVisit("p")
	res = svc.Flush()
	assert.Equal(t, 1, res.Flushed)
	v, _, err := node.Get("p")
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)
}

func TestIncrementVisitByInvalid(t *testing.T) {
	svc, _, _ := newTestService(t, testConfig("A"))

	err := svc.IncrementVisitBy("p", 0)
	assert.Error(t, err)
	count, err := svc.GetVisitCount("p")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count.Count)
}

func TestStopFlushesAndCloses(t *testing.T) {
	cluster := newFakeCluster()
	svc, err := NewService(testConfig("A"), cluster.connect)
	require.NoError(t, err)
	svc.Start()

	svc.IncrementVisit("p")
	require.NoError(t, svc.Stop())
	require.NoError(t, svc.Stop())

	node := cluster.node("A")
	assert.True(t, node.closed.Load())
	assert.Equal(t, int64(1), node.incrs.Load())
}

func TestIncrementAfterStop(t *testing.T) {
	cluster := newFakeCluster()
	svc, err := NewService(testConfig("A"), cluster.connect)
	require.NoError(t, err)
	require.NoError(t, svc.Stop())

	err = svc.IncrementVisitBy("p", 2)
	assert.ErrorIs(t, err, ErrServiceStopped)
	svc.IncrementVisit("p")

	assert.Equal(t, 0, svc.Info().BufferedKeys)
	assert.Equal(t, FlushResult{}, svc.Flush())
	assert.Equal(t, FlusherStopped.String(), svc.Info().FlusherState)
	assert.Equal(t, int64(0), cluster.node("A").incrs.Load())
}

func TestConcurrentIncrements(t *testing.T) {
	svc, _, _ := newTestService(t, testConfig("A", "B", "C"))

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				svc.IncrementVisit(fmt.Sprintf("p%d", i%5))
				if i%100 == 0 {
					svc.Flush()
				}
			}
		}()
	}
	wg.Wait()
	svc.Flush()

	for i := 0; i < 5; i++ {
		count, err := svc.GetVisitCount(fmt.Sprintf("p%d", i))
		require.NoError(t, err)
		assert.Equal(t, int64(1600), count.Count)
	}
	assert.Equal(t, uint64(8000), svc.Metrics().Increments())
}

func TestNewServiceInvalidConfig(t *testing.T) {
	cluster := newFakeCluster()

	_, err := NewService(Config{VirtualNodes: 3}, cluster.connect)
	assert.True(t, store.IsConfigurationError(err))

	conf := testConfig("A")
	conf.VirtualNodes = 0
	_, err = NewService(conf, cluster.connect)
	assert.True(t, store.IsConfigurationError(err))

	conf = testConfig("A")
	conf.RingHash = "sha1"
	_, err = NewService(conf, cluster.connect)
	assert.True(t, store.IsConfigurationError(err))
}

func TestInfoAndMetrics(t *testing.T) {
	svc, _, _ := newTestService(t, testConfig("B", "A"))
	svc.IncrementVisit("p")
	_, err := svc.GetVisitCount("p")
	require.NoError(t, err)

	info := svc.Info()
	assert.NotEmpty(t, info.InstanceID)
	assert.Equal(t, []string{"A", "B"}, info.Nodes)
	assert.Equal(t, 1, info.BufferedKeys)
	assert.Equal(t, 1, info.CachedKeys)
	assert.Equal(t, "idle", info.FlusherState)

	var buf bytes.Buffer
	svc.WriteMetrics(&buf)
	assert.Contains(t, buf.String(), "dcount_increments_total 1")
	assert.Contains(t, buf.String(), `dcount_reads_total{served_via="remote"} 1`)
	assert.Contains(t, buf.String(), "dcount_buffered_keys 1")
}
