package counter

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func TestCacheFreshness(t *testing.T) {
	clock := newFakeClock()
	c := NewReadCache(5*time.Second, clock.Now)

	c.Put("p", 10, clock.Now())

	e, ok := c.Get("p")
	require.True(t, ok)
	assert.Equal(t, int64(10), e.Count)

	clock.Advance(4999 * time.Millisecond)
	_, ok = c.Get("p")
	assert.True(t, ok)

	// an entry exactly ttl old is stale
	clock.Advance(time.Millisecond)
	_, ok = c.Get("p")
	assert.False(t, ok)

	// stale entries stay until evicted
	assert.Equal(t, 1, c.Len())
}

func TestCacheInvalidate(t *testing.T) {
	clock := newFakeClock()
	c := NewReadCache(time.Minute, clock.Now)

	c.Put("p", 1, clock.Now())
	c.Invalidate("p")
	_, ok := c.Get("p")
	assert.False(t, ok)

	// invalidating a missing key is fine
	c.Invalidate("missing")
}

func TestCacheEvictExpired(t *testing.T) {
	clock := newFakeClock()
	c := NewReadCache(5*time.Second, clock.Now)

	c.Put("old", 1, clock.Now())
	clock.Advance(3 * time.Second)
	c.Put("new", 2, clock.Now())
	clock.Advance(3 * time.Second)

	evicted := c.EvictExpired(clock.Now(), c.TTL())
	assert.Equal(t, []string{"old"}, evicted)
	assert.Equal(t, 1, c.Len())

	_, ok := c.Get("new")
	assert.True(t, ok)

	clock.Advance(10 * time.Second)
	assert.ElementsMatch(t, []string{"new"}, c.EvictExpired(clock.Now(), c.TTL()))
	assert.Equal(t, 0, c.Len())
}

func TestCacheDisabled(t *testing.T) {
	c := NewReadCache(0, nil)
	c.Put("p", 1, time.Now())
	_, ok := c.Get("p")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}
