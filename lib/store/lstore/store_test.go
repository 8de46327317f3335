package lstore

import (
	"github.com/ValentinKolb/dCount/lib/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sync"
	"testing"
)

func TestLocalStoreIncrAndGet(t *testing.T) {
	s := NewLocalStore()

	total, ok, err := s.Get("page1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, total)

	total, err = s.Incr("page1", 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	total, err = s.Incr("page1", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)

	total, ok, err = s.Get("page1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(5), total)
}

func TestLocalStoreConcurrentIncr(t *testing.T) {
	s := NewLocalStore()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				_, _ = s.Incr("hot", 1)
			}
		}()
	}
	wg.Wait()

	total, _, err := s.Get("hot")
	require.NoError(t, err)
	assert.Equal(t, int64(16*500), total)
}

func TestLocalStoreClosed(t *testing.T) {
	s := NewLocalStore()
	require.NoError(t, s.Close())

	_, err := s.Incr("page1", 1)
	var se *store.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, store.RetCInvalidOperation, se.Code)

	_, _, err = s.Get("page1")
	assert.Error(t, err)
}
