package lstore

import (
	"github.com/ValentinKolb/dCount/lib/store"
	"github.com/puzpuzpuz/xsync/v3"
	"sync/atomic"
)

type storeImpl struct {
	counters *xsync.MapOf[string, int64]
	closed   atomic.Bool
}

// NewLocalStore creates a new local counter store instance.
// This store implementation is not distributed and only works on a single node.
func NewLocalStore() store.ICounterStore {
	return &storeImpl{
		counters: xsync.NewMapOf[string, int64](),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Incr(key string, delta int64) (int64, error) {
	if s.closed.Load() {
		return 0, store.NewError(store.RetCInvalidOperation, "store is closed")
	}
	// Compute is atomic per key, concurrent increments of the same key are never lost
	total, _ := s.counters.Compute(key, func(old int64, _ bool) (int64, bool) {
		return old + delta, false
	})
	return total, nil
}

func (s *storeImpl) Get(key string) (int64, bool, error) {
	if s.closed.Load() {
		return 0, false, store.NewError(store.RetCInvalidOperation, "store is closed")
	}
	total, ok := s.counters.Load(key)
	return total, ok, nil
}

func (s *storeImpl) Close() error {
	s.closed.Store(true)
	return nil
}
