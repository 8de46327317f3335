package counter

import (
	"github.com/puzpuzpuz/xsync/v3"
	"sync"
)

// WriteBuffer accumulates increments per key until the flusher drains them.
//
// Adding to different keys never serializes: adders share a read lock and update the
// map with xsync's per-bucket locking. DrainAll takes the write lock and swaps the map,
// so every delta is in exactly one drained snapshot (no loss, no double counting).
//
// A drained delta stays in flight until the flusher settles it with Commit or Restore.
// Peek counts in-flight deltas, so a read never misses increments that are on their way
// to the owning node.
type WriteBuffer struct {
	mu       sync.RWMutex
	pending  *xsync.MapOf[string, int64]
	inflight map[string]int64
}

// NewWriteBuffer creates an empty write buffer
func NewWriteBuffer() *WriteBuffer {
	return &WriteBuffer{
		pending:  xsync.NewMapOf[string, int64](),
		inflight: make(map[string]int64),
	}
}

// AddDelta adds amount to the pending delta of key. Non-positive amounts are ignored.
func (b *WriteBuffer) AddDelta(key string, amount int64) {
	if amount <= 0 {
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	b.pending.Compute(key, func(old int64, _ bool) (int64, bool) {
		return old + amount, false
	})
}

// Peek returns the pending plus in-flight delta of key (0 if absent) without draining it
func (b *WriteBuffer) Peek(key string) int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.peekLocked(key)
}

// View calls fn with the delta of key while no in-flight delta can be settled.
// fn must not call back into the buffer.
func (b *WriteBuffer) View(key string, fn func(delta int64)) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	fn(b.peekLocked(key))
}

func (b *WriteBuffer) peekLocked(key string) int64 {
	delta, _ := b.pending.Load(key)
	return delta + b.inflight[key]
}

// DrainAll atomically takes all pending deltas and leaves the buffer empty.
// The returned deltas stay visible to Peek until they are committed or restored.
func (b *WriteBuffer) DrainAll() map[string]int64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	drained := b.pending
	b.pending = xsync.NewMapOf[string, int64]()

	result := make(map[string]int64, drained.Size())
	drained.Range(func(key string, delta int64) bool {
		result[key] = delta
		b.inflight[key] += delta
		return true
	})
	return result
}

// Commit drops the in-flight delta of key after it was written to its owning node.
// onCommit runs under the write lock, before the delta disappears from Peek.
func (b *WriteBuffer) Commit(key string, delta int64, onCommit func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if onCommit != nil {
		onCommit()
	}
	b.settleLocked(key, delta)
}

// Restore moves the in-flight delta of key back to pending so the next drain retries it
func (b *WriteBuffer) Restore(key string, delta int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if moved := b.settleLocked(key, delta); moved > 0 {
		b.pending.Compute(key, func(old int64, _ bool) (int64, bool) {
			return old + moved, false
		})
	}
}

// settleLocked removes up to delta from the in-flight delta of key and returns the amount removed
func (b *WriteBuffer) settleLocked(key string, delta int64) int64 {
	cur, ok := b.inflight[key]
	if !ok {
		return 0
	}
	if delta > cur {
		delta = cur
	}
	if cur-delta == 0 {
		delete(b.inflight, key)
	} else {
		b.inflight[key] = cur - delta
	}
	return delta
}

// Len returns the number of keys with a pending or in-flight delta
func (b *WriteBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := b.pending.Size()
	for key := range b.inflight {
		if _, ok := b.pending.Load(key); !ok {
			n++
		}
	}
	return n
}

// InFlight returns the number of keys drained but not yet settled
func (b *WriteBuffer) InFlight() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.inflight)
}
