// Package lstore implements a local, in-memory, single-node counter store based on the
// store.ICounterStore interface. Data is stored entirely in memory and is not persisted
// between process restarts.
//
// Implementation Details:
//
//   - Counters are kept in an xsync.MapOf. Incr uses Compute, which is atomic per key,
//     so concurrent increments of the same counter are never lost and increments of
//     different counters do not contend on a global lock.
//
//   - After Close all operations fail with RetCInvalidOperation.
//
// Usage Example:
//
//	s := lstore.NewLocalStore()
//	total, err := s.Incr("page:home", 3)
//	count, exists, err := s.Get("page:home")
//
// For replicated counters use the dstore package instead, which provides a
// RAFT-based implementation of the same interface.
package lstore
