// Package store provides the interface of a single backing counter node together
// with the error taxonomy shared by every layer that talks to backing nodes.
//
// The package focuses on:
//   - A unified interface (ICounterStore) for counter operations across different backends
//   - A typed error system (Error + RetCode) that the sharding layer uses to tell
//     configuration problems, routing bugs and unreachable nodes apart
//
// Key Components:
//
//   - ICounterStore Interface: The minimal contract of a backing node. Incr adds a
//     delta to a counter (absent counters start at 0) and returns the new total, Get
//     returns the current total and whether the counter exists.
//
//   - Error System: A structured error reporting mechanism using typed error codes
//     and descriptive messages. Error implements Unwrap and Is, so callers can use
//     errors.Is(err, store.ErrRemoteUnavailable) or the IsXXX helpers.
//
// Implementations:
//
//	- Local Store (lstore): A simple, non-distributed in-memory implementation.
//	  Suitable for single process deployments, development and tests.
//
//	- Distributed Store (dstore): A counter shard replicated with the Dragonboat
//	  RAFT consensus library.
//
//	- RPC Store (rpc/client): A client for a counter shard served by a remote dcount node.
package store
