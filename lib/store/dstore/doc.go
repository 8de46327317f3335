// Package dstore implements a replicated, fault-tolerant counter store using the
// Dragonboat RAFT consensus library. It implements the store.ICounterStore interface
// and can be served by a dcount node like any other counter shard.
//
// Architecture:
//
//   - Store Client: Implements store.ICounterStore and communicates with the RAFT
//     cluster. Increments are serialized into commands and proposed via SyncPropose,
//     reads are executed with SyncRead.
//
//   - State Machine: A Dragonboat IConcurrentStateMachine holding the counters in an
//     xsync.MapOf. Lookups may run concurrently with updates.
//
//   - Communication Protocol: Defined in the internal package (Command and Query).
//
// Write Operations:
//
//	1. The increment is serialized into a Command
//	2. The Command is proposed to the RAFT cluster via SyncPropose
//	3. Once committed, the command is applied on every replica (Update in statemachine.go)
//	4. The new total is returned to the client in the result data
//
// Error Handling and Retries:
//
//	- System Busy: When Dragonboat returns ErrSystemBusy, the proposal never entered the
//	  log and is retried after a short delay, up to 5 attempts.
//
//	- Timeouts: A proposal that times out may still be committed later. The error is
//	  returned to the caller, who must treat increments as at-least-once.
//
// Snapshotting and Recovery:
//
//	PrepareSnapshot copies the counters while updates are paused, SaveSnapshot writes
//	the copy (entry count, then key length, key and total per counter). Recovery
//	replaces the counters with the snapshot content before the remaining log entries
//	are applied.
//
// Usage:
//
//	nh, err := dragonboat.NewNodeHost(nodeHostConfig)
//	if err != nil { ... }
//
//	err = nh.StartConcurrentReplica(
//	    clusterMembers,
//	    false,
//	    dstore.CreateStateMachineFactory(),
//	    shardConfig)
//	if err != nil { ... }
//
//	s := dstore.NewDistributedStore(nh, shardID, 5*time.Second)
//	total, err := s.Incr("page:home", 1)
//
// Deploy with an odd number of replicas (3, 5, 7) so a majority is always possible.
package dstore
