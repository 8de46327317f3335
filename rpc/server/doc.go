// Package server implements the RPC server of a dCount counter node.
// A node serves one or more counter shards, every shard is backed by a
// store.ICounterStore and is addressed by its shard id in each request frame.
//
// Key Components:
//
//   - IRPCServerAdapter: Interface defining the contract for all server adapters,
//     with the Handle method that processes incoming requests against a store.ICounterStore.
//
//   - NewICounterStoreServerAdapter: Factory function creating an adapter that
//     translates Incr and Get requests to store.ICounterStore method calls.
//
//   - NewRPCServer: Factory function creating a configured server with the specified
//     transport and serializer mechanisms.
//
// Usage Example:
//
//	config := common.ServerConfig{
//	  Shards: []common.ServerShard{
//	    {ShardID: 1, Type: common.ShardTypeLocalCounter},
//	  },
//	  TimeoutSecond: 5,
//	  Transport: common.ServerTransportConfig{Endpoint: "0.0.0.0:8080"},
//	  LogLevel: "info",
//	}
//
//	s := server.NewRPCServer(
//	  config,
//	  tcp.NewTCPServerTransport(),
//	  serializer.NewBinarySerializer(),
//	)
//
//	if err := s.Serve(); err != nil {
//	  log.Fatalf("Server error: %v", err)
//	}
//
// The server supports two types of shards, which can be mixed within a single server:
//
//   - ShardTypeLocalCounter: An in-memory counter store, suitable for single-node deployments
//     or development environments.
//
//   - ShardTypeReplicatedCounter: A counter store replicated with Raft consensus.
//     When using this type, the RAFT configuration (RTTMillisecond, SnapshotEntries,
//     CompactionOverhead, DataDir, ReplicaID, and ClusterMembers) must be set.
//
// Thread Safety:
//
//	Requests are processed concurrently. Serve must be called only once,
//	Close may be called from any goroutine and makes Serve return.
package server
