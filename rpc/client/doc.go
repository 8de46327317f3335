// Package client implements the RPC client of a counter node. It provides an
// implementation of the store.ICounterStore interface that forwards every call to a
// remote node server.
//
// The package focuses on:
//   - Transparent RPC access to counter stores on remote nodes
//   - Integration with the transport and serialization layers
//   - Conversion of error responses into Go errors
//
// Key Components:
//
//   - NewRPCStore: Factory function that creates a client implementing the
//     store.ICounterStore interface for a single shard of a node.
//
// Usage Example:
//
//	// Configure the client
//	conf := common.ClientConfig{
//	  TimeoutSecond: 5,
//	  Transport: common.ClientTransportConfig{
//	    Endpoints:              []string{"localhost:8081"},
//	    RetryCount:             1,
//	    ConnectionsPerEndpoint: 1,
//	  },
//	}
//
//	// Create store client for shard 1
//	s, _ := client.NewRPCStore(1, conf, tcp.NewTCPClientTransport(), serializer.NewBinarySerializer())
//	defer s.Close()
//
//	// Use the store
//	total, _ := s.Incr("page1", 3)
//	total, exists, _ := s.Get("page1")
//
// Retries:
//
//	Incr is not idempotent. A request that reached the node but whose response got lost
//	is applied again on retry, keep RetryCount at 1 unless double counting is acceptable.
//
// Thread Safety:
//
//	All client implementations are thread-safe and can be used concurrently from
//	multiple goroutines without additional synchronization.
package client
