// Package rpc provides the communication layer between a dCount service
// instance and its backing counter nodes.
//
// The package is organized into several subpackages:
//
//   - common: Core data structures and utilities used across the RPC system,
//     including the Message protocol, configuration structures, and logging.
//
//   - transport: Network communication abstractions with pluggable implementations
//     (TCP, Unix sockets, HTTP).
//
//   - serializer: Message serialization with multiple format options (Binary, CBOR, JSON, GOB)
//     for converting between Message objects and byte arrays.
//
//   - client: RPC client implementing store.ICounterStore, and the node connector
//     used by the counter service to reach its nodes.
//
//   - server: RPC server hosting local or raft replicated counter shards.
package rpc
