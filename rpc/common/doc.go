// Package common provides core data structures and utilities shared across
// dCount. It defines the wire protocol, configuration structures and the logger.
//
// Key Components:
//
//   - Message: Core data structure for all RPC communication between a service
//     and its nodes. Incr and Get requests and responses use the same structure,
//     the factory functions set the fields used by each message type.
//
//   - MessageType: Enumeration of all supported operations (incr, get) and the
//     control messages (success, error).
//
//   - ServerConfig: Configuration of a backing node, including RAFT parameters,
//     storage settings and transport settings. Provides utilities for converting
//     to Dragonboat-specific configurations.
//
//   - ClientConfig: Configuration for node connections, controlling endpoints,
//     timeouts, and retry behavior.
//
//   - Logger: Custom logging implementation that integrates with Dragonboat's
//     logging system while providing consistent formatting across the application.
package common
