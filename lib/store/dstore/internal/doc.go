// Package internal provides the communication protocol structures and serialization
// logic for the dstore package. It defines the wire format used to transmit operations
// between the store client and the replicated counter state machine.
//
// This package is intended for internal use by the dstore implementation and should
// not be imported directly by external code.
//
//   - Command System: Defines write operations (Incr) that modify the counters.
//     Commands are serialized and proposed to the RAFT cluster, executed on the state
//     machine, and produce results that are returned to the client.
//
//   - Query System: Defines read operations (Get). Queries are executed locally on the
//     statemachine and therefore do not require serialization.
//
// Command Format:
//
//	- 1 byte: Command type
//	- 8 bytes: Delta (int64, two's complement, big endian)
//	- 4 bytes: Key length (uint32, big endian)
//	- N bytes: Key data
//
// The new counter total of an applied Incr is returned in the raft result data as
// 8 bytes (see EncodeTotal / DecodeTotal).
package internal
