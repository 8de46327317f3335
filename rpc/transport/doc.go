// Package transport defines how the counter service reaches its nodes.
//
// A node answers two requests, incr (add a delta to a key and return the new total) and
// get (return the total of a key). Both travel as a serialized common.Message addressed
// to a shard id. The transport only moves those bytes: the client sends a request frame
// and waits for the response with the same request id, the server hands every frame to
// the registered ServerHandleFunc together with its shard id.
//
// Implementations live in the subpackages: tcp and unix share the framed connection
// handling of base, http posts one message per request.
package transport
