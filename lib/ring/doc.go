// Package ring implements the consistent hash ring that assigns counter keys to
// backing nodes.
//
// Every node is placed on a 64 bit ring virtualNodesPerNode times, at the hash of
// "<nodeID>#<index>". A key is routed to the first position whose hash is greater
// than or equal to the key hash, wrapping around to the smallest position. Two
// positions with the same hash are ordered by node id.
//
// The ring is immutable after New and fully deterministic: the same node list,
// virtual node count and hash function always produce the same key → node
// assignment, independent of the order in which the nodes are listed. This is what
// allows several service instances to route a key to the same node.
//
// Two hash functions are available: xxHash64 (HashXX, default) and murmur3
// (HashMurmur3).
//
// Usage Example:
//
//	r, err := ring.New([]string{"node-1", "node-2"}, 100)
//	if err != nil { ... }
//	node, err := r.Route("page:home")
package ring
