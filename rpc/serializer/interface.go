package serializer

import "github.com/ValentinKolb/dCount/rpc/common"

// IRPCSerializer encodes the incr and get messages exchanged between the counter
// service and its nodes
type IRPCSerializer interface {
	// Serialize encodes msg for a single transport frame
	Serialize(msg common.Message) ([]byte, error)
	// Deserialize decodes b into msg. Every field of msg is overwritten, so a message
	// can be reused across frames without carrying over a stale key, delta or error.
	Deserialize(b []byte, msg *common.Message) error
}
