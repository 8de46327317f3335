package internal

import (
	"encoding/binary"
	"fmt"
)

// CommandType defines the possible operations for the state machine.
type CommandType uint8

const (
	CommandTIncr CommandType = iota // Add a delta to a counter.
)

func (ct CommandType) String() string {
	switch ct {
	case CommandTIncr:
		return "Incr"
	default:
		return fmt.Sprintf("Unknown(%d)", ct)
	}
}

// Command represents a command to be executed by the state machine (a single entry in the raft log)
type Command struct {
	Type  CommandType
	Key   string
	Delta int64
}

// SizeBytes returns the exact number of bytes needed to serialize this command
func (command *Command) SizeBytes() int {
	return 1 + 8 + 4 + len(command.Key) // Type + Delta + KeyLen + Key
}

// Serialize serializes a command into a byte array with the format:
// 1 byte for operation type,
// 8 bytes for delta (two's complement, big endian),
// 4 bytes for key length (big endian),
// N bytes for key data
func (command *Command) Serialize() []byte {
	result := make([]byte, command.SizeBytes())

	// Set operation type
	result[0] = byte(command.Type)

	// Set delta
	binary.BigEndian.PutUint64(result[1:9], uint64(command.Delta))

	// Set key length (4 bytes, big endian)
	binary.BigEndian.PutUint32(result[9:13], uint32(len(command.Key)))

	// Copy key bytes
	copy(result[13:], command.Key)

	return result
}

// Deserialize extracts all Command fields from a byte array.
func (command *Command) Deserialize(data []byte) error {
	// Minimum size: 1 (Type) + 8 (Delta) + 4 (KeyLen) = 13 bytes
	if len(data) < 13 {
		return fmt.Errorf("data too short for command")
	}

	// Extract operation type
	command.Type = CommandType(data[0])

	// Extract delta
	command.Delta = int64(binary.BigEndian.Uint64(data[1:9]))

	// Extract key length
	keyLen := binary.BigEndian.Uint32(data[9:13])

	// Validate key length
	if len(data) != 13+int(keyLen) {
		return fmt.Errorf("invalid data length %d for key of length %d", len(data), keyLen)
	}

	// Extract key
	command.Key = string(data[13 : 13+keyLen])

	return nil
}

// EncodeTotal encodes a counter total for the result data of a raft entry
func EncodeTotal(total int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(total))
	return b
}

// DecodeTotal decodes a counter total from the result data of a raft entry
func DecodeTotal(b []byte) (int64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("invalid total length %d", len(b))
	}
	return int64(binary.BigEndian.Uint64(b)), nil
}
