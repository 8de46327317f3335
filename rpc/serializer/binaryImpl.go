package serializer

import (
	"encoding/binary"
	"fmt"
	"github.com/ValentinKolb/dCount/rpc/common"
)

// NewBinarySerializer creates a new serializer using a custom binary format
// optimized for speed and efficiency
func NewBinarySerializer() IRPCSerializer {
	return &binarySerializerImpl{}
}

// binarySerializerImpl implements IRPCSerializer using a custom binary format
type binarySerializerImpl struct {
}

// Bit flags to indicate which optional fields are present
const (
	hasKey   byte = 1 << 0
	hasDelta byte = 1 << 1
	hasValue byte = 1 << 2
	hasOk    byte = 1 << 3
	hasErr   byte = 1 << 4
)

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (b binarySerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	// Calculate total size needed
	totalSize := b.sizeBytes(msg)
	result := make([]byte, totalSize)

	// Write message type
	result[0] = byte(msg.MsgType)

	// Initialize flags byte
	var flags byte = 0

	// Set position for writing
	pos := 2 // Start after MsgType and flags

	// Handle Key
	if msg.Key != "" {
		flags |= hasKey
		keyLen := len(msg.Key)

		// Write key length
		binary.BigEndian.PutUint32(result[pos:pos+4], uint32(keyLen))
		pos += 4

		// Write key data
		copy(result[pos:pos+keyLen], msg.Key)
		pos += keyLen
	}

	// Handle Delta
	if msg.Delta != 0 {
		flags |= hasDelta
		binary.BigEndian.PutUint64(result[pos:pos+8], uint64(msg.Delta))
		pos += 8
	}

	// Handle Value
	if msg.Value != 0 {
		flags |= hasValue
		binary.BigEndian.PutUint64(result[pos:pos+8], uint64(msg.Value))
		pos += 8
	}

	// Handle Ok (the flag is the value)
	if msg.Ok {
		flags |= hasOk
	}

	// Handle Err
	if msg.Err != "" {
		flags |= hasErr
		errLen := len(msg.Err)

		// Write error length
		binary.BigEndian.PutUint32(result[pos:pos+4], uint32(errLen))
		pos += 4

		// Write error data
		copy(result[pos:pos+errLen], msg.Err)
	}

	// Set flags byte after knowing which fields are present
	result[1] = flags

	return result, nil
}

func (b binarySerializerImpl) Deserialize(data []byte, msg *common.Message) error {
	// Check minimum size (MsgType + flags)
	if len(data) < 2 {
		return fmt.Errorf("data too short for message header")
	}

	*msg = common.Message{}

	// Read message type
	msg.MsgType = common.MessageType(data[0])

	// Read flags
	flags := data[1]

	// Initialize read position
	pos := 2

	// Read Key if present
	if flags&hasKey != 0 {
		if pos+4 > len(data) {
			return fmt.Errorf("data too short for key length")
		}

		// Read key length
		keyLen := int(binary.BigEndian.Uint32(data[pos : pos+4]))
		pos += 4

		if pos+keyLen > len(data) {
			return fmt.Errorf("data too short for key data")
		}

		// Read key data
		msg.Key = string(data[pos : pos+keyLen])
		pos += keyLen
	} else {
		msg.Key = ""
	}

	// Read Delta if present
	if flags&hasDelta != 0 {
		if pos+8 > len(data) {
			return fmt.Errorf("data too short for delta")
		}

		msg.Delta = int64(binary.BigEndian.Uint64(data[pos : pos+8]))
		pos += 8
	} else {
		msg.Delta = 0
	}

	// Read Value if present
	if flags&hasValue != 0 {
		if pos+8 > len(data) {
			return fmt.Errorf("data too short for value")
		}

		msg.Value = int64(binary.BigEndian.Uint64(data[pos : pos+8]))
		pos += 8
	} else {
		msg.Value = 0
	}

	// Read Ok
	msg.Ok = flags&hasOk != 0

	// Read Err if present
	if flags&hasErr != 0 {
		if pos+4 > len(data) {
			return fmt.Errorf("data too short for error length")
		}

		// Read error length
		errLen := int(binary.BigEndian.Uint32(data[pos : pos+4]))
		pos += 4

		if pos+errLen > len(data) {
			return fmt.Errorf("data too short for error data")
		}

		// Read error data
		msg.Err = string(data[pos : pos+errLen])
	} else {
		msg.Err = ""
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// sizeBytes calculates the total size needed for serialization
func (b binarySerializerImpl) sizeBytes(msg common.Message) int {
	// 1 byte for MsgType + 1 byte for flags
	size := 2

	// Add sizes for fields that require length encoding
	if msg.Key != "" {
		size += 4 + len(msg.Key) // 4 bytes for length + key string
	}
	if msg.Delta != 0 {
		size += 8 // int64
	}
	if msg.Value != 0 {
		size += 8 // int64
	}
	if msg.Err != "" {
		size += 4 + len(msg.Err) // 4 bytes for length + error string
	}

	return size
}
