package internal

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// TestSizeBytes tests the SizeBytes method
func TestSizeBytes(t *testing.T) {
	tests := []struct {
		name     string
		command  Command
		expected int
	}{
		{
			name: "Command with key",
			command: Command{
				Type:  CommandTIncr,
				Key:   "testkey",
				Delta: 5,
			},
			expected: 1 + 8 + 4 + 7, // Type + Delta + KeyLen + Key
		},
		{
			name: "Command with empty key",
			command: Command{
				Type:  CommandTIncr,
				Key:   "",
				Delta: 1,
			},
			expected: 1 + 8 + 4, // Type + Delta + KeyLen
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			size := tt.command.SizeBytes()
			if size != tt.expected {
				t.Errorf("SizeBytes() = %v, want %v", size, tt.expected)
			}
		})
	}
}

// TestSerializeDeserialize tests both Serialize and Deserialize methods
func TestSerializeDeserialize(t *testing.T) {
	tests := []struct {
		name    string
		command Command
	}{
		{
			name:    "Simple increment",
			command: Command{Type: CommandTIncr, Key: "page:home", Delta: 1},
		},
		{
			name:    "Large delta",
			command: Command{Type: CommandTIncr, Key: "page:about", Delta: 1 << 40},
		},
		{
			name:    "Negative delta",
			command: Command{Type: CommandTIncr, Key: "k", Delta: -7},
		},
		{
			name:    "Empty key",
			command: Command{Type: CommandTIncr, Key: "", Delta: 3},
		},
		{
			name:    "Unicode key",
			command: Command{Type: CommandTIncr, Key: "seite/übersicht", Delta: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := tt.command.Serialize()

			var newCommand Command
			if err := newCommand.Deserialize(data); err != nil {
				t.Fatalf("Deserialize() error = %v", err)
			}

			if newCommand != tt.command {
				t.Errorf("Command mismatch: got %+v, want %+v", newCommand, tt.command)
			}

			// Verify that SizeBytes matches the serialized data length
			if tt.command.SizeBytes() != len(data) {
				t.Errorf("SizeBytes() = %d, but serialized data length = %d",
					tt.command.SizeBytes(), len(data))
			}
		})
	}
}

// TestDeserializeErrors tests error cases in Deserialize
func TestDeserializeErrors(t *testing.T) {
	tests := []struct {
		name        string
		data        []byte
		expectedErr string
	}{
		{
			name:        "Empty data",
			data:        []byte{},
			expectedErr: "data too short for command",
		},
		{
			name:        "Data too short (less than header)",
			data:        []byte{1, 2, 3, 4, 5},
			expectedErr: "data too short for command",
		},
		{
			name: "Invalid key length",
			data: func() []byte {
				data := make([]byte, 13) // Just the header
				data[0] = byte(CommandTIncr)
				// Set key length to a large value that exceeds the data
				binary.BigEndian.PutUint32(data[9:13], 1000)
				return data
			}(),
			expectedErr: "invalid data length 13 for key of length 1000",
		},
		{
			name: "Trailing bytes",
			data: func() []byte {
				cmd := Command{Type: CommandTIncr, Key: "abc", Delta: 1}
				return append(cmd.Serialize(), 0xff)
			}(),
			expectedErr: "invalid data length 17 for key of length 3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cmd Command
			err := cmd.Deserialize(tt.data)

			// Check if we got the expected error
			if err == nil {
				t.Fatalf("Expected error but got nil")
			}
			if err.Error() != tt.expectedErr {
				t.Errorf("Expected error %q, got %q", tt.expectedErr, err.Error())
			}
		})
	}
}

// TestBinaryFormat tests the exact binary format of serialized commands
func TestBinaryFormat(t *testing.T) {
	// Create a command
	cmd := Command{
		Type:  CommandTIncr,
		Key:   "testkey",
		Delta: 12345,
	}

	// Manually create the expected byte array
	expected := make([]byte, cmd.SizeBytes())
	// Type
	expected[0] = byte(CommandTIncr)
	// Delta
	binary.BigEndian.PutUint64(expected[1:9], 12345)
	// Key length
	binary.BigEndian.PutUint32(expected[9:13], 7) // "testkey" length
	// Key
	copy(expected[13:], []byte("testkey"))

	// Serialize and compare
	serialized := cmd.Serialize()
	if !bytes.Equal(serialized, expected) {
		t.Errorf("Binary format does not match:\nGot:      %v\nExpected: %v", serialized, expected)
	}
}

// TestTotalEncoding tests the encoding of counter totals in raft results
func TestTotalEncoding(t *testing.T) {
	for _, total := range []int64{0, 1, -1, 1 << 62} {
		decoded, err := DecodeTotal(EncodeTotal(total))
		if err != nil {
			t.Fatalf("DecodeTotal() error = %v", err)
		}
		if decoded != total {
			t.Errorf("DecodeTotal() = %d, want %d", decoded, total)
		}
	}

	if _, err := DecodeTotal([]byte{1, 2, 3}); err == nil {
		t.Errorf("Expected error for short total")
	}
}
