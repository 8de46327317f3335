package serializer

import (
	"github.com/ValentinKolb/dCount/rpc/common"
	"math"
	"reflect"
	"testing"
)

// testSerializers is a map of serializer name to factory function
var testSerializers = map[string]func() IRPCSerializer{
	"JSON":   NewJSONSerializer,
	"GOB":    NewGOBSerializer,
	"Binary": NewBinarySerializer,
	"CBOR":   NewCBORSerializer,
}

// testMessages creates a set of test messages with different fields filled
func testMessages() []common.Message {
	return []common.Message{
		// Basic message with just a type
		{MsgType: common.MsgTSuccess},

		// Incr request
		{
			MsgType: common.MsgTIncr,
			Key:     "page1",
			Delta:   5,
		},

		// Incr response
		{
			MsgType: common.MsgTIncr,
			Value:   1 << 40,
		},

		// Get response
		{
			MsgType: common.MsgTGet,
			Key:     "page1",
			Value:   42,
			Ok:      true,
		},

		// Error response
		{
			MsgType: common.MsgTError,
			Err:     "test error message",
		},

		// Message with all fields filled (negative numbers included)
		{
			MsgType: common.MsgTIncr,
			Key:     "test-key-ä",
			Delta:   -3,
			Value:   -9,
			Ok:      true,
			Err:     "partial failure",
		},
	}
}

// TestSerializerRoundTrip tests that messages can be serialized and deserialized correctly
func TestSerializerRoundTrip(t *testing.T) {
	messages := testMessages()

	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			for i, msg := range messages {
				// Serialize
				data, err := serializer.Serialize(msg)
				if err != nil {
					t.Errorf("Failed to serialize message %d: %v", i, err)
					continue
				}

				// Deserialize
				var result common.Message
				err = serializer.Deserialize(data, &result)
				if err != nil {
					t.Errorf("Failed to deserialize message %d: %v", i, err)
					continue
				}

				// Compare
				if !reflect.DeepEqual(msg, result) {
					t.Errorf("Message %d doesn't match after round trip:\nOriginal: %+v\nResult: %+v",
						i, msg, result)
				}
			}
		})
	}
}

// TestDeserializeReusedMessage tests that decoding into a used message drops its old fields
func TestDeserializeReusedMessage(t *testing.T) {
	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			msg := common.Message{
				MsgType: common.MsgTIncr,
				Key:     "page1",
				Delta:   3,
				Value:   10,
				Ok:      true,
				Err:     "node down",
			}
			want := *common.NewGetRequest("page2")

			data, err := serializer.Serialize(want)
			if err != nil {
				t.Fatalf("Failed to serialize: %v", err)
			}
			if err := serializer.Deserialize(data, &msg); err != nil {
				t.Fatalf("Failed to deserialize: %v", err)
			}
			if !reflect.DeepEqual(want, msg) {
				t.Errorf("Stale fields after decoding into a used message:\nExpected: %+v\nResult: %+v", want, msg)
			}
		})
	}
}

// TestJSONRejectsUnknownFields tests that the json serializer refuses foreign payloads
func TestJSONRejectsUnknownFields(t *testing.T) {
	var msg common.Message
	err := NewJSONSerializer().Deserialize([]byte(`{"msg_type":"get","key":"page1","lock_id":"a"}`), &msg)
	if err == nil {
		t.Error("Expected an error for a payload with unknown fields")
	}
}

// TestMessageTypes tests each message type with each serializer
func TestMessageTypes(t *testing.T) {
	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			// Test each message type (don't test for MsgTUnknown since this should raise an error)
			for msgType := common.MsgTSuccess; msgType <= common.MsgTGet; msgType++ {
				msg := common.Message{MsgType: msgType}

				// Serialize
				data, err := serializer.Serialize(msg)
				if err != nil {
					t.Errorf("Failed to serialize message type %s: %v", msgType.String(), err)
					continue
				}

				// Deserialize
				var result common.Message
				err = serializer.Deserialize(data, &result)
				if err != nil {
					t.Errorf("Failed to deserialize message type %s: %v", msgType.String(), err)
					continue
				}

				// Check type
				if result.MsgType != msgType {
					t.Errorf("Message type doesn't match after round trip: Expected %s, got %s",
						msgType.String(), result.MsgType.String())
				}
			}
		})
	}
}

// TestBinarySerializerSpecific tests specific edge cases for the binary serializer
func TestBinarySerializerSpecific(t *testing.T) {
	serializer := NewBinarySerializer()

	// Test cases for empty or zero values
	testCases := []struct {
		name string
		msg  common.Message
	}{
		{
			name: "Empty message",
			msg:  common.Message{},
		},
		{
			name: "Message with empty strings and zero values",
			msg: common.Message{
				MsgType: common.MsgTIncr,
				Key:     "",
				Delta:   0,
				Value:   0,
				Ok:      false,
				Err:     "",
			},
		},
		{
			name: "Message with empty strings but Ok=true",
			msg: common.Message{
				MsgType: common.MsgTGet,
				Ok:      true,
			},
		},
		{
			name: "Message with extreme values",
			msg: common.Message{
				MsgType: common.MsgTIncr,
				Key:     "k",
				Delta:   math.MaxInt64,
				Value:   math.MinInt64,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Serialize
			data, err := serializer.Serialize(tc.msg)
			if err != nil {
				t.Fatalf("Failed to serialize: %v", err)
			}

			// Deserialize into a message with stale content
			result := common.Message{Key: "stale", Delta: 1, Value: 2, Ok: true, Err: "stale"}
			err = serializer.Deserialize(data, &result)
			if err != nil {
				t.Fatalf("Failed to deserialize: %v", err)
			}

			if !reflect.DeepEqual(tc.msg, result) {
				t.Errorf("Message mismatch:\nExpected: %+v\nGot: %+v", tc.msg, result)
			}
		})
	}
}

// TestInvalidBinaryData tests how the binary serializer handles corrupt or invalid data
func TestInvalidBinaryData(t *testing.T) {
	serializer := NewBinarySerializer()

	testCases := []struct {
		name        string
		data        []byte
		expectError bool
	}{
		{
			name:        "Empty data",
			data:        []byte{},
			expectError: true,
		},
		{
			name:        "Too short header",
			data:        []byte{1}, // Only message type, no flags
			expectError: true,
		},
		{
			name:        "Valid header only",
			data:        []byte{1, 0}, // Message type 1, no flags
			expectError: false,
		},
		{
			name:        "Invalid length for key",
			data:        []byte{1, 1, 0, 0, 0, 5, 'a', 'b', 'c'}, // Claims key length 5 but only 3 bytes provided
			expectError: true,
		},
		{
			name:        "Truncated value",
			data:        []byte{1, 4, 0, 0, 0, 10}, // Value flag set but only 4 of 8 bytes provided
			expectError: true,
		},
		{
			name:        "Invalid length for error",
			data:        []byte{2, 16, 0, 0, 0, 9, 'x'}, // Claims error length 9 but only 1 byte provided
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var msg common.Message
			err := serializer.Deserialize(tc.data, &msg)

			if tc.expectError && err == nil {
				t.Errorf("Expected error but got none")
			} else if !tc.expectError && err != nil {
				t.Errorf("Did not expect error but got: %v", err)
			}
		})
	}
}
