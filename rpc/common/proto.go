package common

import (
	"encoding/json"
	"fmt"
)

// --------------------------------------------------------------------------
// Message Structure
// --------------------------------------------------------------------------

// Message represents a single message used for both requests and responses.
// Which fields are used depends on the type of message.
type Message struct {
	// Type of message
	MsgType MessageType `json:"msg_type" cbor:"1,keyasint"`

	// General fields
	Key   string `json:"key,omitempty" cbor:"2,keyasint,omitempty"`   // Used for: Incr, Get
	Delta int64  `json:"delta,omitempty" cbor:"3,keyasint,omitempty"` // Used for: Incr (request)
	Value int64  `json:"value,omitempty" cbor:"4,keyasint,omitempty"` // Used for: Incr, Get (response), the counter total

	// Response only fields
	Ok  bool   `json:"ok,omitempty" cbor:"5,keyasint,omitempty"`  // Used for: Get responses, false if the counter does not exist
	Err string `json:"err,omitempty" cbor:"6,keyasint,omitempty"` // Empty if no error, otherwise contains the error message
}

// --------------------------------------------------------------------------
// Message Factory Functions
// --------------------------------------------------------------------------

// NewIncrRequest creates a new Incr request
func NewIncrRequest(key string, delta int64) *Message {
	return &Message{
		MsgType: MsgTIncr,
		Key:     key,
		Delta:   delta,
	}
}

// NewIncrResponse creates a new Incr response
func NewIncrResponse(total int64, err error) *Message {
	msg := &Message{
		MsgType: MsgTIncr,
		Value:   total,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewGetRequest creates a new Get request
func NewGetRequest(key string) *Message {
	return &Message{
		MsgType: MsgTGet,
		Key:     key,
	}
}

// NewGetResponse creates a new Get response
func NewGetResponse(total int64, ok bool, err error) *Message {
	msg := &Message{
		MsgType: MsgTGet,
		Value:   total,
		Ok:      ok,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewErrorResponse creates a new Error response
func NewErrorResponse(err string) *Message {
	return &Message{
		MsgType: MsgTError,
		Err:     err,
	}
}

// --------------------------------------------------------------------------
// Message Type Definition
// --------------------------------------------------------------------------

// MessageType defines the type of message used in RPC communication.
type MessageType uint8

// String returns the string representation of a MessageType.
func (t MessageType) String() string {
	switch t {
	case MsgTIncr:
		return "incr"
	case MsgTGet:
		return "get"
	case MsgTError:
		return "error"
	case MsgTSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// MarshalJSON implements the json.Marshaller interface for MessageType.
// This allows MessageType to be serialized as a string in JSON.
func (t MessageType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for MessageType.
// This allows MessageType to be deserialized from a string in JSON.
func (t *MessageType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	// Convert string back to MessageType
	switch s {
	case "incr":
		*t = MsgTIncr
	case "get":
		*t = MsgTGet
	case "error":
		*t = MsgTError
	case "success":
		*t = MsgTSuccess
	default:
		return fmt.Errorf("unknown message type: %s", s)
	}

	return nil
}

// --------------------------------------------------------------------------
// Message Type Constants
// --------------------------------------------------------------------------

const (
	// General message types

	MsgTUnknown MessageType = iota
	MsgTSuccess             // Indicates a successful operation
	MsgTError               // Indicates an error occurred

	// ICounterStore operations

	MsgTIncr // Add a delta to a counter
	MsgTGet  // Read a counter
)
