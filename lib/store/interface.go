package store

import (
	"errors"
	"fmt"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// ICounterStore is the interface of a single backing counter node.
// A counter that was never incremented does not exist; reading it reports loaded=false.
type ICounterStore interface {
	// Incr adds delta to the counter for key and returns the new total.
	// An absent counter is initialized to 0 before delta is added.
	Incr(key string, delta int64) (total int64, err error)
	// Get returns the counter for key. The boolean return value indicates whether the counter exists.
	Get(key string) (total int64, loaded bool, err error)
	// Close releases all resources (connections, raft sessions, ...) held by the store.
	Close() (err error)
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode),
// an error message and optionally the node and the underlying cause.
type Error struct {
	Code  RetCode // The return code
	Msg   string  // The error message.
	Node  string  // The node the error relates to (may be empty)
	Cause error   // The underlying error (may be nil)
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("CounterStoreError (code %s): %s", e.Code, e.Msg)
	if e.Node != "" {
		msg = fmt.Sprintf("%s (node %s)", msg, e.Node)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a *Error with the same return code.
// This allows checks like errors.Is(err, store.ErrRemoteUnavailable).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewError creates a new CounterStoreError with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// WrapError creates a new CounterStoreError for the given node that wraps cause.
func WrapError(code RetCode, node string, cause error) *Error {
	return &Error{
		Code:  code,
		Msg:   code.Describe(),
		Node:  node,
		Cause: cause,
	}
}

// Sentinel errors for use with errors.Is. Only the code is compared.
var (
	ErrConfiguration     = NewError(RetCConfigurationError, "configuration error")
	ErrNotFound          = NewError(RetCNotFound, "not found")
	ErrRemoteUnavailable = NewError(RetCRemoteUnavailable, "remote unavailable")
)

// IsConfigurationError reports whether err is (or wraps) a configuration error.
func IsConfigurationError(err error) bool { return errors.Is(err, ErrConfiguration) }

// IsNotFound reports whether err is (or wraps) a not found error.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsRemoteUnavailable reports whether err is (or wraps) a remote unavailable error.
func IsRemoteUnavailable(err error) bool { return errors.Is(err, ErrRemoteUnavailable) }

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess              RetCode = iota // 0: Command executed successfully.
	RetCInternalError                       // 1: Command failed due to an internal error.
	RetCUnsupportedOperation                // 2: Operation is not supported by the store.
	RetCInvalidOperation                    // 3: Invalid operation.
	RetCConfigurationError                  // 4: Invalid or empty node list / ring parameters. Fatal at startup.
	RetCNotFound                            // 5: Routing points to an unregistered node.
	RetCRemoteUnavailable                   // 6: A backing node could not be reached during a live call.
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCInternalError:
		return "InternalError"
	case RetCUnsupportedOperation:
		return "UnsupportedOperation"
	case RetCInvalidOperation:
		return "InvalidOperation"
	case RetCConfigurationError:
		return "ConfigurationError"
	case RetCNotFound:
		return "NotFound"
	case RetCRemoteUnavailable:
		return "RemoteUnavailable"
	default:
		return "Unknown"
	}
}

// Describe returns a short human readable description of the code
func (c RetCode) Describe() string {
	switch c {
	case RetCConfigurationError:
		return "invalid configuration"
	case RetCNotFound:
		return "node not registered"
	case RetCRemoteUnavailable:
		return "backing node unavailable"
	default:
		return c.String()
	}
}
