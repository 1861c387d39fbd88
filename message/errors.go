package message

import "errors"

// Protocol-level validation errors. Transports wrap these when a fault
// crosses a transport boundary; callers unwrap with errors.Is.
var (
	// ErrInvalidMethodID is returned when a value cannot be read as a
	// method identifier (wrong kind, or an integer outside the unsigned
	// 64-bit range).
	ErrInvalidMethodID = errors.New("invalid method id")

	// ErrInvalidRequestID is returned when a value cannot be read as a
	// request identifier.
	ErrInvalidRequestID = errors.New("invalid request id")

	// ErrInvalidParamType is returned when a params value is neither an
	// array nor a map.
	ErrInvalidParamType = errors.New("invalid type for params")

	// ErrInvalidKeyType is returned when a named-params map carries a
	// non-text key.
	ErrInvalidKeyType = errors.New("non-string key in params")

	// ErrInvalidMessage is returned when a decoded value is not a
	// recognizable RPC message: missing or wrong protocol tag, or a map
	// shape matching neither a request nor a response.
	ErrInvalidMessage = errors.New("not an RPC message")

	// ErrUnexpectedMessage is returned when a message decodes fine but
	// is not the kind the caller asked for, e.g. a response read where a
	// request was expected.
	ErrUnexpectedMessage = errors.New("incorrect message type")
)
