package protocol

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Message-level decoding errors. Both mean the peer sent something this
// server does not understand; the connection is closed.
var (
	ErrEmptyMessage     = errors.New("protocol: empty message with no cases")
	ErrUnknownMessage   = errors.New("protocol: unknown message case")
	ErrMaxDepthExceeded = errors.New("protocol: maximum nesting depth exceeded")
	ErrTooManyProps     = errors.New("protocol: prop count exceeds limit")
)

// WireTypeError is reported when a known field arrives with the wrong wire type.
type WireTypeError struct {
	Field protowire.Number
	Got   protowire.Type
	Want  protowire.Type
}

// Error returns the error message.
func (e *WireTypeError) Error() string {
	return fmt.Sprintf("protocol: field %d has wire type %d, want %d", e.Field, e.Got, e.Want)
}

// DecodeError wraps a payload that failed to parse into the expected
// message shape.
type DecodeError struct {
	Message string // Message type being decoded
	Err     error  // Underlying error
}

// Error returns the error message with the message type.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("protocol: decode %s: %v", e.Message, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsProtocolError reports whether err means the peer violated the
// protocol (as opposed to disconnecting).
func IsProtocolError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de) ||
		errors.Is(err, ErrFrameTooLarge) ||
		errors.Is(err, ErrEmptyMessage) ||
		errors.Is(err, ErrUnknownMessage)
}
