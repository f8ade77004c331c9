package server

import (
	"errors"
	"fmt"
)

// Sentinel errors for server and connection conditions.
var (
	// ErrServerStarted is returned by Start on a server that is already running.
	ErrServerStarted = errors.New("server: already started")

	// ErrServerStopped is returned by Start after Stop.
	ErrServerStopped = errors.New("server: stopped")

	// ErrConnectionClosed is returned by Send on a closed connection.
	ErrConnectionClosed = errors.New("server: connection closed")

	// ErrUnexpectedMessage is reported when the dispatcher receives a
	// message it has no handler for.
	ErrUnexpectedMessage = errors.New("server: unexpected message")
)

// ConnError wraps an error with connection context for debugging.
type ConnError struct {
	ConnID string
	Op     string // Operation that failed
	Err    error  // Underlying error
}

// Error returns the error message with connection context.
func (e *ConnError) Error() string {
	if e.ConnID == "" {
		return fmt.Sprintf("server: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("server: conn %s: %s: %v", e.ConnID, e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *ConnError) Unwrap() error {
	return e.Err
}

// NewConnError creates a new ConnError.
func NewConnError(connID, op string, err error) *ConnError {
	return &ConnError{
		ConnID: connID,
		Op:     op,
		Err:    err,
	}
}

// HandlerError wraps a panic that occurred while dispatching a message.
type HandlerError struct {
	ConnID  string
	Message string // Message name being dispatched
	Panic   any    // The recovered panic value
	Stack   []byte // Stack trace at panic time
}

// Error returns the error message.
func (e *HandlerError) Error() string {
	return fmt.Sprintf("server: conn %s: %s panicked: %v", e.ConnID, e.Message, e.Panic)
}
