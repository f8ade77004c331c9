package server

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/oklog/ulid/v2"

	rerrors "github.com/georgyangelov/react-obs/internal/errors"
	"github.com/georgyangelov/react-obs/pkg/protocol"
)

// Handler processes decoded client messages. Dispatch runs on the
// connection goroutine; the next frame is not read until it returns.
type Handler interface {
	Dispatch(ctx context.Context, c *Conn, msg protocol.ClientMessage)
}

// HandlerFunc adapts an ordinary function to the Handler interface.
type HandlerFunc func(ctx context.Context, c *Conn, msg protocol.ClientMessage)

// Dispatch calls f(ctx, c, msg).
func (f HandlerFunc) Dispatch(ctx context.Context, c *Conn, msg protocol.ClientMessage) {
	f(ctx, c, msg)
}

// Conn serves one client stream. It reads frames, decodes them and hands
// each message to the Handler in order.
type Conn struct {
	id      string
	stream  io.ReadWriteCloser
	reader  *bufio.Reader
	handler Handler
	logger  *slog.Logger
	metrics *Metrics

	maxFrame uint32

	ctx    context.Context
	cancel context.CancelFunc

	writeMu sync.Mutex

	disconnect atomic.Bool
	closed     atomic.Bool
	closeOnce  sync.Once
}

// NewConn creates a connection over stream. A nil logger uses
// slog.Default().
func NewConn(stream io.ReadWriteCloser, h Handler, logger *slog.Logger) *Conn {
	if logger == nil {
		logger = slog.Default()
	}
	id := ulid.Make().String()
	attrs := []any{"component", "conn", "conn_id", id}
	if ra, ok := stream.(interface{ RemoteAddr() net.Addr }); ok && ra.RemoteAddr() != nil {
		attrs = append(attrs, "remote", ra.RemoteAddr().String())
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Conn{
		id:       id,
		stream:   stream,
		reader:   bufio.NewReader(stream),
		handler:  h,
		logger:   logger.With(attrs...),
		maxFrame: protocol.MaxPayloadSize,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// ID returns the connection id.
func (c *Conn) ID() string {
	return c.id
}

// Logger returns the connection logger.
func (c *Conn) Logger() *slog.Logger {
	return c.logger
}

// Run reads and dispatches messages until the peer disconnects, a
// protocol error occurs, Disconnect is called or the connection is
// closed. The stream is closed when Run returns. A clean disconnect
// returns nil.
func (c *Conn) Run() error {
	defer c.Close()
	c.logger.Debug("connection opened")

	for !c.disconnect.Load() {
		payload, err := protocol.ReadFrameLimit(c.reader, c.maxFrame)
		if err != nil {
			return c.readFailed(err)
		}
		msg, err := protocol.DecodeClientMessage(payload)
		if err != nil {
			return c.readFailed(err)
		}
		if err := c.dispatch(msg); err != nil {
			return err
		}
	}

	c.logger.Debug("connection disconnected by server")
	return nil
}

func (c *Conn) readFailed(err error) error {
	if errors.Is(err, protocol.ErrDisconnected) {
		c.logger.Debug("peer disconnected", "error", err)
		return nil
	}
	if c.closed.Load() {
		return nil
	}

	code := protocolErrorCode(err)
	c.metrics.protocolError(code)
	c.logger.Error("protocol error, closing connection", "error", rerrors.FromError(err, code))
	return NewConnError(c.id, "read", err)
}

// protocolErrorCode maps a read or decode failure to its registered code.
func protocolErrorCode(err error) string {
	switch {
	case errors.Is(err, protocol.ErrFrameTooLarge):
		return rerrors.CodeFrameTooLarge
	case errors.Is(err, protocol.ErrEmptyMessage):
		return rerrors.CodeEmptyMessage
	case errors.Is(err, protocol.ErrUnknownMessage):
		return rerrors.CodeUnknownMessage
	default:
		return rerrors.CodeMalformedMessage
	}
}

func (c *Conn) dispatch(msg protocol.ClientMessage) (err error) {
	name := protocol.MessageName(msg)
	c.metrics.message(name)

	defer func() {
		if r := recover(); r != nil {
			herr := &HandlerError{
				ConnID:  c.id,
				Message: name,
				Panic:   r,
				Stack:   debug.Stack(),
			}
			c.metrics.panicked()
			c.logger.Error("dispatch panicked, closing connection",
				"message", name,
				"error", rerrors.New(rerrors.CodeHandlerPanic).Wrap(herr),
				"stack", string(herr.Stack))
			err = herr
		}
	}()

	c.handler.Dispatch(c.ctx, c, msg)
	return nil
}

// Send writes one framed message to the peer. Writes are serialized.
func (c *Conn) Send(msg protocol.ServerMessage) error {
	if c.closed.Load() {
		return ErrConnectionClosed
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := protocol.WriteServerMessage(c.stream, msg); err != nil {
		c.metrics.writeFailed()
		c.logger.Warn("write failed", "error", rerrors.New(rerrors.CodeWriteFailed).Wrap(err))
		return NewConnError(c.id, "write", err)
	}
	return nil
}

// Disconnect makes Run return after the message being dispatched.
func (c *Conn) Disconnect() {
	c.disconnect.Store(true)
}

// Close closes the stream. A blocked Run returns nil.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.cancel()
		err = c.stream.Close()
	})
	return err
}
