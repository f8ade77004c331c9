// Package client is a Go client for the scene server wire protocol.
//
//	c, err := client.Dial(ctx, "localhost:6666")
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	if err := c.Init(ctx, "my-controller"); err != nil {
//	    return err
//	}
//	found, err := c.FindSource(ctx, "root", "Main")
//
// Requests are answered in order. A Client serializes its calls, so it is
// safe for concurrent use, but calls do not overlap on the wire.
package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/georgyangelov/react-obs/pkg/protocol"
)

// Sentinel errors.
var (
	// ErrRejected is returned by Init when the server answers with failure.
	ErrRejected = errors.New("client: request rejected")

	// ErrResponseMismatch is returned when a response answers a different
	// request than the one sent.
	ErrResponseMismatch = errors.New("client: response for another request")

	// ErrClosed is returned by calls on a closed client.
	ErrClosed = errors.New("client: closed")
)

// Client is a connection to a scene server.
type Client struct {
	conn   net.Conn
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Dial connects to the server at addr.
func Dial(ctx context.Context, addr string, opts ...Option) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("client: dial %s: %w", addr, err)
	}
	return New(conn, opts...), nil
}

// New creates a client over an established connection.
func New(conn net.Conn, opts ...Option) *Client {
	c := &Client{conn: conn, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "client", "server", conn.RemoteAddr().String())
	return c
}

// Init opens the session. It returns ErrRejected if the server refuses.
func (c *Client) Init(ctx context.Context, clientID string) error {
	requestID := ulid.Make().String()
	ok, err := c.request(ctx, &protocol.InitRequest{ClientID: clientID, RequestID: requestID}, requestID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrRejected
	}
	return nil
}

// FindSource asks the server to adopt the compositor element called name
// under uid. It reports whether the element exists.
func (c *Client) FindSource(ctx context.Context, uid, name string) (bool, error) {
	requestID := ulid.Make().String()
	return c.request(ctx, &protocol.FindSource{UID: uid, Name: name, RequestID: requestID}, requestID)
}

// Apply sends one scene update. Updates are not answered; failures on the
// server side are only visible in its logs.
func (c *Client) Apply(ctx context.Context, u protocol.Update) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	stop := c.bind(ctx)
	defer stop()

	if err := protocol.WriteClientMessage(c.conn, &protocol.ApplyUpdate{Update: u}); err != nil {
		return c.fail(ctx, "apply "+protocol.UpdateName(u), err)
	}
	return nil
}

// Close closes the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}

func (c *Client) request(ctx context.Context, msg protocol.ClientMessage, requestID string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false, ErrClosed
	}
	stop := c.bind(ctx)
	defer stop()

	name := protocol.MessageName(msg)
	if err := protocol.WriteClientMessage(c.conn, msg); err != nil {
		return false, c.fail(ctx, name, err)
	}

	reply, err := protocol.ReadServerMessage(c.conn)
	if err != nil {
		return false, c.fail(ctx, name, err)
	}
	resp, ok := reply.(*protocol.Response)
	if !ok || resp.RequestID != requestID {
		return false, fmt.Errorf("%w: sent %s", ErrResponseMismatch, requestID)
	}

	c.logger.Debug("response", "message", name, "request_id", requestID, "success", resp.Success)
	return resp.Success, nil
}

// bind applies the deadline and cancellation of ctx to the connection
// until the returned func is called.
func (c *Client) bind(ctx context.Context) func() {
	deadline, _ := ctx.Deadline()
	_ = c.conn.SetDeadline(deadline)

	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.SetDeadline(time.Now())
	})
	return func() { stop() }
}

func (c *Client) fail(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("client: %s: %w", op, ctxErr)
	}
	// The connection deadline can expire just before ctx reports it.
	if _, ok := ctx.Deadline(); ok && errors.Is(err, os.ErrDeadlineExceeded) {
		return fmt.Errorf("client: %s: %w", op, context.DeadlineExceeded)
	}
	return fmt.Errorf("client: %s: %w", op, err)
}
