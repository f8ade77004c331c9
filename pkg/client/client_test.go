package client

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/georgyangelov/react-obs/pkg/compositor"
	"github.com/georgyangelov/react-obs/pkg/layout/flex"
	"github.com/georgyangelov/react-obs/pkg/protocol"
	"github.com/georgyangelov/react-obs/pkg/reconcile"
	"github.com/georgyangelov/react-obs/pkg/server"
	"github.com/georgyangelov/react-obs/pkg/shadow"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startServer serves a reconciler over an in-memory compositor with a
// "Main" scene.
func startServer(t *testing.T) (*server.Server, *compositor.Memory) {
	t.Helper()
	comp := compositor.NewMemory()
	comp.Register("Main", compositor.SceneTypeID, 1920, 1080)

	logger := quietLogger()
	rec := reconcile.New(shadow.NewRegistry(), comp, flex.New(), reconcile.WithLogger(logger))
	srv := server.New(&server.ServerConfig{
		Address:    "127.0.0.1:0",
		Logger:     logger,
		Registerer: prometheus.NewRegistry(),
	}, server.NewDispatcher(rec, logger))
	if err := srv.Start(); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Stop(ctx)
	})
	return srv, comp
}

func dial(t *testing.T, addr string) *Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c, err := Dial(ctx, addr, WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("Dial() = %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestClientSession(t *testing.T) {
	srv, comp := startServer(t)
	c := dial(t, srv.Addr().String())
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := c.Init(ctx, "test"); err != nil {
		t.Fatalf("Init() = %v", err)
	}

	found, err := c.FindSource(ctx, "root", "Main")
	if err != nil || !found {
		t.Fatalf("FindSource(Main) = %v, %v", found, err)
	}
	found, err = c.FindSource(ctx, "x", "Missing")
	if err != nil || found {
		t.Fatalf("FindSource(Missing) = %v, %v, want false", found, err)
	}

	updates := []protocol.Update{
		&protocol.CreateSource{ID: "color_source", ContainerUID: "root", Name: "Fill", UID: "fill"},
		&protocol.AppendChild{ParentUID: "root", ChildUID: "fill"},
	}
	for _, u := range updates {
		if err := c.Apply(ctx, u); err != nil {
			t.Fatalf("Apply(%s) = %v", protocol.UpdateName(u), err)
		}
	}
	// A request after the updates returns only once they were applied.
	if err := c.Init(ctx, "test"); err != nil {
		t.Fatalf("Init() = %v", err)
	}
	if _, ok := comp.Item("Main", "Fill"); !ok {
		t.Error("Fill was not added to Main")
	}
}

func TestClientClosed(t *testing.T) {
	srv, _ := startServer(t)
	c := dial(t, srv.Addr().String())

	if err := c.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}
	if err := c.Init(context.Background(), "x"); !errors.Is(err, ErrClosed) {
		t.Errorf("Init after Close = %v, want ErrClosed", err)
	}
	if err := c.Apply(context.Background(), &protocol.CommitUpdates{}); !errors.Is(err, ErrClosed) {
		t.Errorf("Apply after Close = %v, want ErrClosed", err)
	}
}

// fakeServer answers every request on the server end of a pipe with fn.
func fakeServer(t *testing.T, fn func(msg protocol.ClientMessage) protocol.ServerMessage) *Client {
	t.Helper()
	serverEnd, clientEnd := net.Pipe()
	t.Cleanup(func() { _ = serverEnd.Close() })

	go func() {
		for {
			msg, err := protocol.ReadClientMessage(serverEnd)
			if err != nil {
				return
			}
			if reply := fn(msg); reply != nil {
				if err := protocol.WriteServerMessage(serverEnd, reply); err != nil {
					return
				}
			}
		}
	}()

	c := New(clientEnd, WithLogger(quietLogger()))
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestClientInitRejected(t *testing.T) {
	c := fakeServer(t, func(msg protocol.ClientMessage) protocol.ServerMessage {
		return &protocol.Response{RequestID: msg.(*protocol.InitRequest).RequestID, Success: false}
	})

	if err := c.Init(context.Background(), "x"); !errors.Is(err, ErrRejected) {
		t.Errorf("Init() = %v, want ErrRejected", err)
	}
}

func TestClientResponseMismatch(t *testing.T) {
	c := fakeServer(t, func(protocol.ClientMessage) protocol.ServerMessage {
		return &protocol.Response{RequestID: "someone-else", Success: true}
	})

	if _, err := c.FindSource(context.Background(), "root", "Main"); !errors.Is(err, ErrResponseMismatch) {
		t.Errorf("FindSource() = %v, want ErrResponseMismatch", err)
	}
}

func TestClientContextDeadline(t *testing.T) {
	c := fakeServer(t, func(protocol.ClientMessage) protocol.ServerMessage {
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := c.Init(ctx, "x")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Init() without a reply = %v, want DeadlineExceeded", err)
	}
}
