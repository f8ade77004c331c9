// Package server provides the network side of the scene server.
//
// A Server listens on TCP and serves each accepted stream with a Conn. A
// Conn reads length-prefixed frames, decodes them into client messages
// and passes them one at a time to a Handler on the connection
// goroutine. The Dispatcher is the Handler that routes messages to the
// reconciler:
//
//	rec := reconcile.New(shadow.NewRegistry(), comp, flex.New())
//	srv := server.New(&server.ServerConfig{Address: ":6666"}, server.NewDispatcher(rec, nil))
//	if err := srv.Start(); err != nil {
//	    return err
//	}
//	defer srv.Stop(context.Background())
//
// # Connections
//
// A peer that closes its stream, even in the middle of a frame, ends the
// connection quietly. A frame that does not decode is a protocol error:
// it is logged with its error code and the connection is closed. Panics
// while dispatching are recovered and close only the connection that
// caused them.
//
// Stop closes the listener first, then every tracked connection, and
// waits for their goroutines to finish.
//
// # Admin
//
// Admin serves /healthz, /metrics, /debug/nodes and /ws over HTTP. The
// /ws endpoint carries the same frame stream inside binary WebSocket
// messages.
package server
