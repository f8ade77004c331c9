package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	rerrors "github.com/georgyangelov/react-obs/internal/errors"
)

// Server accepts client connections and serves each one with a Conn.
type Server struct {
	config  *ServerConfig
	handler Handler
	logger  *slog.Logger
	metrics *Metrics

	mu         sync.Mutex
	listener   net.Listener
	acceptDone chan struct{}
	stopped    bool
	conns      map[*Conn]struct{}
	connWG     sync.WaitGroup
}

// New creates a server that dispatches every message to h. Unset config
// fields take their defaults.
func New(config *ServerConfig, h Handler) *Server {
	config = config.withDefaults()

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		config:  config,
		handler: h,
		logger:  logger.With("component", "server"),
		metrics: NewMetrics(config.Registerer),
		conns:   make(map[*Conn]struct{}),
	}
}

// Config returns the server configuration with defaults applied.
func (s *Server) Config() *ServerConfig {
	return s.config
}

// Start binds the listener and accepts connections in the background.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrServerStopped
	}
	if s.listener != nil {
		return ErrServerStarted
	}

	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		berr := rerrors.New(rerrors.CodeBindFailed).WithSubject(s.config.Address).Wrap(err)
		s.logger.Error("bind failed", "address", s.config.Address, "error", berr)
		return berr
	}

	s.listener = ln
	s.acceptDone = make(chan struct{})
	go s.acceptLoop(ln, s.acceptDone)

	s.logger.Info("listening", "address", ln.Addr().String())
	return nil
}

// Addr returns the bound listener address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// ConnCount returns the number of open connections.
func (s *Server) ConnCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func (s *Server) acceptLoop(ln net.Listener, done chan struct{}) {
	defer close(done)

	for {
		nc, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.metrics.acceptFailed()
			s.logger.Error("accept failed", "error", rerrors.New(rerrors.CodeAcceptFailed).Wrap(err))
			time.Sleep(s.config.AcceptBackoff)
			continue
		}

		c, ok := s.track(nc, "tcp")
		if !ok {
			_ = nc.Close()
			return
		}
		go s.serve(c)
	}
}

// ServeConn serves stream until it disconnects. It blocks and is used by
// transports that own their goroutine, such as the WebSocket handler.
func (s *Server) ServeConn(stream io.ReadWriteCloser, transport string) error {
	c, ok := s.track(stream, transport)
	if !ok {
		_ = stream.Close()
		return ErrServerStopped
	}
	s.serve(c)
	return nil
}

func (s *Server) track(stream io.ReadWriteCloser, transport string) (*Conn, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return nil, false
	}

	c := NewConn(stream, s.handler, s.config.Logger)
	c.maxFrame = s.config.MaxFrameSize
	c.metrics = s.metrics

	s.conns[c] = struct{}{}
	s.connWG.Add(1)
	s.metrics.opened(transport)
	return c, true
}

func (s *Server) serve(c *Conn) {
	defer s.untrack(c)
	_ = c.Run()
}

func (s *Server) untrack(c *Conn) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()

	s.metrics.closed()
	s.connWG.Done()
}

// Stop closes the listener, waits for the accept loop, closes every open
// connection and waits for their goroutines. Waiting is bounded by ctx,
// or by ShutdownTimeout when ctx has no deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	ln, done := s.listener, s.acceptDone
	conns := make([]*Conn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	if ln != nil {
		_ = ln.Close()
		<-done
	}

	for _, c := range conns {
		_ = c.Close()
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()
	}

	waited := make(chan struct{})
	go func() {
		s.connWG.Wait()
		close(waited)
	}()

	select {
	case <-waited:
		s.logger.Info("server stopped", "connections_closed", len(conns))
		return nil
	case <-ctx.Done():
		s.logger.Error("shutdown timed out", "error", ctx.Err())
		return ctx.Err()
	}
}
