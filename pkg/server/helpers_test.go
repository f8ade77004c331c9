package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/georgyangelov/react-obs/pkg/compositor"
	"github.com/georgyangelov/react-obs/pkg/layout/flex"
	"github.com/georgyangelov/react-obs/pkg/protocol"
	"github.com/georgyangelov/react-obs/pkg/reconcile"
	"github.com/georgyangelov/react-obs/pkg/shadow"
)

// =============================================================================
// Log capture
// =============================================================================

// logBuffer is a goroutine-safe log sink.
type logBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

type logRecord struct {
	Level string         `json:"level"`
	Msg   string         `json:"msg"`
	Error map[string]any `json:"error"`
}

// records returns the captured records at or above Info.
func (b *logBuffer) records(t *testing.T) []logRecord {
	t.Helper()
	b.mu.Lock()
	text := b.buf.String()
	b.mu.Unlock()

	var out []logRecord
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		if line == "" {
			continue
		}
		var r logRecord
		if err := json.Unmarshal([]byte(line), &r); err != nil {
			t.Fatalf("bad log line %q: %v", line, err)
		}
		out = append(out, r)
	}
	return out
}

// errorCodes returns the codes of ERROR records in order.
func (b *logBuffer) errorCodes(t *testing.T) []string {
	t.Helper()
	var codes []string
	for _, r := range b.records(t) {
		if r.Level != "ERROR" {
			continue
		}
		code, _ := r.Error["code"].(string)
		codes = append(codes, code)
	}
	return codes
}

func newTestLogger() (*slog.Logger, *logBuffer) {
	logs := &logBuffer{}
	return slog.New(slog.NewJSONHandler(logs, &slog.HandlerOptions{Level: slog.LevelInfo})), logs
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("Write metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("Write metric: %v", err)
	}
	return m.GetGauge().GetValue()
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

// =============================================================================
// Scene fixture
// =============================================================================

// scene is a reconciler over an in-memory compositor holding a "Main"
// scene and a "Camera" source, served by a started Server.
type scene struct {
	comp     *compositor.Memory
	rec      *reconcile.Reconciler
	server   *Server
	registry *prometheus.Registry
	logs     *logBuffer
}

func newScene(t *testing.T) *scene {
	t.Helper()
	comp := compositor.NewMemory(compositor.WithCanvas(1920, 1080))
	comp.Register("Main", compositor.SceneTypeID, 0, 0)
	comp.Register("Camera", "", 1280, 720)

	logger, logs := newTestLogger()
	registry := prometheus.NewRegistry()
	rec := reconcile.New(shadow.NewRegistry(), comp, flex.New(),
		reconcile.WithLogger(logger),
		reconcile.WithMetrics(reconcile.NewMetrics(registry)))

	srv := New(&ServerConfig{
		Address:    "127.0.0.1:0",
		Logger:     logger,
		Registerer: registry,
	}, NewDispatcher(rec, logger))
	if err := srv.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Stop(ctx)
	})

	return &scene{comp: comp, rec: rec, server: srv, registry: registry, logs: logs}
}

// dial opens a client connection to the scene server.
func (s *scene) dial(t *testing.T) net.Conn {
	t.Helper()
	nc, err := net.Dial("tcp", s.server.Addr().String())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { _ = nc.Close() })
	return nc
}

func send(t *testing.T, nc net.Conn, msg protocol.ClientMessage) {
	t.Helper()
	if err := protocol.WriteClientMessage(nc, msg); err != nil {
		t.Fatalf("WriteClientMessage(%s): %v", protocol.MessageName(msg), err)
	}
}

func receive(t *testing.T, nc net.Conn) *protocol.Response {
	t.Helper()
	_ = nc.SetReadDeadline(time.Now().Add(2 * time.Second))
	msg, err := protocol.ReadServerMessage(nc)
	if err != nil {
		t.Fatalf("ReadServerMessage: %v", err)
	}
	resp, ok := msg.(*protocol.Response)
	if !ok {
		t.Fatalf("got %T, want *protocol.Response", msg)
	}
	return resp
}

// request sends msg and returns the response.
func request(t *testing.T, nc net.Conn, msg protocol.ClientMessage) *protocol.Response {
	t.Helper()
	send(t, nc, msg)
	return receive(t, nc)
}
