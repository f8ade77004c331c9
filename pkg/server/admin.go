package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	rerrors "github.com/georgyangelov/react-obs/internal/errors"
	"github.com/georgyangelov/react-obs/pkg/shadow"
)

// Inspector exposes the scene graph to the admin endpoints. It is
// implemented by *reconcile.Reconciler.
type Inspector interface {
	Snapshot() []shadow.NodeInfo
	Destroy(uid string) error
}

// Admin is the HTTP side server: health, metrics, node debugging and the
// WebSocket transport.
type Admin struct {
	addr      string
	server    *Server
	inspector Inspector
	gatherer  prometheus.Gatherer
	logger    *slog.Logger
	router    chi.Router

	mu       sync.Mutex
	http     *http.Server
	listener net.Listener
	done     chan struct{}
}

// NewAdmin creates the admin server for addr. A nil gatherer uses
// prometheus.DefaultGatherer.
func NewAdmin(addr string, s *Server, inspector Inspector, gatherer prometheus.Gatherer) *Admin {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	a := &Admin{
		addr:      addr,
		server:    s,
		inspector: inspector,
		gatherer:  gatherer,
		logger:    s.logger.With("component", "admin"),
	}
	a.router = a.routes()
	return a
}

func (a *Admin) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(a.accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", a.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(a.gatherer, promhttp.HandlerOpts{}))
	r.Route("/debug/nodes", func(r chi.Router) {
		r.Get("/", a.handleNodes)
		r.Delete("/{uid}", a.handleDestroy)
	})
	r.Handle("/ws", a.server.WebSocketHandler())
	return r
}

// Handler returns the admin router.
func (a *Admin) Handler() http.Handler {
	return a.router
}

// Start binds addr and serves in the background.
func (a *Admin) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.http != nil {
		return ErrServerStarted
	}

	ln, err := net.Listen("tcp", a.addr)
	if err != nil {
		berr := rerrors.New(rerrors.CodeBindFailed).WithSubject(a.addr).Wrap(err)
		a.logger.Error("bind failed", "address", a.addr, "error", berr)
		return berr
	}

	a.listener = ln
	a.http = &http.Server{
		Handler:           a.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	a.done = make(chan struct{})

	go func(srv *http.Server, done chan struct{}) {
		defer close(done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("admin server failed", "error", err)
		}
	}(a.http, a.done)

	a.logger.Info("admin listening", "address", ln.Addr().String())
	return nil
}

// Addr returns the bound address, or nil before Start.
func (a *Admin) Addr() net.Addr {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener == nil {
		return nil
	}
	return a.listener.Addr()
}

// Shutdown stops accepting requests and waits for active ones. Hijacked
// WebSocket connections are closed by Server.Stop.
func (a *Admin) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	srv, done := a.http, a.done
	a.mu.Unlock()

	if srv == nil {
		return nil
	}
	if err := srv.Shutdown(ctx); err != nil {
		a.logger.Error("admin shutdown error", "error", err)
		return err
	}
	<-done
	return nil
}

type healthResponse struct {
	Status      string `json:"status"`
	Connections int    `json:"connections"`
}

func (a *Admin) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:      "ok",
		Connections: a.server.ConnCount(),
	})
}

func (a *Admin) handleNodes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.inspector.Snapshot())
}

func (a *Admin) handleDestroy(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")

	err := a.inspector.Destroy(uid)
	switch rerrors.CodeOf(err) {
	case "":
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case rerrors.CodeNodeNotFound:
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusConflict)
	}
}

func (a *Admin) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		a.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
