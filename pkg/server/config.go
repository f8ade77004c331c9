package server

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/georgyangelov/react-obs/pkg/protocol"
)

// ServerConfig holds configuration for the protocol server and its
// connections.
type ServerConfig struct {
	// Address is the TCP address to listen on (e.g., ":6666").
	Address string

	// MaxFrameSize caps the payload of a single inbound frame.
	// Default: protocol.MaxPayloadSize (16MB).
	MaxFrameSize uint32

	// AcceptBackoff is the pause after a failed Accept before retrying.
	// Default: 50ms.
	AcceptBackoff time.Duration

	// ShutdownTimeout bounds Stop when the caller's context has no
	// deadline. Default: 5s.
	ShutdownTimeout time.Duration

	// ReadBufferSize is the WebSocket read buffer size in bytes.
	// Default: 4096.
	ReadBufferSize int

	// WriteBufferSize is the WebSocket write buffer size in bytes.
	// Default: 4096.
	WriteBufferSize int

	// CheckOrigin validates the Origin header of WebSocket upgrades.
	// Default: same origin only.
	CheckOrigin func(r *http.Request) bool

	// Logger is the structured logger. Default: slog.Default().
	Logger *slog.Logger

	// Registerer receives the server collectors. Default:
	// prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer
}

// DefaultServerConfig returns a ServerConfig with sensible defaults.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Address:         ":6666",
		MaxFrameSize:    protocol.MaxPayloadSize,
		AcceptBackoff:   50 * time.Millisecond,
		ShutdownTimeout: 5 * time.Second,
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     sameOrigin,
	}
}

// Clone returns a shallow copy of the config.
func (c *ServerConfig) Clone() *ServerConfig {
	clone := *c
	return &clone
}

// WithAddress returns a copy with the listen address replaced.
func (c *ServerConfig) WithAddress(addr string) *ServerConfig {
	clone := c.Clone()
	clone.Address = addr
	return clone
}

// WithLogger returns a copy with the logger replaced.
func (c *ServerConfig) WithLogger(logger *slog.Logger) *ServerConfig {
	clone := c.Clone()
	clone.Logger = logger
	return clone
}

// withDefaults fills in defaults for any unset fields.
func (c *ServerConfig) withDefaults() *ServerConfig {
	defaults := DefaultServerConfig()
	if c == nil {
		return defaults
	}
	cfg := c.Clone()
	if cfg.Address == "" {
		cfg.Address = defaults.Address
	}
	if cfg.MaxFrameSize == 0 {
		cfg.MaxFrameSize = defaults.MaxFrameSize
	}
	if cfg.AcceptBackoff == 0 {
		cfg.AcceptBackoff = defaults.AcceptBackoff
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if cfg.ReadBufferSize == 0 {
		cfg.ReadBufferSize = defaults.ReadBufferSize
	}
	if cfg.WriteBufferSize == 0 {
		cfg.WriteBufferSize = defaults.WriteBufferSize
	}
	if cfg.CheckOrigin == nil {
		cfg.CheckOrigin = defaults.CheckOrigin
	}
	return cfg
}

// sameOrigin accepts requests without an Origin header and requests whose
// Origin host matches the Host header.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return u.Host == r.Host
}
