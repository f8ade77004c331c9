package server

import (
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/georgyangelov/react-obs/pkg/protocol"
)

// WebSocketHandler upgrades the request and serves the connection with
// the same frame protocol as TCP. The frame stream is carried in binary
// WebSocket messages; message boundaries do not need to match frames.
func (s *Server) WebSocketHandler() http.Handler {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  s.config.ReadBufferSize,
		WriteBufferSize: s.config.WriteBufferSize,
		CheckOrigin:     s.config.CheckOrigin,
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade has already written the HTTP error.
			s.logger.Debug("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
			return
		}
		ws.SetReadLimit(int64(s.config.MaxFrameSize) + protocol.FrameHeaderSize)

		if err := s.ServeConn(NewWebSocketStream(ws), "websocket"); err != nil {
			s.logger.Debug("websocket rejected", "remote", r.RemoteAddr, "error", err)
		}
	})
}

// WebSocketStream adapts a WebSocket connection to a byte stream. Reads
// concatenate binary messages and skip text messages; each Write sends
// one binary message.
type WebSocketStream struct {
	ws *websocket.Conn
	r  io.Reader
}

// NewWebSocketStream wraps ws.
func NewWebSocketStream(ws *websocket.Conn) *WebSocketStream {
	return &WebSocketStream{ws: ws}
}

// Read reads from the current binary message, advancing to the next one
// when it is exhausted.
func (s *WebSocketStream) Read(p []byte) (int, error) {
	for {
		if s.r == nil {
			typ, r, err := s.ws.NextReader()
			if err != nil {
				var ce *websocket.CloseError
				if errors.As(err, &ce) {
					return 0, io.EOF
				}
				return 0, err
			}
			if typ != websocket.BinaryMessage {
				continue
			}
			s.r = r
		}

		n, err := s.r.Read(p)
		if errors.Is(err, io.EOF) {
			s.r = nil
			if n > 0 {
				return n, nil
			}
			continue
		}
		return n, err
	}
}

// Write sends p as one binary message.
func (s *WebSocketStream) Write(p []byte) (int, error) {
	if err := s.ws.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Close sends a normal close message and closes the connection.
func (s *WebSocketStream) Close() error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = s.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	return s.ws.Close()
}

// RemoteAddr returns the peer address.
func (s *WebSocketStream) RemoteAddr() net.Addr {
	return s.ws.RemoteAddr()
}
