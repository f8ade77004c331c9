package server

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/georgyangelov/react-obs/pkg/protocol"
)

// TracerName is the OpenTelemetry instrumentation name of the server.
const TracerName = "react-obs"

// Reconciler applies scene commands. It is implemented by
// *reconcile.Reconciler.
type Reconciler interface {
	Apply(u protocol.Update)
	RegisterUnmanagedSource(uid, name string) bool
}

// Dispatcher routes client messages to the reconciler and answers
// requests that expect a response.
type Dispatcher struct {
	rec    Reconciler
	logger *slog.Logger
	tracer trace.Tracer
}

// NewDispatcher creates a Dispatcher. A nil logger uses slog.Default().
func NewDispatcher(rec Reconciler, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		rec:    rec,
		logger: logger.With("component", "dispatcher"),
		tracer: otel.Tracer(TracerName),
	}
}

// Dispatch handles one message.
//
//   - InitRequest is answered with success.
//   - FindSource registers an existing compositor element and is answered
//     with whether it was found.
//   - ApplyUpdate is applied to the reconciler without a response.
//   - Anything else disconnects the client.
func (d *Dispatcher) Dispatch(ctx context.Context, c *Conn, msg protocol.ClientMessage) {
	name := protocol.MessageName(msg)
	_, span := d.tracer.Start(ctx, "dispatch "+name,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("reactobs.message", name),
			attribute.String("reactobs.conn_id", c.ID()),
		),
	)
	defer span.End()

	switch m := msg.(type) {
	case *protocol.InitRequest:
		d.logger.Debug("client initialized", "conn_id", c.ID(), "client_id", m.ClientID)
		d.respond(c, span, m.RequestID, true)

	case *protocol.FindSource:
		found := d.rec.RegisterUnmanagedSource(m.UID, m.Name)
		span.SetAttributes(
			attribute.String("reactobs.uid", m.UID),
			attribute.Bool("reactobs.found", found),
		)
		d.respond(c, span, m.RequestID, found)

	case *protocol.ApplyUpdate:
		if m.Update == nil {
			d.unexpected(c, span, name)
			return
		}
		d.rec.Apply(m.Update)

	default:
		d.unexpected(c, span, name)
	}
}

func (d *Dispatcher) respond(c *Conn, span trace.Span, requestID string, success bool) {
	err := c.Send(&protocol.Response{RequestID: requestID, Success: success})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "response not delivered")
	}
}

func (d *Dispatcher) unexpected(c *Conn, span trace.Span, name string) {
	span.RecordError(ErrUnexpectedMessage)
	span.SetStatus(codes.Error, ErrUnexpectedMessage.Error())
	d.logger.Warn("unexpected message, disconnecting", "conn_id", c.ID(), "message", name)
	c.Disconnect()
}
