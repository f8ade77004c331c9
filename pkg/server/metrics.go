package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the protocol server and its
// connections. A nil *Metrics records nothing.
type Metrics struct {
	connectionsTotal  *prometheus.CounterVec
	connectionsActive prometheus.Gauge
	messagesTotal     *prometheus.CounterVec
	protocolErrors    *prometheus.CounterVec
	handlerPanics     prometheus.Counter
	acceptErrors      prometheus.Counter
	writeErrors       prometheus.Counter
}

// NewMetrics registers the server collectors on reg. A nil reg uses
// prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		connectionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reactobs",
			Subsystem: "server",
			Name:      "connections_total",
			Help:      "Total number of accepted client connections",
		}, []string{"transport"}),

		connectionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "reactobs",
			Subsystem: "server",
			Name:      "connections_active",
			Help:      "Number of currently open client connections",
		}),

		messagesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reactobs",
			Subsystem: "server",
			Name:      "messages_total",
			Help:      "Total number of client messages dispatched, by message type",
		}, []string{"type"}),

		protocolErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reactobs",
			Subsystem: "server",
			Name:      "protocol_errors_total",
			Help:      "Total number of connections closed for a protocol violation, by error code",
		}, []string{"code"}),

		handlerPanics: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "reactobs",
			Subsystem: "server",
			Name:      "handler_panics_total",
			Help:      "Total number of recovered panics while dispatching a message",
		}),

		acceptErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "reactobs",
			Subsystem: "server",
			Name:      "accept_errors_total",
			Help:      "Total number of failed Accept calls",
		}),

		writeErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "reactobs",
			Subsystem: "server",
			Name:      "write_errors_total",
			Help:      "Total number of failed response writes",
		}),
	}
}

func (m *Metrics) opened(transport string) {
	if m == nil {
		return
	}
	m.connectionsTotal.WithLabelValues(transport).Inc()
	m.connectionsActive.Inc()
}

func (m *Metrics) closed() {
	if m == nil {
		return
	}
	m.connectionsActive.Dec()
}

func (m *Metrics) message(name string) {
	if m == nil {
		return
	}
	m.messagesTotal.WithLabelValues(name).Inc()
}

func (m *Metrics) protocolError(code string) {
	if m == nil {
		return
	}
	m.protocolErrors.WithLabelValues(code).Inc()
}

func (m *Metrics) panicked() {
	if m == nil {
		return
	}
	m.handlerPanics.Inc()
}

func (m *Metrics) acceptFailed() {
	if m == nil {
		return
	}
	m.acceptErrors.Inc()
}

func (m *Metrics) writeFailed() {
	if m == nil {
		return
	}
	m.writeErrors.Inc()
}
