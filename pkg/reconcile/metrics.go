package reconcile

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the reconciler and the
// layout scheduler. A nil *Metrics records nothing.
type Metrics struct {
	commandsTotal   *prometheus.CounterVec
	commandsDropped *prometheus.CounterVec
	styleRejected   *prometheus.CounterVec
	nodes           prometheus.Gauge
	itemCommits     prometheus.Counter
	tickDuration    prometheus.Histogram
	containersLaid  prometheus.Counter
}

// NewMetrics registers the reconciler collectors on reg. A nil reg uses
// prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		commandsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reactobs",
			Subsystem: "reconciler",
			Name:      "commands_total",
			Help:      "Total number of scene commands applied",
		}, []string{"op"}),

		commandsDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reactobs",
			Subsystem: "reconciler",
			Name:      "commands_dropped_total",
			Help:      "Total number of scene commands dropped, by error code",
		}, []string{"op", "code"}),

		styleRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reactobs",
			Subsystem: "reconciler",
			Name:      "style_rejected_total",
			Help:      "Total number of style attributes left unchanged because their value was rejected",
		}, []string{"code"}),

		nodes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "reactobs",
			Subsystem: "reconciler",
			Name:      "nodes",
			Help:      "Number of registered shadow nodes",
		}),

		itemCommits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "reactobs",
			Subsystem: "layout",
			Name:      "item_commits_total",
			Help:      "Total number of scene item transforms written by the layout scheduler",
		}),

		tickDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "reactobs",
			Subsystem: "layout",
			Name:      "tick_duration_seconds",
			Help:      "Layout tick duration in seconds",
			Buckets:   []float64{.0001, .0005, .001, .0025, .005, .01, .025, .05, .1},
		}),

		containersLaid: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "reactobs",
			Subsystem: "layout",
			Name:      "containers_laid_out_total",
			Help:      "Total number of container layout passes",
		}),
	}
}

func (m *Metrics) command(op string) {
	if m == nil {
		return
	}
	m.commandsTotal.WithLabelValues(op).Inc()
}

func (m *Metrics) dropped(op, code string) {
	if m == nil {
		return
	}
	m.commandsDropped.WithLabelValues(op, code).Inc()
}

func (m *Metrics) rejected(code string) {
	if m == nil {
		return
	}
	m.styleRejected.WithLabelValues(code).Inc()
}

func (m *Metrics) setNodes(n int) {
	if m == nil {
		return
	}
	m.nodes.Set(float64(n))
}

func (m *Metrics) tick(d time.Duration, stats TickStats) {
	if m == nil {
		return
	}
	m.tickDuration.Observe(d.Seconds())
	m.itemCommits.Add(float64(stats.Committed))
	m.containersLaid.Add(float64(stats.Containers))
}
