package reconcile

import (
	"context"
	"log/slog"
	"time"

	rerrors "github.com/georgyangelov/react-obs/internal/errors"
	"github.com/georgyangelov/react-obs/pkg/compositor"
	"github.com/georgyangelov/react-obs/pkg/layout"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the OpenTelemetry tracer used by the server.
const TracerName = "react-obs"

// TickStats summarizes one layout tick.
type TickStats struct {
	// Resized counts measured nodes whose intrinsic size changed.
	Resized int

	// Containers counts containers that were laid out.
	Containers int

	// Committed counts scene items whose transform was written.
	Committed int

	// Skipped counts nodes with a new layout but no scene item.
	Skipped int
}

// Scheduler runs layout ticks for a Reconciler. It polls the intrinsic
// size of measured sources, recomputes dirty containers and writes the
// results to the compositor scene items.
type Scheduler struct {
	r      *Reconciler
	logger *slog.Logger
	tracer trace.Tracer
}

// NewScheduler creates a scheduler for r.
func NewScheduler(r *Reconciler) *Scheduler {
	return &Scheduler{
		r:      r,
		logger: r.logger.With("component", "scheduler"),
		tracer: otel.Tracer(TracerName),
	}
}

// Tick runs one layout pass under the render lock.
func (s *Scheduler) Tick() TickStats {
	return s.tick(context.Background())
}

func (s *Scheduler) tick(ctx context.Context) TickStats {
	_, span := s.tracer.Start(ctx, "layout.tick")
	defer span.End()

	start := time.Now()
	r := s.r
	r.mu.Lock()
	defer r.mu.Unlock()

	var stats TickStats
	for _, n := range r.registry.Measured() {
		w, h := n.Source.Size()
		if w == n.LastWidth && h == n.LastHeight {
			continue
		}
		n.LastWidth, n.LastHeight = w, h
		n.Layout.MarkDirty()
		stats.Resized++
		s.logger.Debug("source resized", "uid", n.UID, "width", w, "height", h)
	}

	for _, c := range r.registry.Containers() {
		if !c.Layout.IsDirty() {
			continue
		}
		c.Layout.Calculate(layout.Undefined, layout.Undefined)
		stats.Containers++
		layout.Walk(c.Layout, func(ln layout.Node) {
			s.commit(ln, &stats)
		})
	}

	span.SetAttributes(
		attribute.Int("reactobs.resized", stats.Resized),
		attribute.Int("reactobs.containers", stats.Containers),
		attribute.Int("reactobs.committed", stats.Committed),
	)
	r.metrics.tick(time.Since(start), stats)
	return stats
}

// commit writes a node's new layout to its scene item.
func (s *Scheduler) commit(ln layout.Node, stats *TickStats) {
	if !ln.HasNewLayout() {
		return
	}
	ln.ClearNewLayout()

	node := s.r.registry.Resolve(ln.Context())
	if node == nil {
		return
	}
	if node.Item == nil {
		// Unmanaged roots have no item to position.
		if node.Managed {
			s.logger.Error("layout node has no scene item",
				"uid", node.UID,
				"error", rerrors.New(rerrors.CodeMissingSceneItem).WithSubject(node.UID))
		}
		stats.Skipped++
		return
	}

	box := ln.Layout()
	item := node.Item
	item.DeferUpdateBegin()
	item.SetPos(compositor.Vec2{X: box.Left, Y: box.Top})
	item.SetBounds(compositor.BoundsScaleInner, compositor.Vec2{X: box.Width, Y: box.Height})
	item.DeferUpdateEnd()
	stats.Committed++
}

// Run ticks every interval until ctx is done.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("layout scheduler started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("layout scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}
