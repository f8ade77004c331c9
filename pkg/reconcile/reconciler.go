package reconcile

import (
	"context"
	"log/slog"
	"sync"

	rerrors "github.com/georgyangelov/react-obs/internal/errors"
	"github.com/georgyangelov/react-obs/pkg/compositor"
	"github.com/georgyangelov/react-obs/pkg/layout"
	"github.com/georgyangelov/react-obs/pkg/protocol"
	"github.com/georgyangelov/react-obs/pkg/shadow"
)

// Reconciler applies scene commands to the shadow registry, the compositor
// and the layout tree. It owns the render lock: every operation, and every
// layout tick, holds it for its full duration.
//
// Operations never fail towards the caller. Invalid commands are logged
// with an error code, counted and dropped.
type Reconciler struct {
	mu sync.Mutex

	registry *shadow.Registry
	comp     compositor.Compositor
	engine   layout.Engine

	logger  *slog.Logger
	metrics *Metrics
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reconciler) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics sets the metrics the reconciler and its scheduler record to.
func WithMetrics(m *Metrics) Option {
	return func(r *Reconciler) {
		r.metrics = m
	}
}

// New creates a Reconciler over the given registry, compositor and layout
// engine.
func New(registry *shadow.Registry, comp compositor.Compositor, engine layout.Engine, opts ...Option) *Reconciler {
	r := &Reconciler{
		registry: registry,
		comp:     comp,
		engine:   engine,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("component", "reconciler")
	return r
}

// Registry returns the registry the reconciler mutates.
func (r *Reconciler) Registry() *shadow.Registry {
	return r.registry
}

// Apply dispatches one update to the matching operation.
func (r *Reconciler) Apply(u protocol.Update) {
	switch u := u.(type) {
	case *protocol.CreateSource:
		r.CreateSource(u)
	case *protocol.CreateScene:
		r.CreateScene(u)
	case *protocol.UpdateSource:
		r.UpdateSource(u)
	case *protocol.AppendChild:
		r.AppendChild(u)
	case *protocol.RemoveChild:
		r.RemoveChild(u)
	case *protocol.CommitUpdates:
		r.CommitUpdates(u)
	default:
		r.logger.Warn("ignoring unknown update", "update", protocol.UpdateName(u))
	}
}

// CreateSource creates a managed, externally measured source inside an
// existing container.
func (r *Reconciler) CreateSource(cmd *protocol.CreateSource) {
	const op = "create_source"
	r.mu.Lock()
	defer r.mu.Unlock()

	settings := compositor.NewSettings()
	MergeSettings(settings, cmd.Settings)

	src, err := r.comp.CreateSource(cmd.ID, cmd.Name, settings)
	if err != nil {
		r.drop(op, cmd.UID, rerrors.New(rerrors.CodeCreateSourceFailed).WithSubject(cmd.Name).Wrap(err))
		return
	}

	container := r.registry.Lookup(cmd.ContainerUID)
	if container == nil {
		src.Release()
		r.drop(op, cmd.UID, rerrors.New(rerrors.CodeContainerNotFound).WithSubject(cmd.ContainerUID))
		return
	}

	r.adopt(op, &shadow.Node{
		UID:                cmd.UID,
		Source:             src,
		Container:          container.Handle(),
		Managed:            true,
		ExternallyMeasured: true,
	}, cmd.Settings)
}

// CreateScene creates a managed scene inside an existing container. Scenes
// are sized by layout, not by their content.
func (r *Reconciler) CreateScene(cmd *protocol.CreateScene) {
	const op = "create_scene"
	r.mu.Lock()
	defer r.mu.Unlock()

	src, err := r.comp.CreateScene(cmd.Name)
	if err != nil {
		r.drop(op, cmd.UID, rerrors.New(rerrors.CodeCreateSourceFailed).WithSubject(cmd.Name).Wrap(err))
		return
	}

	container := r.registry.Lookup(cmd.ContainerUID)
	if container == nil {
		src.Release()
		r.drop(op, cmd.UID, rerrors.New(rerrors.CodeContainerNotFound).WithSubject(cmd.ContainerUID))
		return
	}

	r.adopt(op, &shadow.Node{
		UID:       cmd.UID,
		Source:    src,
		Container: container.Handle(),
		Managed:   true,
	}, cmd.Props)
}

// RegisterUnmanagedSource adopts the existing compositor element called
// name under uid. The element stays owned by the host. A scene keeps its
// intrinsic size as its layout size; anything else is measured. It
// reports whether the node was registered.
func (r *Reconciler) RegisterUnmanagedSource(uid, name string) bool {
	const op = "find_source"
	r.mu.Lock()
	defer r.mu.Unlock()

	src, ok := r.comp.FindSource(name)
	if !ok {
		r.drop(op, uid, rerrors.New(rerrors.CodeSourceNotFound).WithSubject(name))
		return false
	}

	node := &shadow.Node{UID: uid, Source: src}
	_, isScene := src.Scene()
	node.ExternallyMeasured = !isScene

	if !r.adopt(op, node, nil) {
		return false
	}
	if isScene {
		w, h := src.Size()
		style := node.Layout.Style()
		style.Width = layout.Point(float32(w))
		style.Height = layout.Point(float32(h))
		node.Layout.SetStyle(style)
	}
	return true
}

// adopt registers node with a fresh layout node and applies the style in
// props. A duplicate uid drops the command and releases a managed source.
func (r *Reconciler) adopt(op string, node *shadow.Node, props protocol.Props) bool {
	h := r.registry.Allocate()
	node.Bind(h)
	node.Layout = r.engine.NewNode(h)
	if node.ExternallyMeasured {
		node.Layout.SetMeasureFunc(r.measure)
	}

	if _, err := r.registry.Insert(node); err != nil {
		node.Layout.Free()
		r.registry.Discard(h)
		if node.Managed {
			node.Source.Release()
		}
		r.drop(op, node.UID, rerrors.FromError(err, rerrors.CodeDuplicateUID).WithSubject(node.UID))
		return false
	}

	r.applyStyle(node, props)
	r.metrics.command(op)
	r.metrics.setNodes(r.registry.Len())
	r.logger.Debug("node registered",
		"uid", node.UID,
		"source", node.Source.Name(),
		"managed", node.Managed,
		"measured", node.ExternallyMeasured)
	return true
}

// measure reports the intrinsic size of the source behind a layout node.
func (r *Reconciler) measure(n layout.Node, _, _ float32) (float32, float32) {
	node := r.registry.Resolve(n.Context())
	if node == nil || node.Source == nil {
		return 0, 0
	}
	w, h := node.Source.Size()
	return float32(w), float32(h)
}

// UpdateSource merges changed props into the node's settings, pushes them
// to the compositor and recomputes the style.
func (r *Reconciler) UpdateSource(cmd *protocol.UpdateSource) {
	const op = "update_source"
	r.mu.Lock()
	defer r.mu.Unlock()

	node := r.registry.Lookup(cmd.UID)
	if node == nil {
		r.drop(op, cmd.UID, rerrors.New(rerrors.CodeNodeNotFound).WithSubject(cmd.UID))
		return
	}

	settings := node.Source.Settings()
	MergeSettings(settings, cmd.ChangedProps)
	node.Source.Update(settings)

	r.applyStyle(node, cmd.ChangedProps)
	r.metrics.command(op)
}

// AppendChild places child in the parent scene and makes it the last
// layout child of parent.
func (r *Reconciler) AppendChild(cmd *protocol.AppendChild) {
	const op = "append_child"
	r.mu.Lock()
	defer r.mu.Unlock()

	parent, scene, err := r.parentScene(cmd.ParentUID)
	if err != nil {
		r.drop(op, cmd.ChildUID, err)
		return
	}
	child := r.registry.Lookup(cmd.ChildUID)
	if child == nil {
		r.drop(op, cmd.ChildUID, rerrors.New(rerrors.CodeNodeNotFound).WithSubject(cmd.ChildUID))
		return
	}
	if child.Item != nil {
		r.drop(op, cmd.ChildUID, rerrors.New(rerrors.CodeAlreadyInScene).WithSubject(cmd.ChildUID))
		return
	}
	for n := parent.Layout; n != nil; n = n.Parent() {
		if n == child.Layout {
			r.drop(op, cmd.ChildUID, rerrors.New(rerrors.CodeCycle).WithSubject(cmd.ChildUID))
			return
		}
	}

	item, addErr := scene.Add(child.Source)
	if addErr != nil {
		r.drop(op, cmd.ChildUID, rerrors.New(rerrors.CodeSceneAddFailed).WithSubject(cmd.ChildUID).Wrap(addErr))
		return
	}
	child.Item = item
	parent.Layout.InsertChild(child.Layout, parent.Layout.ChildCount())
	r.metrics.command(op)
}

// RemoveChild takes child out of the parent scene and the parent's layout
// children. The child stays registered and can be appended again.
func (r *Reconciler) RemoveChild(cmd *protocol.RemoveChild) {
	const op = "remove_child"
	r.mu.Lock()
	defer r.mu.Unlock()

	parent, _, err := r.parentScene(cmd.ParentUID)
	if err != nil {
		r.drop(op, cmd.ChildUID, err)
		return
	}
	child := r.registry.Lookup(cmd.ChildUID)
	if child == nil {
		r.drop(op, cmd.ChildUID, rerrors.New(rerrors.CodeNodeNotFound).WithSubject(cmd.ChildUID))
		return
	}
	if child.Item == nil || child.Item.Scene().Source() != parent.Source {
		r.drop(op, cmd.ChildUID, rerrors.New(rerrors.CodeNotInParentScene).WithSubject(cmd.ChildUID))
		return
	}

	child.Item.Remove()
	child.Item = nil
	parent.Layout.RemoveChild(child.Layout)
	r.metrics.command(op)
}

// parentScene resolves a parent uid that must name a scene.
func (r *Reconciler) parentScene(uid string) (*shadow.Node, compositor.Scene, *rerrors.Error) {
	parent := r.registry.Lookup(uid)
	if parent == nil {
		return nil, nil, rerrors.New(rerrors.CodeNodeNotFound).WithSubject(uid)
	}
	scene, ok := parent.Source.Scene()
	if !ok {
		return nil, nil, rerrors.New(rerrors.CodeParentNotScene).WithSubject(uid)
	}
	return parent, scene, nil
}

// CommitUpdates marks the end of a batch for a container. The container is
// marked dirty so the next tick lays it out.
func (r *Reconciler) CommitUpdates(cmd *protocol.CommitUpdates) {
	const op = "commit_updates"
	r.mu.Lock()
	defer r.mu.Unlock()

	container := r.registry.Lookup(cmd.ContainerUID)
	if container == nil {
		r.drop(op, cmd.ContainerUID, rerrors.New(rerrors.CodeContainerNotFound).WithSubject(cmd.ContainerUID))
		return
	}
	container.Layout.MarkDirty()
	r.metrics.command(op)
}

// Destroy unregisters uid, removing its scene item and layout edge and
// releasing a managed source. Nodes that still hold children, or that are
// the container of other nodes, are refused. The returned error carries
// CodeNodeNotFound or CodeNodeInUse.
func (r *Reconciler) Destroy(uid string) error {
	const op = "destroy"
	r.mu.Lock()
	defer r.mu.Unlock()

	node := r.registry.Lookup(uid)
	if node == nil {
		err := rerrors.New(rerrors.CodeNodeNotFound).WithSubject(uid)
		r.drop(op, uid, err)
		return err
	}
	if node.Layout.ChildCount() > 0 {
		err := rerrors.New(rerrors.CodeNodeInUse).WithSubject(uid).WithDetail("the node has children attached")
		r.drop(op, uid, err)
		return err
	}
	for _, c := range r.registry.Containers() {
		if c == node {
			err := rerrors.New(rerrors.CodeNodeInUse).WithSubject(uid).WithDetail("the node is the container of other nodes")
			r.drop(op, uid, err)
			return err
		}
	}

	r.registry.Remove(uid)
	r.metrics.command(op)
	r.metrics.setNodes(r.registry.Len())
	r.logger.Info("node destroyed", "uid", uid)
	return nil
}

// Snapshot returns a summary of every registered node. It holds the render
// lock so layout results are not read while a tick writes them.
func (r *Reconciler) Snapshot() []shadow.NodeInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registry.Snapshot()
}

func (r *Reconciler) applyStyle(node *shadow.Node, props protocol.Props) {
	for _, err := range ApplyStyle(node.Layout, props) {
		code := rerrors.CodeOf(err)
		r.metrics.rejected(code)
		level := slog.LevelWarn
		if code == rerrors.CodeUnknownStyleKey {
			level = slog.LevelDebug
		}
		r.logger.Log(context.Background(), level, "style attribute rejected", "uid", node.UID, "error", err)
	}
}

func (r *Reconciler) drop(op, uid string, err *rerrors.Error) {
	r.metrics.dropped(op, err.Code)
	r.logger.Error("command dropped", "op", op, "uid", uid, "error", err)
}
