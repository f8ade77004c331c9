package reconcile

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	rerrors "github.com/georgyangelov/react-obs/internal/errors"
	"github.com/georgyangelov/react-obs/pkg/compositor"
	"github.com/georgyangelov/react-obs/pkg/layout"
	"github.com/georgyangelov/react-obs/pkg/layout/flex"
	"github.com/georgyangelov/react-obs/pkg/protocol"
	"github.com/georgyangelov/react-obs/pkg/shadow"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// =============================================================================
// Fixture
// =============================================================================

type fixture struct {
	comp    *compositor.Memory
	reg     *shadow.Registry
	rec     *Reconciler
	sched   *Scheduler
	metrics *Metrics
	logs    *bytes.Buffer
}

// newFixture builds a reconciler over an in-memory compositor holding a
// "Main" scene and a "Camera" source, with "root" adopted from "Main".
func newFixture(t *testing.T) *fixture {
	t.Helper()
	comp := compositor.NewMemory()
	comp.Register("Main", compositor.SceneTypeID, 1920, 1080)
	comp.Register("Camera", "", 1280, 720)

	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(logs, &slog.HandlerOptions{Level: slog.LevelWarn}))
	metrics := NewMetrics(prometheus.NewRegistry())
	reg := shadow.NewRegistry()
	rec := New(reg, comp, flex.New(), WithLogger(logger), WithMetrics(metrics))

	if !rec.RegisterUnmanagedSource("root", "Main") {
		t.Fatal("RegisterUnmanagedSource(root, Main) = false")
	}
	return &fixture{comp: comp, reg: reg, rec: rec, sched: NewScheduler(rec), metrics: metrics, logs: logs}
}

type logRecord struct {
	Level string         `json:"level"`
	Msg   string         `json:"msg"`
	Op    string         `json:"op"`
	UID   string         `json:"uid"`
	Error map[string]any `json:"error"`
}

// records returns the log records at or above Warn and resets the buffer.
func (f *fixture) records(t *testing.T) []logRecord {
	t.Helper()
	var out []logRecord
	for _, line := range strings.Split(strings.TrimSpace(f.logs.String()), "\n") {
		if line == "" {
			continue
		}
		var r logRecord
		if err := json.Unmarshal([]byte(line), &r); err != nil {
			t.Fatalf("bad log line %q: %v", line, err)
		}
		out = append(out, r)
	}
	f.logs.Reset()
	return out
}

// expectDropped asserts that exactly one command was dropped with code.
func (f *fixture) expectDropped(t *testing.T, code string) {
	t.Helper()
	recs := f.records(t)
	if len(recs) != 1 {
		t.Fatalf("got %d log records, want 1: %+v", len(recs), recs)
	}
	if recs[0].Level != "ERROR" || recs[0].Error["code"] != code {
		t.Errorf("log record = %+v, want an ERROR with code %s", recs[0], code)
	}
}

func (f *fixture) expectQuiet(t *testing.T) {
	t.Helper()
	if recs := f.records(t); len(recs) != 0 {
		t.Fatalf("unexpected log records: %+v", recs)
	}
}

func (f *fixture) createText(t *testing.T, uid string, width, height int64) *shadow.Node {
	t.Helper()
	f.rec.CreateSource(&protocol.CreateSource{
		ID:           "text_ft2_source",
		ContainerUID: "root",
		Name:         uid,
		UID:          uid,
		Settings: protocol.Props{
			protocol.P("text", protocol.String(uid)),
			protocol.P("width", protocol.Int(width)),
			protocol.P("height", protocol.Int(height)),
		},
	})
	n := f.reg.Lookup(uid)
	if n == nil {
		t.Fatalf("CreateSource(%s) did not register a node", uid)
	}
	return n
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	return m.GetCounter().GetValue()
}

// =============================================================================
// Registration
// =============================================================================

func TestRegisterUnmanagedSource(t *testing.T) {
	f := newFixture(t)

	root := f.reg.Lookup("root")
	if root.Managed || root.ExternallyMeasured {
		t.Errorf("scene root: managed %v, measured %v; want neither", root.Managed, root.ExternallyMeasured)
	}
	style := root.Layout.Style()
	if style.Width != layout.Point(1920) || style.Height != layout.Point(1080) {
		t.Errorf("scene root size = %+v x %+v, want 1920 x 1080", style.Width, style.Height)
	}

	if !f.rec.RegisterUnmanagedSource("cam", "Camera") {
		t.Fatal("RegisterUnmanagedSource(cam, Camera) = false")
	}
	if cam := f.reg.Lookup("cam"); !cam.ExternallyMeasured || cam.Managed {
		t.Errorf("camera: managed %v, measured %v; want measured only", cam.Managed, cam.ExternallyMeasured)
	}
	f.expectQuiet(t)
}

func TestRegisterUnmanagedSourceUnknownName(t *testing.T) {
	f := newFixture(t)

	if f.rec.RegisterUnmanagedSource("ghost", "Nope") {
		t.Fatal("RegisterUnmanagedSource(unknown) = true")
	}
	if f.reg.Lookup("ghost") != nil {
		t.Error("no node may be registered for an unknown source")
	}
	f.expectDropped(t, rerrors.CodeSourceNotFound)
}

func TestRegisterUnmanagedSourceDuplicate(t *testing.T) {
	f := newFixture(t)

	if f.rec.RegisterUnmanagedSource("root", "Camera") {
		t.Fatal("re-registering a live uid must fail")
	}
	if f.reg.Lookup("root").Source.Name() != "Main" {
		t.Error("the original node must stay in place")
	}
	if _, ok := f.comp.FindSource("Camera"); !ok {
		t.Error("an unmanaged source must never be released")
	}
	f.expectDropped(t, rerrors.CodeDuplicateUID)
}

func TestRegisterUnmanagedSourceIgnoresCreatedElements(t *testing.T) {
	f := newFixture(t)
	f.rec.CreateScene(&protocol.CreateScene{ContainerUID: "root", Name: "Overlay", UID: "overlay"})
	if f.reg.Lookup("overlay") == nil {
		t.Fatal("CreateScene(overlay) did not register a node")
	}

	if f.rec.RegisterUnmanagedSource("alias", "Overlay") {
		t.Fatal("a created scene must not be adoptable by name")
	}
	if f.reg.Lookup("alias") != nil {
		t.Error("no node may be registered for the alias")
	}
	f.expectDropped(t, rerrors.CodeSourceNotFound)

	if err := f.rec.Destroy("overlay"); err != nil {
		t.Fatalf("Destroy(overlay) = %v", err)
	}
	if f.comp.Has("Overlay") {
		t.Error("destroying the managed scene must release it")
	}
}

// =============================================================================
// Creation
// =============================================================================

func TestCreateSource(t *testing.T) {
	f := newFixture(t)

	f.rec.CreateSource(&protocol.CreateSource{
		ID:           "text_ft2_source",
		ContainerUID: "root",
		Name:         "Title",
		UID:          "title",
		Settings: protocol.Props{
			protocol.P("text", protocol.String("Hello")),
			protocol.P(StyleKey, protocol.Object(protocol.P("marginTop", protocol.String("10px")))),
		},
	})

	n := f.reg.Lookup("title")
	if n == nil {
		t.Fatal("node not registered")
	}
	if !n.Managed || !n.ExternallyMeasured {
		t.Errorf("managed %v, measured %v; want both", n.Managed, n.ExternallyMeasured)
	}
	if f.reg.Resolve(n.Container) != f.reg.Lookup("root") {
		t.Error("container should be root")
	}
	if n.Layout.Context() != n.Handle() {
		t.Error("the layout node must carry the node's handle")
	}
	if got := n.Layout.Style().Margin[layout.EdgeTop]; got != layout.Point(10) {
		t.Errorf("marginTop = %+v, want 10px", got)
	}

	settings := n.Source.Settings()
	if text, _ := settings.GetString("text"); text != "Hello" {
		t.Errorf("text setting = %q", text)
	}
	if _, ok := settings.Get(StyleKey); ok {
		t.Error("style leaked into the compositor settings")
	}
	if n.Source.TypeID() != "text_ft2_source" {
		t.Errorf("type id = %q", n.Source.TypeID())
	}
	if got := counterValue(t, f.metrics.commandsTotal.WithLabelValues("create_source")); got != 1 {
		t.Errorf("commands_total(create_source) = %v, want 1", got)
	}
	f.expectQuiet(t)
}

func TestCreateWithMissingContainer(t *testing.T) {
	tests := []struct {
		name  string
		apply func(r *Reconciler)
	}{
		{"source", func(r *Reconciler) {
			r.CreateSource(&protocol.CreateSource{ID: "color_source", ContainerUID: "nope", Name: "Orphan", UID: "orphan"})
		}},
		{"scene", func(r *Reconciler) {
			r.CreateScene(&protocol.CreateScene{ContainerUID: "nope", Name: "Orphan", UID: "orphan"})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			before := f.reg.Len()

			tt.apply(f.rec)

			if f.reg.Lookup("orphan") != nil || f.reg.Len() != before {
				t.Error("no node may be registered for a missing container")
			}
			if f.comp.Has("Orphan") {
				t.Error("the created element must be released")
			}
			f.expectDropped(t, rerrors.CodeContainerNotFound)
			if got := counterValue(t, f.metrics.commandsDropped.WithLabelValues("create_"+tt.name, rerrors.CodeContainerNotFound)); got != 1 {
				t.Errorf("commands_dropped_total = %v, want 1", got)
			}
		})
	}
}

func TestCreateSourceDuplicateUID(t *testing.T) {
	f := newFixture(t)
	first := f.createText(t, "a", 10, 10)

	f.rec.CreateSource(&protocol.CreateSource{ID: "text_ft2_source", ContainerUID: "root", Name: "second", UID: "a"})

	if f.reg.Lookup("a") != first {
		t.Error("the original node must stay registered")
	}
	if f.comp.Has("second") {
		t.Error("the rejected element must be released")
	}
	f.expectDropped(t, rerrors.CodeDuplicateUID)
}

func TestCreateSourceFailure(t *testing.T) {
	f := newFixture(t)

	f.rec.CreateSource(&protocol.CreateSource{ContainerUID: "root", Name: "typeless", UID: "x"})

	if f.reg.Lookup("x") != nil {
		t.Error("no node for a failed create")
	}
	f.expectDropped(t, rerrors.CodeCreateSourceFailed)
}

func TestCreateScene(t *testing.T) {
	f := newFixture(t)

	f.rec.CreateScene(&protocol.CreateScene{
		ContainerUID: "root",
		Name:         "Row",
		UID:          "row",
		Props: protocol.Props{
			protocol.P(StyleKey, protocol.Object(protocol.P("flexDirection", protocol.String("row")))),
		},
	})

	n := f.reg.Lookup("row")
	if n == nil || !n.IsScene() {
		t.Fatal("scene node not registered")
	}
	if !n.Managed || n.ExternallyMeasured {
		t.Errorf("managed %v, measured %v; want managed only", n.Managed, n.ExternallyMeasured)
	}
	if n.Layout.Style().FlexDirection != layout.FlexDirectionRow {
		t.Error("scene style not applied")
	}
}

// =============================================================================
// Updates
// =============================================================================

func TestUpdateSource(t *testing.T) {
	f := newFixture(t)
	f.rec.CreateSource(&protocol.CreateSource{
		ID:           "color_source",
		ContainerUID: "root",
		Name:         "Box",
		UID:          "box",
		Settings: protocol.Props{
			protocol.P("opacity", protocol.Float(0.5)),
			protocol.P(StyleKey, protocol.Object(
				protocol.P("width", protocol.Int(100)),
				protocol.P("flexGrow", protocol.Int(1)),
			)),
		},
	})

	f.rec.UpdateSource(&protocol.UpdateSource{
		UID: "box",
		ChangedProps: protocol.Props{
			protocol.P("opacity", protocol.Int(1)),
			protocol.P(StyleKey, protocol.Object(
				protocol.P("width", protocol.String("120em")),
				protocol.P("height", protocol.String("50%")),
			)),
		},
	})

	n := f.reg.Lookup("box")
	if v, _ := n.Source.Settings().Get("opacity"); v != float64(1) {
		t.Errorf("opacity = %#v, want float64(1)", v)
	}

	style := n.Layout.Style()
	if style.Width != layout.Point(100) {
		t.Errorf("width = %+v: a rejected size keeps the previous value", style.Width)
	}
	if style.Height != layout.Percent(50) {
		t.Errorf("height = %+v: the rest of the style still applies", style.Height)
	}
	if !layout.IsUndefined(style.FlexGrow) {
		t.Errorf("flexGrow = %v: an absent attribute resets", style.FlexGrow)
	}

	recs := f.records(t)
	if len(recs) != 1 || recs[0].Level != "WARN" || recs[0].Error["code"] != rerrors.CodeInvalidSize {
		t.Errorf("log records = %+v, want one warning with %s", recs, rerrors.CodeInvalidSize)
	}
}

func TestUpdateSourceWithoutStyleKeepsLayout(t *testing.T) {
	f := newFixture(t)
	n := f.createText(t, "t", 10, 10)
	f.rec.UpdateSource(&protocol.UpdateSource{UID: "t", ChangedProps: protocol.Props{
		protocol.P(StyleKey, protocol.Object(protocol.P("width", protocol.Int(64)))),
	}})

	f.rec.UpdateSource(&protocol.UpdateSource{UID: "t", ChangedProps: protocol.Props{
		protocol.P("text", protocol.String("changed")),
	}})

	if n.Layout.Style().Width != layout.Point(64) {
		t.Error("an update without a style prop must leave the style alone")
	}
	if text, _ := n.Source.Settings().GetString("text"); text != "changed" {
		t.Errorf("text = %q", text)
	}
}

func TestUpdateSourceUnknownUID(t *testing.T) {
	f := newFixture(t)
	f.rec.UpdateSource(&protocol.UpdateSource{UID: "ghost"})
	f.expectDropped(t, rerrors.CodeNodeNotFound)
}

// =============================================================================
// Structure
// =============================================================================

func TestAppendRemoveChild(t *testing.T) {
	f := newFixture(t)
	root := f.reg.Lookup("root")
	child := f.createText(t, "child", 20, 10)

	f.rec.AppendChild(&protocol.AppendChild{ParentUID: "root", ChildUID: "child"})
	f.expectQuiet(t)

	if child.Item == nil {
		t.Fatal("append must record the scene item")
	}
	if child.Item.Scene().Source() != root.Source {
		t.Error("item placed in the wrong scene")
	}
	if root.Layout.ChildCount() != 1 || root.Layout.Child(0) != child.Layout {
		t.Error("child is not the last layout child of root")
	}
	if len(f.comp.Items("Main")) != 1 {
		t.Errorf("Main has %d items, want 1", len(f.comp.Items("Main")))
	}

	f.rec.RemoveChild(&protocol.RemoveChild{ParentUID: "root", ChildUID: "child"})
	f.expectQuiet(t)

	if child.Item != nil {
		t.Error("remove must clear the scene item")
	}
	if root.Layout.ChildCount() != 0 || child.Layout.Parent() != nil {
		t.Error("remove must detach the layout edge")
	}
	if len(f.comp.Items("Main")) != 0 {
		t.Error("remove must take the item out of the scene")
	}
	if f.reg.Lookup("child") != child {
		t.Error("remove_child only detaches; the node stays registered")
	}

	// A detached node can be appended again.
	f.rec.AppendChild(&protocol.AppendChild{ParentUID: "root", ChildUID: "child"})
	f.expectQuiet(t)
	if child.Item == nil || root.Layout.ChildCount() != 1 {
		t.Error("re-append failed")
	}
}

func TestAppendChildOrder(t *testing.T) {
	f := newFixture(t)
	root := f.reg.Lookup("root")
	a := f.createText(t, "a", 1, 1)
	b := f.createText(t, "b", 1, 1)

	f.rec.AppendChild(&protocol.AppendChild{ParentUID: "root", ChildUID: "a"})
	f.rec.AppendChild(&protocol.AppendChild{ParentUID: "root", ChildUID: "b"})

	if root.Layout.Child(0) != a.Layout || root.Layout.Child(1) != b.Layout {
		t.Error("children must be appended in order")
	}
}

func TestAppendChildErrors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *fixture)
		cmd   protocol.AppendChild
		code  string
	}{
		{
			name: "missing parent",
			cmd:  protocol.AppendChild{ParentUID: "nope", ChildUID: "text"},
			code: rerrors.CodeNodeNotFound,
		},
		{
			name: "parent not a scene",
			cmd:  protocol.AppendChild{ParentUID: "text", ChildUID: "root"},
			code: rerrors.CodeParentNotScene,
		},
		{
			name: "missing child",
			cmd:  protocol.AppendChild{ParentUID: "root", ChildUID: "nope"},
			code: rerrors.CodeNodeNotFound,
		},
		{
			name: "already in a scene",
			setup: func(f *fixture) {
				f.rec.AppendChild(&protocol.AppendChild{ParentUID: "root", ChildUID: "text"})
			},
			cmd:  protocol.AppendChild{ParentUID: "root", ChildUID: "text"},
			code: rerrors.CodeAlreadyInScene,
		},
		{
			name: "scene into itself",
			setup: func(f *fixture) {
				f.rec.CreateScene(&protocol.CreateScene{ContainerUID: "root", Name: "Group", UID: "group"})
			},
			cmd:  protocol.AppendChild{ParentUID: "group", ChildUID: "group"},
			code: rerrors.CodeCycle,
		},
		{
			name: "ancestor into descendant",
			setup: func(f *fixture) {
				f.rec.CreateScene(&protocol.CreateScene{ContainerUID: "root", Name: "Group", UID: "group"})
				f.rec.AppendChild(&protocol.AppendChild{ParentUID: "root", ChildUID: "group"})
			},
			cmd:  protocol.AppendChild{ParentUID: "group", ChildUID: "root"},
			code: rerrors.CodeCycle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.createText(t, "text", 10, 10)
			if tt.setup != nil {
				tt.setup(f)
			}
			f.expectQuiet(t)
			items := len(f.comp.Items("Main"))

			cmd := tt.cmd
			f.rec.AppendChild(&cmd)

			f.expectDropped(t, tt.code)
			if len(f.comp.Items("Main")) != items {
				t.Error("a dropped append must not touch the scene")
			}
		})
	}
}

func TestRemoveChildErrors(t *testing.T) {
	tests := []struct {
		name string
		cmd  protocol.RemoveChild
		code string
	}{
		{"missing parent", protocol.RemoveChild{ParentUID: "nope", ChildUID: "in"}, rerrors.CodeNodeNotFound},
		{"parent not a scene", protocol.RemoveChild{ParentUID: "in", ChildUID: "out"}, rerrors.CodeParentNotScene},
		{"missing child", protocol.RemoveChild{ParentUID: "root", ChildUID: "nope"}, rerrors.CodeNodeNotFound},
		{"never appended", protocol.RemoveChild{ParentUID: "root", ChildUID: "out"}, rerrors.CodeNotInParentScene},
		{"other scene", protocol.RemoveChild{ParentUID: "group", ChildUID: "in"}, rerrors.CodeNotInParentScene},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			in := f.createText(t, "in", 10, 10)
			f.createText(t, "out", 10, 10)
			f.rec.CreateScene(&protocol.CreateScene{ContainerUID: "root", Name: "Group", UID: "group"})
			f.rec.AppendChild(&protocol.AppendChild{ParentUID: "root", ChildUID: "in"})
			f.expectQuiet(t)

			cmd := tt.cmd
			f.rec.RemoveChild(&cmd)

			f.expectDropped(t, tt.code)
			if in.Item == nil {
				t.Error("a dropped remove must leave the attached child alone")
			}
		})
	}
}

func TestCommitUpdates(t *testing.T) {
	f := newFixture(t)
	f.createText(t, "t", 10, 10)
	f.rec.AppendChild(&protocol.AppendChild{ParentUID: "root", ChildUID: "t"})
	f.sched.Tick()

	root := f.reg.Lookup("root")
	if root.Layout.IsDirty() {
		t.Fatal("root should be clean after a tick")
	}
	f.rec.CommitUpdates(&protocol.CommitUpdates{ContainerUID: "root"})
	if !root.Layout.IsDirty() {
		t.Error("commit_updates must mark the container dirty")
	}

	f.rec.CommitUpdates(&protocol.CommitUpdates{ContainerUID: "ghost"})
	f.expectDropped(t, rerrors.CodeContainerNotFound)
}

func TestApplyDispatches(t *testing.T) {
	f := newFixture(t)

	updates := []protocol.Update{
		&protocol.CreateSource{ID: "text_ft2_source", ContainerUID: "root", Name: "T", UID: "t"},
		&protocol.CreateScene{ContainerUID: "root", Name: "S", UID: "s"},
		&protocol.UpdateSource{UID: "t", ChangedProps: protocol.Props{protocol.P("text", protocol.String("x"))}},
		&protocol.AppendChild{ParentUID: "s", ChildUID: "t"},
		&protocol.RemoveChild{ParentUID: "s", ChildUID: "t"},
		&protocol.CommitUpdates{ContainerUID: "root"},
	}
	for _, u := range updates {
		f.rec.Apply(u)
	}
	f.expectQuiet(t)

	for _, op := range []string{"create_source", "create_scene", "update_source", "append_child", "remove_child", "commit_updates"} {
		if got := counterValue(t, f.metrics.commandsTotal.WithLabelValues(op)); got != 1 {
			t.Errorf("commands_total(%s) = %v, want 1", op, got)
		}
	}
}

// =============================================================================
// Destroy
// =============================================================================

func TestDestroy(t *testing.T) {
	f := newFixture(t)
	root := f.reg.Lookup("root")
	leaf := f.createText(t, "leaf", 10, 10)
	f.rec.AppendChild(&protocol.AppendChild{ParentUID: "root", ChildUID: "leaf"})
	f.sched.Tick()

	if err := f.rec.Destroy("leaf"); err != nil {
		t.Fatalf("Destroy(leaf) = %v", err)
	}
	if f.reg.Lookup("leaf") != nil || f.reg.Resolve(leaf.Handle()) != nil {
		t.Error("destroyed node is still registered")
	}
	if f.comp.Has("leaf") {
		t.Error("destroying a managed node must release its source")
	}
	if len(f.comp.Items("Main")) != 0 {
		t.Error("destroying a node must remove its scene item")
	}
	if root.Layout.ChildCount() != 0 || !root.Layout.IsDirty() {
		t.Error("the parent layout must lose the child and be relaid out")
	}
	f.expectQuiet(t)

	if err := f.rec.Destroy("leaf"); rerrors.CodeOf(err) != rerrors.CodeNodeNotFound {
		t.Errorf("second Destroy = %v, want %s", err, rerrors.CodeNodeNotFound)
	}
	f.expectDropped(t, rerrors.CodeNodeNotFound)
}

func TestDestroyRefusesNodesInUse(t *testing.T) {
	f := newFixture(t)
	f.createText(t, "leaf", 10, 10)
	f.rec.CreateScene(&protocol.CreateScene{ContainerUID: "root", Name: "Group", UID: "group"})
	f.rec.AppendChild(&protocol.AppendChild{ParentUID: "group", ChildUID: "leaf"})
	f.expectQuiet(t)

	if err := f.rec.Destroy("root"); rerrors.CodeOf(err) != rerrors.CodeNodeInUse {
		t.Errorf("Destroy(root) = %v, want %s for a container of live nodes", err, rerrors.CodeNodeInUse)
	}
	f.expectDropped(t, rerrors.CodeNodeInUse)

	if err := f.rec.Destroy("group"); rerrors.CodeOf(err) != rerrors.CodeNodeInUse {
		t.Errorf("Destroy(group) = %v, want %s for a scene with children", err, rerrors.CodeNodeInUse)
	}
	f.expectDropped(t, rerrors.CodeNodeInUse)

	f.rec.RemoveChild(&protocol.RemoveChild{ParentUID: "group", ChildUID: "leaf"})
	if err := f.rec.Destroy("group"); err != nil {
		t.Errorf("Destroy(empty group) = %v", err)
	}
}

func TestSnapshot(t *testing.T) {
	f := newFixture(t)
	f.createText(t, "t", 10, 10)

	snap := f.rec.Snapshot()
	if len(snap) != 2 || snap[0].UID != "root" || snap[1].UID != "t" {
		t.Fatalf("Snapshot() = %+v", snap)
	}
	if snap[1].Container != "root" || !snap[1].Managed {
		t.Errorf("t = %+v", snap[1])
	}
}
