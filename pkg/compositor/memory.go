package compositor

import (
	"fmt"
	"slices"
	"sort"
	"sync"
)

// SceneTypeID is the type id reported by scenes.
const SceneTypeID = "scene"

// Default canvas size used for scenes without an explicit size.
const (
	DefaultCanvasWidth  = 1920
	DefaultCanvasHeight = 1080
)

// Memory is a thread-safe in-memory Compositor. It keeps every source in
// a name index and records item transforms so callers can inspect what
// the layout produced. Elements made by CreateSource and CreateScene are
// private: they are indexed for inspection but FindSource does not
// return them.
type Memory struct {
	mu      sync.Mutex
	byName  map[string]*memSource
	created int
	commits int

	canvasWidth  uint32
	canvasHeight uint32
}

// MemoryOption configures a Memory compositor.
type MemoryOption func(*Memory)

// WithCanvas sets the size reported by scenes.
func WithCanvas(width, height uint32) MemoryOption {
	return func(m *Memory) {
		m.canvasWidth = width
		m.canvasHeight = height
	}
}

// NewMemory creates an empty in-memory compositor.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		byName:       make(map[string]*memSource),
		canvasWidth:  DefaultCanvasWidth,
		canvasHeight: DefaultCanvasHeight,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ItemState is the recorded transform of a scene item.
type ItemState struct {
	Source     string
	Pos        Vec2
	Bounds     Vec2
	BoundsType BoundsType
	Updates    int
}

// =============================================================================
// Compositor
// =============================================================================

// CreateSource implements Compositor.
func (m *Memory) CreateSource(typeID, name string, settings *Settings) (Source, error) {
	if typeID == "" {
		return nil, ErrEmptyTypeID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	src := m.newSourceLocked(typeID, name)
	src.private = true
	src.settings = settings.Clone()
	src.sizeFromSettings()
	return src, nil
}

// CreateScene implements Compositor.
func (m *Memory) CreateScene(name string) (Source, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	src := m.newSourceLocked(SceneTypeID, name)
	src.private = true
	src.width, src.height = m.canvasWidth, m.canvasHeight
	src.scene = &memScene{src: src}
	return src, nil
}

// FindSource implements Compositor. Only registered sources are found.
func (m *Memory) FindSource(name string) (Source, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	src, ok := m.byName[name]
	if !ok || src.private {
		return nil, false
	}
	return src, true
}

// newSourceLocked creates a source and indexes it by name. Duplicate or
// empty names get a numbered suffix.
func (m *Memory) newSourceLocked(typeID, name string) *memSource {
	m.created++
	if name == "" {
		name = fmt.Sprintf("%s %d", typeID, m.created)
	}
	base := name
	for i := 2; ; i++ {
		if _, taken := m.byName[name]; !taken {
			break
		}
		name = fmt.Sprintf("%s %d", base, i)
	}
	src := &memSource{m: m, name: name, typeID: typeID, settings: NewSettings()}
	m.byName[name] = src
	return src
}

// =============================================================================
// Host-side setup and inspection
// =============================================================================

// Register adds a pre-existing source, as if the user had created it in
// the compositor. Scenes are created with kind "scene".
func (m *Memory) Register(name, kind string, width, height uint32) Source {
	m.mu.Lock()
	defer m.mu.Unlock()
	if kind == "" {
		kind = "source"
	}
	src := m.newSourceLocked(kind, name)
	src.width, src.height = width, height
	if kind == SceneTypeID {
		if width == 0 && height == 0 {
			src.width, src.height = m.canvasWidth, m.canvasHeight
		}
		src.scene = &memScene{src: src}
	}
	return src
}

// SetSize changes the intrinsic size of a named source, as a source whose
// content changed would. It reports whether the source exists.
func (m *Memory) SetSize(name string, width, height uint32) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	src, ok := m.byName[name]
	if !ok {
		return false
	}
	src.width, src.height = width, height
	return true
}

// Has reports whether a live source, private or not, has the name.
func (m *Memory) Has(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.byName[name]
	return ok
}

// Commits returns the number of completed deferred item updates.
func (m *Memory) Commits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.commits
}

// Items returns the items of a named scene in order.
func (m *Memory) Items(scene string) []ItemState {
	m.mu.Lock()
	defer m.mu.Unlock()
	src, ok := m.byName[scene]
	if !ok || src.scene == nil {
		return nil
	}
	out := make([]ItemState, 0, len(src.scene.items))
	for _, it := range src.scene.items {
		out = append(out, it.state)
	}
	return out
}

// Item returns the state of the item placing source in scene.
func (m *Memory) Item(scene, source string) (ItemState, bool) {
	for _, it := range m.Items(scene) {
		if it.Source == source {
			return it, true
		}
	}
	return ItemState{}, false
}

// Names returns the names of all live sources, sorted.
func (m *Memory) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.byName))
	for name := range m.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// =============================================================================
// Sources
// =============================================================================

type memSource struct {
	m        *Memory
	name     string
	typeID   string
	settings *Settings
	width    uint32
	height   uint32
	scene    *memScene
	private  bool
	released bool
}

func (s *memSource) Name() string   { return s.name }
func (s *memSource) TypeID() string { return s.typeID }

func (s *memSource) Settings() *Settings {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	return s.settings.Clone()
}

func (s *memSource) Update(settings *Settings) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if s.released {
		return
	}
	s.settings = settings.Clone()
	s.sizeFromSettings()
}

// sizeFromSettings picks up explicit "width"/"height" settings, the way
// color and image sources report the size they were configured with.
func (s *memSource) sizeFromSettings() {
	if w, ok := s.settings.GetInt("width"); ok && w >= 0 {
		s.width = uint32(w)
	}
	if h, ok := s.settings.GetInt("height"); ok && h >= 0 {
		s.height = uint32(h)
	}
}

func (s *memSource) Size() (uint32, uint32) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	return s.width, s.height
}

func (s *memSource) Scene() (Scene, bool) {
	if s.scene == nil {
		return nil, false
	}
	return s.scene, true
}

func (s *memSource) Release() {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if s.released {
		return
	}
	s.released = true
	if s.m.byName[s.name] == s {
		delete(s.m.byName, s.name)
	}
}

// =============================================================================
// Scenes and items
// =============================================================================

type memScene struct {
	src   *memSource
	items []*memItem
}

func (sc *memScene) Source() Source { return sc.src }

func (sc *memScene) Add(src Source) (SceneItem, error) {
	child, ok := src.(*memSource)
	if !ok || child.m != sc.src.m {
		return nil, ErrForeignSource
	}
	m := sc.src.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if child.released || sc.src.released {
		return nil, ErrReleased
	}
	it := &memItem{scene: sc, source: child, state: ItemState{Source: child.name}}
	sc.items = append(sc.items, it)
	return it, nil
}

type memItem struct {
	scene   *memScene
	source  *memSource
	state   ItemState
	pending ItemState
	depth   int
	removed bool
}

func (it *memItem) Scene() Scene   { return it.scene }
func (it *memItem) Source() Source { return it.source }

func (it *memItem) DeferUpdateBegin() {
	m := it.scene.src.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if it.depth == 0 {
		it.pending = it.state
	}
	it.depth++
}

func (it *memItem) DeferUpdateEnd() {
	m := it.scene.src.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if it.depth == 0 {
		return
	}
	it.depth--
	if it.depth == 0 && !it.removed {
		it.pending.Updates++
		it.state = it.pending
		m.commits++
	}
}

// target returns the state a transform change applies to.
func (it *memItem) target() *ItemState {
	if it.depth > 0 {
		return &it.pending
	}
	return &it.state
}

func (it *memItem) SetPos(pos Vec2) {
	m := it.scene.src.m
	m.mu.Lock()
	defer m.mu.Unlock()
	it.target().Pos = pos
}

func (it *memItem) SetBounds(t BoundsType, bounds Vec2) {
	m := it.scene.src.m
	m.mu.Lock()
	defer m.mu.Unlock()
	st := it.target()
	st.BoundsType = t
	st.Bounds = bounds
}

func (it *memItem) Remove() {
	m := it.scene.src.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if it.removed {
		return
	}
	it.removed = true
	it.scene.items = slices.DeleteFunc(it.scene.items, func(o *memItem) bool { return o == it })
}
