// Package shadow keeps the server-side mirror of the controller's element
// tree: one Node per uid, with the compositor element and layout node it
// owns.
package shadow

import (
	"errors"
	"sort"
	"sync"

	"github.com/georgyangelov/react-obs/pkg/compositor"
	"github.com/georgyangelov/react-obs/pkg/layout"
)

// Errors returned by the registry.
var (
	// ErrDuplicateUID is returned by Insert when a live node already holds
	// the uid.
	ErrDuplicateUID = errors.New("shadow: duplicate uid")

	// ErrEmptyUID is returned by Insert for nodes without a uid.
	ErrEmptyUID = errors.New("shadow: empty uid")
)

// Handle is a generation-checked reference to a registry slot. It is the
// context stored on layout nodes.
type Handle = layout.Handle

// Node mirrors one element of the controller's tree.
type Node struct {
	UID string

	// Source is the compositor element for this node.
	Source compositor.Source

	// Layout is the node's layout tree node.
	Layout layout.Node

	// Container is the node whose layout tree this node belongs to. Zero
	// for roots adopted with FindSource.
	Container Handle

	// Item places Source in its parent scene. Nil until appended.
	Item compositor.SceneItem

	// Managed nodes were created by the server and their sources are
	// released on removal.
	Managed bool

	// ExternallyMeasured nodes take their layout size from the source's
	// intrinsic size.
	ExternallyMeasured bool

	// LastWidth and LastHeight are the intrinsic size seen by the last
	// tick.
	LastWidth  uint32
	LastHeight uint32

	handle Handle
}

// Handle returns the node's registry handle. It is zero until the node is
// inserted.
func (n *Node) Handle() Handle {
	return n.handle
}

// IsScene reports whether the node's source is a scene.
func (n *Node) IsScene() bool {
	if n.Source == nil {
		return false
	}
	_, ok := n.Source.Scene()
	return ok
}

type slot struct {
	node       *Node
	generation uint32
}

// Registry owns all shadow nodes. Slot 0 is reserved so that the zero
// Handle never resolves.
type Registry struct {
	mu         sync.Mutex
	slots      []slot
	free       []uint32
	byUID      map[string]*Node
	containers []*Node
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		slots: make([]slot, 1),
		byUID: make(map[string]*Node),
	}
}

// Lookup returns the node registered under uid, or nil.
func (r *Registry) Lookup(uid string) *Node {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byUID[uid]
}

// Allocate reserves a handle for a node that is about to be built, so its
// layout node can carry the handle before the node is inserted. Handles
// that are never inserted must be returned with Discard.
func (r *Registry) Allocate() Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.allocateLocked()
}

func (r *Registry) allocateLocked() Handle {
	var idx uint32
	if n := len(r.free); n > 0 {
		idx = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		r.slots = append(r.slots, slot{})
		idx = uint32(len(r.slots) - 1)
	}
	return Handle{Index: idx, Generation: r.slots[idx].generation}
}

// Discard returns an allocated handle that was never inserted.
func (r *Registry) Discard(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.validLocked(h) || r.slots[h.Index].node != nil {
		return
	}
	r.releaseSlotLocked(h.Index)
}

// Insert registers n under n.UID. If n carries a handle from Allocate it
// is used; otherwise a new one is allocated. A uid held by a live node is
// rejected with ErrDuplicateUID and the registry is unchanged.
func (r *Registry) Insert(n *Node) (*Node, error) {
	if n.UID == "" {
		return nil, ErrEmptyUID
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byUID[n.UID]; ok {
		return nil, ErrDuplicateUID
	}

	h := n.handle
	if h == (Handle{}) || !r.validLocked(h) || r.slots[h.Index].node != nil {
		h = r.allocateLocked()
	}
	n.handle = h
	r.slots[h.Index].node = n
	r.byUID[n.UID] = n
	r.rebuildContainersLocked()
	return n, nil
}

// Bind sets the handle a node will be inserted with.
func (n *Node) Bind(h Handle) {
	n.handle = h
}

// Remove unregisters the node with the given uid. The node's layout node
// is freed and, for managed nodes, the source is released. It reports
// whether a node was removed.
func (r *Registry) Remove(uid string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.byUID[uid]
	if !ok {
		return false
	}
	delete(r.byUID, uid)
	r.releaseSlotLocked(n.handle.Index)
	n.handle = Handle{}

	if n.Item != nil {
		n.Item.Remove()
		n.Item = nil
	}
	if n.Layout != nil {
		n.Layout.Free()
	}
	if n.Managed && n.Source != nil {
		n.Source.Release()
	}

	r.rebuildContainersLocked()
	return true
}

func (r *Registry) releaseSlotLocked(idx uint32) {
	s := &r.slots[idx]
	s.node = nil
	s.generation++
	r.free = append(r.free, idx)
}

func (r *Registry) validLocked(h Handle) bool {
	return h.Index != 0 && int(h.Index) < len(r.slots) && r.slots[h.Index].generation == h.Generation
}

// Resolve returns the node a handle refers to, or nil when the handle is
// zero or stale.
func (r *Registry) Resolve(h Handle) *Node {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolveLocked(h)
}

func (r *Registry) resolveLocked(h Handle) *Node {
	if !r.validLocked(h) {
		return nil
	}
	return r.slots[h.Index].node
}

// rebuildContainersLocked recomputes the container set from scratch: every
// live node referenced as some node's Container.
func (r *Registry) rebuildContainersLocked() {
	seen := make(map[*Node]bool)
	r.containers = r.containers[:0]
	for _, n := range r.byUID {
		c := r.resolveLocked(n.Container)
		if c == nil || seen[c] {
			continue
		}
		seen[c] = true
		r.containers = append(r.containers, c)
	}
	sort.Slice(r.containers, func(i, j int) bool {
		return r.containers[i].UID < r.containers[j].UID
	})
}

// Containers returns a snapshot of the container set, sorted by uid.
func (r *Registry) Containers() []*Node {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Node, len(r.containers))
	copy(out, r.containers)
	return out
}

// Measured returns a snapshot of the externally measured nodes, sorted by
// uid.
func (r *Registry) Measured() []*Node {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Node
	for _, n := range r.byUID {
		if n.ExternallyMeasured {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UID < out[j].UID })
	return out
}

// Len returns the number of registered nodes.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byUID)
}

// NodeInfo is a read-only summary of a node, used by the debug endpoint.
type NodeInfo struct {
	UID                string     `json:"uid"`
	Source             string     `json:"source,omitempty"`
	TypeID             string     `json:"typeId,omitempty"`
	Container          string     `json:"container,omitempty"`
	Scene              bool       `json:"scene"`
	Managed            bool       `json:"managed"`
	ExternallyMeasured bool       `json:"externallyMeasured"`
	Attached           bool       `json:"attached"`
	Layout             layout.Box `json:"layout"`
}

// Snapshot returns a summary of every node, sorted by uid.
func (r *Registry) Snapshot() []NodeInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]NodeInfo, 0, len(r.byUID))
	for _, n := range r.byUID {
		info := NodeInfo{
			UID:                n.UID,
			Scene:              n.IsScene(),
			Managed:            n.Managed,
			ExternallyMeasured: n.ExternallyMeasured,
			Attached:           n.Item != nil,
		}
		if n.Source != nil {
			info.Source = n.Source.Name()
			info.TypeID = n.Source.TypeID()
		}
		if c := r.resolveLocked(n.Container); c != nil {
			info.Container = c.UID
		}
		if n.Layout != nil {
			b := n.Layout.Layout()
			info.Layout = layout.Box{Left: finite(b.Left), Top: finite(b.Top), Width: finite(b.Width), Height: finite(b.Height)}
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UID < out[j].UID })
	return out
}

// finite maps Undefined to zero so the box can be encoded as JSON.
func finite(f float32) float32 {
	if layout.IsUndefined(f) {
		return 0
	}
	return f
}
