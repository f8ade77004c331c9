package layout

import "math"

// Undefined marks an unset float attribute (flex grow, aspect ratio, ...).
var Undefined = float32(math.NaN())

// IsUndefined reports whether f is the Undefined marker.
func IsUndefined(f float32) bool {
	return math.IsNaN(float64(f))
}

// Unit is the unit of a Value.
type Unit uint8

const (
	UnitUndefined Unit = iota
	UnitPoint
	UnitPercent
	UnitAuto
)

// Value is a length in absolute points, a percentage of the containing
// axis, auto, or undefined.
type Value struct {
	Value float32
	Unit  Unit
}

// Point returns an absolute value.
func Point(v float32) Value { return Value{Value: v, Unit: UnitPoint} }

// Percent returns a percentage value.
func Percent(v float32) Value { return Value{Value: v, Unit: UnitPercent} }

// Auto returns the auto value.
func Auto() Value { return Value{Unit: UnitAuto} }

// Resolve converts v to points against the containing size. It reports
// false for auto, undefined, and percentages of an undefined size.
func (v Value) Resolve(parent float32) (float32, bool) {
	switch v.Unit {
	case UnitPoint:
		return v.Value, true
	case UnitPercent:
		if IsUndefined(parent) {
			return 0, false
		}
		return v.Value * parent / 100, true
	default:
		return 0, false
	}
}

// Edge indexes per-edge attributes.
type Edge uint8

const (
	EdgeLeft Edge = iota
	EdgeTop
	EdgeRight
	EdgeBottom
	edgeCount
)

// Edges holds one Value per edge.
type Edges [edgeCount]Value

// Box is the computed geometry of a node, relative to its parent.
type Box struct {
	Left   float32
	Top    float32
	Width  float32
	Height float32
}

// MeasureFunc reports the intrinsic size of a leaf node. The arguments are
// the available width and height, Undefined when unconstrained.
type MeasureFunc func(node Node, width, height float32) (float32, float32)

// Handle identifies the owner of a layout node without holding a pointer
// to it. Owners resolve handles through their own arena.
type Handle struct {
	Index      uint32
	Generation uint32
}

// Node is one node of a layout tree.
type Node interface {
	// Context returns the handle the node was created with.
	Context() Handle

	Style() Style
	SetStyle(s Style)

	InsertChild(child Node, index int)
	RemoveChild(child Node)
	ChildCount() int
	Child(i int) Node
	Parent() Node

	// SetMeasureFunc makes the node a measured leaf; nil clears it.
	SetMeasureFunc(fn MeasureFunc)

	MarkDirty()
	IsDirty() bool

	// Calculate lays out the subtree rooted at this node within the given
	// available size (Undefined for unconstrained).
	Calculate(width, height float32)

	// HasNewLayout reports whether the computed layout changed since the
	// flag was last cleared.
	HasNewLayout() bool
	ClearNewLayout()

	Layout() Box

	// Free detaches the node from its parent and children.
	Free()
}

// Engine creates layout nodes.
type Engine interface {
	NewNode(ctx Handle) Node
}

// Walk visits n and its descendants in pre-order.
func Walk(n Node, fn func(Node)) {
	fn(n)
	for i := 0; i < n.ChildCount(); i++ {
		Walk(n.Child(i), fn)
	}
}
