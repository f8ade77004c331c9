// Package flex is an in-process implementation of layout.Engine covering
// the single-line subset of flexbox used by scene layouts.
package flex

import (
	"slices"

	"github.com/georgyangelov/react-obs/pkg/layout"
)

// Engine is an in-process flexbox layout engine.
type Engine struct{}

// New creates an Engine.
func New() *Engine {
	return &Engine{}
}

// NewNode implements layout.Engine.
func (e *Engine) NewNode(ctx layout.Handle) layout.Node {
	return NewNode(ctx)
}

// Node is a flexbox layout node.
type Node struct {
	ctx      layout.Handle
	style    layout.Style
	parent   *Node
	children []*Node
	measure  layout.MeasureFunc

	dirty        bool
	hasNewLayout bool
	box          layout.Box

	// Scratch state of the running Calculate pass.
	prev     layout.Box
	wasDirty bool
}

// NewNode creates a dirty node with the default style.
func NewNode(ctx layout.Handle) *Node {
	return &Node{
		ctx:   ctx,
		style: layout.DefaultStyle(),
		dirty: true,
	}
}

// Context implements layout.Node.
func (n *Node) Context() layout.Handle {
	return n.ctx
}

// Style implements layout.Node.
func (n *Node) Style() layout.Style {
	return n.style
}

// SetStyle implements layout.Node. Setting an identical style does not
// dirty the node.
func (n *Node) SetStyle(s layout.Style) {
	if n.style.Equal(s) {
		return
	}
	n.style = s
	n.MarkDirty()
}

// InsertChild implements layout.Node. A child already attached elsewhere
// is detached first.
func (n *Node) InsertChild(child layout.Node, index int) {
	c := child.(*Node)
	if c.parent != nil {
		c.parent.RemoveChild(c)
	}
	index = min(max(index, 0), len(n.children))
	n.children = slices.Insert(n.children, index, c)
	c.parent = n
	n.MarkDirty()
}

// RemoveChild implements layout.Node. The detached child loses its
// computed layout and is dirty, so its next Calculate reports a new layout
// wherever it is attached again.
func (n *Node) RemoveChild(child layout.Node) {
	c, ok := child.(*Node)
	if !ok {
		return
	}
	i := slices.Index(n.children, c)
	if i < 0 {
		return
	}
	n.children = slices.Delete(n.children, i, i+1)
	c.parent = nil
	c.box = layout.Box{}
	c.hasNewLayout = false
	c.dirty = true
	n.MarkDirty()
}

// ChildCount implements layout.Node.
func (n *Node) ChildCount() int {
	return len(n.children)
}

// Child implements layout.Node.
func (n *Node) Child(i int) layout.Node {
	return n.children[i]
}

// Parent implements layout.Node. It returns nil for roots.
func (n *Node) Parent() layout.Node {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

// SetMeasureFunc implements layout.Node.
func (n *Node) SetMeasureFunc(fn layout.MeasureFunc) {
	n.measure = fn
	n.MarkDirty()
}

// MarkDirty implements layout.Node. Dirtiness propagates to every
// ancestor so the root of the tree reports it.
func (n *Node) MarkDirty() {
	n.dirty = true
	for p := n.parent; p != nil && !p.dirty; p = p.parent {
		p.dirty = true
	}
}

// IsDirty implements layout.Node.
func (n *Node) IsDirty() bool {
	return n.dirty
}

// HasNewLayout implements layout.Node.
func (n *Node) HasNewLayout() bool {
	return n.hasNewLayout
}

// ClearNewLayout implements layout.Node.
func (n *Node) ClearNewLayout() {
	n.hasNewLayout = false
}

// Layout implements layout.Node.
func (n *Node) Layout() layout.Box {
	return n.box
}

// Free implements layout.Node.
func (n *Node) Free() {
	if n.parent != nil {
		n.parent.RemoveChild(n)
	}
	for _, c := range n.children {
		c.parent = nil
	}
	n.children = nil
	n.measure = nil
}

// Calculate implements layout.Node.
func (n *Node) Calculate(width, height float32) {
	n.walk(func(c *Node) {
		c.prev = c.box
		c.wasDirty = c.dirty
	})

	w, h := n.layout(width, height, layout.Undefined, layout.Undefined)
	ml, _ := n.style.Margin[layout.EdgeLeft].Resolve(width)
	mt, _ := n.style.Margin[layout.EdgeTop].Resolve(width)
	n.box = layout.Box{Left: ml, Top: mt, Width: w, Height: h}

	n.walk(func(c *Node) {
		if c.box != c.prev || c.wasDirty {
			c.hasNewLayout = true
		}
		c.dirty = false
	})
}

func (n *Node) walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.walk(fn)
	}
}
