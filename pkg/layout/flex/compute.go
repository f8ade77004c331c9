package flex

import (
	"github.com/georgyangelov/react-obs/pkg/layout"
)

// =============================================================================
// Axis helpers
// =============================================================================

// axes maps main/cross quantities to width/height for one container.
type axes struct {
	row bool
}

func (a axes) main(w, h float32) float32 {
	if a.row {
		return w
	}
	return h
}

func (a axes) cross(w, h float32) float32 {
	if a.row {
		return h
	}
	return w
}

// size converts main/cross back to width/height.
func (a axes) size(main, cross float32) (w, h float32) {
	if a.row {
		return main, cross
	}
	return cross, main
}

func (a axes) mainStart() layout.Edge {
	if a.row {
		return layout.EdgeLeft
	}
	return layout.EdgeTop
}

func (a axes) mainEnd() layout.Edge {
	if a.row {
		return layout.EdgeRight
	}
	return layout.EdgeBottom
}

func (a axes) crossStart() layout.Edge {
	if a.row {
		return layout.EdgeTop
	}
	return layout.EdgeLeft
}

func (a axes) crossEnd() layout.Edge {
	if a.row {
		return layout.EdgeBottom
	}
	return layout.EdgeRight
}

// edges is a resolved set of per-edge lengths.
type edges [4]float32

func resolveEdges(e layout.Edges, parentWidth float32) edges {
	var out edges
	for i := range e {
		out[i], _ = e[i].Resolve(parentWidth)
	}
	return out
}

func (e edges) horizontal() float32 { return e[layout.EdgeLeft] + e[layout.EdgeRight] }
func (e edges) vertical() float32   { return e[layout.EdgeTop] + e[layout.EdgeBottom] }

func undef(f float32) bool { return layout.IsUndefined(f) }

// inner subtracts padding from a size, keeping Undefined.
func inner(size, pad float32) float32 {
	if undef(size) {
		return size
	}
	return max(size-pad, 0)
}

// clamp applies min/max constraints to a defined size.
func clamp(v float32, lo, hi layout.Value, parent float32) float32 {
	if undef(v) {
		return v
	}
	if mx, ok := hi.Resolve(parent); ok && v > mx {
		v = mx
	}
	if mn, ok := lo.Resolve(parent); ok && v < mn {
		v = mn
	}
	return max(v, 0)
}

func orZero(f float32) float32 {
	if undef(f) {
		return 0
	}
	return f
}

// =============================================================================
// Layout pass
// =============================================================================

// item is an in-flow child of the container being laid out.
type item struct {
	node    *Node
	margin  edges
	basis   float32
	main    float32
	cross   float32
	grow    float32
	shrink  float32
	stretch bool
}

func (it *item) marginMain(a axes) float32 {
	return it.margin[a.mainStart()] + it.margin[a.mainEnd()]
}

func (it *item) marginCross(a axes) float32 {
	return it.margin[a.crossStart()] + it.margin[a.crossEnd()]
}

// layout sizes n within the available space and positions its children.
// A defined forced dimension was already decided by the parent (flexed
// main size or stretched cross size). It returns n's border-box size.
func (n *Node) layout(availW, availH, forcedW, forcedH float32) (float32, float32) {
	s := &n.style

	w, h := forcedW, forcedH
	if undef(w) {
		if v, ok := s.Width.Resolve(availW); ok {
			w = v
		}
	}
	if undef(h) {
		if v, ok := s.Height.Resolve(availH); ok {
			h = v
		}
	}
	if ar := s.AspectRatio; !undef(ar) && ar > 0 {
		switch {
		case !undef(w) && undef(h):
			h = w / ar
		case undef(w) && !undef(h):
			w = h * ar
		}
	}
	w = clamp(w, s.MinWidth, s.MaxWidth, availW)
	h = clamp(h, s.MinHeight, s.MaxHeight, availH)

	pad := resolveEdges(s.Padding, availW)

	if n.measure != nil && len(n.children) == 0 {
		if undef(w) || undef(h) {
			mw, mh := n.measure(n,
				inner(firstDefined(w, availW), pad.horizontal()),
				inner(firstDefined(h, availH), pad.vertical()))
			if undef(w) {
				w = clamp(mw+pad.horizontal(), s.MinWidth, s.MaxWidth, availW)
			}
			if undef(h) {
				h = clamp(mh+pad.vertical(), s.MinHeight, s.MaxHeight, availH)
			}
		}
		return w, h
	}

	return n.layoutChildren(w, h, availW, availH, pad)
}

func firstDefined(a, b float32) float32 {
	if undef(a) {
		return b
	}
	return a
}

func (n *Node) layoutChildren(w, h, availW, availH float32, pad edges) (float32, float32) {
	s := &n.style
	a := axes{row: s.FlexDirection.IsRow()}

	// Inner space used to resolve children. Falls back to the space
	// offered to n when its own size is still open.
	innerW := inner(firstDefined(w, availW), pad.horizontal())
	innerH := inner(firstDefined(h, availH), pad.vertical())
	innerMain := a.main(inner(w, pad.horizontal()), inner(h, pad.vertical()))
	innerCross := a.cross(inner(w, pad.horizontal()), inner(h, pad.vertical()))

	var items []*item
	var absolute []*Node
	for _, c := range n.children {
		switch {
		case c.style.Display == layout.DisplayNone:
			c.walk(func(d *Node) { d.box = layout.Box{} })
		case c.style.PositionType == layout.PositionTypeAbsolute:
			absolute = append(absolute, c)
		default:
			items = append(items, n.newItem(c, a, innerW, innerH, innerMain, innerCross))
		}
	}

	// Resolve flexible lengths.
	var used, totalGrow, totalShrink float32
	for _, it := range items {
		used += it.basis + it.marginMain(a)
		totalGrow += it.grow
		totalShrink += it.shrink * it.basis
	}
	free := float32(0)
	if !undef(innerMain) {
		free = innerMain - used
	}
	for _, it := range items {
		it.main = it.basis
		switch {
		case free > 0 && totalGrow > 0:
			it.main += free * it.grow / totalGrow
		case free < 0 && totalShrink > 0:
			it.main += free * it.shrink * it.basis / totalShrink
		}
		cs := &it.node.style
		if a.row {
			it.main = clamp(it.main, cs.MinWidth, cs.MaxWidth, innerW)
		} else {
			it.main = clamp(it.main, cs.MinHeight, cs.MaxHeight, innerH)
		}
	}

	// Content cross sizes. Stretched items are measured too when the
	// container's cross size still depends on them.
	for _, it := range items {
		if !undef(it.cross) || (it.stretch && !undef(innerCross)) {
			continue
		}
		fw, fh := a.size(it.main, layout.Undefined)
		cw, ch := it.node.layout(
			inner(innerW, it.margin.horizontal()),
			inner(innerH, it.margin.vertical()),
			fw, fh)
		it.cross = a.cross(cw, ch)
	}

	// Size the container from its content where it is not fixed.
	if undef(a.main(w, h)) {
		total := a.main(pad.horizontal(), pad.vertical())
		for _, it := range items {
			total += it.main + it.marginMain(a)
		}
		if a.row {
			w = clamp(total, s.MinWidth, s.MaxWidth, availW)
		} else {
			h = clamp(total, s.MinHeight, s.MaxHeight, availH)
		}
	}
	if undef(a.cross(w, h)) {
		var largest float32
		for _, it := range items {
			largest = max(largest, orZero(it.cross)+it.marginCross(a))
		}
		total := largest + a.cross(pad.horizontal(), pad.vertical())
		if a.row {
			h = clamp(total, s.MinHeight, s.MaxHeight, availH)
		} else {
			w = clamp(total, s.MinWidth, s.MaxWidth, availW)
		}
	}
	innerW = inner(w, pad.horizontal())
	innerH = inner(h, pad.vertical())
	innerCross = a.cross(innerW, innerH)

	for _, it := range items {
		if it.stretch {
			cs := &it.node.style
			it.cross = inner(innerCross, it.marginCross(a))
			if a.row {
				it.cross = clamp(it.cross, cs.MinHeight, cs.MaxHeight, innerH)
			} else {
				it.cross = clamp(it.cross, cs.MinWidth, cs.MaxWidth, innerW)
			}
		}
	}

	n.positionItems(items, a, w, h, pad)
	n.positionAbsolute(absolute, w, h, pad)
	return w, h
}

// newItem computes the hypothetical main size of c.
func (n *Node) newItem(c *Node, a axes, innerW, innerH, innerMain, innerCross float32) *item {
	cs := &c.style
	it := &item{
		node:   c,
		margin: resolveEdges(cs.Margin, innerW),
		grow:   max(orZero(cs.FlexGrow), 0),
		shrink: max(orZero(cs.FlexShrink), 0),
		cross:  layout.Undefined,
	}

	align := cs.AlignSelf
	if align == layout.AlignAuto {
		align = n.style.AlignItems
	}
	crossStyle := cs.Width
	if a.row {
		crossStyle = cs.Height
	}
	if v, ok := crossStyle.Resolve(innerCross); ok {
		it.cross = v
	} else if align == layout.AlignStretch && !aspectBound(cs) {
		it.stretch = true
	}

	mainStyle := cs.Height
	if a.row {
		mainStyle = cs.Width
	}
	if v, ok := cs.FlexBasis.Resolve(innerMain); ok {
		it.basis = v
	} else if v, ok := mainStyle.Resolve(innerMain); ok {
		it.basis = v
	} else {
		// Content size, measured with the cross size when it is known.
		forcedCross := it.cross
		if it.stretch && !undef(innerCross) {
			forcedCross = inner(innerCross, it.marginCross(a))
		}
		fw, fh := a.size(layout.Undefined, forcedCross)
		cw, ch := c.layout(
			inner(innerW, it.margin.horizontal()),
			inner(innerH, it.margin.vertical()),
			fw, fh)
		it.basis = a.main(cw, ch)
	}
	if a.row {
		it.basis = clamp(it.basis, cs.MinWidth, cs.MaxWidth, innerW)
	} else {
		it.basis = clamp(it.basis, cs.MinHeight, cs.MaxHeight, innerH)
	}
	return it
}

// aspectBound reports whether the cross size follows from the aspect
// ratio instead of stretching.
func aspectBound(s *layout.Style) bool {
	return !undef(s.AspectRatio) && s.AspectRatio > 0
}

func (n *Node) positionItems(items []*item, a axes, w, h float32, pad edges) {
	s := &n.style
	reverse := s.FlexDirection.IsReverse()
	containerMain := a.main(w, h)
	innerMain := a.main(inner(w, pad.horizontal()), inner(h, pad.vertical()))
	innerCross := a.cross(inner(w, pad.horizontal()), inner(h, pad.vertical()))

	var used float32
	for _, it := range items {
		used += it.main + it.marginMain(a)
	}
	remaining := innerMain - used

	var lead, between float32
	count := float32(len(items))
	switch s.JustifyContent {
	case layout.JustifyCenter:
		lead = remaining / 2
	case layout.JustifyFlexEnd:
		lead = remaining
	case layout.JustifySpaceBetween:
		if remaining > 0 && len(items) > 1 {
			between = remaining / (count - 1)
		}
	case layout.JustifySpaceAround:
		if remaining > 0 && len(items) > 0 {
			between = remaining / count
			lead = between / 2
		}
	case layout.JustifySpaceEvenly:
		if remaining > 0 {
			between = remaining / (count + 1)
			lead = between
		}
	}

	startEdge, endEdge := a.mainStart(), a.mainEnd()
	if reverse {
		startEdge, endEdge = endEdge, startEdge
	}

	cursor := pad[startEdge] + lead
	for _, it := range items {
		cursor += it.margin[startEdge]
		mainPos := cursor
		if reverse {
			mainPos = containerMain - cursor - it.main
		}
		cursor += it.main + it.margin[endEdge] + between

		align := it.node.style.AlignSelf
		if align == layout.AlignAuto {
			align = s.AlignItems
		}
		crossFree := innerCross - it.cross - it.marginCross(a)
		crossPos := pad[a.crossStart()] + it.margin[a.crossStart()]
		switch align {
		case layout.AlignCenter:
			crossPos += crossFree / 2
		case layout.AlignFlexEnd:
			crossPos += crossFree
		}

		cw, ch := a.size(it.main, it.cross)
		cw, ch = it.node.layout(inner(w, pad.horizontal()), inner(h, pad.vertical()), cw, ch)
		left, top := a.size(mainPos, crossPos)
		left, top = relativeOffset(&it.node.style, left, top, inner(w, pad.horizontal()))
		it.node.box = layout.Box{Left: left, Top: top, Width: cw, Height: ch}
	}
}

// relativeOffset shifts a relatively positioned node by its insets.
func relativeOffset(s *layout.Style, left, top, parentWidth float32) (float32, float32) {
	if s.PositionType != layout.PositionTypeRelative {
		return left, top
	}
	if v, ok := s.Position[layout.EdgeLeft].Resolve(parentWidth); ok {
		left += v
	} else if v, ok := s.Position[layout.EdgeRight].Resolve(parentWidth); ok {
		left -= v
	}
	if v, ok := s.Position[layout.EdgeTop].Resolve(parentWidth); ok {
		top += v
	} else if v, ok := s.Position[layout.EdgeBottom].Resolve(parentWidth); ok {
		top -= v
	}
	return left, top
}

func (n *Node) positionAbsolute(children []*Node, w, h float32, pad edges) {
	for _, c := range children {
		cs := &c.style
		m := resolveEdges(cs.Margin, w)
		left, lok := cs.Position[layout.EdgeLeft].Resolve(w)
		right, rok := cs.Position[layout.EdgeRight].Resolve(w)
		top, tok := cs.Position[layout.EdgeTop].Resolve(h)
		bottom, bok := cs.Position[layout.EdgeBottom].Resolve(h)

		cw, ch := layout.Undefined, layout.Undefined
		if v, ok := cs.Width.Resolve(w); ok {
			cw = v
		} else if lok && rok {
			cw = max(w-left-right-m.horizontal(), 0)
		}
		if v, ok := cs.Height.Resolve(h); ok {
			ch = v
		} else if tok && bok {
			ch = max(h-top-bottom-m.vertical(), 0)
		}
		cw, ch = c.layout(w, h, cw, ch)

		var x, y float32
		switch {
		case lok:
			x = left + m[layout.EdgeLeft]
		case rok:
			x = w - right - m[layout.EdgeRight] - cw
		default:
			x = pad[layout.EdgeLeft] + m[layout.EdgeLeft]
		}
		switch {
		case tok:
			y = top + m[layout.EdgeTop]
		case bok:
			y = h - bottom - m[layout.EdgeBottom] - ch
		default:
			y = pad[layout.EdgeTop] + m[layout.EdgeTop]
		}
		c.box = layout.Box{Left: x, Top: y, Width: cw, Height: ch}
	}
}
