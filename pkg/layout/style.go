package layout

// FlexDirection is the main axis of a container.
type FlexDirection uint8

const (
	FlexDirectionColumn FlexDirection = iota
	FlexDirectionColumnReverse
	FlexDirectionRow
	FlexDirectionRowReverse
)

// Direction is the writing direction.
type Direction uint8

const (
	DirectionInherit Direction = iota
	DirectionLTR
	DirectionRTL
)

// Justify packs children along the main axis.
type Justify uint8

const (
	JustifyFlexStart Justify = iota
	JustifyCenter
	JustifyFlexEnd
	JustifySpaceBetween
	JustifySpaceAround
	JustifySpaceEvenly
)

// Align positions children along the cross axis.
type Align uint8

const (
	AlignAuto Align = iota
	AlignFlexStart
	AlignCenter
	AlignFlexEnd
	AlignStretch
	AlignBaseline
	AlignSpaceBetween
	AlignSpaceAround
)

// PositionType selects in-flow or absolute positioning.
type PositionType uint8

const (
	PositionTypeStatic PositionType = iota
	PositionTypeRelative
	PositionTypeAbsolute
)

// Wrap controls line wrapping.
type Wrap uint8

const (
	WrapNoWrap Wrap = iota
	WrapWrap
	WrapWrapReverse
)

// Overflow controls content overflow.
type Overflow uint8

const (
	OverflowVisible Overflow = iota
	OverflowHidden
	OverflowScroll
)

// Display controls whether a node takes part in layout.
type Display uint8

const (
	DisplayFlex Display = iota
	DisplayNone
)

// Style is the complete set of layout attributes of a node.
type Style struct {
	Direction      Direction
	FlexDirection  FlexDirection
	JustifyContent Justify
	AlignContent   Align
	AlignItems     Align
	AlignSelf      Align
	PositionType   PositionType
	FlexWrap       Wrap
	Overflow       Overflow
	Display        Display

	FlexGrow    float32
	FlexShrink  float32
	FlexBasis   Value
	AspectRatio float32

	Position Edges
	Margin   Edges
	Padding  Edges

	Width     Value
	Height    Value
	MinWidth  Value
	MinHeight Value
	MaxWidth  Value
	MaxHeight Value
}

// DefaultStyle returns the style of a freshly created node.
func DefaultStyle() Style {
	return Style{
		FlexDirection: FlexDirectionColumn,
		AlignContent:  AlignFlexStart,
		AlignItems:    AlignStretch,
		AlignSelf:     AlignAuto,
		FlexGrow:      Undefined,
		FlexShrink:    Undefined,
		FlexBasis:     Auto(),
		AspectRatio:   Undefined,
		Width:         Auto(),
		Height:        Auto(),
	}
}

// IsRow reports whether the main axis is horizontal.
func (d FlexDirection) IsRow() bool {
	return d == FlexDirectionRow || d == FlexDirectionRowReverse
}

// IsReverse reports whether children are laid out in reverse order.
func (d FlexDirection) IsReverse() bool {
	return d == FlexDirectionRowReverse || d == FlexDirectionColumnReverse
}

// Equal reports whether two styles are identical, treating Undefined
// floats as equal to each other.
func (s Style) Equal(o Style) bool {
	for _, p := range [][2]*float32{
		{&s.FlexGrow, &o.FlexGrow},
		{&s.FlexShrink, &o.FlexShrink},
		{&s.AspectRatio, &o.AspectRatio},
	} {
		a, b := IsUndefined(*p[0]), IsUndefined(*p[1])
		if a != b {
			return false
		}
		if a {
			*p[0], *p[1] = 0, 0
		}
	}
	return s == o
}
