package reconcile

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	rerrors "github.com/georgyangelov/react-obs/internal/errors"
	"github.com/georgyangelov/react-obs/pkg/layout"
	"github.com/georgyangelov/react-obs/pkg/protocol"
)

// ErrInvalidSize is returned by ParseSize for values that are not a number,
// "<n>px", "<n>%" or a bare numeric string.
var ErrInvalidSize = errors.New("reconcile: invalid size")

// ParseSize converts a style value to a layout length. Numbers and "<n>px"
// are absolute, "<n>%" is a percentage and a bare numeric string is
// absolute.
func ParseSize(v protocol.Value) (layout.Value, error) {
	switch v.Kind() {
	case protocol.KindInt, protocol.KindFloat:
		f, _ := v.AsFloat()
		return layout.Point(float32(f)), nil
	case protocol.KindString:
		s, _ := v.AsString()
		s = strings.TrimSpace(s)
		unit := layout.UnitPoint
		switch {
		case strings.HasSuffix(s, "px"):
			s = strings.TrimSuffix(s, "px")
		case strings.HasSuffix(s, "%"):
			s = strings.TrimSuffix(s, "%")
			unit = layout.UnitPercent
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			return layout.Value{}, fmt.Errorf("%w: %s", ErrInvalidSize, v.GoString())
		}
		return layout.Value{Value: float32(f), Unit: unit}, nil
	default:
		return layout.Value{}, fmt.Errorf("%w: %s is not a number or string", ErrInvalidSize, v.Kind())
	}
}

// attr maps one style key onto the layout style. apply receives defined
// values only; reset runs when the key is absent or undefined.
type attr struct {
	key   string
	apply func(s *layout.Style, v protocol.Value) error
	reset func(s *layout.Style)
}

func enumAttr[T ~uint8](key string, field func(*layout.Style) *T, def T, names map[string]T) attr {
	return attr{
		key: key,
		apply: func(s *layout.Style, v protocol.Value) error {
			name, ok := v.AsString()
			if !ok {
				return rerrors.New(rerrors.CodeInvalidType).
					WithDetail(fmt.Sprintf("expected a string, got %s", v.Kind()))
			}
			val, ok := names[name]
			if !ok {
				return rerrors.New(rerrors.CodeUnknownEnum).
					WithDetail(fmt.Sprintf("%q is not one of the accepted keywords", name))
			}
			*field(s) = val
			return nil
		},
		reset: func(s *layout.Style) { *field(s) = def },
	}
}

func floatAttr(key string, field func(*layout.Style) *float32) attr {
	return attr{
		key: key,
		apply: func(s *layout.Style, v protocol.Value) error {
			f, ok := v.AsFloat()
			if !ok {
				return rerrors.New(rerrors.CodeInvalidType).
					WithDetail(fmt.Sprintf("expected a number, got %s", v.Kind()))
			}
			*field(s) = float32(f)
			return nil
		},
		reset: func(s *layout.Style) { *field(s) = layout.Undefined },
	}
}

func sizeAttr(key string, field func(*layout.Style) *layout.Value, def layout.Value) attr {
	return attr{
		key: key,
		apply: func(s *layout.Style, v protocol.Value) error {
			size, err := ParseSize(v)
			if err != nil {
				return rerrors.New(rerrors.CodeInvalidSize).Wrap(err)
			}
			*field(s) = size
			return nil
		},
		reset: func(s *layout.Style) { *field(s) = def },
	}
}

var (
	alignNames = map[string]layout.Align{
		"auto":          layout.AlignAuto,
		"flex-start":    layout.AlignFlexStart,
		"center":        layout.AlignCenter,
		"flex-end":      layout.AlignFlexEnd,
		"stretch":       layout.AlignStretch,
		"baseline":      layout.AlignBaseline,
		"space-between": layout.AlignSpaceBetween,
		"space-around":  layout.AlignSpaceAround,
	}

	undefinedSize = layout.Value{}
)

var styleAttrs = []attr{
	enumAttr("flexDirection", func(s *layout.Style) *layout.FlexDirection { return &s.FlexDirection },
		layout.FlexDirectionColumn, map[string]layout.FlexDirection{
			"column":         layout.FlexDirectionColumn,
			"column-reverse": layout.FlexDirectionColumnReverse,
			"row":            layout.FlexDirectionRow,
			"row-reverse":    layout.FlexDirectionRowReverse,
		}),
	enumAttr("direction", func(s *layout.Style) *layout.Direction { return &s.Direction },
		layout.DirectionInherit, map[string]layout.Direction{
			"inherit": layout.DirectionInherit,
			"ltr":     layout.DirectionLTR,
			"rtl":     layout.DirectionRTL,
		}),
	enumAttr("justifyContent", func(s *layout.Style) *layout.Justify { return &s.JustifyContent },
		layout.JustifyFlexStart, map[string]layout.Justify{
			"flex-start":    layout.JustifyFlexStart,
			"center":        layout.JustifyCenter,
			"flex-end":      layout.JustifyFlexEnd,
			"space-between": layout.JustifySpaceBetween,
			"space-around":  layout.JustifySpaceAround,
			"space-evenly":  layout.JustifySpaceEvenly,
		}),
	enumAttr("alignContent", func(s *layout.Style) *layout.Align { return &s.AlignContent },
		layout.AlignFlexStart, alignNames),
	enumAttr("alignItems", func(s *layout.Style) *layout.Align { return &s.AlignItems },
		layout.AlignStretch, alignNames),
	enumAttr("alignSelf", func(s *layout.Style) *layout.Align { return &s.AlignSelf },
		layout.AlignStretch, alignNames),
	enumAttr("position", func(s *layout.Style) *layout.PositionType { return &s.PositionType },
		layout.PositionTypeStatic, map[string]layout.PositionType{
			"static":   layout.PositionTypeStatic,
			"relative": layout.PositionTypeRelative,
			"absolute": layout.PositionTypeAbsolute,
		}),
	enumAttr("flexWrap", func(s *layout.Style) *layout.Wrap { return &s.FlexWrap },
		layout.WrapNoWrap, map[string]layout.Wrap{
			"no-wrap":      layout.WrapNoWrap,
			"nowrap":       layout.WrapNoWrap,
			"wrap":         layout.WrapWrap,
			"wrap-reverse": layout.WrapWrapReverse,
		}),
	enumAttr("overflow", func(s *layout.Style) *layout.Overflow { return &s.Overflow },
		layout.OverflowVisible, map[string]layout.Overflow{
			"visible": layout.OverflowVisible,
			"hidden":  layout.OverflowHidden,
			"scroll":  layout.OverflowScroll,
		}),
	enumAttr("display", func(s *layout.Style) *layout.Display { return &s.Display },
		layout.DisplayFlex, map[string]layout.Display{
			"flex": layout.DisplayFlex,
			"none": layout.DisplayNone,
		}),

	floatAttr("flexGrow", func(s *layout.Style) *float32 { return &s.FlexGrow }),
	floatAttr("flexShrink", func(s *layout.Style) *float32 { return &s.FlexShrink }),
	sizeAttr("flexBasis", func(s *layout.Style) *layout.Value { return &s.FlexBasis }, layout.Auto()),

	sizeAttr("top", edge(positionEdges, layout.EdgeTop), undefinedSize),
	sizeAttr("left", edge(positionEdges, layout.EdgeLeft), undefinedSize),
	sizeAttr("right", edge(positionEdges, layout.EdgeRight), undefinedSize),
	sizeAttr("bottom", edge(positionEdges, layout.EdgeBottom), undefinedSize),

	sizeAttr("marginTop", edge(marginEdges, layout.EdgeTop), undefinedSize),
	sizeAttr("marginLeft", edge(marginEdges, layout.EdgeLeft), undefinedSize),
	sizeAttr("marginRight", edge(marginEdges, layout.EdgeRight), undefinedSize),
	sizeAttr("marginBottom", edge(marginEdges, layout.EdgeBottom), undefinedSize),

	sizeAttr("paddingTop", edge(paddingEdges, layout.EdgeTop), undefinedSize),
	sizeAttr("paddingLeft", edge(paddingEdges, layout.EdgeLeft), undefinedSize),
	sizeAttr("paddingRight", edge(paddingEdges, layout.EdgeRight), undefinedSize),
	sizeAttr("paddingBottom", edge(paddingEdges, layout.EdgeBottom), undefinedSize),

	floatAttr("aspectRatio", func(s *layout.Style) *float32 { return &s.AspectRatio }),

	sizeAttr("width", func(s *layout.Style) *layout.Value { return &s.Width }, layout.Auto()),
	sizeAttr("height", func(s *layout.Style) *layout.Value { return &s.Height }, layout.Auto()),
	sizeAttr("minWidth", func(s *layout.Style) *layout.Value { return &s.MinWidth }, undefinedSize),
	sizeAttr("maxWidth", func(s *layout.Style) *layout.Value { return &s.MaxWidth }, undefinedSize),
	sizeAttr("minHeight", func(s *layout.Style) *layout.Value { return &s.MinHeight }, undefinedSize),
	sizeAttr("maxHeight", func(s *layout.Style) *layout.Value { return &s.MaxHeight }, undefinedSize),
}

var knownStyleKeys = func() map[string]bool {
	m := make(map[string]bool, len(styleAttrs))
	for _, a := range styleAttrs {
		m[a.key] = true
	}
	return m
}()

func positionEdges(s *layout.Style) *layout.Edges { return &s.Position }
func marginEdges(s *layout.Style) *layout.Edges   { return &s.Margin }
func paddingEdges(s *layout.Style) *layout.Edges  { return &s.Padding }

func edge(edges func(*layout.Style) *layout.Edges, e layout.Edge) func(*layout.Style) *layout.Value {
	return func(s *layout.Style) *layout.Value { return &edges(s)[e] }
}

// ComputeStyle derives the next layout style from the style prop in props.
// It reports false when props carry no style prop, in which case the
// style is left alone. Every recognized attribute is recomputed: absent
// attributes return to their default, valid ones are applied and invalid
// ones keep their current value. The returned errors describe the
// rejected attributes; they never prevent the rest from applying.
func ComputeStyle(cur layout.Style, props protocol.Props) (layout.Style, bool, []error) {
	raw, ok := props.Get(StyleKey)
	if !ok {
		return cur, false, nil
	}

	var style protocol.Props
	switch raw.Kind() {
	case protocol.KindUndefined:
	case protocol.KindObject:
		style, _ = raw.AsObject()
	default:
		err := rerrors.New(rerrors.CodeStyleNotObject).
			WithSubject(StyleKey).
			WithDetail(fmt.Sprintf("got %s", raw.Kind()))
		return cur, false, []error{err}
	}

	values := style.Map()
	next := cur
	var errs []error
	for _, a := range styleAttrs {
		v, ok := values[a.key]
		if !ok || v.IsUndefined() {
			a.reset(&next)
			continue
		}
		if err := a.apply(&next, v); err != nil {
			errs = append(errs, rerrors.FromError(err, rerrors.CodeInvalidType).WithSubject(a.key))
		}
	}
	for _, p := range style {
		if !knownStyleKeys[p.Key] {
			errs = append(errs, rerrors.New(rerrors.CodeUnknownStyleKey).WithSubject(p.Key))
		}
	}
	return next, true, errs
}

// ApplyStyle computes the style of node from props and sets it when props
// carry a style prop.
func ApplyStyle(node layout.Node, props protocol.Props) []error {
	next, ok, errs := ComputeStyle(node.Style(), props)
	if ok {
		node.SetStyle(next)
	}
	return errs
}
