package reconcile

import (
	"errors"
	"testing"

	rerrors "github.com/georgyangelov/react-obs/internal/errors"
	"github.com/georgyangelov/react-obs/pkg/layout"
	"github.com/georgyangelov/react-obs/pkg/protocol"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		name    string
		value   protocol.Value
		want    layout.Value
		wantErr bool
	}{
		{"int", protocol.Int(120), layout.Point(120), false},
		{"float", protocol.Float(12.5), layout.Point(12.5), false},
		{"px", protocol.String("120px"), layout.Point(120), false},
		{"percent", protocol.String("50%"), layout.Percent(50), false},
		{"fractional percent", protocol.String("33.5%"), layout.Percent(33.5), false},
		{"bare number", protocol.String("120"), layout.Point(120), false},
		{"negative px", protocol.String("-4px"), layout.Point(-4), false},
		{"surrounding space", protocol.String(" 8px "), layout.Point(8), false},
		{"em", protocol.String("120em"), layout.Value{}, true},
		{"unit only", protocol.String("px"), layout.Value{}, true},
		{"empty", protocol.String(""), layout.Value{}, true},
		{"auto keyword", protocol.String("auto"), layout.Value{}, true},
		{"infinity", protocol.String("inf"), layout.Value{}, true},
		{"bool", protocol.Bool(true), layout.Value{}, true},
		{"object", protocol.Object(), layout.Value{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSize(tt.value)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidSize) {
					t.Fatalf("ParseSize(%#v) error = %v, want ErrInvalidSize", tt.value, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSize(%#v) error = %v", tt.value, err)
			}
			if got != tt.want {
				t.Errorf("ParseSize(%#v) = %+v, want %+v", tt.value, got, tt.want)
			}
		})
	}
}

func styleProps(props ...protocol.Prop) protocol.Props {
	return protocol.Props{protocol.P(StyleKey, protocol.Object(props...))}
}

func TestComputeStyleNoStyleProp(t *testing.T) {
	cur := layout.DefaultStyle()
	cur.Width = layout.Point(10)

	got, ok, errs := ComputeStyle(cur, protocol.Props{protocol.P("text", protocol.String("hi"))})
	if ok || len(errs) != 0 {
		t.Fatalf("ComputeStyle without style = ok %v, errs %v", ok, errs)
	}
	if !got.Equal(cur) {
		t.Error("style must be unchanged without a style prop")
	}
}

func TestComputeStyleDefaults(t *testing.T) {
	cur := layout.DefaultStyle()
	cur.FlexDirection = layout.FlexDirectionRow
	cur.JustifyContent = layout.JustifyCenter
	cur.FlexGrow = 3
	cur.Width = layout.Point(100)
	cur.MaxWidth = layout.Point(200)
	cur.Margin[layout.EdgeTop] = layout.Point(4)

	for _, style := range []protocol.Value{protocol.Object(), protocol.Undefined()} {
		got, ok, errs := ComputeStyle(cur, protocol.Props{protocol.P(StyleKey, style)})
		if !ok || len(errs) != 0 {
			t.Fatalf("ComputeStyle(%#v) = ok %v, errs %v", style, ok, errs)
		}
		if got.FlexDirection != layout.FlexDirectionColumn {
			t.Errorf("flexDirection = %v, want column", got.FlexDirection)
		}
		if got.JustifyContent != layout.JustifyFlexStart {
			t.Errorf("justifyContent = %v, want flex-start", got.JustifyContent)
		}
		if got.AlignItems != layout.AlignStretch || got.AlignSelf != layout.AlignStretch {
			t.Errorf("alignItems/alignSelf = %v/%v, want stretch", got.AlignItems, got.AlignSelf)
		}
		if !layout.IsUndefined(got.FlexGrow) {
			t.Errorf("flexGrow = %v, want undefined", got.FlexGrow)
		}
		if got.Width != layout.Auto() || got.FlexBasis != layout.Auto() {
			t.Errorf("width/flexBasis = %+v/%+v, want auto", got.Width, got.FlexBasis)
		}
		if got.MaxWidth.Unit != layout.UnitUndefined || got.Margin[layout.EdgeTop].Unit != layout.UnitUndefined {
			t.Errorf("maxWidth/marginTop = %+v/%+v, want undefined", got.MaxWidth, got.Margin[layout.EdgeTop])
		}
	}
}

func TestComputeStyleApplies(t *testing.T) {
	got, ok, errs := ComputeStyle(layout.DefaultStyle(), styleProps(
		protocol.P("flexDirection", protocol.String("row-reverse")),
		protocol.P("justifyContent", protocol.String("space-between")),
		protocol.P("alignItems", protocol.String("center")),
		protocol.P("position", protocol.String("absolute")),
		protocol.P("display", protocol.String("none")),
		protocol.P("flexGrow", protocol.Int(2)),
		protocol.P("aspectRatio", protocol.Float(1.5)),
		protocol.P("flexBasis", protocol.String("25%")),
		protocol.P("top", protocol.Int(5)),
		protocol.P("marginLeft", protocol.String("8px")),
		protocol.P("paddingBottom", protocol.Float(2)),
		protocol.P("width", protocol.String("50%")),
		protocol.P("minHeight", protocol.String("10")),
	))
	if !ok || len(errs) != 0 {
		t.Fatalf("ComputeStyle = ok %v, errs %v", ok, errs)
	}

	checks := []struct {
		name string
		ok   bool
	}{
		{"flexDirection", got.FlexDirection == layout.FlexDirectionRowReverse},
		{"justifyContent", got.JustifyContent == layout.JustifySpaceBetween},
		{"alignItems", got.AlignItems == layout.AlignCenter},
		{"position", got.PositionType == layout.PositionTypeAbsolute},
		{"display", got.Display == layout.DisplayNone},
		{"flexGrow", got.FlexGrow == 2},
		{"aspectRatio", got.AspectRatio == 1.5},
		{"flexBasis", got.FlexBasis == layout.Percent(25)},
		{"top", got.Position[layout.EdgeTop] == layout.Point(5)},
		{"marginLeft", got.Margin[layout.EdgeLeft] == layout.Point(8)},
		{"paddingBottom", got.Padding[layout.EdgeBottom] == layout.Point(2)},
		{"width", got.Width == layout.Percent(50)},
		{"minHeight", got.MinHeight == layout.Point(10)},
	}
	for _, c := range checks {
		if !c.ok {
			t.Errorf("%s not applied: %+v", c.name, got)
		}
	}
}

func TestComputeStyleRejectsInvalidValues(t *testing.T) {
	cur := layout.DefaultStyle()
	cur.Width = layout.Point(100)
	cur.FlexDirection = layout.FlexDirectionRow
	cur.FlexGrow = 1

	got, ok, errs := ComputeStyle(cur, styleProps(
		protocol.P("width", protocol.String("120em")),
		protocol.P("height", protocol.String("40px")),
		protocol.P("flexDirection", protocol.String("diagonal")),
		protocol.P("flexGrow", protocol.String("lots")),
		protocol.P("zIndex", protocol.Int(3)),
	))
	if !ok {
		t.Fatal("style prop present, ComputeStyle must report ok")
	}

	if got.Width != layout.Point(100) {
		t.Errorf("rejected width changed to %+v", got.Width)
	}
	if got.Height != layout.Point(40) {
		t.Errorf("valid height not applied: %+v", got.Height)
	}
	if got.FlexDirection != layout.FlexDirectionRow {
		t.Errorf("unknown enum changed flexDirection to %v", got.FlexDirection)
	}
	if got.FlexGrow != 1 {
		t.Errorf("wrong type changed flexGrow to %v", got.FlexGrow)
	}

	want := map[string]string{
		"width":         rerrors.CodeInvalidSize,
		"flexDirection": rerrors.CodeUnknownEnum,
		"flexGrow":      rerrors.CodeInvalidType,
		"zIndex":        rerrors.CodeUnknownStyleKey,
	}
	if len(errs) != len(want) {
		t.Fatalf("got %d errors, want %d: %v", len(errs), len(want), errs)
	}
	for _, err := range errs {
		var e *rerrors.Error
		if !errors.As(err, &e) {
			t.Fatalf("error %v is not coded", err)
		}
		if want[e.Subject] != e.Code {
			t.Errorf("error for %q has code %s, want %s", e.Subject, e.Code, want[e.Subject])
		}
		if e.Subject == "width" && !errors.Is(err, ErrInvalidSize) {
			t.Errorf("size error should wrap ErrInvalidSize: %v", err)
		}
	}
}

func TestComputeStyleNotObject(t *testing.T) {
	cur := layout.DefaultStyle()
	cur.Width = layout.Point(7)

	got, ok, errs := ComputeStyle(cur, protocol.Props{protocol.P(StyleKey, protocol.String("width: 10px"))})
	if ok {
		t.Error("a non-object style must not be applied")
	}
	if len(errs) != 1 || rerrors.CodeOf(errs[0]) != rerrors.CodeStyleNotObject {
		t.Fatalf("errs = %v, want one %s", errs, rerrors.CodeStyleNotObject)
	}
	if !got.Equal(cur) {
		t.Error("style changed")
	}
}
