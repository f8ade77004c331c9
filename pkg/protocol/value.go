package protocol

import (
	"fmt"
	"strconv"
)

// Kind identifies which member of the Value sum type is set.
type Kind uint8

const (
	KindUndefined Kind = iota // Unset the property
	KindBool
	KindInt
	KindFloat
	KindString
	KindObject
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a loosely typed property value: undefined, bool, int, float,
// string or a nested object. The zero Value is undefined.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	obj  Props
}

// Prop is one keyed entry of an object.
type Prop struct {
	Key   string
	Value Value
}

// Undefined returns the undefined value.
func Undefined() Value { return Value{} }

// Bool returns a bool value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int returns an integer value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float returns a floating point value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Object returns an object value holding props in order.
func Object(props ...Prop) Value { return Value{kind: KindObject, obj: props} }

// P is shorthand for building a Prop.
func P(key string, v Value) Prop { return Prop{Key: key, Value: v} }

// Kind returns which member of the sum type is set.
func (v Value) Kind() Kind { return v.kind }

// IsUndefined reports whether v is undefined.
func (v Value) IsUndefined() bool { return v.kind == KindUndefined }

// AsBool returns the bool held by v.
func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == KindBool
}

// AsInt returns the integer held by v.
func (v Value) AsInt() (int64, bool) {
	return v.i, v.kind == KindInt
}

// AsFloat returns the float held by v. An integer is accepted where a
// float is expected; no other coercion happens.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	default:
		return 0, false
	}
}

// AsString returns the string held by v.
func (v Value) AsString() (string, bool) {
	return v.s, v.kind == KindString
}

// AsObject returns the props held by v.
func (v Value) AsObject() (Props, bool) {
	return v.obj, v.kind == KindObject
}

// GoString formats v for debugging and test failure output.
func (v Value) GoString() string {
	switch v.kind {
	case KindUndefined:
		return "undefined"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		return strconv.Quote(v.s)
	case KindObject:
		return fmt.Sprintf("%v", v.obj)
	default:
		return v.kind.String()
	}
}

// Props is an ordered list of props, as carried by settings, props and
// changed props.
type Props []Prop

// Get returns the value of the last prop with the given key. Later
// entries win, matching map assignment in arrival order.
func (p Props) Get(key string) (Value, bool) {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i].Key == key {
			return p[i].Value, true
		}
	}
	return Value{}, false
}

// Map indexes the props by key. Later duplicates win.
func (p Props) Map() map[string]Value {
	m := make(map[string]Value, len(p))
	for _, prop := range p {
		m[prop.Key] = prop.Value
	}
	return m
}
