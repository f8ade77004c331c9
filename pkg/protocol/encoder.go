package protocol

import (
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Encoder appends protobuf wire-format fields to an internal buffer.
// Scalar helpers follow proto3 rules and omit zero values; the Force
// variants always emit the field, which oneof members require.
type Encoder struct {
	buf []byte
}

// NewEncoder creates a new encoder with a default initial capacity.
func NewEncoder() *Encoder {
	return &Encoder{
		buf: make([]byte, 0, 256),
	}
}

// Reset resets the encoder to empty state, reusing the underlying buffer.
func (e *Encoder) Reset() {
	e.buf = e.buf[:0]
}

// Bytes returns the encoded bytes. The returned slice is valid until
// the next call to Reset or any Write method.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// Len returns the number of bytes currently encoded.
func (e *Encoder) Len() int {
	return len(e.buf)
}

// WriteString appends a string field, skipping the empty string.
func (e *Encoder) WriteString(num protowire.Number, s string) {
	if s == "" {
		return
	}
	e.ForceString(num, s)
}

// ForceString appends a string field even when it is empty.
func (e *Encoder) ForceString(num protowire.Number, s string) {
	e.buf = protowire.AppendTag(e.buf, num, protowire.BytesType)
	e.buf = protowire.AppendString(e.buf, s)
}

// WriteBool appends a bool field, skipping false.
func (e *Encoder) WriteBool(num protowire.Number, b bool) {
	if !b {
		return
	}
	e.ForceBool(num, b)
}

// ForceBool appends a bool field even when it is false.
func (e *Encoder) ForceBool(num protowire.Number, b bool) {
	e.buf = protowire.AppendTag(e.buf, num, protowire.VarintType)
	e.buf = protowire.AppendVarint(e.buf, protowire.EncodeBool(b))
}

// ForceInt64 appends an int64 field using plain (non-zigzag) varint.
func (e *Encoder) ForceInt64(num protowire.Number, v int64) {
	e.buf = protowire.AppendTag(e.buf, num, protowire.VarintType)
	e.buf = protowire.AppendVarint(e.buf, uint64(v))
}

// ForceDouble appends a double field.
func (e *Encoder) ForceDouble(num protowire.Number, v float64) {
	e.buf = protowire.AppendTag(e.buf, num, protowire.Fixed64Type)
	e.buf = protowire.AppendFixed64(e.buf, math.Float64bits(v))
}

// WriteMessage appends a length-delimited sub-message produced by fn.
// The sub-message is always emitted, even when fn writes nothing.
func (e *Encoder) WriteMessage(num protowire.Number, fn func(*Encoder)) {
	sub := Encoder{buf: make([]byte, 0, 64)}
	fn(&sub)
	e.buf = protowire.AppendTag(e.buf, num, protowire.BytesType)
	e.buf = protowire.AppendBytes(e.buf, sub.buf)
}
