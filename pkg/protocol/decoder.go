package protocol

import (
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Decoder walks the fields of one protobuf wire-format message.
//
//	d := NewDecoder(data)
//	for d.Next() {
//	    switch d.Field() {
//	    case 1:
//	        s := d.ReadString()
//	    default:
//	        d.Skip()
//	    }
//	}
//	if err := d.Err(); err != nil { ... }
type Decoder struct {
	buf []byte
	pos int

	num protowire.Number
	typ protowire.Type
	err error
}

// NewDecoder creates a new decoder from the given byte slice.
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

// Next advances to the next field. It returns false at the end of the
// buffer or after the first error.
func (d *Decoder) Next() bool {
	if d.err != nil || d.pos >= len(d.buf) {
		return false
	}
	num, typ, n := protowire.ConsumeTag(d.buf[d.pos:])
	if n < 0 {
		d.err = protowire.ParseError(n)
		return false
	}
	d.pos += n
	d.num, d.typ = num, typ
	return true
}

// Field returns the number of the current field.
func (d *Decoder) Field() protowire.Number {
	return d.num
}

// Type returns the wire type of the current field.
func (d *Decoder) Type() protowire.Type {
	return d.typ
}

// Err returns the first error encountered.
func (d *Decoder) Err() error {
	return d.err
}

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int {
	return len(d.buf) - d.pos
}

// Skip consumes the value of the current field.
func (d *Decoder) Skip() {
	if d.err != nil {
		return
	}
	n := protowire.ConsumeFieldValue(d.num, d.typ, d.buf[d.pos:])
	if n < 0 {
		d.err = protowire.ParseError(n)
		return
	}
	d.pos += n
}

func (d *Decoder) expect(typ protowire.Type) bool {
	if d.err != nil {
		return false
	}
	if d.typ != typ {
		d.err = &WireTypeError{Field: d.num, Got: d.typ, Want: typ}
		return false
	}
	return true
}

// ReadBytes reads a length-delimited value. The returned slice references
// the decoder's buffer; do not modify.
func (d *Decoder) ReadBytes() []byte {
	if !d.expect(protowire.BytesType) {
		return nil
	}
	v, n := protowire.ConsumeBytes(d.buf[d.pos:])
	if n < 0 {
		d.err = protowire.ParseError(n)
		return nil
	}
	d.pos += n
	return v
}

// ReadString reads a length-delimited value as a string.
func (d *Decoder) ReadString() string {
	return string(d.ReadBytes())
}

// ReadVarint reads a varint value.
func (d *Decoder) ReadVarint() uint64 {
	if !d.expect(protowire.VarintType) {
		return 0
	}
	v, n := protowire.ConsumeVarint(d.buf[d.pos:])
	if n < 0 {
		d.err = protowire.ParseError(n)
		return 0
	}
	d.pos += n
	return v
}

// ReadBool reads a varint value as a bool.
func (d *Decoder) ReadBool() bool {
	return protowire.DecodeBool(d.ReadVarint())
}

// ReadInt64 reads a varint value as an int64.
func (d *Decoder) ReadInt64() int64 {
	return int64(d.ReadVarint())
}

// ReadDouble reads a fixed64 value as a float64.
func (d *Decoder) ReadDouble() float64 {
	if !d.expect(protowire.Fixed64Type) {
		return 0
	}
	v, n := protowire.ConsumeFixed64(d.buf[d.pos:])
	if n < 0 {
		d.err = protowire.ParseError(n)
		return 0
	}
	d.pos += n
	return math.Float64frombits(v)
}
