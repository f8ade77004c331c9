package protocol

import (
	"errors"
	"fmt"
	"io"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers, see protocol.proto.
const (
	fieldClientInitRequest protowire.Number = 1
	fieldClientApplyUpdate protowire.Number = 2
	fieldClientFindSource  protowire.Number = 3

	fieldServerResponse protowire.Number = 1

	fieldUpdateCreateSource  protowire.Number = 1
	fieldUpdateUpdateSource  protowire.Number = 2
	fieldUpdateAppendChild   protowire.Number = 3
	fieldUpdateRemoveChild   protowire.Number = 4
	fieldUpdateCreateScene   protowire.Number = 5
	fieldUpdateCommitUpdates protowire.Number = 6

	fieldObjectProps protowire.Number = 1

	fieldPropKey       protowire.Number = 1
	fieldPropUndefined protowire.Number = 2
	fieldPropBool      protowire.Number = 3
	fieldPropInt       protowire.Number = 4
	fieldPropFloat     protowire.Number = 5
	fieldPropString    protowire.Number = 6
	fieldPropObject    protowire.Number = 7
)

var errNilMessage = errors.New("protocol: cannot encode nil message")

// =============================================================================
// Encoding
// =============================================================================

// EncodeClientMessage encodes a client message payload (without framing).
func EncodeClientMessage(m ClientMessage) ([]byte, error) {
	e := NewEncoder()
	switch m := m.(type) {
	case *InitRequest:
		e.WriteMessage(fieldClientInitRequest, func(e *Encoder) {
			e.WriteString(1, m.ClientID)
			e.WriteString(2, m.RequestID)
		})
	case *ApplyUpdate:
		if err := encodeApplyUpdate(e, m); err != nil {
			return nil, err
		}
	case *FindSource:
		e.WriteMessage(fieldClientFindSource, func(e *Encoder) {
			e.WriteString(1, m.UID)
			e.WriteString(2, m.Name)
			e.WriteString(3, m.RequestID)
		})
	case nil:
		return nil, errNilMessage
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownMessage, m)
	}
	return e.Bytes(), nil
}

func encodeApplyUpdate(e *Encoder, m *ApplyUpdate) error {
	var err error
	e.WriteMessage(fieldClientApplyUpdate, func(e *Encoder) {
		switch u := m.Update.(type) {
		case *CreateSource:
			e.WriteMessage(fieldUpdateCreateSource, func(e *Encoder) {
				e.WriteString(1, u.ID)
				e.WriteString(2, u.ContainerUID)
				e.WriteString(3, u.Name)
				e.WriteString(4, u.UID)
				writeObject(e, 5, u.Settings)
			})
		case *UpdateSource:
			e.WriteMessage(fieldUpdateUpdateSource, func(e *Encoder) {
				e.WriteString(1, u.UID)
				writeObject(e, 2, u.ChangedProps)
			})
		case *AppendChild:
			e.WriteMessage(fieldUpdateAppendChild, func(e *Encoder) {
				e.WriteString(1, u.ParentUID)
				e.WriteString(2, u.ChildUID)
			})
		case *RemoveChild:
			e.WriteMessage(fieldUpdateRemoveChild, func(e *Encoder) {
				e.WriteString(1, u.ParentUID)
				e.WriteString(2, u.ChildUID)
			})
		case *CreateScene:
			e.WriteMessage(fieldUpdateCreateScene, func(e *Encoder) {
				e.WriteString(1, u.ContainerUID)
				e.WriteString(2, u.Name)
				e.WriteString(3, u.UID)
				writeObject(e, 4, u.Props)
			})
		case *CommitUpdates:
			e.WriteMessage(fieldUpdateCommitUpdates, func(e *Encoder) {
				e.WriteString(1, u.ContainerUID)
			})
		case nil:
			// An ApplyUpdate with no change is representable on the wire.
		default:
			err = fmt.Errorf("%w: %T", ErrUnknownMessage, u)
		}
	})
	return err
}

// writeObject omits empty props, so nil and empty Props are the same on
// the wire and both decode as nil.
func writeObject(e *Encoder, num protowire.Number, props Props) {
	if len(props) == 0 {
		return
	}
	e.WriteMessage(num, func(e *Encoder) {
		encodeProps(e, props)
	})
}

func encodeProps(e *Encoder, props Props) {
	for _, p := range props {
		e.WriteMessage(fieldObjectProps, func(e *Encoder) {
			encodeProp(e, p)
		})
	}
}

func encodeProp(e *Encoder, p Prop) {
	e.WriteString(fieldPropKey, p.Key)
	v := p.Value
	switch v.kind {
	case KindUndefined:
		e.ForceBool(fieldPropUndefined, true)
	case KindBool:
		e.ForceBool(fieldPropBool, v.b)
	case KindInt:
		e.ForceInt64(fieldPropInt, v.i)
	case KindFloat:
		e.ForceDouble(fieldPropFloat, v.f)
	case KindString:
		e.ForceString(fieldPropString, v.s)
	case KindObject:
		e.WriteMessage(fieldPropObject, func(e *Encoder) {
			encodeProps(e, v.obj)
		})
	}
}

// EncodeServerMessage encodes a server message payload (without framing).
func EncodeServerMessage(m ServerMessage) ([]byte, error) {
	e := NewEncoder()
	switch m := m.(type) {
	case *Response:
		e.WriteMessage(fieldServerResponse, func(e *Encoder) {
			e.WriteString(1, m.RequestID)
			e.WriteBool(2, m.Success)
		})
	case nil:
		return nil, errNilMessage
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownMessage, m)
	}
	return e.Bytes(), nil
}

// =============================================================================
// Decoding
// =============================================================================

// DecodeClientMessage decodes a client message payload. A payload that
// carries no known message case returns ErrEmptyMessage (no fields at all)
// or ErrUnknownMessage (only unrecognized fields).
func DecodeClientMessage(data []byte) (ClientMessage, error) {
	var (
		msg     ClientMessage
		unknown bool
		err     error
	)
	d := NewDecoder(data)
	for d.Next() {
		switch d.Field() {
		case fieldClientInitRequest:
			msg, err = decodeInitRequest(d.ReadBytes())
		case fieldClientApplyUpdate:
			msg, err = decodeApplyUpdate(d.ReadBytes())
		case fieldClientFindSource:
			msg, err = decodeFindSource(d.ReadBytes())
		default:
			unknown = true
			d.Skip()
		}
		if err != nil {
			return nil, &DecodeError{Message: "ClientMessage", Err: err}
		}
	}
	if err := d.Err(); err != nil {
		return nil, &DecodeError{Message: "ClientMessage", Err: err}
	}
	if msg == nil {
		if unknown {
			return nil, ErrUnknownMessage
		}
		return nil, ErrEmptyMessage
	}
	return msg, nil
}

func decodeInitRequest(data []byte) (*InitRequest, error) {
	m := &InitRequest{}
	d := NewDecoder(data)
	for d.Next() {
		switch d.Field() {
		case 1:
			m.ClientID = d.ReadString()
		case 2:
			m.RequestID = d.ReadString()
		default:
			d.Skip()
		}
	}
	return m, d.Err()
}

func decodeFindSource(data []byte) (*FindSource, error) {
	m := &FindSource{}
	d := NewDecoder(data)
	for d.Next() {
		switch d.Field() {
		case 1:
			m.UID = d.ReadString()
		case 2:
			m.Name = d.ReadString()
		case 3:
			m.RequestID = d.ReadString()
		default:
			d.Skip()
		}
	}
	return m, d.Err()
}

func decodeApplyUpdate(data []byte) (*ApplyUpdate, error) {
	m := &ApplyUpdate{}
	d := NewDecoder(data)
	for d.Next() {
		var err error
		switch d.Field() {
		case fieldUpdateCreateSource:
			m.Update, err = decodeCreateSource(d.ReadBytes())
		case fieldUpdateUpdateSource:
			m.Update, err = decodeUpdateSource(d.ReadBytes())
		case fieldUpdateAppendChild:
			var u AppendChild
			u.ParentUID, u.ChildUID, err = decodeUIDPair(d.ReadBytes())
			m.Update = &u
		case fieldUpdateRemoveChild:
			var u RemoveChild
			u.ParentUID, u.ChildUID, err = decodeUIDPair(d.ReadBytes())
			m.Update = &u
		case fieldUpdateCreateScene:
			m.Update, err = decodeCreateScene(d.ReadBytes())
		case fieldUpdateCommitUpdates:
			m.Update, err = decodeCommitUpdates(d.ReadBytes())
		default:
			d.Skip()
		}
		if err != nil {
			return nil, err
		}
	}
	return m, d.Err()
}

func decodeCreateSource(data []byte) (*CreateSource, error) {
	m := &CreateSource{}
	d := NewDecoder(data)
	for d.Next() {
		switch d.Field() {
		case 1:
			m.ID = d.ReadString()
		case 2:
			m.ContainerUID = d.ReadString()
		case 3:
			m.Name = d.ReadString()
		case 4:
			m.UID = d.ReadString()
		case 5:
			props, err := decodeObject(d.ReadBytes(), 0)
			if err != nil {
				return nil, err
			}
			m.Settings = props
		default:
			d.Skip()
		}
	}
	return m, d.Err()
}

func decodeCreateScene(data []byte) (*CreateScene, error) {
	m := &CreateScene{}
	d := NewDecoder(data)
	for d.Next() {
		switch d.Field() {
		case 1:
			m.ContainerUID = d.ReadString()
		case 2:
			m.Name = d.ReadString()
		case 3:
			m.UID = d.ReadString()
		case 4:
			props, err := decodeObject(d.ReadBytes(), 0)
			if err != nil {
				return nil, err
			}
			m.Props = props
		default:
			d.Skip()
		}
	}
	return m, d.Err()
}

func decodeUpdateSource(data []byte) (*UpdateSource, error) {
	m := &UpdateSource{}
	d := NewDecoder(data)
	for d.Next() {
		switch d.Field() {
		case 1:
			m.UID = d.ReadString()
		case 2:
			props, err := decodeObject(d.ReadBytes(), 0)
			if err != nil {
				return nil, err
			}
			m.ChangedProps = props
		default:
			d.Skip()
		}
	}
	return m, d.Err()
}

func decodeCommitUpdates(data []byte) (*CommitUpdates, error) {
	m := &CommitUpdates{}
	d := NewDecoder(data)
	for d.Next() {
		switch d.Field() {
		case 1:
			m.ContainerUID = d.ReadString()
		default:
			d.Skip()
		}
	}
	return m, d.Err()
}

func decodeUIDPair(data []byte) (parent, child string, err error) {
	d := NewDecoder(data)
	for d.Next() {
		switch d.Field() {
		case 1:
			parent = d.ReadString()
		case 2:
			child = d.ReadString()
		default:
			d.Skip()
		}
	}
	return parent, child, d.Err()
}

func decodeObject(data []byte, depth int) (Props, error) {
	if depth > MaxObjectDepth {
		return nil, ErrMaxDepthExceeded
	}
	var props Props
	d := NewDecoder(data)
	for d.Next() {
		if d.Field() != fieldObjectProps {
			d.Skip()
			continue
		}
		if len(props) >= MaxPropCount {
			return nil, ErrTooManyProps
		}
		raw := d.ReadBytes()
		if d.Err() != nil {
			break
		}
		p, ok, err := decodeProp(raw, depth)
		if err != nil {
			return nil, err
		}
		if ok {
			props = append(props, p)
		}
	}
	return props, d.Err()
}

// decodeProp reports ok=false for a prop that carries no known value case.
// Such props are skipped rather than read as Undefined, which would unset
// the key.
func decodeProp(data []byte, depth int) (p Prop, ok bool, err error) {
	d := NewDecoder(data)
	for d.Next() {
		switch d.Field() {
		case fieldPropKey:
			p.Key = d.ReadString()
		case fieldPropUndefined:
			d.ReadBool()
			p.Value, ok = Undefined(), true
		case fieldPropBool:
			p.Value, ok = Bool(d.ReadBool()), true
		case fieldPropInt:
			p.Value, ok = Int(d.ReadInt64()), true
		case fieldPropFloat:
			p.Value, ok = Float(d.ReadDouble()), true
		case fieldPropString:
			p.Value, ok = String(d.ReadString()), true
		case fieldPropObject:
			raw := d.ReadBytes()
			if d.Err() != nil {
				break
			}
			obj, err := decodeObject(raw, depth+1)
			if err != nil {
				return Prop{}, false, err
			}
			p.Value, ok = Object(obj...), true
		default:
			d.Skip()
		}
	}
	return p, ok, d.Err()
}

// DecodeServerMessage decodes a server message payload.
func DecodeServerMessage(data []byte) (ServerMessage, error) {
	var (
		msg     ServerMessage
		unknown bool
	)
	d := NewDecoder(data)
	for d.Next() {
		switch d.Field() {
		case fieldServerResponse:
			r := &Response{}
			sub := NewDecoder(d.ReadBytes())
			for sub.Next() {
				switch sub.Field() {
				case 1:
					r.RequestID = sub.ReadString()
				case 2:
					r.Success = sub.ReadBool()
				default:
					sub.Skip()
				}
			}
			if err := sub.Err(); err != nil {
				return nil, &DecodeError{Message: "ServerMessage", Err: err}
			}
			msg = r
		default:
			unknown = true
			d.Skip()
		}
	}
	if err := d.Err(); err != nil {
		return nil, &DecodeError{Message: "ServerMessage", Err: err}
	}
	if msg == nil {
		if unknown {
			return nil, ErrUnknownMessage
		}
		return nil, ErrEmptyMessage
	}
	return msg, nil
}

// =============================================================================
// Stream helpers
// =============================================================================

// WriteClientMessage encodes and frames m onto w.
func WriteClientMessage(w io.Writer, m ClientMessage) error {
	payload, err := EncodeClientMessage(m)
	if err != nil {
		return err
	}
	return WriteFrame(w, payload)
}

// ReadClientMessage reads and decodes one framed client message.
func ReadClientMessage(r io.Reader) (ClientMessage, error) {
	payload, err := ReadFrame(r)
	if err != nil {
		return nil, err
	}
	return DecodeClientMessage(payload)
}

// WriteServerMessage encodes and frames m onto w.
func WriteServerMessage(w io.Writer, m ServerMessage) error {
	payload, err := EncodeServerMessage(m)
	if err != nil {
		return err
	}
	return WriteFrame(w, payload)
}

// ReadServerMessage reads and decodes one framed server message.
func ReadServerMessage(r io.Reader) (ServerMessage, error) {
	payload, err := ReadFrame(r)
	if err != nil {
		return nil, err
	}
	return DecodeServerMessage(payload)
}
