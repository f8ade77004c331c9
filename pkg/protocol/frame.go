package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// FrameHeaderSize is the size of the frame header in bytes.
const FrameHeaderSize = 4

// Frame errors.
var (
	// ErrDisconnected reports that the stream ended before a complete frame
	// was read. It wraps the underlying io error.
	ErrDisconnected = errors.New("protocol: peer disconnected")

	// ErrFrameTooLarge is returned when a frame declares a payload above
	// the configured limit.
	ErrFrameTooLarge = errors.New("protocol: frame payload too large")
)

// Frame wire format (4 bytes header + variable payload):
//
//	┌───────────────────────────────────────┐
//	│ Payload Length (4 bytes, big-endian)  │
//	└───────────────────────────────────────┘
//	│                                       │
//	│  Payload (protobuf wire format)       │
//	│                                       │
//	└───────────────────────────────────────┘
//
// There is no magic number, version field or checksum.

// AppendFrame appends the framed payload to dst.
func AppendFrame(dst, payload []byte) []byte {
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(payload)))
	return append(dst, payload...)
}

// EncodeFrame returns payload prefixed with its length.
func EncodeFrame(payload []byte) []byte {
	return AppendFrame(make([]byte, 0, FrameHeaderSize+len(payload)), payload)
}

// WriteFrame writes a complete frame to w in a single Write call.
func WriteFrame(w io.Writer, payload []byte) error {
	if uint64(len(payload)) > MaxPayloadSize {
		return ErrFrameTooLarge
	}
	_, err := w.Write(EncodeFrame(payload))
	return err
}

// ReadFrame reads one complete frame from r and returns its payload.
// It blocks until the declared number of payload bytes has been read.
// Any short read, before or inside the payload, is reported as
// ErrDisconnected.
func ReadFrame(r io.Reader) ([]byte, error) {
	return ReadFrameLimit(r, MaxPayloadSize)
}

// ReadFrameLimit is ReadFrame with a caller supplied payload limit.
func ReadFrameLimit(r io.Reader, limit uint32) ([]byte, error) {
	var header [FrameHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, disconnected(err)
	}

	length := binary.BigEndian.Uint32(header[:])
	if length > limit {
		return nil, fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, length, limit)
	}

	payload := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, disconnected(err)
		}
	}
	return payload, nil
}

func disconnected(err error) error {
	return fmt.Errorf("%w: %w", ErrDisconnected, err)
}
