// Package protocol implements the wire protocol between a scene controller
// and the react-obs server.
//
// A controller describes a scene declaratively ("create these sources,
// nest them, change their properties") and streams the resulting mutations
// to the server over a long-lived TCP or WebSocket connection.
//
// # Wire Format
//
// Every message is framed with a 4-byte header:
//
//	┌───────────────────────────────────────┐
//	│ Payload Length (4 bytes, big-endian)  │
//	└───────────────────────────────────────┘
//
// followed by exactly that many bytes of payload. There is no magic
// number, version field or checksum. A short read anywhere in a frame is a
// disconnect (ErrDisconnected); a payload that does not parse is a
// protocol error (*DecodeError).
//
// # Payload Encoding
//
// Payloads are protobuf binary messages described by protocol.proto. The
// Go side encodes and decodes them with protowire directly, so no
// generated code is needed and generated clients in other languages stay
// compatible.
//
// # Messages
//
// Client → Server (ClientMessage):
//
//   - InitRequest: opens a session, answered with Response{success: true}
//   - ApplyUpdate: one of CreateSource, CreateScene, UpdateSource,
//     AppendChild, RemoveChild, CommitUpdates; never answered
//   - FindSource: adopt an existing compositor element, answered with
//     Response{success} reporting whether the element exists
//
// Server → Client (ServerMessage):
//
//   - Response: request id and success flag
//
// # Props
//
// Settings and style travel as ordered lists of Prop. Each Prop carries a
// Value, a sum type over undefined, bool, int, float, string and nested
// object:
//
//	settings := protocol.Props{
//	    protocol.P("text", protocol.String("Hello")),
//	    protocol.P("style", protocol.Object(
//	        protocol.P("width", protocol.String("50%")),
//	        protocol.P("flexGrow", protocol.Int(1)),
//	    )),
//	}
//
// # Usage Example
//
//	// Client side
//	err := protocol.WriteClientMessage(conn, &protocol.InitRequest{
//	    ClientID:  "controller",
//	    RequestID: "1",
//	})
//	msg, err := protocol.ReadServerMessage(conn)
//
//	// Server side
//	msg, err := protocol.ReadClientMessage(conn)
//	if errors.Is(err, protocol.ErrDisconnected) {
//	    return
//	}
//
// # File Structure
//
//   - frame.go: Length-prefixed framing
//   - encoder.go: protobuf wire encoder
//   - decoder.go: protobuf wire decoder
//   - value.go: Prop and Value sum type
//   - message.go: Message types
//   - codec.go: Message encoding and decoding
//   - error.go: Errors
//   - limits.go: Allocation and depth limits
package protocol
