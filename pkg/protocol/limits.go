package protocol

// Allocation and depth limits to keep a malformed or hostile peer from
// exhausting memory or stack.
const (
	// MaxPayloadSize is the default maximum frame payload size (16MB).
	MaxPayloadSize = 16 * 1024 * 1024

	// MaxObjectDepth limits how deeply ObjectValue props may nest.
	MaxObjectDepth = 64

	// MaxPropCount limits the number of props in a single object.
	MaxPropCount = 100_000
)
