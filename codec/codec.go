// Package codec centralizes payload and metadata encoding.
//
// Block files record the id of the codec that wrote their payload, so codec
// ids are a breaking-change boundary: never renumber them.
package codec

import "fmt"

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// Stable codec ids stored in block file headers.
const (
	IDJSON    uint8 = 1
	IDGoJSON  uint8 = 2
	IDMsgpack uint8 = 3
)

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "go-json":
		return GoJSON{}, true
	case "msgpack":
		return Msgpack{}, true
	default:
		return nil, false
	}
}

// ByID returns a built-in codec by its header id.
func ByID(id uint8) (Codec, bool) {
	switch id {
	case IDJSON:
		return JSON{}, true
	case IDGoJSON:
		return GoJSON{}, true
	case IDMsgpack:
		return Msgpack{}, true
	default:
		return nil, false
	}
}

// IDOf returns the header id of a built-in codec.
func IDOf(c Codec) (uint8, bool) {
	switch c.Name() {
	case "json":
		return IDJSON, true
	case "go-json":
		return IDGoJSON, true
	case "msgpack":
		return IDMsgpack, true
	default:
		return 0, false
	}
}

// MustMarshal is a helper for internal tests.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}
