package blockfile

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/hupe1980/hfabric/codec"
	"github.com/hupe1980/hfabric/internal/hash"
)

const (
	// HeaderSize is the fixed header length.
	HeaderSize = 40
	// Version is the current block format version.
	Version uint16 = 1
)

var magic = [4]byte{'H', 'F', 'B', '1'}

var (
	// ErrBadMagic is returned when the data is not a block file.
	ErrBadMagic = errors.New("blockfile: bad magic")
	// ErrUnsupportedVersion is returned for unknown format versions.
	ErrUnsupportedVersion = errors.New("blockfile: unsupported version")
	// ErrCorrupt is returned for truncated data or checksum mismatches.
	ErrCorrupt = errors.New("blockfile: corrupt")
)

// Header is the decoded fixed header of a block file.
type Header struct {
	Version     uint16
	Compression Compression
	Codec       uint8
	Rows        uint64
	RawLen      uint64
	PayloadLen  uint64
	Checksum    uint32
}

// Size returns the total file size described by the header.
func (h Header) Size() int64 { return int64(HeaderSize) + int64(h.PayloadLen) }

func (h Header) put(b []byte) {
	copy(b[0:4], magic[:])
	binary.LittleEndian.PutUint16(b[4:6], h.Version)
	b[6] = byte(h.Compression)
	b[7] = h.Codec
	binary.LittleEndian.PutUint64(b[8:16], h.Rows)
	binary.LittleEndian.PutUint64(b[16:24], h.RawLen)
	binary.LittleEndian.PutUint64(b[24:32], h.PayloadLen)
	binary.LittleEndian.PutUint32(b[32:36], h.Checksum)
	binary.LittleEndian.PutUint32(b[36:40], 0)
}

// ParseHeader decodes the first HeaderSize bytes of b.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("%w: short header (%d bytes)", ErrCorrupt, len(b))
	}
	if [4]byte(b[0:4]) != magic {
		return Header{}, fmt.Errorf("%w: %q", ErrBadMagic, b[0:4])
	}
	h := Header{
		Version:     binary.LittleEndian.Uint16(b[4:6]),
		Compression: Compression(b[6]),
		Codec:       b[7],
		Rows:        binary.LittleEndian.Uint64(b[8:16]),
		RawLen:      binary.LittleEndian.Uint64(b[16:24]),
		PayloadLen:  binary.LittleEndian.Uint64(b[24:32]),
		Checksum:    binary.LittleEndian.Uint32(b[32:36]),
	}
	if h.Version != Version {
		return Header{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	if h.Compression > CompressionZstd {
		return Header{}, fmt.Errorf("%w: unknown compression %d", ErrCorrupt, h.Compression)
	}
	if _, ok := codec.ByID(h.Codec); !ok {
		return Header{}, fmt.Errorf("%w: unknown codec %d", ErrCorrupt, h.Codec)
	}
	return h, nil
}

// Encode marshals v with c, compresses it and returns the complete file.
func Encode(v any, rows uint64, c codec.Codec, comp Compression) ([]byte, Header, error) {
	if c == nil {
		c = codec.Default
	}
	id, ok := codec.IDOf(c)
	if !ok {
		return nil, Header{}, fmt.Errorf("blockfile: codec %q has no id", c.Name())
	}
	raw, err := c.Marshal(v)
	if err != nil {
		return nil, Header{}, fmt.Errorf("blockfile: marshal: %w", err)
	}
	payload, used, err := compress(raw, comp)
	if err != nil {
		return nil, Header{}, fmt.Errorf("blockfile: compress: %w", err)
	}

	h := Header{
		Version:     Version,
		Compression: used,
		Codec:       id,
		Rows:        rows,
		RawLen:      uint64(len(raw)),
		PayloadLen:  uint64(len(payload)),
		Checksum:    hash.CRC32C(payload),
	}
	out := make([]byte, HeaderSize+len(payload))
	h.put(out)
	copy(out[HeaderSize:], payload)
	return out, h, nil
}

// Decode verifies data and unmarshals its payload into v.
func Decode(data []byte, v any) (Header, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return Header{}, err
	}
	payload := data[HeaderSize:]
	if uint64(len(payload)) != h.PayloadLen {
		return Header{}, fmt.Errorf("%w: payload length %d, header says %d", ErrCorrupt, len(payload), h.PayloadLen)
	}
	if sum := hash.CRC32C(payload); sum != h.Checksum {
		return Header{}, fmt.Errorf("%w: checksum mismatch (got %08x, want %08x)", ErrCorrupt, sum, h.Checksum)
	}
	raw, err := decompress(payload, h.Compression, h.RawLen)
	if err != nil {
		return Header{}, err
	}
	c, _ := codec.ByID(h.Codec)
	if err := c.Unmarshal(raw, v); err != nil {
		return Header{}, fmt.Errorf("%w: unmarshal: %v", ErrCorrupt, err)
	}
	return h, nil
}
