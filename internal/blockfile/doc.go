// Package blockfile implements the .hfb container used for every data file
// of a package.
//
// Layout (little endian):
//
//	0  magic "HFB1"       4 bytes
//	4  format version     uint16
//	6  compression        uint8 (0 none, 1 lz4, 2 zstd)
//	7  codec id           uint8 (see codec.IDOf)
//	8  row count          uint64
//	16 raw length         uint64 (encoded payload before compression)
//	24 payload length     uint64 (bytes following the header)
//	32 CRC32-C of payload uint32
//	36 reserved           uint32
//	40 payload
//
// The header alone is enough to validate row counts, so a loader can check a
// package without reading payloads. The checksum is verified on Decode.
package blockfile
