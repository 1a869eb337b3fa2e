// Package hash provides the CRC32-Castagnoli checksums used for block file
// payloads and object store uploads.
//
// For one-shot checksums:
//
//	checksum := hash.CRC32C(data)
//
// For streaming checksums:
//
//	h := hash.NewCRC32C()
//	h.Write(chunk1)
//	h.Write(chunk2)
//	checksum := h.Sum32()
//
// hash/crc32 uses SSE4.2 or the ARM CRC extension when available.
package hash
