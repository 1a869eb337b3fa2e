// Package blobstore provides storage abstraction for immutable package files.
//
// A BlobStore is rooted at a package directory (or bucket prefix); blob names
// are slash-separated paths relative to that root, e.g. "indexes/tfidf.hfb".
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local file system, mmap-backed reads, atomic writes
//   - MemoryStore: in-memory, for tests
//   - CachingStore: block cache in front of a remote store
//   - s3.Store, minio.Store: object storage with range reads
package blobstore
