// Package cache provides the byte-bounded block cache used by
// blobstore.CachingStore for remote packages.
package cache
