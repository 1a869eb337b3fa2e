package hfabric

import (
	"fmt"

	"github.com/hupe1980/hfabric/blobstore"
)

// Source locates a package.
type Source struct {
	store    blobstore.BlobStore
	location string
	remote   bool
}

// Local opens a package from a directory on the local file system. Data
// files are memory-mapped.
func Local(dir string) Source {
	return Source{store: blobstore.NewLocalStore(dir), location: dir}
}

// Remote opens a package from any blob store, e.g. S3 or MinIO. Blob names
// are relative to the package root.
func Remote(store blobstore.BlobStore) Source {
	return Source{store: store, location: fmt.Sprintf("%T", store), remote: true}
}

// String returns a human-readable location.
func (s Source) String() string { return s.location }
