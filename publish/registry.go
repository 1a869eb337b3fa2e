package publish

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// ErrVersionConflict is returned when a version tag is already bound to a
// different content digest.
var ErrVersionConflict = errors.New("version already published with different content")

// Version is a registered package version.
type Version struct {
	Name         string
	Version      string
	Digest       string
	RegisteredAt time.Time
}

// Registry binds package versions to content digests.
type Registry interface {
	// Register binds version of name to digest. It is idempotent for the
	// same digest and fails with ErrVersionConflict otherwise.
	Register(ctx context.Context, name, version, digest string) error
	// Lookup returns the digest bound to a version.
	Lookup(ctx context.Context, name, version string) (digest string, ok bool, err error)
	// Versions lists the registered versions of a package.
	Versions(ctx context.Context, name string) ([]Version, error)
}

// MemoryRegistry is an in-process Registry.
type MemoryRegistry struct {
	mu       sync.Mutex
	versions map[string]map[string]Version
}

var _ Registry = (*MemoryRegistry)(nil)

// NewMemoryRegistry creates an empty registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{versions: make(map[string]map[string]Version)}
}

func (r *MemoryRegistry) Register(_ context.Context, name, version, digest string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	byVersion, ok := r.versions[name]
	if !ok {
		byVersion = make(map[string]Version)
		r.versions[name] = byVersion
	}
	if v, ok := byVersion[version]; ok {
		if v.Digest == digest {
			return nil
		}
		return fmt.Errorf("%w: %s@%s is registered with digest %s", ErrVersionConflict, name, version, v.Digest)
	}
	byVersion[version] = Version{Name: name, Version: version, Digest: digest, RegisteredAt: time.Now().UTC()}
	return nil
}

func (r *MemoryRegistry) Lookup(_ context.Context, name, version string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.versions[name][version]
	return v.Digest, ok, nil
}

func (r *MemoryRegistry) Versions(_ context.Context, name string) ([]Version, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Version, 0, len(r.versions[name]))
	for _, v := range r.versions[name] {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}
