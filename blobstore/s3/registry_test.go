package s3

import (
	"context"
	"sync"
	"testing"

	"github.com/hupe1980/hfabric/publish"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Register(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(newMockDDBClient(), "hf-versions")

	require.NoError(t, reg.Register(ctx, "hadith", "2024.1", "sha256:aaa"))
	// same digest is idempotent
	require.NoError(t, reg.Register(ctx, "hadith", "2024.1", "sha256:aaa"))

	err := reg.Register(ctx, "hadith", "2024.1", "sha256:bbb")
	require.ErrorIs(t, err, publish.ErrVersionConflict)

	digest, ok, err := reg.Lookup(ctx, "hadith", "2024.1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "sha256:aaa", digest)

	_, ok, err = reg.Lookup(ctx, "hadith", "2025.1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRegistry_Versions(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(newMockDDBClient(), "hf-versions")

	require.NoError(t, reg.Register(ctx, "hadith", "2024.2", "d2"))
	require.NoError(t, reg.Register(ctx, "hadith", "2024.1", "d1"))
	require.NoError(t, reg.Register(ctx, "other", "1", "x"))

	vs, err := reg.Versions(ctx, "hadith")
	require.NoError(t, err)
	require.Len(t, vs, 2)
	assert.Equal(t, "2024.1", vs[0].Version)
	assert.Equal(t, "d1", vs[0].Digest)
	assert.False(t, vs[0].RegisteredAt.IsZero())
	assert.Equal(t, "2024.2", vs[1].Version)
}

func TestRegistry_ConcurrentPublishers(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(newMockDDBClient(), "hf-versions")

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			digest := "even"
			if i%2 == 1 {
				digest = "odd"
			}
			errs[i] = reg.Register(ctx, "hadith", "2024.1", digest)
		}()
	}
	wg.Wait()

	winner, ok, err := reg.Lookup(ctx, "hadith", "2024.1")
	require.NoError(t, err)
	require.True(t, ok)
	for i, err := range errs {
		digest := "even"
		if i%2 == 1 {
			digest = "odd"
		}
		if digest == winner {
			assert.NoError(t, err)
		} else {
			assert.ErrorIs(t, err, publish.ErrVersionConflict)
		}
	}
}
