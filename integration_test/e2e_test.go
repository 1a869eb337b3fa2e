package integration_test

import (
	"context"
	"testing"

	"github.com/hupe1980/hfabric"
	"github.com/hupe1980/hfabric/blobstore"
	"github.com/hupe1980/hfabric/model"
	"github.com/hupe1980/hfabric/publish"
	"github.com/hupe1980/hfabric/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func corpus() []model.RawRecord {
	rng := testutil.NewRNG(7)
	recs := rng.Records("bukhari", 60)
	return append(recs, rng.Records("muslim", 30)...)
}

func TestE2E_PublishedPackageAnswersLikeLocal(t *testing.T) {
	ctx := context.Background()
	recs := corpus()
	dir := testutil.BuildPackage(t, recs...)

	mem := blobstore.NewMemoryStore()
	reg := publish.NewMemoryRegistry()
	res, err := publish.Publish(ctx, dir, mem, publish.Options{Registry: reg})
	require.NoError(t, err)
	require.NoError(t, publish.Verify(ctx, dir, mem))

	digest, ok, err := reg.Lookup(ctx, res.Name, res.Version)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, res.Digest, digest)

	local, err := hfabric.Open(ctx, hfabric.Local(dir))
	require.NoError(t, err)
	defer local.Close()

	remote, err := hfabric.Open(ctx, hfabric.Remote(mem), hfabric.WithBlockCache(1<<20, 4096))
	require.NoError(t, err)
	defer remote.Close()

	assert.Equal(t, local.Meta().ContentDigest, remote.Meta().ContentDigest)
	assert.Equal(t, len(recs), remote.Len())

	for _, r := range recs[:20] {
		want, err := local.Get(ctx, r.ID)
		require.NoError(t, err)
		got, err := remote.Get(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, want, got)

		wantSim, err := local.Similar(ctx, r.ID)
		require.NoError(t, err)
		gotSim, err := remote.Similar(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, wantSim, gotSim)

		wantChain, err := local.Chain(ctx, r.ID)
		require.NoError(t, err)
		gotChain, err := remote.Chain(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, wantChain, gotChain)
	}

	for _, q := range []string{"prayer", "mercy charity", "knowledge"} {
		want, err := local.Search(ctx, q, model.Both)
		require.NoError(t, err)
		got, err := remote.Search(ctx, q, model.Both)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	require.NoError(t, remote.Warm(ctx))
}

func TestE2E_RepublishSameVersionIsIdempotent(t *testing.T) {
	ctx := context.Background()
	dir := testutil.BuildPackage(t, corpus()...)

	reg := publish.NewMemoryRegistry()
	_, err := publish.Publish(ctx, dir, blobstore.NewMemoryStore(), publish.Options{Registry: reg})
	require.NoError(t, err)
	_, err = publish.Publish(ctx, dir, blobstore.NewMemoryStore(), publish.Options{Registry: reg})
	require.NoError(t, err)

	other := testutil.BuildPackage(t, testutil.MercyRecords()...)
	_, err = publish.Publish(ctx, other, blobstore.NewMemoryStore(), publish.Options{Registry: reg})
	assert.ErrorIs(t, err, hfabric.ErrVersionConflict)
}
