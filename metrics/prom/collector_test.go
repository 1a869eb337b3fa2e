package prom

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hupe1980/hfabric"
	"github.com/hupe1980/hfabric/model"
	hftestutil "github.com/hupe1980/hfabric/testutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.RecordMaterialize("indexes/tfidf", 2048, time.Millisecond, nil)
	c.RecordMaterialize("indexes/tfidf", 0, time.Millisecond, errors.New("x"))
	c.RecordSearch("english", 4, time.Millisecond, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.materialized.WithLabelValues("indexes/tfidf", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.materialized.WithLabelValues("indexes/tfidf", "error")))
	assert.Equal(t, 2048.0, testutil.ToFloat64(c.bytesRead.WithLabelValues("indexes/tfidf")))

	n, err := testutil.GatherAndCount(reg, "hfabric_operation_latency_seconds")
	require.NoError(t, err)
	assert.Equal(t, 3, n) // materialize/success, materialize/error, search/success
}

func TestCollectorWithPackage(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	c := New(reg)

	dir := hftestutil.BuildPackage(t, hftestutil.MercyRecords()...)
	hf, err := hfabric.Open(ctx, hfabric.Local(dir), hfabric.WithMetricsCollector(c))
	require.NoError(t, err)
	defer hf.Close()

	_, err = hf.Search(ctx, "mercy", model.English)
	require.NoError(t, err)
	_, err = hf.Similar(ctx, "mercy_1_1")
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.materialized.WithLabelValues("indexes/tfidf", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.materialized.WithLabelValues("indexes/text_english", "success")))
}
