package corpus

import (
	"testing"

	"github.com/hupe1980/hfabric/internal/blockfile"
	"github.com/hupe1980/hfabric/manifest"
	"github.com/hupe1980/hfabric/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortCorpusOrder(t *testing.T) {
	recs := []model.Record{
		{ID: "muslim_1_1", Collection: "muslim", Book: 1, Number: 1},
		{ID: "bukhari_2_1", Collection: "bukhari", Book: 2, Number: 1},
		{ID: "bukhari_1_10", Collection: "bukhari", Book: 1, Number: 10},
		{ID: "bukhari_1_9", Collection: "bukhari", Book: 1, Number: 9},
	}
	Sort(recs)

	var ids []string
	for _, r := range recs {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"bukhari_1_9", "bukhari_1_10", "bukhari_2_1", "muslim_1_1"}, ids)
}

func TestLayout(t *testing.T) {
	l := NewLayout([]string{"abu_dawud", "bukhari", "muslim"}, []int{2, 3, 1})
	assert.Equal(t, 6, l.Len())

	base, ok := l.Base("bukhari")
	require.True(t, ok)
	assert.Equal(t, model.Ordinal(2), base)
	_, ok = l.Base("tirmidhi")
	assert.False(t, ok)

	for ord, want := range []string{"abu_dawud", "abu_dawud", "bukhari", "bukhari", "bukhari", "muslim"} {
		got, ok := l.Locate(model.Ordinal(ord))
		require.True(t, ok)
		assert.Equal(t, want, got, "ordinal %d", ord)
	}
	_, ok = l.Locate(6)
	assert.False(t, ok)
}

func TestTableRoundTrip(t *testing.T) {
	recs := []model.Record{
		{ID: "bukhari_1_1", Collection: "bukhari", Book: 1, Number: 1, Arabic: "إِنَّمَا الأَعْمَالُ بِالنِّيَّاتِ", English: "Actions are judged by intentions"},
		{ID: "bukhari_1_2", Collection: "bukhari", Book: 1, Number: 2, English: "Revelation came to him"},
	}
	data, h, err := EncodeTable(NewTable("bukhari", 5, recs), blockfile.CompressionZstd)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), h.Rows)

	tbl, err := DecodeTable(data, 5)
	require.NoError(t, err)
	assert.Equal(t, "bukhari", tbl.Collection())
	assert.Equal(t, 2, tbl.Len())

	rec, ok := tbl.Get("bukhari_1_1")
	require.True(t, ok)
	assert.Equal(t, recs[0].Arabic, rec.Arabic)

	ord, ok := tbl.Ordinal("bukhari_1_2")
	require.True(t, ok)
	assert.Equal(t, model.Ordinal(6), ord)

	rec, ok = tbl.At(6)
	require.True(t, ok)
	assert.Equal(t, "bukhari_1_2", rec.ID)

	_, ok = tbl.At(4)
	assert.False(t, ok)
	_, ok = tbl.Get("bukhari_9_9")
	assert.False(t, ok)
}

func TestDecodeTableCorrupt(t *testing.T) {
	data, _, err := EncodeTable(NewTable("x", 0, []model.Record{{ID: "x_1_1"}}), blockfile.CompressionNone)
	require.NoError(t, err)
	data[len(data)-1] ^= 0xff
	_, err = DecodeTable(data, 0)
	assert.ErrorIs(t, err, blockfile.ErrCorrupt)
}

func TestColumn(t *testing.T) {
	c, err := NewColumn(FeatureNarratorCount, manifest.TypeInt, 4)
	require.NoError(t, err)
	require.NoError(t, c.Set(0, 3))
	require.NoError(t, c.Set(2, int64(0)))
	assert.Error(t, c.Set(1, "three"))
	assert.Error(t, c.Set(4, 1))
	assert.Equal(t, 2, c.Count())

	data, h, err := EncodeColumn(c, blockfile.CompressionLZ4)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), h.Rows)

	got, err := DecodeColumn(data)
	require.NoError(t, err)
	assert.Equal(t, manifest.TypeInt, got.Type())

	v, ok := got.Value(0)
	assert.True(t, ok)
	assert.Equal(t, int64(3), v)

	v, ok = got.Value(2)
	assert.True(t, ok)
	assert.Equal(t, int64(0), v)

	_, ok = got.Value(1)
	assert.False(t, ok)
	_, ok = got.Value(99)
	assert.False(t, ok)
}

func TestColumnTypes(t *testing.T) {
	s, err := NewColumn(FeatureGrade, manifest.TypeString, 2)
	require.NoError(t, err)
	require.NoError(t, s.Set(1, "Sahih"))
	assert.Error(t, s.Set(0, true))

	b, err := NewColumn(FeatureHasEnglish, manifest.TypeBool, 2)
	require.NoError(t, err)
	require.NoError(t, b.Set(0, false))
	require.NoError(t, b.Set(1, true))

	for _, c := range []*Column{s, b} {
		data, _, err := EncodeColumn(c, blockfile.CompressionZstd)
		require.NoError(t, err)
		got, err := DecodeColumn(data)
		require.NoError(t, err)
		assert.Equal(t, c.Count(), got.Count())
	}

	_, err = NewColumn("x", "float", 1)
	assert.Error(t, err)
}
