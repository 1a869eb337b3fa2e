package lexical

import (
	"testing"

	"github.com/hupe1980/hfabric/internal/blockfile"
	"github.com/hupe1980/hfabric/model"
	"github.com/hupe1980/hfabric/text"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildEnglish(t *testing.T, docs ...string) *Index {
	t.Helper()
	b := NewBuilder(model.English, len(docs))
	for i, d := range docs {
		require.NoError(t, b.Add(model.Ordinal(i), d))
	}
	return b.Build()
}

func ordinals(ms []Match) []model.Ordinal {
	out := make([]model.Ordinal, len(ms))
	for i, m := range ms {
		out[i] = m.Ordinal
	}
	return out
}

func TestSearchTermOverlap(t *testing.T) {
	ix := buildEnglish(t,
		"Allah's mercy extends to all creatures",
		"The Prophet spoke of mercy and patience",
		"",
		"Patience and mercy, mercy and patience",
	)

	ms, err := ix.Search("mercy", MatchExact, 5)
	require.NoError(t, err)
	assert.Equal(t, []model.Ordinal{0, 1, 3}, ordinals(ms))
	for _, m := range ms {
		assert.Equal(t, 1, m.Score)
	}

	ms, err = ix.Search("mercy patience mercy", MatchExact, 5)
	require.NoError(t, err)
	assert.Equal(t, []Match{{1, 2}, {3, 2}, {0, 1}}, ms)
}

func TestSearchLimitAndMonotonicity(t *testing.T) {
	ix := buildEnglish(t, "mercy", "mercy", "mercy", "mercy patience")

	prev := []model.Ordinal{}
	for limit := 1; limit <= 5; limit++ {
		ms, err := ix.Search("mercy patience", MatchExact, limit)
		require.NoError(t, err)
		got := ordinals(ms)
		assert.LessOrEqual(t, len(got), limit)
		assert.Equal(t, prev, got[:len(prev)])
		prev = got
	}
	assert.Equal(t, []model.Ordinal{3, 0, 1, 2}, prev)

	_, err := ix.Search("mercy", MatchExact, 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = ix.Search("mercy", MatchMode(9), 1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSearchEmptyQuery(t *testing.T) {
	ix := buildEnglish(t, "mercy")
	for _, q := range []string{"", "   ", "the of and", "!!"} {
		ms, err := ix.Search(q, MatchExact, 3)
		require.NoError(t, err)
		assert.Empty(t, ms, "query %q", q)
	}
}

func TestMatchModes(t *testing.T) {
	ix := buildEnglish(t, "prayer", "prayers at night", "prophet", "unprayerful")

	ms, err := ix.Search("pray", MatchExact, 10)
	require.NoError(t, err)
	assert.Empty(t, ms)

	ms, err = ix.Search("pray", MatchPrefix, 10)
	require.NoError(t, err)
	assert.Equal(t, []model.Ordinal{0, 1}, ordinals(ms))

	ms, err = ix.Search("pray", MatchSubstring, 10)
	require.NoError(t, err)
	assert.Equal(t, []model.Ordinal{0, 1, 3}, ordinals(ms))

	assert.Equal(t, []string{"prayer", "prayers"}, ix.Expand("pray", MatchPrefix))

	bm, err := ix.Lookup("PROPHET", MatchExact)
	require.NoError(t, err)
	assert.Equal(t, []uint32{2}, bm.ToArray())
	assert.Equal(t, 1, ix.DocFreq("prophet"))

	terms, err := ix.Terms("Pray PRAYER", MatchPrefix)
	require.NoError(t, err)
	assert.Equal(t, []string{"prayer", "prayers"}, terms)
	terms, err = ix.Terms("pray", MatchSubstring)
	require.NoError(t, err)
	assert.Equal(t, []string{"prayer", "prayers", "unprayerful"}, terms)
	terms, err = ix.Terms("   ", MatchExact)
	require.NoError(t, err)
	assert.Empty(t, terms)
	_, err = ix.Terms("pray", MatchMode(9))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestArabicNormalizedSearch(t *testing.T) {
	b := NewBuilder(model.Arabic, 2)
	require.NoError(t, b.Add(0, "إِنَّمَا الأَعْمَالُ بِالنِّيَّاتِ"))
	require.NoError(t, b.Add(1, "حدثنا الحميدي"))
	ix := b.Build()

	ms, err := ix.Search("الاعمال", MatchExact, 5)
	require.NoError(t, err)
	assert.Equal(t, []model.Ordinal{0}, ordinals(ms))
}

func TestSearchBothSumsLanguages(t *testing.T) {
	ar := NewBuilder(model.Arabic, 2)
	require.NoError(t, ar.Add(0, "الرحمة"))
	require.NoError(t, ar.Add(1, "الصبر"))
	en := NewBuilder(model.English, 2)
	require.NoError(t, en.Add(0, "mercy"))
	require.NoError(t, en.Add(1, "mercy"))

	ms, err := Search("mercy الرحمة", MatchExact, 5, ar.Build(), en.Build())
	require.NoError(t, err)
	assert.Equal(t, []Match{{0, 2}, {1, 1}}, ms)
}

func TestUnsupportedLanguage(t *testing.T) {
	b := NewBuilder(model.Language("latin"), 1)
	assert.ErrorIs(t, b.Add(0, "x"), text.ErrUnsupportedLanguage)
}

func TestEncodeDecode(t *testing.T) {
	ix := buildEnglish(t, "mercy and patience", "", "patience")
	data, h, err := Encode(ix, blockfile.CompressionZstd)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), h.Rows)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, model.English, got.Language())
	assert.Equal(t, 3, got.Rows())
	assert.Equal(t, ix.VocabularySize(), got.VocabularySize())

	ms, err := got.Search("patience", MatchExact, 10)
	require.NoError(t, err)
	assert.Equal(t, []model.Ordinal{0, 2}, ordinals(ms))
}

func TestParseMatchMode(t *testing.T) {
	m, err := ParseMatchMode("Prefix")
	require.NoError(t, err)
	assert.Equal(t, MatchPrefix, m)
	assert.Equal(t, "substring", MatchSubstring.String())
	_, err = ParseMatchMode("fuzzy")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
