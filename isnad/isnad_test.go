package isnad

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChainEnglish(t *testing.T) {
	names, ok := ParseChain("A said B said C")
	require.True(t, ok)
	assert.Equal(t, []string{"A", "B", "C"}, names)
}

func TestParseChainStopsAtProphet(t *testing.T) {
	names, ok := ParseChain("Narrated Abu Huraira: Allah's Messenger said, \"Religion is easy.\"")
	require.True(t, ok)
	assert.Equal(t, []string{"Abu Huraira"}, names)
}

func TestParseChainArabic(t *testing.T) {
	chain := "حَدَّثَنَا الْحُمَيْدِيُّ، قَالَ حَدَّثَنَا سُفْيَانُ، عَنْ يَحْيَى بْنِ سَعِيدٍ، عَنْ عُمَرَ بْنِ الْخَطَّابِ رَضِيَ اللَّهُ عَنْهُ، قَالَ رَسُولُ اللَّهِ"
	names, ok := ParseChain(chain)
	require.True(t, ok)
	assert.Equal(t, []string{"الحميدي", "سفيان", "يحيي بن سعيد", "عمر بن الخطاب"}, names)
}

func TestParseChainGluedConjunction(t *testing.T) {
	names, ok := ParseChain("حدثنا مالك وحدثنا نافع")
	require.True(t, ok)
	assert.Equal(t, []string{"مالك", "نافع"}, names)
}

func TestParseChainUnparseable(t *testing.T) {
	for _, in := range []string{"", "   ", "قال رسول الله", "said from"} {
		names, ok := ParseChain(in)
		assert.False(t, ok, in)
		assert.Empty(t, names, in)
	}
}

func TestParseChainDropsHonorificSegments(t *testing.T) {
	names, ok := ParseChain("Bilal (RA), said Anas")
	require.True(t, ok)
	assert.Equal(t, []string{"Bilal", "Anas"}, names)

	names, ok = ParseChain("عن أنس، قال رضي الله عنه")
	require.True(t, ok)
	assert.Equal(t, []string{"انس"}, names)
}

func TestExtractIsnad(t *testing.T) {
	got := ExtractIsnad("حدثنا مالك عن نافع قال رسول الله صلى الله عليه وسلم إنما الأعمال")
	assert.Equal(t, "حدثنا مالك عن نافع", got)

	assert.Empty(t, ExtractIsnad("إنما الأعمال بالنيات"))
}

func TestKey(t *testing.T) {
	assert.Equal(t, Key("عُمَرَ بْنِ الْخَطَّابِ"), Key("عمر  بن الخطاب رضي الله عنه"))
	assert.Equal(t, "abu huraira", Key("Abu Huraira (RA)"))
	assert.Equal(t, Key("ABU HURAIRA"), Key("abu huraira"))
	assert.NotEqual(t, Key("Abu Huraira"), Key("Abu Hurairah"))
	assert.Empty(t, Key("رضي الله عنه"))
}

func TestKeyKeepsBareRa(t *testing.T) {
	assert.Equal(t, "ra", Key("Ra"))
	assert.Equal(t, "abu ra", Key("Abu Ra (ra)"))
	assert.Equal(t, "malik", Key("Malik (RA)"))
	assert.Equal(t, "malik", Key("Malik(Ra)"))
	assert.Equal(t, "malik rafi", Key("Malik (Rafi)"))

	names, ok := ParseChain("Ra said Malik (RA) said Nafi")
	require.True(t, ok)
	assert.Equal(t, []string{"Ra", "Malik", "Nafi"}, names)
}

func TestResolver(t *testing.T) {
	r := NewResolver()

	a, ok := r.Resolve("Abu Huraira")
	require.True(t, ok)
	b, _ := r.Resolve("abu huraira")
	c, _ := r.Resolve("abu huraira")
	d, _ := r.Resolve("Nafi")
	_, ok = r.Resolve("  ")
	assert.False(t, ok)

	assert.Equal(t, a, b)
	assert.Equal(t, a, c)
	assert.NotEqual(t, a, d)
	assert.Equal(t, 2, r.Len())

	ns := r.Narrators()
	assert.Equal(t, "abu huraira", ns[a].Canonical)
	assert.Equal(t, []string{"Abu Huraira", "abu huraira"}, ns[a].Aliases)
	assert.Equal(t, "Nafi", ns[d].Canonical)

	aliases := r.Aliases()
	require.Len(t, aliases, 3)
	assert.Equal(t, "Nafi", aliases[0].Canonical)
	assert.Equal(t, Alias{Spelling: "Abu Huraira", Key: "abu huraira", Canonical: "abu huraira", Count: 1}, aliases[1])
}

func TestCanonicalTieBreak(t *testing.T) {
	assert.Equal(t, "Anas", canonical(map[string]int{"anas": 1, "Anas": 1}))
}
