// Package lexical implements the text index: one inverted index per
// language with Roaring bitmap postings over corpus ordinals.
//
// Scoring is term overlap. A document scores the number of distinct query
// terms present in its token set; ties are broken by corpus order. Under
// MatchPrefix or MatchSubstring a query term is present when any vocabulary
// term it expands to is present.
//
//	b := lexical.NewBuilder(model.English, rows)
//	b.Add(0, "Allah's mercy extends to all creatures")
//	idx := b.Build()
//	matches, err := idx.Search("mercy", lexical.MatchExact, 10)
//
// Search across several indexes (lang=both) sums the per-index scores.
package lexical
