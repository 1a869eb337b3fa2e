// Package text implements the language-aware normalization and tokenization
// shared by the package builder and the query path.
//
// The same functions run at build time and at query time, so any change to
// their output is a format change and must bump TokenizerVersion.
//
// # Arabic
//
// NFKC, then diacritics (harakat, U+064B–U+065F, U+0670, U+06D6–U+06ED) and
// tatweel are removed, alef variants fold to bare alef, alef maqsura to ya,
// ta marbuta to ha, and whitespace collapses to single spaces.
//
// # English
//
// NFKC followed by Unicode case folding.
package text
