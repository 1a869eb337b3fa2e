// Package isnad extracts narrator chains from hadith text and derives the
// identity keys used to deduplicate narrators.
//
// # Chain grammar
//
// A chain is a sequence of names separated by transmission connectives
// ("حدثنا", "أخبرنا", "عن", "قال", ... and the English "narrated", "said",
// "from", "told us", "on the authority of", ...). Parsing stops at the first
// phrase that hands over to the Prophet ("قال رسول الله", "the Prophet", ...).
// A comma or colon ends the current name; words after it are ignored until
// the next connective.
//
//	ParseChain("A said B said C") // [A B C]
//
// Parsing is best effort. A chain that yields no names is reported as
// unparseable and the caller leaves the hadith without a chain.
//
// # Narrator identity
//
// Key folds a spelling to its identity key. Resolver merges spellings with
// equal keys and keeps the audit trail (every alias, the chosen canonical
// spelling). Near-duplicates with different keys are NOT merged.
package isnad
