// Package graph implements the isnād/rāwī graph: deduplicated narrators,
// the chain of every hadith with a parseable isnād, and the narration edges
// derived from those chains.
//
// An edge A → B means "A reports from B" and carries the hadith it was read
// from, so the same pair may appear once per chain. Chains are stored as
// parsed; a chain that repeats a narrator produces a cycle, which is kept.
// Every traversal is bounded by the maximum chain length recorded at build
// time.
package graph
