// Package builder produces HF packages from raw scraped records.
//
// Build reads every *.ndjson, *.jsonl and *.json file (optionally zstd
// compressed, *.zst) of an input directory, validates and deduplicates the
// records, parses narrator chains and writes the corpus tables, feature
// columns, text indexes, TF-IDF matrix, graph and finally meta.json.
//
// Output is staged in a sibling temporary directory and renamed onto the
// target only after every file, including the manifest, has been written
// and fsynced. A failed build leaves the target untouched; a successful one
// replaces any previous package wholesale.
//
// Records that fail validation are skipped, not fatal. They are counted per
// reason in the BuildSummary and in the manifest; a build with no valid
// records fails with ErrNoValidRecords.
package builder
