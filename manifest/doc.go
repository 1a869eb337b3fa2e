// Package manifest defines meta.json, the root document of an HF package.
//
// The manifest is written last by the builder and read first by the loader.
// It enumerates every data file of the package together with its row count
// and payload checksum, so a loader can validate a package from block file
// headers alone:
//
//	{
//	  "name": "hadith",
//	  "version": "2024.1",
//	  "format_version": 1,
//	  "collections": [{"name": "bukhari", "file": "corpus/bukhari.hfb", "rows": 7563}],
//	  "features": {"grade": {"type": "string", "file": "features/grade.hfb", "rows": 7563}},
//	  "indexes": {"tfidf": {"file": "indexes/tfidf.hfb", "rows": 7563}},
//	  "node_count": 7563,
//	  "max_chain_length": 12,
//	  "content_digest": "sha256:..."
//	}
//
// The content digest covers file names and payload checksums in sorted order,
// so two builds of the same input produce the same digest.
package manifest
