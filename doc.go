// Package hfabric builds and queries Hadith-Fabric (HF) packages: read-only,
// versioned bundles of a hadith corpus with precomputed search structures.
//
// A package is a directory (or a prefix in a blob store) holding a
// meta.json manifest and block files for the corpus tables, feature
// columns, per-language text indexes, a TF-IDF matrix and the narrator
// graph. Packages are built offline once and never mutated.
//
// # Quick Start
//
// Build a package from raw scraper output:
//
//	ctx := context.Background()
//	res, err := hfabric.Build(ctx, "./raw", "./pkg", builder.Options{Version: "2024.1"})
//	fmt.Println(res.Summary.Valid, res.Summary.Skipped)
//
// Open it locally, or from S3/MinIO:
//
//	hf, _ := hfabric.Open(ctx, hfabric.Local("./pkg"))
//	defer hf.Close()
//
//	store, _ := s3.New(ctx, "my-bucket", s3.WithPrefix("packages/bukhari/2024.1/"))
//	hf, _ := hfabric.Open(ctx, hfabric.Remote(store), hfabric.WithBlockCache(64<<20, 0))
//
// # Queries
//
//	rec, _ := hf.Get(ctx, "bukhari_1_1")
//	hits, _ := hf.Search(ctx, "mercy", model.English, hfabric.WithLimit(5))
//	hits, _ = hf.Similar(ctx, "bukhari_1_1", hfabric.WithTopK(3))
//	chain, _ := hf.Chain(ctx, "bukhari_1_1")
//	rawi, _ := hf.Rawi(ctx, "Malik")
//	v, ok, _ := hf.Feature(ctx, "narrator_count", "bukhari_1_1")
//
// # Integrity
//
// Open validates the manifest and the header of every listed data file
// (format, row count, checksum) without decoding payloads, and fails with a
// *PackageError on any mismatch. Payload checksums are verified when a
// structure is first materialized.
//
// # Concurrency
//
// An *HF is safe for unlimited concurrent readers. Each structure is
// materialized at most once per handle; concurrent first callers wait for
// the same construction. A failed construction is not cached.
//
// # Errors
//
// Query errors match ErrNotFound, ErrInvalidArgument or
// ErrUnsupportedLanguage via errors.Is. Open and integrity failures are
// *PackageError values matching ErrPackage.
package hfabric
