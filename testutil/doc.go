// Package testutil provides testing utilities for hfabric.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for writing raw scraper files, building tiny
// packages in a temporary directory and generating reproducible random
// corpora.
//
// # Fixture Packages
//
//	dir := testutil.BuildPackage(t, testutil.MercyRecords()...)
//	hf, _ := hfabric.Open(ctx, hfabric.Local(dir))
//
// # Random Corpora
//
//	rng := testutil.NewRNG(seed)
//	recs := rng.Records("bukhari", 500)
package testutil
