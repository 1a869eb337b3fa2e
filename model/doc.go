// Package model defines core types used throughout hfabric.
//
// # Identity
//
//   - Record.ID: stable string identifier "<collection>_<book>_<number>"
//   - Ordinal: dense, package-local position of a record in corpus order
//
// Identifiers are the only cross-reference key that survives a rebuild.
// Ordinals are recomputed on every build and must never be persisted
// outside the package that produced them.
//
// # Data Types
//
//   - Record: one hadith as stored in the corpus table
//   - RawRecord: the scraper-side shape consumed by the builder
//   - Scored, Hit: ranked engine and facade results
//   - Rawi, Edge: narrator graph entities
package model
