// Package publish uploads a built HF package to a blob store.
//
// Data files are uploaded first and meta.json last, so a reader that sees
// the manifest sees a complete package. An optional Registry binds each
// (name, version) to the package's content digest: republishing a version
// with different content fails with ErrVersionConflict.
package publish
