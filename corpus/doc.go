// Package corpus holds the corpus tables and feature columns of an HF package.
//
// A package stores one table per collection under corpus/<collection>.hfb.
// Tables are concatenated in collection name order to form the global
// corpus order; a record's ordinal is its position in that order. Feature
// columns are dense per-ordinal arrays with a Roaring presence bitmap, so a
// column may be sparse.
package corpus
