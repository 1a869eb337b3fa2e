// Package similarity implements TF-IDF content similarity between corpus
// nodes.
//
// Each node is a sparse vector over the combined Arabic and English
// vocabulary. A term weighs its raw count times the smoothed inverse
// document frequency
//
//	idf(t) = ln((1+N) / (1+df(t))) + 1
//
// and rows are L2-normalized, so cosine similarity is a dot product. The
// matrix is stored row-major (CSR); a column-major view is rebuilt on load
// and drives Similar, which only visits rows sharing a term with the query.
// A node without tokens has a zero vector and scores 0 against everything.
package similarity
