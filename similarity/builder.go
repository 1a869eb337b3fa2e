package similarity

import (
	"math"
	"sort"

	"github.com/hupe1980/hfabric/model"
	"github.com/hupe1980/hfabric/text"
)

// Builder collects term counts per node. Nodes must be added in corpus
// order. It is not safe for concurrent use.
type Builder struct {
	ids  []string
	docs []map[string]int
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Add appends a node with its Arabic and English text.
func (b *Builder) Add(id, arabic, english string) {
	counts := make(map[string]int)
	for _, t := range text.MustTokenize(model.Arabic, arabic) {
		counts[t]++
	}
	for _, t := range text.MustTokenize(model.English, english) {
		counts[t]++
	}
	b.ids = append(b.ids, id)
	b.docs = append(b.docs, counts)
}

// Build computes IDF over all added nodes and returns the matrix.
func (b *Builder) Build() *Matrix {
	df := make(map[string]int)
	nnz := 0
	for _, d := range b.docs {
		for t := range d {
			df[t]++
		}
		nnz += len(d)
	}

	terms := make([]string, 0, len(df))
	for t := range df {
		terms = append(terms, t)
	}
	sort.Strings(terms)

	n := float64(len(b.docs))
	col := make(map[string]uint32, len(terms))
	idf := make([]float32, len(terms))
	for i, t := range terms {
		col[t] = uint32(i)
		idf[i] = float32(math.Log((1+n)/(1+float64(df[t]))) + 1)
	}

	indptr := make([]uint32, 1, len(b.docs)+1)
	indices := make([]uint32, 0, nnz)
	values := make([]float32, 0, nnz)
	for _, d := range b.docs {
		start := len(indices)
		for t := range d {
			indices = append(indices, col[t])
		}
		row := indices[start:]
		sort.Slice(row, func(i, j int) bool { return row[i] < row[j] })

		var norm float64
		ws := make([]float64, len(row))
		for i, c := range row {
			w := float64(d[terms[c]]) * float64(idf[c])
			ws[i] = w
			norm += w * w
		}
		norm = math.Sqrt(norm)
		for _, w := range ws {
			values = append(values, float32(w/norm))
		}
		indptr = append(indptr, uint32(len(indices)))
	}

	return newMatrix(b.ids, terms, idf, indptr, indices, values)
}
