package similarity

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/hupe1980/hfabric/model"
)

var (
	// ErrNotFound is returned for an identifier that is not in the matrix.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument is returned for a non-positive topk.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Matrix is an immutable L2-normalized TF-IDF matrix.
type Matrix struct {
	ids   []string
	rowOf map[string]int
	terms []string
	idf   []float32

	// CSR rows.
	indptr  []uint32
	indices []uint32
	values  []float32

	// CSC view over the same entries.
	colptr  []uint32
	colRows []uint32
	colVals []float32
}

func newMatrix(ids, terms []string, idf []float32, indptr, indices []uint32, values []float32) *Matrix {
	m := &Matrix{
		ids:     ids,
		rowOf:   make(map[string]int, len(ids)),
		terms:   terms,
		idf:     idf,
		indptr:  indptr,
		indices: indices,
		values:  values,
	}
	for i, id := range ids {
		m.rowOf[id] = i
	}
	m.buildColumns()
	return m
}

func (m *Matrix) buildColumns() {
	m.colptr = make([]uint32, len(m.terms)+1)
	for _, c := range m.indices {
		m.colptr[c+1]++
	}
	for i := 1; i < len(m.colptr); i++ {
		m.colptr[i] += m.colptr[i-1]
	}
	next := append([]uint32(nil), m.colptr[:len(m.terms)]...)
	m.colRows = make([]uint32, len(m.indices))
	m.colVals = make([]float32, len(m.indices))
	for r := 0; r < len(m.ids); r++ {
		for k := m.indptr[r]; k < m.indptr[r+1]; k++ {
			c := m.indices[k]
			m.colRows[next[c]] = uint32(r)
			m.colVals[next[c]] = m.values[k]
			next[c]++
		}
	}
}

// Rows returns the number of nodes.
func (m *Matrix) Rows() int { return len(m.ids) }

// VocabularySize returns the number of terms.
func (m *Matrix) VocabularySize() int { return len(m.terms) }

// NNZ returns the number of stored entries.
func (m *Matrix) NNZ() int { return len(m.values) }

// IDF returns the inverse document frequency of term.
func (m *Matrix) IDF(term string) (float64, bool) {
	i := sort.SearchStrings(m.terms, term)
	if i == len(m.terms) || m.terms[i] != term {
		return 0, false
	}
	return float64(m.idf[i]), true
}

// Cosine returns the cosine similarity of two nodes.
func (m *Matrix) Cosine(a, b string) (float64, error) {
	ra, ok := m.rowOf[a]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrNotFound, a)
	}
	rb, ok := m.rowOf[b]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrNotFound, b)
	}

	// Row indices are sorted; merge.
	i, iEnd := m.indptr[ra], m.indptr[ra+1]
	j, jEnd := m.indptr[rb], m.indptr[rb+1]
	var dot float64
	for i < iEnd && j < jEnd {
		switch {
		case m.indices[i] < m.indices[j]:
			i++
		case m.indices[i] > m.indices[j]:
			j++
		default:
			dot += float64(m.values[i]) * float64(m.values[j])
			i++
			j++
		}
	}
	return clamp(dot), nil
}

// Similar returns up to topk nodes most similar to id, excluding id itself,
// ordered by score descending then identifier ascending. Only nodes with a
// positive score are returned.
func (m *Matrix) Similar(id string, topk int) ([]model.Scored, error) {
	if topk <= 0 {
		return nil, fmt.Errorf("%w: topk must be positive, got %d", ErrInvalidArgument, topk)
	}
	q, ok := m.rowOf[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}

	scores := make(map[uint32]float64)
	for k := m.indptr[q]; k < m.indptr[q+1]; k++ {
		c, w := m.indices[k], float64(m.values[k])
		for p := m.colptr[c]; p < m.colptr[c+1]; p++ {
			if r := m.colRows[p]; r != uint32(q) {
				scores[r] += w * float64(m.colVals[p])
			}
		}
	}

	out := make([]model.Scored, 0, len(scores))
	for r, s := range scores {
		if s > 0 {
			out = append(out, model.Scored{ID: m.ids[r], Score: clamp(s)})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > topk {
		out = out[:topk]
	}
	return out, nil
}

func clamp(s float64) float64 {
	return math.Min(s, 1)
}
