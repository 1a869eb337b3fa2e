package similarity

import (
	"fmt"

	"github.com/hupe1980/hfabric/codec"
	"github.com/hupe1980/hfabric/internal/blockfile"
)

type matrixFile struct {
	IDs     []string  `msgpack:"ids"`
	Terms   []string  `msgpack:"terms"`
	IDF     []float32 `msgpack:"idf"`
	Indptr  []uint32  `msgpack:"indptr"`
	Indices []uint32  `msgpack:"indices"`
	Values  []float32 `msgpack:"values"`
}

// Encode serializes m as a block file. The column view is not stored.
func Encode(m *Matrix, comp blockfile.Compression) ([]byte, blockfile.Header, error) {
	f := matrixFile{IDs: m.ids, Terms: m.terms, IDF: m.idf, Indptr: m.indptr, Indices: m.indices, Values: m.values}
	return blockfile.Encode(f, uint64(len(m.ids)), codec.Default, comp)
}

// Decode parses a block file produced by Encode and rebuilds the column view.
func Decode(data []byte) (*Matrix, error) {
	var f matrixFile
	h, err := blockfile.Decode(data, &f)
	if err != nil {
		return nil, err
	}
	if err := validate(&f, h.Rows); err != nil {
		return nil, err
	}
	return newMatrix(f.IDs, f.Terms, f.IDF, f.Indptr, f.Indices, f.Values), nil
}

func validate(f *matrixFile, rows uint64) error {
	switch {
	case uint64(len(f.IDs)) != rows:
		return fmt.Errorf("%w: header declares %d rows, payload has %d", blockfile.ErrCorrupt, rows, len(f.IDs))
	case len(f.IDF) != len(f.Terms):
		return fmt.Errorf("%w: idf length %d for %d terms", blockfile.ErrCorrupt, len(f.IDF), len(f.Terms))
	case len(f.Indptr) != len(f.IDs)+1 || f.Indptr[0] != 0:
		return fmt.Errorf("%w: bad row pointer", blockfile.ErrCorrupt)
	case len(f.Indices) != len(f.Values) || int(f.Indptr[len(f.IDs)]) != len(f.Indices):
		return fmt.Errorf("%w: entry count mismatch", blockfile.ErrCorrupt)
	}
	for r := 0; r < len(f.IDs); r++ {
		if f.Indptr[r] > f.Indptr[r+1] {
			return fmt.Errorf("%w: row pointer decreases at row %d", blockfile.ErrCorrupt, r)
		}
	}
	for _, c := range f.Indices {
		if int(c) >= len(f.Terms) {
			return fmt.Errorf("%w: term %d out of range", blockfile.ErrCorrupt, c)
		}
	}
	return nil
}
