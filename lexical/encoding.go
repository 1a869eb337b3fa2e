package lexical

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/hfabric/codec"
	"github.com/hupe1980/hfabric/internal/blockfile"
	"github.com/hupe1980/hfabric/model"
	"github.com/hupe1980/hfabric/text"
)

type indexFile struct {
	Language  string   `msgpack:"language"`
	Tokenizer string   `msgpack:"tokenizer"`
	Rows      int      `msgpack:"rows"`
	Terms     []string `msgpack:"terms"`
	Postings  [][]byte `msgpack:"postings"`
}

// Encode serializes ix as a block file.
func Encode(ix *Index, comp blockfile.Compression) ([]byte, blockfile.Header, error) {
	f := indexFile{
		Language:  string(ix.lang),
		Tokenizer: text.TokenizerVersion,
		Rows:      ix.rows,
		Terms:     ix.terms,
		Postings:  make([][]byte, len(ix.postings)),
	}
	for i, bm := range ix.postings {
		b, err := bm.ToBytes()
		if err != nil {
			return nil, blockfile.Header{}, err
		}
		f.Postings[i] = b
	}
	return blockfile.Encode(f, uint64(ix.rows), codec.Default, comp)
}

// Decode parses a block file produced by Encode.
func Decode(data []byte) (*Index, error) {
	var f indexFile
	h, err := blockfile.Decode(data, &f)
	if err != nil {
		return nil, err
	}
	if f.Tokenizer != text.TokenizerVersion {
		return nil, fmt.Errorf("%w: index built with %q, have %q", ErrTokenizerMismatch, f.Tokenizer, text.TokenizerVersion)
	}
	if h.Rows != uint64(f.Rows) || len(f.Terms) != len(f.Postings) {
		return nil, fmt.Errorf("%w: inconsistent text index", blockfile.ErrCorrupt)
	}
	ix := &Index{
		lang:     model.Language(f.Language),
		rows:     f.Rows,
		terms:    f.Terms,
		postings: make([]*roaring.Bitmap, len(f.Postings)),
	}
	for i, b := range f.Postings {
		bm := roaring.New()
		if err := bm.UnmarshalBinary(b); err != nil {
			return nil, fmt.Errorf("%w: posting %q: %v", blockfile.ErrCorrupt, f.Terms[i], err)
		}
		if !bm.IsEmpty() && bm.Maximum() >= uint32(f.Rows) {
			return nil, fmt.Errorf("%w: posting %q exceeds rows", blockfile.ErrCorrupt, f.Terms[i])
		}
		if i > 0 && f.Terms[i-1] >= f.Terms[i] {
			return nil, fmt.Errorf("%w: vocabulary not sorted", blockfile.ErrCorrupt)
		}
		ix.postings[i] = bm
	}
	return ix, nil
}
