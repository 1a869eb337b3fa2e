package lexical

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/hfabric/model"
	"github.com/hupe1980/hfabric/text"
)

// Builder accumulates postings for one language.
// It is not safe for concurrent use.
type Builder struct {
	lang     model.Language
	rows     int
	postings map[string]*roaring.Bitmap
}

// NewBuilder creates a builder for rows documents.
func NewBuilder(lang model.Language, rows int) *Builder {
	return &Builder{lang: lang, rows: rows, postings: make(map[string]*roaring.Bitmap)}
}

// Add indexes the text of the document at ord.
func (b *Builder) Add(ord model.Ordinal, s string) error {
	terms, err := text.Terms(b.lang, s)
	if err != nil {
		return err
	}
	for _, t := range terms {
		bm, ok := b.postings[t]
		if !ok {
			bm = roaring.New()
			b.postings[t] = bm
		}
		bm.Add(uint32(ord))
	}
	return nil
}

// Build freezes the builder into an Index.
func (b *Builder) Build() *Index {
	terms := make([]string, 0, len(b.postings))
	for t := range b.postings {
		terms = append(terms, t)
	}
	sort.Strings(terms)

	postings := make([]*roaring.Bitmap, len(terms))
	for i, t := range terms {
		bm := b.postings[t]
		bm.RunOptimize()
		postings[i] = bm
	}
	return &Index{lang: b.lang, rows: b.rows, terms: terms, postings: postings}
}
