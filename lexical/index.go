package lexical

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/hfabric/model"
	"github.com/hupe1980/hfabric/text"
)

var (
	// ErrInvalidArgument is returned for a non-positive limit or an unknown
	// match mode.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrTokenizerMismatch is returned when an index was built with a
	// different tokenizer version.
	ErrTokenizerMismatch = errors.New("tokenizer version mismatch")
)

// MatchMode selects how a query term is matched against the vocabulary.
type MatchMode int

const (
	// MatchExact requires the exact normalized term.
	MatchExact MatchMode = iota
	// MatchPrefix matches every vocabulary term starting with the query term.
	MatchPrefix
	// MatchSubstring matches every vocabulary term containing the query term.
	MatchSubstring
)

func (m MatchMode) String() string {
	switch m {
	case MatchExact:
		return "exact"
	case MatchPrefix:
		return "prefix"
	case MatchSubstring:
		return "substring"
	}
	return fmt.Sprintf("MatchMode(%d)", int(m))
}

// ParseMatchMode parses "exact", "prefix" or "substring".
func ParseMatchMode(s string) (MatchMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "exact":
		return MatchExact, nil
	case "prefix":
		return MatchPrefix, nil
	case "substring", "contains":
		return MatchSubstring, nil
	}
	return 0, fmt.Errorf("%w: match mode %q", ErrInvalidArgument, s)
}

// Index is an immutable inverted index for one language.
type Index struct {
	lang     model.Language
	rows     int
	terms    []string
	postings []*roaring.Bitmap
}

// Language returns the indexed language.
func (ix *Index) Language() model.Language { return ix.lang }

// Rows returns the number of documents, including those without tokens.
func (ix *Index) Rows() int { return ix.rows }

// VocabularySize returns the number of distinct terms.
func (ix *Index) VocabularySize() int { return len(ix.terms) }

// DocFreq returns the number of documents containing term.
func (ix *Index) DocFreq(term string) int {
	if p := ix.posting(term); p != nil {
		return int(p.GetCardinality())
	}
	return 0
}

func (ix *Index) posting(term string) *roaring.Bitmap {
	i := sort.SearchStrings(ix.terms, term)
	if i < len(ix.terms) && ix.terms[i] == term {
		return ix.postings[i]
	}
	return nil
}

// Expand returns the vocabulary terms matched by an already normalized term.
func (ix *Index) Expand(term string, mode MatchMode) []string {
	switch mode {
	case MatchPrefix:
		var out []string
		for i := sort.SearchStrings(ix.terms, term); i < len(ix.terms) && strings.HasPrefix(ix.terms[i], term); i++ {
			out = append(out, ix.terms[i])
		}
		return out
	case MatchSubstring:
		var out []string
		for _, t := range ix.terms {
			if strings.Contains(t, term) {
				out = append(out, t)
			}
		}
		return out
	default:
		if ix.posting(term) != nil {
			return []string{term}
		}
		return nil
	}
}

// Lookup returns the ordinals of documents containing a vocabulary term
// matched by term. term is normalized with the index tokenizer; a term that
// normalizes to nothing matches nothing.
func (ix *Index) Lookup(term string, mode MatchMode) (*roaring.Bitmap, error) {
	if mode < MatchExact || mode > MatchSubstring {
		return nil, fmt.Errorf("%w: match mode %d", ErrInvalidArgument, mode)
	}
	terms, err := text.Terms(ix.lang, term)
	if err != nil {
		return nil, err
	}
	out := roaring.New()
	for _, t := range terms {
		out.Or(ix.lookup(t, mode))
	}
	return out, nil
}

// Terms returns the sorted vocabulary terms matched by term after
// normalization with the index tokenizer.
func (ix *Index) Terms(term string, mode MatchMode) ([]string, error) {
	if mode < MatchExact || mode > MatchSubstring {
		return nil, fmt.Errorf("%w: match mode %d", ErrInvalidArgument, mode)
	}
	terms, err := text.Terms(ix.lang, term)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, t := range terms {
		out = append(out, ix.Expand(t, mode)...)
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

func (ix *Index) lookup(term string, mode MatchMode) *roaring.Bitmap {
	if mode == MatchExact {
		if p := ix.posting(term); p != nil {
			return p
		}
		return roaring.New()
	}
	expanded := ix.Expand(term, mode)
	if len(expanded) == 0 {
		return roaring.New()
	}
	bms := make([]*roaring.Bitmap, len(expanded))
	for i, t := range expanded {
		bms[i] = ix.posting(t)
	}
	return roaring.FastOr(bms...)
}

// Search runs query against ix. See Search.
func (ix *Index) Search(query string, mode MatchMode, limit int) ([]Match, error) {
	return Search(query, mode, limit, ix)
}
