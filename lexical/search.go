package lexical

import (
	"fmt"
	"sort"

	"github.com/hupe1980/hfabric/model"
	"github.com/hupe1980/hfabric/text"
)

// Match is a scored document.
type Match struct {
	Ordinal model.Ordinal
	Score   int
}

// Search scores every document by the number of distinct query terms it
// contains, summed over indexes, and returns the best limit matches ordered
// by score descending, then ordinal ascending. Documents scoring 0 are not
// returned. An empty query yields no matches.
func Search(query string, mode MatchMode, limit int, indexes ...*Index) ([]Match, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidArgument, limit)
	}
	if mode < MatchExact || mode > MatchSubstring {
		return nil, fmt.Errorf("%w: match mode %d", ErrInvalidArgument, mode)
	}

	var scores []uint32
	for _, ix := range indexes {
		terms, err := text.Terms(ix.lang, query)
		if err != nil {
			return nil, err
		}
		if len(terms) == 0 {
			continue
		}
		if scores == nil {
			scores = make([]uint32, ix.rows)
		}
		if ix.rows > len(scores) {
			scores = append(scores, make([]uint32, ix.rows-len(scores))...)
		}
		for _, t := range terms {
			it := ix.lookup(t, mode).Iterator()
			for it.HasNext() {
				scores[it.Next()]++
			}
		}
	}

	var out []Match
	for ord, s := range scores {
		if s > 0 {
			out = append(out, Match{Ordinal: model.Ordinal(ord), Score: int(s)})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Ordinal < out[j].Ordinal
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
