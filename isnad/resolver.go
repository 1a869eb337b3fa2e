package isnad

import (
	"sort"
)

// Narrator is a deduplicated narrator produced by a Resolver.
type Narrator struct {
	Key       string
	Canonical string
	// Aliases are the distinct spellings, sorted.
	Aliases []string
}

// Alias is one row of the audit table: a spelling and what it resolved to.
type Alias struct {
	Spelling  string `msgpack:"spelling" json:"spelling"`
	Key       string `msgpack:"key" json:"key"`
	Canonical string `msgpack:"canonical" json:"canonical"`
	Count     int    `msgpack:"count" json:"count"`
}

type candidate struct {
	key       string
	spellings map[string]int
}

// Resolver assigns dense narrator ids to spellings, merging equal keys.
// Ids are assigned in first-seen order. It is not safe for concurrent use.
type Resolver struct {
	byKey map[string]int
	cands []*candidate
}

// NewResolver returns an empty Resolver.
func NewResolver() *Resolver {
	return &Resolver{byKey: make(map[string]int)}
}

// Resolve returns the narrator id of name and records the spelling.
// ok is false when the name has an empty key.
func (r *Resolver) Resolve(name string) (id int, ok bool) {
	key := Key(name)
	if key == "" {
		return 0, false
	}
	id, seen := r.byKey[key]
	if !seen {
		id = len(r.cands)
		r.byKey[key] = id
		r.cands = append(r.cands, &candidate{key: key, spellings: make(map[string]int)})
	}
	r.cands[id].spellings[name]++
	return id, true
}

// Len returns the number of distinct narrators.
func (r *Resolver) Len() int { return len(r.cands) }

// Narrators returns the narrators indexed by id.
func (r *Resolver) Narrators() []Narrator {
	out := make([]Narrator, len(r.cands))
	for i, c := range r.cands {
		out[i] = Narrator{Key: c.key, Canonical: canonical(c.spellings), Aliases: sortedKeys(c.spellings)}
	}
	return out
}

// Aliases returns the audit table sorted by canonical name, then spelling.
func (r *Resolver) Aliases() []Alias {
	var out []Alias
	for _, c := range r.cands {
		canon := canonical(c.spellings)
		for s, n := range c.spellings {
			out = append(out, Alias{Spelling: s, Key: c.key, Canonical: canon, Count: n})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Canonical != out[j].Canonical {
			return out[i].Canonical < out[j].Canonical
		}
		return out[i].Spelling < out[j].Spelling
	})
	return out
}

// canonical picks the most frequent spelling, ties by lexical order.
func canonical(spellings map[string]int) string {
	best, bestN := "", -1
	for s, n := range spellings {
		if n > bestN || (n == bestN && s < best) {
			best, bestN = s, n
		}
	}
	return best
}

func sortedKeys(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
