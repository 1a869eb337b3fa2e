package graph

import (
	"errors"
	"fmt"
	"sort"

	"github.com/hupe1980/hfabric/isnad"
	"github.com/hupe1980/hfabric/model"
)

// ErrNotFound is returned for unknown narrator names.
var ErrNotFound = errors.New("not found")

// Graph is an immutable narrator graph.
type Graph struct {
	narrators []isnad.Narrator
	aliases   []isnad.Alias
	byKey     map[string]int
	maxChain  int

	order   []string // hadiths with a chain, corpus order
	chains  map[string][]int
	hadiths [][]string // per narrator, corpus order
	from    [][]int    // narrators each narrator reports from
	to      [][]int    // narrators reporting from each narrator
}

type chain struct {
	Hadith    string `msgpack:"hadith"`
	Narrators []int  `msgpack:"narrators"`
}

func newGraph(narrators []isnad.Narrator, aliases []isnad.Alias, chains []chain, maxChain int) (*Graph, error) {
	g := &Graph{
		narrators: narrators,
		aliases:   aliases,
		byKey:     make(map[string]int, len(narrators)),
		maxChain:  maxChain,
		chains:    make(map[string][]int, len(chains)),
		hadiths:   make([][]string, len(narrators)),
		from:      make([][]int, len(narrators)),
		to:        make([][]int, len(narrators)),
	}
	for i, n := range narrators {
		g.byKey[n.Key] = i
	}

	fromSet := make([]map[int]struct{}, len(narrators))
	toSet := make([]map[int]struct{}, len(narrators))
	for _, c := range chains {
		if len(c.Narrators) > maxChain {
			return nil, fmt.Errorf("chain of %s has %d narrators, max is %d", c.Hadith, len(c.Narrators), maxChain)
		}
		seen := make(map[int]bool, len(c.Narrators))
		for i, id := range c.Narrators {
			if id < 0 || id >= len(narrators) {
				return nil, fmt.Errorf("chain of %s references narrator %d", c.Hadith, id)
			}
			if !seen[id] {
				seen[id] = true
				g.hadiths[id] = append(g.hadiths[id], c.Hadith)
			}
			if i+1 < len(c.Narrators) {
				next := c.Narrators[i+1]
				addEdge(fromSet, id, next)
				addEdge(toSet, next, id)
			}
		}
		g.chains[c.Hadith] = c.Narrators
		g.order = append(g.order, c.Hadith)
	}
	for i := range narrators {
		g.from[i] = g.sortedByName(fromSet[i])
		g.to[i] = g.sortedByName(toSet[i])
	}
	return g, nil
}

func addEdge(sets []map[int]struct{}, a, b int) {
	if sets[a] == nil {
		sets[a] = make(map[int]struct{})
	}
	sets[a][b] = struct{}{}
}

func (g *Graph) sortedByName(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		return g.narrators[out[i]].Canonical < g.narrators[out[j]].Canonical
	})
	return out
}

// Len returns the number of narrators.
func (g *Graph) Len() int { return len(g.narrators) }

// ChainCount returns the number of hadiths with a chain.
func (g *Graph) ChainCount() int { return len(g.order) }

// MaxChainLength returns the longest chain seen at build time.
func (g *Graph) MaxChainLength() int { return g.maxChain }

// Aliases returns the alias audit table produced by the dedupe pass.
func (g *Graph) Aliases() []isnad.Alias { return g.aliases }

func (g *Graph) lookup(name string) (int, error) {
	id, ok := g.byKey[isnad.Key(name)]
	if !ok {
		return 0, fmt.Errorf("%w: narrator %q", ErrNotFound, name)
	}
	return id, nil
}

func (g *Graph) rawi(id int) model.Rawi {
	n := g.narrators[id]
	return model.Rawi{Name: n.Canonical, Aliases: n.Aliases, Hadiths: g.hadiths[id]}
}

func (g *Graph) names(ids []int) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = g.narrators[id].Canonical
	}
	return out
}

// Rawi returns the narrator matching name by canonical name or alias,
// compared by identity key.
func (g *Graph) Rawi(name string) (model.Rawi, error) {
	id, err := g.lookup(name)
	if err != nil {
		return model.Rawi{}, err
	}
	return g.rawi(id), nil
}

// ChainFor returns the narrators of a hadith's chain in narration order.
// A hadith without a parseable chain yields an empty slice.
func (g *Graph) ChainFor(hadith string) []model.Rawi {
	ids := g.chains[hadith]
	if len(ids) > g.maxChain {
		ids = ids[:g.maxChain]
	}
	out := make([]model.Rawi, len(ids))
	for i, id := range ids {
		out[i] = g.rawi(id)
	}
	return out
}

// Edges returns the narration edges of a hadith's chain.
func (g *Graph) Edges(hadith string) []model.Edge {
	ids := g.chains[hadith]
	var out []model.Edge
	for i := 0; i+1 < len(ids) && i < g.maxChain; i++ {
		out = append(out, model.Edge{
			From:     g.narrators[ids[i]].Canonical,
			To:       g.narrators[ids[i+1]].Canonical,
			Hadith:   hadith,
			Position: i,
		})
	}
	return out
}

// CoOccurring returns the hadiths a narrator appears in, in corpus order.
func (g *Graph) CoOccurring(name string) ([]string, error) {
	id, err := g.lookup(name)
	if err != nil {
		return nil, err
	}
	return g.hadiths[id], nil
}

// Transmitters returns the narrators that name reports from, sorted by name.
func (g *Graph) Transmitters(name string) ([]string, error) {
	id, err := g.lookup(name)
	if err != nil {
		return nil, err
	}
	return g.names(g.from[id]), nil
}

// Students returns the narrators that report from name, sorted by name.
func (g *Graph) Students(name string) ([]string, error) {
	id, err := g.lookup(name)
	if err != nil {
		return nil, err
	}
	return g.names(g.to[id]), nil
}

// Path returns the shortest narration path from one narrator to another
// following "reports from" edges, as canonical names including both ends.
// The search depth is bounded by the maximum chain length; no path within
// that bound yields an empty slice.
func (g *Graph) Path(from, to string) ([]string, error) {
	src, err := g.lookup(from)
	if err != nil {
		return nil, err
	}
	dst, err := g.lookup(to)
	if err != nil {
		return nil, err
	}
	if src == dst {
		return g.names([]int{src}), nil
	}

	prev := map[int]int{src: -1}
	frontier := []int{src}
	for depth := 1; depth < g.maxChain && len(frontier) > 0; depth++ {
		var next []int
		for _, u := range frontier {
			for _, v := range g.from[u] {
				if _, seen := prev[v]; seen {
					continue
				}
				prev[v] = u
				if v == dst {
					return g.names(walkBack(prev, dst)), nil
				}
				next = append(next, v)
			}
		}
		frontier = next
	}
	return []string{}, nil
}

func walkBack(prev map[int]int, dst int) []int {
	var path []int
	for v := dst; v != -1; v = prev[v] {
		path = append(path, v)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
