package graph

import (
	"github.com/hupe1980/hfabric/isnad"
)

// Builder resolves parsed chains into a Graph. Chains must be added in
// corpus order. It is not safe for concurrent use.
type Builder struct {
	resolver *isnad.Resolver
	chains   []chain
	maxChain int
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{resolver: isnad.NewResolver()}
}

// Add records the chain of a hadith and returns the number of narrators
// kept. Names with an empty identity key are dropped.
func (b *Builder) Add(hadith string, names []string) int {
	ids := make([]int, 0, len(names))
	for _, name := range names {
		if id, ok := b.resolver.Resolve(name); ok {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return 0
	}
	b.chains = append(b.chains, chain{Hadith: hadith, Narrators: ids})
	b.maxChain = max(b.maxChain, len(ids))
	return len(ids)
}

// MaxChainLength returns the longest chain added so far.
func (b *Builder) MaxChainLength() int { return b.maxChain }

// Build returns the graph.
func (b *Builder) Build() (*Graph, error) {
	return newGraph(b.resolver.Narrators(), b.resolver.Aliases(), b.chains, b.maxChain)
}
