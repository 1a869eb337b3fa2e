package graph

import (
	"fmt"

	"github.com/hupe1980/hfabric/codec"
	"github.com/hupe1980/hfabric/internal/blockfile"
	"github.com/hupe1980/hfabric/isnad"
)

type narratorRow struct {
	Key       string   `msgpack:"key"`
	Canonical string   `msgpack:"canonical"`
	Aliases   []string `msgpack:"aliases"`
}

type graphFile struct {
	Narrators      []narratorRow `msgpack:"narrators"`
	Chains         []chain       `msgpack:"chains"`
	Aliases        []isnad.Alias `msgpack:"aliases"`
	MaxChainLength int           `msgpack:"max_chain_length"`
}

// Encode serializes g as a block file. The row count is the number of
// narrators.
func Encode(g *Graph, comp blockfile.Compression) ([]byte, blockfile.Header, error) {
	f := graphFile{
		Narrators:      make([]narratorRow, len(g.narrators)),
		Aliases:        g.aliases,
		MaxChainLength: g.maxChain,
	}
	for i, n := range g.narrators {
		f.Narrators[i] = narratorRow{Key: n.Key, Canonical: n.Canonical, Aliases: n.Aliases}
	}
	f.Chains = make([]chain, len(g.order))
	for i, h := range g.order {
		f.Chains[i] = chain{Hadith: h, Narrators: g.chains[h]}
	}
	return blockfile.Encode(f, uint64(len(g.narrators)), codec.Default, comp)
}

// Decode parses a block file produced by Encode. maxChain is the bound
// recorded in the manifest; a file that disagrees with it is corrupt.
func Decode(data []byte, maxChain int) (*Graph, error) {
	var f graphFile
	h, err := blockfile.Decode(data, &f)
	if err != nil {
		return nil, err
	}
	if h.Rows != uint64(len(f.Narrators)) {
		return nil, fmt.Errorf("%w: header declares %d narrators, payload has %d", blockfile.ErrCorrupt, h.Rows, len(f.Narrators))
	}
	if f.MaxChainLength != maxChain {
		return nil, fmt.Errorf("%w: max chain length %d, manifest says %d", blockfile.ErrCorrupt, f.MaxChainLength, maxChain)
	}
	narrators := make([]isnad.Narrator, len(f.Narrators))
	for i, n := range f.Narrators {
		narrators[i] = isnad.Narrator{Key: n.Key, Canonical: n.Canonical, Aliases: n.Aliases}
	}
	g, err := newGraph(narrators, f.Aliases, f.Chains, f.MaxChainLength)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", blockfile.ErrCorrupt, err)
	}
	return g, nil
}
