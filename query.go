package hfabric

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/hfabric/graph"
	"github.com/hupe1980/hfabric/isnad"
	"github.com/hupe1980/hfabric/lexical"
	"github.com/hupe1980/hfabric/model"
)

// Get returns the record with the given identifier.
func (hf *HF) Get(ctx context.Context, id string) (model.Record, error) {
	start := time.Now()
	rec, err := hf.get(ctx, id)
	hf.metrics.RecordGet(time.Since(start), err)
	return rec, err
}

func (hf *HF) get(ctx context.Context, id string) (model.Record, error) {
	if err := hf.check(); err != nil {
		return model.Record{}, err
	}
	coll, _, _, err := model.ParseID(id)
	if err != nil {
		return model.Record{}, fmt.Errorf("%w: identifier %q", ErrNotFound, id)
	}
	if _, ok := hf.layout.Base(coll); !ok {
		return model.Record{}, fmt.Errorf("%w: identifier %q", ErrNotFound, id)
	}
	t, err := hf.table(ctx, coll)
	if err != nil {
		return model.Record{}, translateError(err)
	}
	rec, ok := t.Get(id)
	if !ok {
		return model.Record{}, fmt.Errorf("%w: identifier %q", ErrNotFound, id)
	}
	return rec, nil
}

// GetMany returns the records for ids in the given order. Unknown
// identifiers are skipped.
func (hf *HF) GetMany(ctx context.Context, ids []string) ([]model.Record, error) {
	out := make([]model.Record, 0, len(ids))
	for _, id := range ids {
		rec, err := hf.Get(ctx, id)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// at returns the record at a global ordinal.
func (hf *HF) at(ctx context.Context, ord model.Ordinal) (model.Record, error) {
	coll, ok := hf.layout.Locate(ord)
	if !ok {
		return model.Record{}, packageError(hf.src.location, "", fmt.Errorf("ordinal %d out of range", ord))
	}
	t, err := hf.table(ctx, coll)
	if err != nil {
		return model.Record{}, err
	}
	rec, ok := t.At(ord)
	if !ok {
		return model.Record{}, packageError(hf.src.location, "", fmt.Errorf("ordinal %d not in collection %q", ord, coll))
	}
	return rec, nil
}

// Search runs a term-overlap search over the text index of lang and returns
// the matching records, best first. A document scores one point per
// distinct query term it contains; ties are broken by corpus order. With
// model.Both the Arabic and English scores are summed.
//
// An empty query returns no hits. A non-positive limit fails with
// ErrInvalidArgument, an unknown language with ErrUnsupportedLanguage.
func (hf *HF) Search(ctx context.Context, query string, lang model.Language, optFns ...func(o *SearchOptions)) ([]model.Hit, error) {
	opts := SearchOptions{Limit: DefaultSearchLimit, Mode: lexical.MatchExact}
	for _, fn := range optFns {
		fn(&opts)
	}

	start := time.Now()
	hits, err := hf.search(ctx, query, lang, opts)
	hf.metrics.RecordSearch(string(lang), len(hits), time.Since(start), err)
	hf.log.LogSearch(ctx, string(lang), opts.Limit, len(hits), err)
	return hits, err
}

func (hf *HF) search(ctx context.Context, query string, lang model.Language, opts SearchOptions) ([]model.Hit, error) {
	if err := hf.check(); err != nil {
		return nil, err
	}
	langs, err := searchLanguages(lang)
	if err != nil {
		return nil, err
	}
	if opts.Limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidArgument, opts.Limit)
	}

	indexes := make([]*lexical.Index, 0, len(langs))
	for _, l := range langs {
		ix, err := hf.textIndex(ctx, l)
		if err != nil {
			return nil, translateError(err)
		}
		indexes = append(indexes, ix)
	}

	matches, err := lexical.Search(query, opts.Mode, opts.Limit, indexes...)
	if err != nil {
		return nil, translateError(err)
	}
	hits := make([]model.Hit, 0, len(matches))
	for _, m := range matches {
		rec, err := hf.at(ctx, m.Ordinal)
		if err != nil {
			return nil, translateError(err)
		}
		hits = append(hits, model.Hit{Record: rec, Score: float64(m.Score)})
	}
	return hits, nil
}

// TermMatch is the result of Lookup.
type TermMatch struct {
	// Terms are the vocabulary terms the input matched, sorted.
	Terms []string `json:"terms"`
	// IDs are the records containing any of Terms, in corpus order.
	IDs []string `json:"ids"`
}

// Lookup expands term against the vocabulary of lang's text index under
// the configured match mode and returns the matched terms together with
// the identifiers of the records containing them, capped by the limit.
// Unlike Search, records are not scored.
func (hf *HF) Lookup(ctx context.Context, term string, lang model.Language, optFns ...func(o *SearchOptions)) (TermMatch, error) {
	opts := SearchOptions{Limit: DefaultSearchLimit, Mode: lexical.MatchExact}
	for _, fn := range optFns {
		fn(&opts)
	}
	if err := hf.check(); err != nil {
		return TermMatch{}, err
	}
	langs, err := searchLanguages(lang)
	if err != nil {
		return TermMatch{}, err
	}
	if opts.Limit <= 0 {
		return TermMatch{}, fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidArgument, opts.Limit)
	}

	res := TermMatch{Terms: []string{}, IDs: []string{}}
	docs := roaring.New()
	for _, l := range langs {
		ix, err := hf.textIndex(ctx, l)
		if err != nil {
			return TermMatch{}, translateError(err)
		}
		terms, err := ix.Terms(term, opts.Mode)
		if err != nil {
			return TermMatch{}, translateError(err)
		}
		res.Terms = append(res.Terms, terms...)
		bm, err := ix.Lookup(term, opts.Mode)
		if err != nil {
			return TermMatch{}, translateError(err)
		}
		docs.Or(bm)
	}
	slices.Sort(res.Terms)
	res.Terms = slices.Compact(res.Terms)

	it := docs.Iterator()
	for it.HasNext() && len(res.IDs) < opts.Limit {
		rec, err := hf.at(ctx, model.Ordinal(it.Next()))
		if err != nil {
			return TermMatch{}, translateError(err)
		}
		res.IDs = append(res.IDs, rec.ID)
	}
	return res, nil
}

// Similar returns the records most similar to id by cosine of their TF-IDF
// vectors, excluding id itself. Ties are broken by identifier ascending.
// Neighbours scoring zero are omitted rather than used to fill the list,
// so fewer than TopK hits are returned when fewer records share a term
// with id.
func (hf *HF) Similar(ctx context.Context, id string, optFns ...func(o *SimilarOptions)) ([]model.Hit, error) {
	opts := SimilarOptions{TopK: DefaultTopK}
	for _, fn := range optFns {
		fn(&opts)
	}

	start := time.Now()
	hits, err := hf.similar(ctx, id, opts)
	hf.metrics.RecordSimilar(len(hits), time.Since(start), err)
	hf.log.LogSimilar(ctx, id, opts.TopK, len(hits), err)
	return hits, err
}

func (hf *HF) similar(ctx context.Context, id string, opts SimilarOptions) ([]model.Hit, error) {
	if err := hf.check(); err != nil {
		return nil, err
	}
	if opts.TopK <= 0 {
		return nil, fmt.Errorf("%w: topk must be positive, got %d", ErrInvalidArgument, opts.TopK)
	}
	if _, err := hf.get(ctx, id); err != nil {
		return nil, err
	}
	m, err := hf.matrix(ctx)
	if err != nil {
		return nil, translateError(err)
	}
	scored, err := m.Similar(id, opts.TopK)
	if err != nil {
		return nil, translateError(err)
	}
	hits := make([]model.Hit, 0, len(scored))
	for _, s := range scored {
		rec, err := hf.get(ctx, s.ID)
		if err != nil {
			return nil, packageError(hf.src.location, "", fmt.Errorf("similarity index references %q: %w", s.ID, err))
		}
		hits = append(hits, model.Hit{Record: rec, Score: s.Score})
	}
	return hits, nil
}

// Cosine returns the TF-IDF cosine similarity of two records.
func (hf *HF) Cosine(ctx context.Context, a, b string) (float64, error) {
	if err := hf.check(); err != nil {
		return 0, err
	}
	m, err := hf.matrix(ctx)
	if err != nil {
		return 0, translateError(err)
	}
	s, err := m.Cosine(a, b)
	return s, translateError(err)
}

// Feature returns the value of feature name for id. ok is false when the
// record has no value for the feature. Unknown features and identifiers
// fail with ErrNotFound.
func (hf *HF) Feature(ctx context.Context, name, id string) (v any, ok bool, err error) {
	if err := hf.check(); err != nil {
		return nil, false, err
	}
	if _, known := hf.meta.Features[name]; !known {
		return nil, false, fmt.Errorf("%w: feature %q", ErrNotFound, name)
	}
	coll, _, _, perr := model.ParseID(id)
	if perr != nil {
		return nil, false, fmt.Errorf("%w: identifier %q", ErrNotFound, id)
	}
	if _, known := hf.layout.Base(coll); !known {
		return nil, false, fmt.Errorf("%w: identifier %q", ErrNotFound, id)
	}
	t, err := hf.table(ctx, coll)
	if err != nil {
		return nil, false, translateError(err)
	}
	ord, found := t.Ordinal(id)
	if !found {
		return nil, false, fmt.Errorf("%w: identifier %q", ErrNotFound, id)
	}
	col, err := hf.column(ctx, name)
	if err != nil {
		return nil, false, translateError(err)
	}
	v, ok = col.Value(ord)
	return v, ok, nil
}

// Chain returns the narrators of id in narration order, or an empty slice
// when the hadith has no parsed isnād. Unknown identifiers fail with
// ErrNotFound.
func (hf *HF) Chain(ctx context.Context, id string) ([]model.Rawi, error) {
	start := time.Now()
	chain, err := func() ([]model.Rawi, error) {
		if _, err := hf.get(ctx, id); err != nil {
			return nil, err
		}
		g, err := hf.narrators(ctx)
		if err != nil {
			return nil, translateError(err)
		}
		return g.ChainFor(id), nil
	}()
	hf.metrics.RecordGraph("chain", time.Since(start), err)
	return chain, err
}

// Edges returns the isnād edges of id in narration order.
func (hf *HF) Edges(ctx context.Context, id string) ([]model.Edge, error) {
	if _, err := hf.get(ctx, id); err != nil {
		return nil, err
	}
	g, err := hf.narrators(ctx)
	if err != nil {
		return nil, translateError(err)
	}
	return g.Edges(id), nil
}

// Rawi returns the narrator matching name exactly or through an alias,
// after case and diacritic normalization.
func (hf *HF) Rawi(ctx context.Context, name string) (model.Rawi, error) {
	start := time.Now()
	r, err := func() (model.Rawi, error) {
		if err := hf.check(); err != nil {
			return model.Rawi{}, err
		}
		g, err := hf.narrators(ctx)
		if err != nil {
			return model.Rawi{}, translateError(err)
		}
		r, err := g.Rawi(name)
		return r, translateError(err)
	}()
	hf.metrics.RecordGraph("rawi", time.Since(start), err)
	return r, err
}

// CoOccurring returns the identifiers of the hadiths name appears in.
func (hf *HF) CoOccurring(ctx context.Context, name string) ([]string, error) {
	return hf.graphQuery(ctx, "co_occurring", name, (*graph.Graph).CoOccurring)
}

// Transmitters returns the narrators name reports from.
func (hf *HF) Transmitters(ctx context.Context, name string) ([]string, error) {
	return hf.graphQuery(ctx, "transmitters", name, (*graph.Graph).Transmitters)
}

// Students returns the narrators who report from name.
func (hf *HF) Students(ctx context.Context, name string) ([]string, error) {
	return hf.graphQuery(ctx, "students", name, (*graph.Graph).Students)
}

// Path returns the shortest narration path from one narrator to another
// as canonical names, bounded by the package's maximum chain length. It
// returns an empty slice when no such path exists.
func (hf *HF) Path(ctx context.Context, from, to string) ([]string, error) {
	return hf.graphQuery(ctx, "path", from, func(g *graph.Graph, n string) ([]string, error) {
		return g.Path(n, to)
	})
}

// Aliases returns the build-time alias table: every spelling seen for a
// narrator, sorted by canonical name, then spelling.
func (hf *HF) Aliases(ctx context.Context) ([]isnad.Alias, error) {
	if err := hf.check(); err != nil {
		return nil, err
	}
	g, err := hf.narrators(ctx)
	if err != nil {
		return nil, translateError(err)
	}
	return slices.Clone(g.Aliases()), nil
}

func (hf *HF) graphQuery(ctx context.Context, op, name string, fn func(*graph.Graph, string) ([]string, error)) ([]string, error) {
	start := time.Now()
	out, err := func() ([]string, error) {
		if err := hf.check(); err != nil {
			return nil, err
		}
		g, err := hf.narrators(ctx)
		if err != nil {
			return nil, translateError(err)
		}
		out, err := fn(g, name)
		return slices.Clone(out), translateError(err)
	}()
	hf.metrics.RecordGraph(op, time.Since(start), err)
	return out, err
}

func searchLanguages(lang model.Language) ([]model.Language, error) {
	switch lang {
	case model.Arabic, model.English:
		return []model.Language{lang}, nil
	case model.Both:
		return []model.Language{model.Arabic, model.English}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
