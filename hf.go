package hfabric

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/hupe1980/hfabric/blobstore"
	"github.com/hupe1980/hfabric/corpus"
	"github.com/hupe1980/hfabric/graph"
	"github.com/hupe1980/hfabric/internal/blockfile"
	"github.com/hupe1980/hfabric/internal/lazy"
	"github.com/hupe1980/hfabric/internal/resource"
	"github.com/hupe1980/hfabric/lexical"
	"github.com/hupe1980/hfabric/manifest"
	"github.com/hupe1980/hfabric/model"
	"github.com/hupe1980/hfabric/similarity"
	"github.com/hupe1980/hfabric/text"
	"golang.org/x/sync/errgroup"
)

// openConcurrency bounds the parallel header checks of Open.
const openConcurrency = 8

// HF is an opened, read-only package. It is safe for concurrent use.
//
// Every structure (corpus tables, feature columns, text indexes, the TF-IDF
// matrix and the narrator graph) is decoded on first use, exactly once, and
// shared by all callers for the lifetime of the handle.
type HF struct {
	src     Source
	store   blobstore.BlobStore
	meta    *manifest.Manifest
	layout  *corpus.Layout
	opts    options
	log     *Logger
	metrics MetricsCollector
	rc      *resource.Controller
	closed  atomic.Bool

	tables   lazy.Map[string, corpus.Table]
	features lazy.Map[string, corpus.Column]
	text     lazy.Map[model.Language, lexical.Index]
	tfidf    lazy.Value[similarity.Matrix]
	graph    lazy.Value[graph.Graph]
}

// Open opens the package at src.
//
// Open reads meta.json and the fixed header of every data file it lists.
// It fails with a *PackageError when the manifest is missing or malformed,
// when a listed file is absent, or when a file's row count, checksum or
// format disagrees with the manifest. Payloads are not decoded until first
// use.
func Open(ctx context.Context, src Source, optFns ...Option) (*HF, error) {
	start := time.Now()
	o := applyOptions(optFns)

	hf, err := open(ctx, src, o)

	elapsed := time.Since(start)
	o.metricsCollector.RecordOpen(elapsed, err)
	nodes := 0
	if hf != nil {
		nodes = hf.meta.NodeCount
	}
	o.logger.LogOpen(ctx, src.String(), nodes, elapsed, err)
	return hf, err
}

func open(ctx context.Context, src Source, o options) (*HF, error) {
	if src.store == nil {
		return nil, fmt.Errorf("%w: empty source", ErrInvalidArgument)
	}

	var rc *resource.Controller
	if o.ioBytesPerSec > 0 {
		rc = resource.NewController(resource.Config{IOBytesPerSec: o.ioBytesPerSec})
	}

	store := src.store
	if src.remote && o.cacheBytes > 0 {
		store = blobstore.NewCachingStore(store, o.cacheBytes, o.cacheBlockSize, rc)
	}

	meta, err := manifest.Load(ctx, store)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, packageError(src.location, manifest.FileName, err)
	}

	hf := &HF{
		src:     src,
		store:   store,
		meta:    meta,
		opts:    o,
		log:     o.logger.WithPackage(meta.Name, meta.Version),
		metrics: o.metricsCollector,
		rc:      rc,
	}
	if err := hf.verify(ctx); err != nil {
		return nil, err
	}

	names := make([]string, len(meta.Collections))
	rows := make([]int, len(meta.Collections))
	for i, c := range meta.Collections {
		names[i] = c.Name
		rows[i] = c.Rows
	}
	hf.layout = corpus.NewLayout(names, rows)
	return hf, nil
}

// verify checks every data file header against the manifest.
func (hf *HF) verify(ctx context.Context) error {
	for _, name := range []string{manifest.IndexTextArabic, manifest.IndexTextEnglish} {
		ix := hf.meta.Indexes[name]
		if v := ix.Params["tokenizer_version"]; v != text.TokenizerVersion {
			return packageError(hf.src.location, ix.File,
				fmt.Errorf("%w: index built with %q, have %q", lexical.ErrTokenizerMismatch, v, text.TokenizerVersion))
		}
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(openConcurrency)
	for _, e := range hf.meta.Entries() {
		eg.Go(func() error {
			if err := hf.checkEntry(ctx, e); err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				return packageError(hf.src.location, e.File, err)
			}
			return nil
		})
	}
	return eg.Wait()
}

func (hf *HF) checkEntry(ctx context.Context, e manifest.Entry) error {
	head, size, err := blobstore.ReadHead(ctx, hf.store, e.File, blockfile.HeaderSize)
	if err != nil {
		return err
	}
	h, err := blockfile.ParseHeader(head)
	if err != nil {
		return err
	}
	if h.Size() != size {
		return fmt.Errorf("%w: file has %d bytes, header describes %d", blockfile.ErrCorrupt, size, h.Size())
	}
	if h.Rows != uint64(e.Rows) {
		return fmt.Errorf("%w: %d rows, manifest declares %d", blockfile.ErrCorrupt, h.Rows, e.Rows)
	}
	if h.Checksum != e.Checksum {
		return fmt.Errorf("%w: checksum %08x, manifest declares %08x", blockfile.ErrCorrupt, h.Checksum, e.Checksum)
	}
	return nil
}

// materialize reads file and hands its contents to decode. Read and decode
// failures become a *PackageError; cancellation and timeouts pass through.
func (hf *HF) materialize(ctx context.Context, structure, file string, decode func([]byte) error) error {
	start := time.Now()
	var n int64
	err := func() error {
		b, err := hf.store.Open(ctx, file)
		if err != nil {
			return err
		}
		defer b.Close()

		n = b.Size()
		if err := hf.rc.AcquireIO(ctx, int(n)); err != nil {
			return err
		}
		data, err := blobstore.ReadAll(ctx, b)
		if err != nil {
			return err
		}
		return decode(data)
	}()
	if err != nil && ctx.Err() == nil {
		err = packageError(hf.src.location, file, err)
	}

	elapsed := time.Since(start)
	hf.metrics.RecordMaterialize(structure, n, elapsed, err)
	hf.log.LogMaterialize(ctx, structure, n, elapsed, err)
	return err
}

func (hf *HF) table(ctx context.Context, collection string) (*corpus.Table, error) {
	entry, ok := hf.meta.Collection(collection)
	if !ok {
		return nil, fmt.Errorf("%w: collection %q", ErrNotFound, collection)
	}
	base, _ := hf.layout.Base(collection)
	return hf.tables.Get(ctx, collection, hf.opts.materializeTimeout, func(ctx context.Context) (*corpus.Table, error) {
		var t *corpus.Table
		err := hf.materialize(ctx, "corpus/"+collection, entry.File, func(data []byte) error {
			var err error
			if t, err = corpus.DecodeTable(data, base); err != nil {
				return err
			}
			if t.Len() != entry.Rows || t.Collection() != collection {
				return fmt.Errorf("%w: table holds %d rows of %q", blockfile.ErrCorrupt, t.Len(), t.Collection())
			}
			return nil
		})
		return t, err
	})
}

func (hf *HF) column(ctx context.Context, name string) (*corpus.Column, error) {
	f, ok := hf.meta.Features[name]
	if !ok {
		return nil, fmt.Errorf("%w: feature %q", ErrNotFound, name)
	}
	return hf.features.Get(ctx, name, hf.opts.materializeTimeout, func(ctx context.Context) (*corpus.Column, error) {
		var c *corpus.Column
		err := hf.materialize(ctx, "features/"+name, f.File, func(data []byte) error {
			var err error
			if c, err = corpus.DecodeColumn(data); err != nil {
				return err
			}
			if c.Type() != f.Type || c.Rows() != f.Rows {
				return fmt.Errorf("%w: column is %d rows of %s, manifest declares %d rows of %s",
					blockfile.ErrCorrupt, c.Rows(), c.Type(), f.Rows, f.Type)
			}
			return nil
		})
		return c, err
	})
}

func (hf *HF) textIndex(ctx context.Context, lang model.Language) (*lexical.Index, error) {
	name := "text_" + string(lang)
	entry := hf.meta.Indexes[name]
	return hf.text.Get(ctx, lang, hf.opts.materializeTimeout, func(ctx context.Context) (*lexical.Index, error) {
		var ix *lexical.Index
		err := hf.materialize(ctx, "indexes/"+name, entry.File, func(data []byte) error {
			var err error
			if ix, err = lexical.Decode(data); err != nil {
				return err
			}
			if ix.Language() != lang {
				return fmt.Errorf("%w: index language %q", blockfile.ErrCorrupt, ix.Language())
			}
			return nil
		})
		return ix, err
	})
}

func (hf *HF) matrix(ctx context.Context) (*similarity.Matrix, error) {
	entry := hf.meta.Indexes[manifest.IndexTFIDF]
	return hf.tfidf.Get(ctx, hf.opts.materializeTimeout, func(ctx context.Context) (*similarity.Matrix, error) {
		var m *similarity.Matrix
		err := hf.materialize(ctx, "indexes/"+manifest.IndexTFIDF, entry.File, func(data []byte) error {
			var err error
			m, err = similarity.Decode(data)
			return err
		})
		return m, err
	})
}

func (hf *HF) narrators(ctx context.Context) (*graph.Graph, error) {
	entry := hf.meta.Indexes[manifest.IndexGraph]
	return hf.graph.Get(ctx, hf.opts.materializeTimeout, func(ctx context.Context) (*graph.Graph, error) {
		var g *graph.Graph
		err := hf.materialize(ctx, "indexes/"+manifest.IndexGraph, entry.File, func(data []byte) error {
			var err error
			g, err = graph.Decode(data, hf.meta.MaxChainLength)
			return err
		})
		return g, err
	})
}

// Meta returns a copy of the package manifest.
func (hf *HF) Meta() manifest.Manifest {
	return *hf.meta
}

// Len returns the number of corpus nodes.
func (hf *HF) Len() int { return hf.meta.NodeCount }

// Collections returns the collection names in corpus order.
func (hf *HF) Collections() []string {
	return append([]string(nil), hf.layout.Collections()...)
}

// Stats reports which structures have been materialized.
type Stats struct {
	Tables   []string
	Features []string
	Text     []string
	TFIDF    bool
	Graph    bool
}

// Stats returns the materialization state of the handle.
func (hf *HF) Stats() Stats {
	var s Stats
	hf.tables.Range(func(c string, _ *corpus.Table) bool {
		s.Tables = append(s.Tables, c)
		return true
	})
	hf.features.Range(func(name string, _ *corpus.Column) bool {
		s.Features = append(s.Features, name)
		return true
	})
	hf.text.Range(func(lang model.Language, _ *lexical.Index) bool {
		s.Text = append(s.Text, string(lang))
		return true
	})
	sort.Strings(s.Tables)
	sort.Strings(s.Features)
	sort.Strings(s.Text)
	_, s.TFIDF = hf.tfidf.Loaded()
	_, s.Graph = hf.graph.Loaded()
	return s
}

func (hf *HF) check() error {
	if hf == nil || hf.closed.Load() {
		return ErrClosed
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
