package builder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/hfabric/corpus"
	"github.com/hupe1980/hfabric/graph"
	"github.com/hupe1980/hfabric/internal/blockfile"
	"github.com/hupe1980/hfabric/internal/fs"
	"github.com/hupe1980/hfabric/internal/resource"
	"github.com/hupe1980/hfabric/isnad"
	"github.com/hupe1980/hfabric/lexical"
	"github.com/hupe1980/hfabric/manifest"
	"github.com/hupe1980/hfabric/model"
	"github.com/hupe1980/hfabric/similarity"
	"github.com/hupe1980/hfabric/text"
	"golang.org/x/sync/errgroup"
)

// Options configures a build.
type Options struct {
	// Name and Version are recorded in meta.json. Name defaults to the base
	// name of the output path, Version to "0".
	Name    string
	Version string

	// Compression is the block compression for every data file.
	Compression blockfile.Compression

	// Resources bounds concurrent index construction. nil means one task at
	// a time.
	Resources *resource.Controller

	// Timeout bounds the whole build. 0 disables it.
	Timeout time.Duration

	// FS is the file system to write to. nil means the local file system.
	FS fs.FileSystem

	// Logger receives progress messages. nil disables logging.
	Logger *slog.Logger

	// Now stamps built_at. nil means time.Now.
	Now func() time.Time
}

func (o *Options) defaults(out string) {
	if o.Name == "" {
		o.Name = filepath.Base(out)
	}
	if o.Version == "" {
		o.Version = "0"
	}
	if o.FS == nil {
		o.FS = fs.Default
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Result describes a finished build.
type Result struct {
	Path     string
	Manifest *manifest.Manifest
	Summary  *Summary
	Duration time.Duration
}

// Build reads raw records from inputDir and publishes a package at out.
// On failure the returned Result still carries the input Summary when
// reading got that far.
func Build(ctx context.Context, inputDir, out string, opts Options) (*Result, error) {
	opts.defaults(out)
	start := time.Now()

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	b := &build{opts: opts, log: opts.Logger}
	res, err := b.run(ctx, inputDir, out)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && opts.Timeout > 0 {
			err = fmt.Errorf("%w after %s: %w", ErrBuildTimeout, opts.Timeout, err)
		}
		return res, err
	}
	res.Duration = time.Since(start)
	b.log.InfoContext(ctx, "package built",
		"path", out,
		"nodes", res.Manifest.NodeCount,
		"skipped", res.Summary.Skipped,
		"duration", res.Duration)
	return res, nil
}

type build struct {
	opts Options
	log  *slog.Logger

	mu      sync.Mutex
	m       *manifest.Manifest
	tmp     string
	records []model.Record
	chains  []int // narrator count per ordinal, -1 without chain
}

func (b *build) run(ctx context.Context, inputDir, out string) (*Result, error) {
	summary, err := b.readInput(ctx, inputDir)
	res := &Result{Path: out, Summary: summary}
	if err != nil {
		return res, err
	}
	if summary.Valid == 0 {
		return res, fmt.Errorf("%w: read %d records from %d files", ErrNoValidRecords, summary.Read, summary.Files)
	}
	for _, reason := range summary.ReasonNames() {
		b.log.WarnContext(ctx, "records skipped", "reason", reason, "count", summary.Reasons[reason])
	}

	corpus.Sort(b.records)
	g := b.parseChains(summary)

	parent := filepath.Dir(out)
	if err := b.opts.FS.MkdirAll(parent, 0o755); err != nil {
		return res, err
	}
	b.tmp, err = b.opts.FS.MkdirTemp(parent, "."+filepath.Base(out)+".tmp-")
	if err != nil {
		return res, err
	}
	defer func() {
		if b.tmp != "" {
			_ = b.opts.FS.RemoveAll(b.tmp)
		}
	}()
	for _, sub := range []string{"corpus", "features", "indexes"} {
		if err := b.opts.FS.MkdirAll(filepath.Join(b.tmp, sub), 0o755); err != nil {
			return res, err
		}
	}

	b.m = &manifest.Manifest{
		Name:           b.opts.Name,
		Version:        b.opts.Version,
		FormatVersion:  manifest.FormatVersion,
		BuiltAt:        b.opts.Now().UTC(),
		Features:       make(map[string]manifest.Feature),
		Indexes:        make(map[string]manifest.Index),
		NodeCount:      len(b.records),
		MaxChainLength: g.MaxChainLength(),
		SkippedRecords: summary.Skipped,
		SkipReasons:    summary.Reasons,
		Compression:    b.opts.Compression.String(),
	}
	if err := b.writeAll(ctx, g); err != nil {
		return res, err
	}
	b.m.ContentDigest = b.m.Digest()
	if err := b.m.Validate(); err != nil {
		return res, fmt.Errorf("built manifest is invalid: %w", err)
	}
	if err := manifest.Write(b.opts.FS, b.tmp, b.m); err != nil {
		return res, err
	}
	if err := b.syncTree(); err != nil {
		return res, err
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	if err := b.publish(out); err != nil {
		return res, err
	}
	b.tmp = ""
	res.Manifest = b.m
	return res, nil
}

func (b *build) readInput(ctx context.Context, dir string) (*Summary, error) {
	summary := newSummary()
	files, err := listSources(b.opts.FS, dir)
	if err != nil {
		return summary, err
	}
	seen := make(map[string]bool)
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Files++
		name := filepath.Base(path)
		err := readSource(b.opts.FS, path, func(it rawItem) {
			summary.Read++
			if it.err != nil {
				summary.skip(&ValidationError{File: name, Line: it.line, Reason: ReasonMalformed, Err: it.err})
				return
			}
			rec, verr := toRecord(&it.rec, name, it.line)
			if verr != nil {
				summary.skip(verr)
				return
			}
			if seen[rec.ID] {
				summary.skip(&ValidationError{File: name, Line: it.line, ID: rec.ID, Reason: ReasonDuplicate})
				return
			}
			seen[rec.ID] = true
			summary.Valid++
			b.records = append(b.records, rec)
		})
		if err != nil {
			return summary, fmt.Errorf("read %s: %w", path, err)
		}
		b.log.DebugContext(ctx, "source read", "file", name, "total_records", summary.Read)
	}
	return summary, nil
}

// parseChains runs the isnād grammar over every record in corpus order and
// feeds the narrator graph builder.
func (b *build) parseChains(summary *Summary) *graph.Builder {
	g := graph.NewBuilder()
	b.chains = make([]int, len(b.records))
	for i := range b.records {
		b.chains[i] = -1
		names, ok := isnad.ParseChain(b.records[i].Isnad)
		if !ok {
			continue
		}
		if n := g.Add(b.records[i].ID, names); n > 0 {
			b.chains[i] = n
			summary.Chains++
		}
	}
	return g
}

// writeAll builds and writes every data file concurrently.
func (b *build) writeAll(ctx context.Context, gb *graph.Builder) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(b.opts.Resources.MaxWorkers())

	task := func(name string, fn func() error) {
		eg.Go(func() error {
			if err := b.opts.Resources.AcquireWorker(ctx); err != nil {
				return err
			}
			defer b.opts.Resources.ReleaseWorker()
			if err := ctx.Err(); err != nil {
				return err
			}
			t := time.Now()
			if err := fn(); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			b.log.DebugContext(ctx, "built", "part", name, "duration", time.Since(t))
			return nil
		})
	}

	for _, coll := range b.collections() {
		task("corpus/"+coll.name, func() error { return b.writeTable(coll) })
	}
	for _, spec := range featureSpecs {
		task("features/"+spec.name, func() error { return b.writeFeature(spec) })
	}
	for _, lang := range text.Languages {
		task("indexes/text_"+string(lang), func() error { return b.writeTextIndex(lang) })
	}
	task("indexes/tfidf", b.writeTFIDF)
	task("indexes/graph", func() error { return b.writeGraph(gb) })

	if err := eg.Wait(); err != nil {
		return err
	}
	sort.Slice(b.m.Collections, func(i, j int) bool { return b.m.Collections[i].Name < b.m.Collections[j].Name })
	return nil
}

type collection struct {
	name    string
	base    model.Ordinal
	records []model.Record
}

// collections splits the sorted records into per-collection runs.
func (b *build) collections() []collection {
	var out []collection
	for i := 0; i < len(b.records); {
		j := i
		for j < len(b.records) && b.records[j].Collection == b.records[i].Collection {
			j++
		}
		out = append(out, collection{name: b.records[i].Collection, base: model.Ordinal(i), records: b.records[i:j]})
		i = j
	}
	return out
}

func (b *build) writeBlock(rel string, data []byte) error {
	return fs.WriteFile(b.opts.FS, filepath.Join(b.tmp, filepath.FromSlash(rel)), data, 0o644)
}

func (b *build) writeTable(c collection) error {
	rel := "corpus/" + c.name + ".hfb"
	data, h, err := corpus.EncodeTable(corpus.NewTable(c.name, c.base, c.records), b.opts.Compression)
	if err != nil {
		return err
	}
	if err := b.writeBlock(rel, data); err != nil {
		return err
	}
	b.mu.Lock()
	b.m.Collections = append(b.m.Collections, manifest.Collection{Name: c.name, File: rel, Rows: len(c.records), Checksum: h.Checksum})
	b.mu.Unlock()
	return nil
}

type featureSpec struct {
	name  string
	typ   string
	value func(rec *model.Record, chainLen int) (any, bool)
}

var featureSpecs = []featureSpec{
	{corpus.FeatureNarratorCount, manifest.TypeInt, func(_ *model.Record, n int) (any, bool) { return n, n >= 0 }},
	{corpus.FeatureGrade, manifest.TypeString, func(r *model.Record, _ int) (any, bool) { return r.Grade, r.Grade != "" }},
	{corpus.FeatureReference, manifest.TypeString, func(r *model.Record, _ int) (any, bool) { return r.Reference, r.Reference != "" }},
	{corpus.FeatureHasArabic, manifest.TypeBool, func(r *model.Record, _ int) (any, bool) { return hasText(r.Arabic), true }},
	{corpus.FeatureHasEnglish, manifest.TypeBool, func(r *model.Record, _ int) (any, bool) { return hasText(r.English), true }},
	{corpus.FeatureCollection, manifest.TypeString, func(r *model.Record, _ int) (any, bool) { return r.Collection, true }},
}

func hasText(s string) bool { return strings.TrimSpace(s) != "" }

func (b *build) writeFeature(spec featureSpec) error {
	col, err := corpus.NewColumn(spec.name, spec.typ, len(b.records))
	if err != nil {
		return err
	}
	for i := range b.records {
		if v, ok := spec.value(&b.records[i], b.chains[i]); ok {
			if err := col.Set(model.Ordinal(i), v); err != nil {
				return err
			}
		}
	}
	rel := "features/" + spec.name + ".hfb"
	data, h, err := corpus.EncodeColumn(col, b.opts.Compression)
	if err != nil {
		return err
	}
	if err := b.writeBlock(rel, data); err != nil {
		return err
	}
	b.mu.Lock()
	b.m.Features[spec.name] = manifest.Feature{Type: spec.typ, File: rel, Rows: col.Rows(), Checksum: h.Checksum}
	b.mu.Unlock()
	return nil
}

func (b *build) writeTextIndex(lang model.Language) error {
	ib := lexical.NewBuilder(lang, len(b.records))
	for i := range b.records {
		s := b.records[i].English
		if lang == model.Arabic {
			s = b.records[i].Arabic
		}
		if err := ib.Add(model.Ordinal(i), s); err != nil {
			return err
		}
	}
	ix := ib.Build()
	name := "text_" + string(lang)
	rel := "indexes/" + name + ".hfb"
	data, h, err := lexical.Encode(ix, b.opts.Compression)
	if err != nil {
		return err
	}
	if err := b.writeBlock(rel, data); err != nil {
		return err
	}
	b.mu.Lock()
	b.m.Indexes[name] = manifest.Index{
		File:     rel,
		Rows:     ix.Rows(),
		Checksum: h.Checksum,
		Params: map[string]string{
			"tokenizer_version": text.TokenizerVersion,
			"language":          string(lang),
			"vocab_size":        strconv.Itoa(ix.VocabularySize()),
		},
	}
	b.mu.Unlock()
	return nil
}

func (b *build) writeTFIDF() error {
	sb := similarity.NewBuilder()
	for i := range b.records {
		sb.Add(b.records[i].ID, b.records[i].Arabic, b.records[i].English)
	}
	m := sb.Build()
	rel := "indexes/tfidf.hfb"
	data, h, err := similarity.Encode(m, b.opts.Compression)
	if err != nil {
		return err
	}
	if err := b.writeBlock(rel, data); err != nil {
		return err
	}
	b.mu.Lock()
	b.m.Indexes[manifest.IndexTFIDF] = manifest.Index{
		File:     rel,
		Rows:     m.Rows(),
		Checksum: h.Checksum,
		Params: map[string]string{
			"tokenizer_version": text.TokenizerVersion,
			"weighting":         "count*smooth_idf,l2",
			"vocab_size":        strconv.Itoa(m.VocabularySize()),
			"nnz":               strconv.Itoa(m.NNZ()),
		},
	}
	b.mu.Unlock()
	return nil
}

func (b *build) writeGraph(gb *graph.Builder) error {
	g, err := gb.Build()
	if err != nil {
		return err
	}
	rel := "indexes/graph.hfb"
	data, h, err := graph.Encode(g, b.opts.Compression)
	if err != nil {
		return err
	}
	if err := b.writeBlock(rel, data); err != nil {
		return err
	}
	b.mu.Lock()
	b.m.Indexes[manifest.IndexGraph] = manifest.Index{
		File:     rel,
		Rows:     g.Len(),
		Checksum: h.Checksum,
		Params: map[string]string{
			"chains":  strconv.Itoa(g.ChainCount()),
			"aliases": strconv.Itoa(len(g.Aliases())),
		},
	}
	b.mu.Unlock()
	return nil
}

func (b *build) syncTree() error {
	for _, sub := range []string{"corpus", "features", "indexes", ""} {
		if err := fs.SyncDir(b.opts.FS, filepath.Join(b.tmp, sub)); err != nil {
			return err
		}
	}
	return nil
}

// publish renames the staged package onto out. An existing package is
// moved aside first and removed once the new one is in place.
func (b *build) publish(out string) error {
	fsys := b.opts.FS
	var old string
	if _, err := fsys.Stat(out); err == nil {
		old = fmt.Sprintf("%s.old-%d", out, time.Now().UnixNano())
		if err := fsys.Rename(out, old); err != nil {
			return fmt.Errorf("move previous package aside: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := fsys.Rename(b.tmp, out); err != nil {
		if old != "" {
			if rerr := fsys.Rename(old, out); rerr != nil {
				return errors.Join(err, fmt.Errorf("restore previous package from %s: %w", old, rerr))
			}
		}
		return fmt.Errorf("publish package: %w", err)
	}
	if err := fs.SyncDir(fsys, filepath.Dir(out)); err != nil {
		return err
	}
	if old != "" {
		if err := fsys.RemoveAll(old); err != nil {
			b.log.Warn("could not remove previous package", "path", old, "error", err)
		}
	}
	return nil
}
