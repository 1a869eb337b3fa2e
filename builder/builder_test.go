package builder

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hupe1980/hfabric/corpus"
	"github.com/hupe1980/hfabric/internal/blockfile"
	"github.com/hupe1980/hfabric/internal/fs"
	"github.com/hupe1980/hfabric/internal/resource"
	"github.com/hupe1980/hfabric/manifest"
	"github.com/hupe1980/hfabric/model"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bukhariNDJSON = `{"id":"bukhari_1_2","arabic":"حدثنا عبد الله بن يوسف قال أخبرنا مالك عن هشام عن عائشة قال رسول الله صلى الله عليه وسلم","english":"Narrated Aisha: the Prophet said mercy","grade":"Sahih"}
{"id":"bukhari_1_1","arabic":"حدثنا الحميدي قال حدثنا سفيان قال رسول الله إنما الأعمال بالنيات","english":"Actions are judged by intentions","reference":"Sahih al-Bukhari 1"}
not json at all
{"id":"bukhari_1_2","arabic":"duplicate","english":"duplicate"}
{"collection":"Bukhari","volume":2,"number":7,"english":"Derived identifier with patience"}
{"id":"bukhari_1_9","arabic":"   ","english":""}
{"arabic":"no identifier"}
{"id":"bukhari_x_1","english":"bad identifier"}
`

const muslimJSON = `[
 {"id":"muslim_1_1","english":"The Prophet spoke of mercy and patience","isnad":"Yahya said Malik said Nafi"},
 {"id":"muslim_1_2","arabic":"الرحمة"}
]`

func writeInput(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bukhari_full.ndjson"), []byte(bukhariNDJSON), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "muslim.json"), []byte(muslimJSON), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("ignored"), 0o644))

	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	_, err = zw.Write([]byte(`{"id":"abu_dawud_3_4","english":"Compressed input"}` + "\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "abu_dawud.jsonl.zst"), buf.Bytes(), 0o644))
	return dir
}

func testOptions() Options {
	return Options{
		Name:        "hadith",
		Version:     "1",
		Compression: blockfile.CompressionZstd,
		Resources:   resource.NewController(resource.Config{MaxWorkers: 4}),
		Now:         func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) },
	}
}

func readColumn(t *testing.T, pkg string, m *manifest.Manifest, name string) *corpus.Column {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(pkg, m.Features[name].File))
	require.NoError(t, err)
	col, err := corpus.DecodeColumn(data)
	require.NoError(t, err)
	return col
}

func TestBuild(t *testing.T) {
	in := writeInput(t)
	out := filepath.Join(t.TempDir(), "pkg")

	res, err := Build(context.Background(), in, out, testOptions())
	require.NoError(t, err)

	s := res.Summary
	assert.Equal(t, 3, s.Files)
	assert.Equal(t, 11, s.Read)
	assert.Equal(t, 6, s.Valid)
	assert.Equal(t, 5, s.Skipped)
	assert.Equal(t, map[string]int{
		ReasonMalformed: 1,
		ReasonDuplicate: 1,
		ReasonNoText:    1,
		ReasonMissingID: 1,
		ReasonInvalidID: 1,
	}, s.Reasons)
	assert.Len(t, s.Errors, 5)
	assert.Equal(t, 3, s.Chains)

	m := res.Manifest
	require.NoError(t, m.Validate())
	assert.Equal(t, 6, m.NodeCount)
	assert.Equal(t, 5, m.SkippedRecords)
	assert.Equal(t, 4, m.MaxChainLength)
	assert.Equal(t, m.Digest(), m.ContentDigest)
	assert.Equal(t, "zstd", m.Compression)

	var colls []string
	for _, c := range m.Collections {
		colls = append(colls, c.Name)
	}
	assert.Equal(t, []string{"abu_dawud", "bukhari", "muslim"}, colls)
	assert.Equal(t, "hf-tok/1", m.Indexes[manifest.IndexTextArabic].Params["tokenizer_version"])

	for _, e := range m.Entries() {
		_, err := os.Stat(filepath.Join(out, e.File))
		assert.NoError(t, err, e.File)
	}

	// Corpus order: abu_dawud_3_4, bukhari_1_1, bukhari_1_2, bukhari_2_7, muslim_1_1, muslim_1_2.
	data, err := os.ReadFile(filepath.Join(out, "corpus", "bukhari.hfb"))
	require.NoError(t, err)
	tbl, err := corpus.DecodeTable(data, 1)
	require.NoError(t, err)
	rec, ok := tbl.At(1)
	require.True(t, ok)
	assert.Equal(t, "bukhari_1_1", rec.ID)
	assert.Equal(t, "حدثنا الحميدي قال حدثنا سفيان قال رسول الله إنما الأعمال بالنيات", rec.Arabic)
	derived, ok := tbl.Get("bukhari_2_7")
	require.True(t, ok)
	assert.Equal(t, "Derived identifier with patience", derived.English)

	count := readColumn(t, out, m, corpus.FeatureNarratorCount)
	v, ok := count.Value(1)
	require.True(t, ok)
	assert.Equal(t, int64(2), v)
	v, ok = count.Value(2)
	require.True(t, ok)
	assert.Equal(t, int64(4), v)
	_, ok = count.Value(0)
	assert.False(t, ok)

	grade := readColumn(t, out, m, corpus.FeatureGrade)
	v, ok = grade.Value(2)
	require.True(t, ok)
	assert.Equal(t, "Sahih", v)
	assert.Equal(t, 1, grade.Count())

	hasArabic := readColumn(t, out, m, corpus.FeatureHasArabic)
	v, _ = hasArabic.Value(4)
	assert.Equal(t, false, v)
	v, _ = hasArabic.Value(5)
	assert.Equal(t, true, v)

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(out), ".pkg.tmp-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestBuildIsDeterministic(t *testing.T) {
	in := writeInput(t)
	root := t.TempDir()

	a, err := Build(context.Background(), in, filepath.Join(root, "a"), testOptions())
	require.NoError(t, err)
	opts := testOptions()
	opts.Resources = nil
	opts.Now = time.Now
	b, err := Build(context.Background(), in, filepath.Join(root, "b"), opts)
	require.NoError(t, err)

	assert.Equal(t, a.Manifest.ContentDigest, b.Manifest.ContentDigest)
}

func TestBuildNoValidRecords(t *testing.T) {
	in := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(in, "x.ndjson"), []byte("{\"arabic\":\"x\"}\n{}\n"), 0o644))
	out := filepath.Join(t.TempDir(), "pkg")

	res, err := Build(context.Background(), in, out, testOptions())
	require.ErrorIs(t, err, ErrNoValidRecords)
	require.NotNil(t, res)
	assert.Equal(t, 2, res.Summary.Skipped)

	_, err = os.Stat(out)
	assert.True(t, os.IsNotExist(err))
}

func TestBuildReplacesExistingPackage(t *testing.T) {
	in := writeInput(t)
	out := filepath.Join(t.TempDir(), "pkg")
	require.NoError(t, os.MkdirAll(out, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(out, "stale.txt"), []byte("old"), 0o644))

	_, err := Build(context.Background(), in, out, testOptions())
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(out, "stale.txt"))
	assert.True(t, os.IsNotExist(err))
	entries, err := os.ReadDir(filepath.Dir(out))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestBuildFailureLeavesTargetUntouched(t *testing.T) {
	in := writeInput(t)
	out := filepath.Join(t.TempDir(), "pkg")

	_, err := Build(context.Background(), in, out, testOptions())
	require.NoError(t, err)
	before, err := os.ReadFile(filepath.Join(out, manifest.FileName))
	require.NoError(t, err)

	tests := []struct {
		name    string
		pattern string
		fault   fs.Fault
	}{
		{"write", "tfidf.hfb", fs.Fault{FailAfterBytes: 10}},
		{"sync", "graph.hfb", fs.Fault{FailAfterBytes: -1, FailOnSync: true}},
		{"manifest", manifest.FileName, fs.Fault{FailAfterBytes: -1, FailOnClose: true}},
		{"rename", ".pkg.tmp-", fs.Fault{FailAfterBytes: -1, FailOnRename: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			faulty := fs.NewFaultyFS(nil)
			faulty.AddRule(tt.pattern, tt.fault)

			opts := testOptions()
			opts.Version = "2"
			opts.FS = faulty
			_, err := Build(context.Background(), in, out, opts)
			require.ErrorIs(t, err, fs.ErrInjected)

			after, err := os.ReadFile(filepath.Join(out, manifest.FileName))
			require.NoError(t, err)
			assert.Equal(t, before, after)

			entries, err := os.ReadDir(filepath.Dir(out))
			require.NoError(t, err)
			for _, e := range entries {
				assert.False(t, strings.Contains(e.Name(), ".tmp-"), e.Name())
				assert.False(t, strings.Contains(e.Name(), ".old-"), e.Name())
			}
		})
	}
}

func TestBuildTimeout(t *testing.T) {
	in := writeInput(t)
	opts := testOptions()
	opts.Timeout = time.Nanosecond

	_, err := Build(context.Background(), in, filepath.Join(t.TempDir(), "pkg"), opts)
	assert.ErrorIs(t, err, ErrBuildTimeout)
}

func TestToRecord(t *testing.T) {
	rec, verr := toRecord(&model.RawRecord{
		ID:     "abu_dawud_2_15",
		Arabic: "حدثنا مسدد عن يحيى قال رسول الله صلى الله عليه وسلم",
	}, "f", 1)
	require.Nil(t, verr)
	assert.Equal(t, "abu_dawud", rec.Collection)
	assert.Equal(t, 2, rec.Book)
	assert.Equal(t, 15, rec.Number)
	assert.NotEmpty(t, rec.Isnad)

	_, verr = toRecord(&model.RawRecord{ID: "bukhari_1_1"}, "f", 3)
	require.NotNil(t, verr)
	assert.Equal(t, ReasonNoText, verr.Reason)
	assert.Contains(t, verr.Error(), "f:3: no_text")

	for _, id := range []string{"a/b_1_1", "../../x_1_1", `a\b_1_1`, "abu.dawud_1_1"} {
		_, verr = toRecord(&model.RawRecord{ID: id, English: "text"}, "f", 4)
		require.NotNil(t, verr, id)
		assert.Equal(t, ReasonInvalidID, verr.Reason, id)
	}
}

func TestBuildSkipsCollectionsThatAreNotPlainNames(t *testing.T) {
	in := t.TempDir()
	input := `{"id":"bukhari_1_1","english":"Actions are judged by intentions"}
{"id":"a/b_1_1","english":"nested collection"}
{"id":"../../x_1_1","english":"escaping collection"}
`
	require.NoError(t, os.WriteFile(filepath.Join(in, "mixed.ndjson"), []byte(input), 0o644))
	root := t.TempDir()
	out := filepath.Join(root, "pkgs", "pkg")

	res, err := Build(context.Background(), in, out, testOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Summary.Valid)
	assert.Equal(t, 2, res.Summary.Skipped)
	assert.Equal(t, map[string]int{ReasonInvalidID: 2}, res.Summary.Reasons)

	corpusFiles, err := os.ReadDir(filepath.Join(out, "corpus"))
	require.NoError(t, err)
	require.Len(t, corpusFiles, 1)
	assert.Equal(t, "bukhari.hfb", corpusFiles[0].Name())

	var stray []string
	require.NoError(t, filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && !strings.HasPrefix(p, out+string(filepath.Separator)) {
			stray = append(stray, p)
		}
		return nil
	}))
	assert.Empty(t, stray)
}
