package testutil

import (
	"bytes"
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	gojson "github.com/goccy/go-json"
	"github.com/hupe1980/hfabric/builder"
	"github.com/hupe1980/hfabric/model"
)

// WriteNDJSON writes recs as one JSON object per line to dir/name and
// returns the file path.
func WriteNDJSON(tb testing.TB, dir, name string, recs ...model.RawRecord) string {
	tb.Helper()
	var buf bytes.Buffer
	enc := gojson.NewEncoder(&buf)
	for i := range recs {
		if err := enc.Encode(&recs[i]); err != nil {
			tb.Fatalf("encode record %d: %v", i, err)
		}
	}
	return WriteFile(tb, dir, name, buf.Bytes())
}

// WriteFile writes data to dir/name, creating dir if needed.
func WriteFile(tb testing.TB, dir, name string, data []byte) string {
	tb.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		tb.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		tb.Fatal(err)
	}
	return path
}

// BuildPackage builds a package from recs in a temporary directory and
// returns its path.
func BuildPackage(tb testing.TB, recs ...model.RawRecord) string {
	tb.Helper()
	root := tb.TempDir()
	raw := filepath.Join(root, "raw")
	WriteNDJSON(tb, raw, "fixture.ndjson", recs...)

	out := filepath.Join(root, "pkg")
	if _, err := builder.Build(context.Background(), raw, out, builder.Options{Name: "fixture", Version: "test"}); err != nil {
		tb.Fatalf("build fixture package: %v", err)
	}
	return out
}

// MercyRecords returns two English-only hadiths sharing the term "mercy".
func MercyRecords() []model.RawRecord {
	return []model.RawRecord{
		{ID: "mercy_1_1", English: "Allah's mercy extends to all creatures"},
		{ID: "mercy_1_2", English: "The Prophet spoke of mercy and patience"},
	}
}

// ChainRecords returns hadiths with overlapping narrator chains, in
// English and Arabic, plus one without a parseable chain.
func ChainRecords() []model.RawRecord {
	return []model.RawRecord{
		{
			ID:      "chains_1_1",
			English: "Abu Huraira narrated that prayer is light",
			Isnad:   "Yahya said Malik said Nafi",
		},
		{
			ID:      "chains_1_2",
			English: "Fasting is a shield",
			Isnad:   "Qutayba said Malik said Nafi",
		},
		{
			ID:     "chains_1_3",
			Arabic: "حَدَّثَنَا الْحُمَيْدِيُّ قَالَ حَدَّثَنَا سُفْيَانُ عَنْ مَالِكٍ قَالَ رَسُولُ اللَّهِ الصَّلَاةُ نُورٌ",
		},
		{
			ID:      "chains_2_1",
			English: "Charity does not decrease wealth",
		},
	}
}

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

var (
	englishWords = strings.Fields(`mercy prayer charity fasting patience knowledge
		intention faith truth kindness neighbour parents orphan traveller market
		water night mosque journey gift oath reward sin repentance guidance`)
	arabicWords = strings.Fields(`رحمة صلاة صدقة صيام صبر علم نية إيمان صدق
		جار والدين يتيم سفر سوق ماء ليل مسجد هدية يمين أجر توبة هدى`)
	narrators = strings.Fields(`Malik Nafi Yahya Qutayba Sufyan Zuhri Urwa
		Aisha Shuba Hammad Ayyub Layth`)
)

func (r *RNG) pick(words []string, n int) string {
	out := make([]string, n)
	for i := range out {
		out[i] = words[r.rand.Intn(len(words))]
	}
	return strings.Join(out, " ")
}

// Records generates n random raw records of a collection. Identifiers are
// "<collection>_<book>_<number>" with ten hadiths per book. About one in
// ten records has no English text, and most carry a chain of two to five
// narrators.
func (r *RNG) Records(collection string, n int) []model.RawRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.RawRecord, n)
	for i := range out {
		rec := model.RawRecord{
			ID:     model.FormatID(collection, i/10+1, i%10+1),
			Arabic: r.pick(arabicWords, 4+r.rand.Intn(8)),
		}
		if r.rand.Intn(10) > 0 {
			rec.English = r.pick(englishWords, 4+r.rand.Intn(8))
		}
		if r.rand.Intn(5) > 0 {
			rec.Isnad = strings.ReplaceAll(r.pick(narrators, 2+r.rand.Intn(4)), " ", " said ")
		}
		out[i] = rec
	}
	return out
}
