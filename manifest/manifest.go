package manifest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/hupe1980/hfabric/blobstore"
	"github.com/hupe1980/hfabric/codec"
	"github.com/hupe1980/hfabric/internal/fs"
)

const (
	// FileName is the manifest location relative to the package root.
	FileName = "meta.json"

	// FormatVersion is the package format this module reads and writes.
	FormatVersion = 1
)

// Index names.
const (
	IndexTextArabic  = "text_arabic"
	IndexTextEnglish = "text_english"
	IndexTFIDF       = "tfidf"
	IndexGraph       = "graph"
)

// Feature value types.
const (
	TypeInt    = "int"
	TypeString = "string"
	TypeBool   = "bool"
)

var (
	// ErrNotFound is returned when the package has no meta.json.
	ErrNotFound = errors.New("manifest not found")

	// ErrIncompatibleVersion is returned for an unsupported format_version.
	ErrIncompatibleVersion = errors.New("incompatible package format version")

	// ErrInvalid is returned when the manifest is malformed or inconsistent.
	ErrInvalid = errors.New("invalid manifest")
)

var plainName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// ValidName reports whether name can be used as a collection, feature or
// index name, i.e. as the base name of a data file.
func ValidName(name string) bool {
	return plainName.MatchString(name)
}

// EntryFile returns the package-relative data file of an entry.
func EntryFile(kind, name string) string {
	var dir string
	switch kind {
	case "collection":
		dir = "corpus"
	case "feature":
		dir = "features"
	default:
		dir = "indexes"
	}
	return dir + "/" + name + ".hfb"
}

// Manifest is the decoded meta.json.
type Manifest struct {
	Name           string             `json:"name"`
	Version        string             `json:"version"`
	FormatVersion  int                `json:"format_version"`
	BuiltAt        time.Time          `json:"built_at"`
	Collections    []Collection       `json:"collections"`
	Features       map[string]Feature `json:"features"`
	Indexes        map[string]Index   `json:"indexes"`
	NodeCount      int                `json:"node_count"`
	MaxChainLength int                `json:"max_chain_length"`
	SkippedRecords int                `json:"skipped_records"`
	SkipReasons    map[string]int     `json:"skip_reasons,omitempty"`
	ContentDigest  string             `json:"content_digest"`
	Compression    string             `json:"compression"`
}

// Collection describes one corpus table file.
type Collection struct {
	Name     string `json:"name"`
	File     string `json:"file"`
	Rows     int    `json:"rows"`
	Checksum uint32 `json:"checksum"`
}

// Feature describes one feature column file.
type Feature struct {
	Type     string `json:"type"`
	File     string `json:"file"`
	Rows     int    `json:"rows"`
	Checksum uint32 `json:"checksum"`
}

// Index describes one index file.
type Index struct {
	File     string            `json:"file"`
	Rows     int               `json:"rows"`
	Checksum uint32            `json:"checksum"`
	Params   map[string]string `json:"params,omitempty"`
}

// Param returns an index parameter parsed as int.
func (ix Index) Param(name string) (int, bool) {
	v, ok := ix.Params[name]
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Entry is a data file referenced by the manifest.
type Entry struct {
	Kind     string // "collection", "feature" or "index"
	Name     string
	File     string
	Rows     int
	Checksum uint32
}

// Entries returns every referenced data file sorted by file name.
func (m *Manifest) Entries() []Entry {
	out := make([]Entry, 0, len(m.Collections)+len(m.Features)+len(m.Indexes))
	for _, c := range m.Collections {
		out = append(out, Entry{Kind: "collection", Name: c.Name, File: c.File, Rows: c.Rows, Checksum: c.Checksum})
	}
	for name, f := range m.Features {
		out = append(out, Entry{Kind: "feature", Name: name, File: f.File, Rows: f.Rows, Checksum: f.Checksum})
	}
	for name, ix := range m.Indexes {
		out = append(out, Entry{Kind: "index", Name: name, File: ix.File, Rows: ix.Rows, Checksum: ix.Checksum})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].File < out[j].File })
	return out
}

// Digest computes the content digest over file names and checksums.
func (m *Manifest) Digest() string {
	h := sha256.New()
	for _, e := range m.Entries() {
		fmt.Fprintf(h, "%s\x00%08x\n", e.File, e.Checksum)
	}
	return "sha256:" + hex.EncodeToString(h.Sum(nil))
}

// Collection returns the collection entry by name.
func (m *Manifest) Collection(name string) (Collection, bool) {
	for _, c := range m.Collections {
		if c.Name == name {
			return c, true
		}
	}
	return Collection{}, false
}

// Validate checks the manifest for internal consistency. It does not touch
// the data files.
func (m *Manifest) Validate() error {
	if m.FormatVersion != FormatVersion {
		return fmt.Errorf("%w: %d (expected %d)", ErrIncompatibleVersion, m.FormatVersion, FormatVersion)
	}
	if m.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalid)
	}
	if len(m.Collections) == 0 {
		return fmt.Errorf("%w: no collections", ErrInvalid)
	}

	total := 0
	for i, c := range m.Collections {
		if c.Name == "" {
			return fmt.Errorf("%w: collection %d has no name", ErrInvalid, i)
		}
		if i > 0 && m.Collections[i-1].Name >= c.Name {
			return fmt.Errorf("%w: collections not sorted at %q", ErrInvalid, c.Name)
		}
		if c.Rows < 0 {
			return fmt.Errorf("%w: collection %q has negative rows", ErrInvalid, c.Name)
		}
		total += c.Rows
	}
	if total != m.NodeCount {
		return fmt.Errorf("%w: node_count %d but collections hold %d rows", ErrInvalid, m.NodeCount, total)
	}

	for name, f := range m.Features {
		switch f.Type {
		case TypeInt, TypeString, TypeBool:
		default:
			return fmt.Errorf("%w: feature %q has unknown type %q", ErrInvalid, name, f.Type)
		}
		if f.Rows != m.NodeCount {
			return fmt.Errorf("%w: feature %q has %d rows, want %d", ErrInvalid, name, f.Rows, m.NodeCount)
		}
	}

	for _, name := range []string{IndexTextArabic, IndexTextEnglish, IndexTFIDF} {
		ix, ok := m.Indexes[name]
		if !ok {
			return fmt.Errorf("%w: missing index %q", ErrInvalid, name)
		}
		if ix.Rows != m.NodeCount {
			return fmt.Errorf("%w: index %q has %d rows, want %d", ErrInvalid, name, ix.Rows, m.NodeCount)
		}
	}
	if _, ok := m.Indexes[IndexGraph]; !ok {
		return fmt.Errorf("%w: missing index %q", ErrInvalid, IndexGraph)
	}
	if m.MaxChainLength < 0 {
		return fmt.Errorf("%w: negative max_chain_length", ErrInvalid)
	}

	seen := make(map[string]bool)
	for _, e := range m.Entries() {
		if !ValidName(e.Name) || e.File != EntryFile(e.Kind, e.Name) {
			return fmt.Errorf("%w: %s %q has bad file path %q", ErrInvalid, e.Kind, e.Name, e.File)
		}
		if seen[e.File] {
			return fmt.Errorf("%w: file %q referenced twice", ErrInvalid, e.File)
		}
		seen[e.File] = true
	}
	return nil
}

// Encode serializes the manifest as indented JSON.
func Encode(m *Manifest) ([]byte, error) {
	if c, ok := codec.Meta.(codec.GoJSON); ok {
		return c.MarshalIndent(m)
	}
	return codec.Meta.Marshal(m)
}

// Decode parses and validates a manifest.
func Decode(data []byte) (*Manifest, error) {
	var m Manifest
	if err := codec.Meta.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Load reads meta.json from a package store.
func Load(ctx context.Context, store blobstore.BlobStore) (*Manifest, error) {
	data, err := blobstore.ReadFile(ctx, store, FileName)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return Decode(data)
}

// Write stores meta.json in dir, fsynced.
func Write(fsys fs.FileSystem, dir string, m *Manifest) error {
	data, err := Encode(m)
	if err != nil {
		return err
	}
	return fs.WriteFile(fsys, filepath.Join(dir, FileName), data, 0o644)
}
