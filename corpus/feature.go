package corpus

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/hfabric/codec"
	"github.com/hupe1980/hfabric/internal/blockfile"
	"github.com/hupe1980/hfabric/manifest"
	"github.com/hupe1980/hfabric/model"
)

// Built-in feature names.
const (
	FeatureNarratorCount = "narrator_count"
	FeatureGrade         = "grade"
	FeatureReference     = "reference"
	FeatureHasArabic     = "has_arabic"
	FeatureHasEnglish    = "has_english"
	FeatureCollection    = "collection"
)

// Column is a typed feature column indexed by ordinal.
type Column struct {
	name    string
	typ     string
	rows    int
	present *roaring.Bitmap
	ints    []int64
	strs    []string
	bools   []bool
}

type columnFile struct {
	Name    string   `msgpack:"name"`
	Type    string   `msgpack:"type"`
	Rows    int      `msgpack:"rows"`
	Present []byte   `msgpack:"present"`
	Ints    []int64  `msgpack:"ints,omitempty"`
	Strings []string `msgpack:"strings,omitempty"`
	Bools   []bool   `msgpack:"bools,omitempty"`
}

// NewColumn creates an empty column of the given manifest type.
func NewColumn(name, typ string, rows int) (*Column, error) {
	c := &Column{name: name, typ: typ, rows: rows, present: roaring.New()}
	switch typ {
	case manifest.TypeInt:
		c.ints = make([]int64, rows)
	case manifest.TypeString:
		c.strs = make([]string, rows)
	case manifest.TypeBool:
		c.bools = make([]bool, rows)
	default:
		return nil, fmt.Errorf("feature %q: unknown type %q", name, typ)
	}
	return c, nil
}

// Name returns the feature name.
func (c *Column) Name() string { return c.name }

// Type returns the manifest value type.
func (c *Column) Type() string { return c.typ }

// Rows returns the number of rows, present or not.
func (c *Column) Rows() int { return c.rows }

// Count returns the number of rows that carry a value.
func (c *Column) Count() int { return int(c.present.GetCardinality()) }

// Set stores v at ord. v must be int, int64, string or bool matching the
// column type.
func (c *Column) Set(ord model.Ordinal, v any) error {
	if int(ord) >= c.rows {
		return fmt.Errorf("feature %q: ordinal %d out of range", c.name, ord)
	}
	switch x := v.(type) {
	case int:
		if c.ints == nil {
			return c.typeError(v)
		}
		c.ints[ord] = int64(x)
	case int64:
		if c.ints == nil {
			return c.typeError(v)
		}
		c.ints[ord] = x
	case string:
		if c.strs == nil {
			return c.typeError(v)
		}
		c.strs[ord] = x
	case bool:
		if c.bools == nil {
			return c.typeError(v)
		}
		c.bools[ord] = x
	default:
		return c.typeError(v)
	}
	c.present.Add(uint32(ord))
	return nil
}

func (c *Column) typeError(v any) error {
	return fmt.Errorf("feature %q: cannot store %T in %s column", c.name, v, c.typ)
}

// Value returns the value at ord. ok is false for absent values.
func (c *Column) Value(ord model.Ordinal) (v any, ok bool) {
	if int(ord) >= c.rows || !c.present.Contains(uint32(ord)) {
		return nil, false
	}
	switch c.typ {
	case manifest.TypeInt:
		return c.ints[ord], true
	case manifest.TypeString:
		return c.strs[ord], true
	default:
		return c.bools[ord], true
	}
}

// EncodeColumn serializes c as a block file.
func EncodeColumn(c *Column, comp blockfile.Compression) ([]byte, blockfile.Header, error) {
	c.present.RunOptimize()
	present, err := c.present.ToBytes()
	if err != nil {
		return nil, blockfile.Header{}, err
	}
	f := columnFile{Name: c.name, Type: c.typ, Rows: c.rows, Present: present, Ints: c.ints, Strings: c.strs, Bools: c.bools}
	return blockfile.Encode(f, uint64(c.rows), codec.Default, comp)
}

// DecodeColumn parses a block file produced by EncodeColumn.
func DecodeColumn(data []byte) (*Column, error) {
	var f columnFile
	h, err := blockfile.Decode(data, &f)
	if err != nil {
		return nil, err
	}
	if h.Rows != uint64(f.Rows) {
		return nil, fmt.Errorf("%w: header declares %d rows, payload has %d", blockfile.ErrCorrupt, h.Rows, f.Rows)
	}
	present := roaring.New()
	if err := present.UnmarshalBinary(f.Present); err != nil {
		return nil, fmt.Errorf("%w: presence bitmap: %v", blockfile.ErrCorrupt, err)
	}
	c := &Column{name: f.Name, typ: f.Type, rows: f.Rows, present: present, ints: f.Ints, strs: f.Strings, bools: f.Bools}

	var n int
	switch f.Type {
	case manifest.TypeInt:
		n = len(f.Ints)
	case manifest.TypeString:
		n = len(f.Strings)
	case manifest.TypeBool:
		n = len(f.Bools)
	default:
		return nil, fmt.Errorf("%w: unknown feature type %q", blockfile.ErrCorrupt, f.Type)
	}
	if n != f.Rows {
		return nil, fmt.Errorf("%w: feature %q has %d values for %d rows", blockfile.ErrCorrupt, f.Name, n, f.Rows)
	}
	if present.GetCardinality() > 0 && present.Maximum() >= uint32(f.Rows) {
		return nil, fmt.Errorf("%w: feature %q presence exceeds rows", blockfile.ErrCorrupt, f.Name)
	}
	return c, nil
}
