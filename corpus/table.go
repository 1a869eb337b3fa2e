package corpus

import (
	"fmt"

	"github.com/hupe1980/hfabric/codec"
	"github.com/hupe1980/hfabric/internal/blockfile"
	"github.com/hupe1980/hfabric/model"
)

// Table is the decoded corpus table of one collection.
type Table struct {
	collection string
	base       model.Ordinal
	records    []model.Record
	index      map[string]int
}

type tableFile struct {
	Collection string         `msgpack:"collection"`
	Records    []model.Record `msgpack:"records"`
}

// NewTable wraps records, which must already be in corpus order.
func NewTable(collection string, base model.Ordinal, records []model.Record) *Table {
	t := &Table{
		collection: collection,
		base:       base,
		records:    records,
		index:      make(map[string]int, len(records)),
	}
	for i := range records {
		t.index[records[i].ID] = i
	}
	return t
}

// Collection returns the collection name.
func (t *Table) Collection() string { return t.collection }

// Base returns the global ordinal of the first row.
func (t *Table) Base() model.Ordinal { return t.base }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.records) }

// Records returns the rows in corpus order. The slice must not be modified.
func (t *Table) Records() []model.Record { return t.records }

// Get returns the record with the given identifier.
func (t *Table) Get(id string) (model.Record, bool) {
	i, ok := t.index[id]
	if !ok {
		return model.Record{}, false
	}
	return t.records[i], true
}

// Ordinal returns the global ordinal of id.
func (t *Table) Ordinal(id string) (model.Ordinal, bool) {
	i, ok := t.index[id]
	if !ok {
		return 0, false
	}
	return t.base + model.Ordinal(i), true
}

// At returns the record at a global ordinal.
func (t *Table) At(ord model.Ordinal) (model.Record, bool) {
	if ord < t.base || int(ord-t.base) >= len(t.records) {
		return model.Record{}, false
	}
	return t.records[ord-t.base], true
}

// EncodeTable serializes t as a block file.
func EncodeTable(t *Table, comp blockfile.Compression) ([]byte, blockfile.Header, error) {
	return blockfile.Encode(tableFile{Collection: t.collection, Records: t.records}, uint64(len(t.records)), codec.Default, comp)
}

// DecodeTable parses a block file produced by EncodeTable.
func DecodeTable(data []byte, base model.Ordinal) (*Table, error) {
	var f tableFile
	h, err := blockfile.Decode(data, &f)
	if err != nil {
		return nil, err
	}
	if h.Rows != uint64(len(f.Records)) {
		return nil, fmt.Errorf("%w: header declares %d rows, payload has %d", blockfile.ErrCorrupt, h.Rows, len(f.Records))
	}
	return NewTable(f.Collection, base, f.Records), nil
}
